package controllers

import (
	"net/http"

	"fonegitim-api-io/api/internal/auth"
	"fonegitim-api-io/api/internal/common"
	"fonegitim-api-io/api/pkg/email"
	"fonegitim-api-io/api/pkg/models"
	"fonegitim-api-io/api/pkg/services"
	"fonegitim-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService services.UserService
	mailPool    *email.PoolNotifier
}

// InitUserController creates a user controller with injected services
func InitUserController(userService services.UserService, mailPool *email.PoolNotifier) *UserController {
	return &UserController{
		userService: userService,
		mailPool:    mailPool,
	}
}

// CreateUser handles POST /signup
func (uc *UserController) CreateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		var req models.CreateUserRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		if err := common.Validate.Struct(&req); err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		user, err := uc.userService.CreateUser(ctx, req, c.ClientIP())
		if err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}

		uc.mailPool.NotifyWelcome(user)

		util.HandleSuccess(c, http.StatusCreated, "account created", user)
	}
}

// HandleUserAuthentication handles POST /auth
func (uc *UserController) HandleUserAuthentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		var req models.UserLoginBody
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		user, err := uc.userService.Authenticate(ctx, req)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			return
		}

		token, err := auth.SetSession(c, user.Id, user.PrimaryEmail, user.LoginName)
		if err != nil {
			util.HandleError(c, http.StatusInternalServerError, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "successful", gin.H{"token": token, "user": user})
	}
}

// HandleUserGoogleAuthentication handles POST /auth/google
func (uc *UserController) HandleUserGoogleAuthentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		var req models.GoogleAuthBody
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		if err := common.Validate.Struct(&req); err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		user, err := uc.userService.AuthenticateGoogle(ctx, req.IdToken)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			return
		}

		token, err := auth.SetSession(c, user.Id, user.PrimaryEmail, user.LoginName)
		if err != nil {
			util.HandleError(c, http.StatusInternalServerError, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "successful", gin.H{"token": token, "user": user})
	}
}

// Logout handles DELETE /logout
func (uc *UserController) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.DeleteSession(c)
		util.HandleSuccess(c, http.StatusOK, "logged out", nil)
	}
}

// CurrentUser handles GET /users/me
func (uc *UserController) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		userID, err := MyId(c)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			return
		}

		user, err := uc.userService.GetUserByID(ctx, userID)
		if err != nil {
			util.HandleError(c, http.StatusNotFound, err)
			return
		}
		user.Auth.PasswordDigest = ""

		util.HandleSuccess(c, http.StatusOK, "success", user)
	}
}
