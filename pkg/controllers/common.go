package controllers

import (
	"context"
	"net/http"
	"strconv"

	"fonegitim-api-io/api/internal/auth"
	"fonegitim-api-io/api/internal/common"
	"fonegitim-api-io/api/pkg/services"
	"fonegitim-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithTimeout returns a bounded request context.
func WithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
}

// MyId resolves the authenticated user's id from the session.
func MyId(c *gin.Context) (primitive.ObjectID, error) {
	session, err := auth.GetSessionAuto(c)
	if err != nil {
		return primitive.NilObjectID, err
	}

	return session.UserId, nil
}

// VerificationIdAndMyId pulls the verification id path param and the session
// user id.
func VerificationIdAndMyId(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, error) {
	verificationID, err := primitive.ObjectIDFromHex(c.Param("verificationid"))
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}

	userID, err := MyId(c)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}

	return verificationID, userID, nil
}

// HandleServiceError maps the service error taxonomy onto HTTP statuses.
// Retryable conditions (version conflict, rate limit) carry enough detail
// for the client to re-fetch or wait.
func HandleServiceError(c *gin.Context, err error) {
	var missingErr *services.MissingDocumentsError
	if errors.As(err, &missingErr) {
		util.HandleErrorDetails(c, http.StatusUnprocessableEntity, err, gin.H{"missing": missingErr.Missing})
		return
	}

	var rateErr *services.RateLimitError
	if errors.As(err, &rateErr) {
		util.HandleErrorDetails(c, http.StatusTooManyRequests, err, gin.H{"resetAt": rateErr.ResetAt})
		return
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		util.HandleError(c, http.StatusUnprocessableEntity, err)
		return
	}

	switch {
	case errors.Is(err, services.ErrForbidden):
		util.HandleError(c, http.StatusForbidden, services.ErrForbidden)
	case errors.Is(err, services.ErrNotFound):
		util.HandleError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrVersionConflict):
		util.HandleError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrIllegalState):
		util.HandleError(c, http.StatusConflict, err)
	default:
		util.HandleError(c, http.StatusInternalServerError, err)
	}
}

func parseVersion(raw string) (int64, error) {
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "expectedVersion must be an integer")
	}
	if version < 0 {
		return 0, errors.New("expectedVersion must not be negative")
	}

	return version, nil
}

// GetPaginationArgs reads limit/skip/sort query params.
func GetPaginationArgs(c *gin.Context) util.PaginationArgs {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	sort := c.DefaultQuery("sort", "created_at_asc")

	return util.PaginationArgs{
		Limit: limit,
		Skip:  skip,
		Sort:  sort,
	}
}
