package controllers

import (
	"net/http"

	"fonegitim-api-io/api/pkg/models"
	"fonegitim-api-io/api/pkg/services"
	"fonegitim-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentController struct {
	paymentService services.PaymentService
}

// InitPaymentController creates a payment controller with injected services
func InitPaymentController(paymentService services.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

// QuoteDonation handles POST /donations/quote
// Public fee breakdown so donors see the split before checkout.
func (pc *PaymentController) QuoteDonation() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		var req models.DonationQuoteRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		quote, err := pc.paymentService.QuoteDonation(ctx, req)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "successful", quote)
	}
}

// CreatePaymentCard handles POST /users/payment/cards
func (pc *PaymentController) CreatePaymentCard() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		userID, err := MyId(c)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			return
		}

		var req models.PaymentCardInformationRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		cardID, err := pc.paymentService.CreatePaymentCard(ctx, userID, req)
		if err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}

		util.HandleSuccess(c, http.StatusCreated, "card saved", gin.H{"cardId": cardID})
	}
}

// GetPaymentCards handles GET /users/payment/cards
func (pc *PaymentController) GetPaymentCards() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		userID, err := MyId(c)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			return
		}

		cards, err := pc.paymentService.GetPaymentCards(ctx, userID)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "successful", cards)
	}
}

// DeletePaymentCard handles DELETE /users/payment/cards/:id
func (pc *PaymentController) DeletePaymentCard() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		cardID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		userID, err := MyId(c)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			return
		}

		if err := pc.paymentService.DeletePaymentCard(ctx, userID, cardID); err != nil {
			util.HandleError(c, http.StatusNotFound, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "card deleted", nil)
	}
}
