package services

import (
	"context"
	"time"

	"fonegitim-api-io/api/internal/common"
	"fonegitim-api-io/api/pkg/models"

	creditcard "github.com/durango/go-credit-card"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fee schedule, in basis points and kuruş. The payment gateway's own cut is
// quoted as the processing fee; the platform fee funds operations.
const (
	platformFeeBps    = 500
	processingFeeBps  = 290
	processingFeeBase = 100
	minPlatformFee    = 50
)

// PaymentServiceImpl implements the PaymentService interface
type PaymentServiceImpl struct{}

// NewPaymentService creates a new instance of PaymentService
func NewPaymentService() PaymentService {
	return &PaymentServiceImpl{}
}

// QuoteDonation computes the fee breakdown for a donation amount. With
// CoverFees the donor pays the fees on top and the campaign nets the full
// intended amount.
func (ps *PaymentServiceImpl) QuoteDonation(ctx context.Context, req models.DonationQuoteRequest) (*models.DonationFee, error) {
	if err := common.Validate.Struct(&req); err != nil {
		return nil, err
	}

	quote := CalculateDonationFee(req.Amount, req.CoverFees)
	return &quote, nil
}

// CalculateDonationFee is the fee formula, kept pure for table tests.
func CalculateDonationFee(amount int64, coverFees bool) models.DonationFee {
	platformFee := amount * platformFeeBps / 10000
	if platformFee < minPlatformFee {
		platformFee = minPlatformFee
	}
	processingFee := amount*processingFeeBps/10000 + processingFeeBase

	if coverFees {
		return models.DonationFee{
			GrossAmount:    amount + platformFee + processingFee,
			PlatformFee:    platformFee,
			ProcessingFee:  processingFee,
			NetToCampaign:  amount,
			CoveredByDonor: true,
		}
	}

	net := amount - platformFee - processingFee
	if net < 0 {
		net = 0
	}

	return models.DonationFee{
		GrossAmount:   amount,
		PlatformFee:   platformFee,
		ProcessingFee: processingFee,
		NetToCampaign: net,
	}
}

// CreatePaymentCard validates and stores a donor card.
func (ps *PaymentServiceImpl) CreatePaymentCard(ctx context.Context, userID primitive.ObjectID, req models.PaymentCardInformationRequest) (primitive.ObjectID, error) {
	now := time.Now()

	if err := common.Validate.Struct(&req); err != nil {
		return primitive.NilObjectID, err
	}

	card := creditcard.Card{
		Number:  req.CardNumber,
		Cvv:     req.CVV,
		Month:   req.ExpiryMonth,
		Year:    req.ExpiryYear,
		Company: creditcard.Company{},
	}

	err := card.Validate(true)
	if err != nil {
		return primitive.NilObjectID, err
	}

	lastFour, err := card.LastFour()
	if err != nil {
		return primitive.NilObjectID, err
	}

	err = card.Method()
	if err != nil {
		return primitive.NilObjectID, err
	}

	cardToStore := models.PaymentCardInformation{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		IsDefault:      req.IsDefault,
		CardHolderName: req.CardHolderName,
		CardNumber:     card.Number,
		ExpiryMonth:    card.Month,
		ExpiryYear:     card.Year,
		LastFourDigits: lastFour,
		Company:        card.Company.Long,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = CheckRecordLimit(ctx, common.UserPaymentCardsTable(), "user_id", userID, MaxPaymentCards, ErrMaxPaymentCardsReached)
	if err != nil {
		return primitive.NilObjectID, err
	}

	callback := func(sc mongo.SessionContext) (any, error) {
		if cardToStore.IsDefault {
			err = SetOtherRecordsToFalse(sc, common.UserPaymentCardsTable(), "user_id", userID, cardToStore.ID, "is_default")
			if err != nil {
				return nil, err
			}
		}

		return common.UserPaymentCardsTable().InsertOne(sc, cardToStore)
	}

	_, err = ExecuteTransaction(ctx, callback)
	if err != nil {
		return primitive.NilObjectID, err
	}

	return cardToStore.ID, nil
}

// GetPaymentCards lists the user's saved cards.
func (ps *PaymentServiceImpl) GetPaymentCards(ctx context.Context, userID primitive.ObjectID) ([]models.PaymentCardInformation, error) {
	cursor, err := common.UserPaymentCardsTable().Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var cards []models.PaymentCardInformation
	if err := cursor.All(ctx, &cards); err != nil {
		return nil, err
	}

	return cards, nil
}

// DeletePaymentCard removes a saved card owned by the user.
func (ps *PaymentServiceImpl) DeletePaymentCard(ctx context.Context, userID, cardID primitive.ObjectID) error {
	res, err := common.UserPaymentCardsTable().DeleteOne(ctx, bson.M{"_id": cardID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errors.New("payment card not found")
	}

	return nil
}
