package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentCardInformation is a saved donor card. The PAN is validated before
// storage; only the last four digits are ever returned to clients.
type PaymentCardInformation struct {
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
	CardHolderName string             `bson:"card_holder_name" json:"cardHolderName"`
	CardNumber     string             `bson:"card_number" json:"-"`
	ExpiryMonth    string             `bson:"expiry_month" json:"expiryMonth"`
	ExpiryYear     string             `bson:"expiry_year" json:"expiryYear"`
	LastFourDigits string             `bson:"last_four_digits" json:"lastFourDigits"`
	Company        string             `bson:"company" json:"company"`
	ID             primitive.ObjectID `bson:"_id" json:"_id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"userId"`
	IsDefault      bool               `bson:"is_default" json:"isDefault"`
}

type PaymentCardInformationRequest struct {
	CardHolderName string `json:"cardHolderName" validate:"required"`
	CardNumber     string `json:"cardNumber" validate:"required"`
	CVV            string `json:"cvv" validate:"required"`
	ExpiryMonth    string `json:"expiryMonth" validate:"required"`
	ExpiryYear     string `json:"expiryYear" validate:"required"`
	IsDefault      bool   `json:"isDefault"`
}

// DonationFee is the platform fee breakdown for a single donation. Amounts
// are in kuruş.
type DonationFee struct {
	GrossAmount    int64 `json:"grossAmount"`
	PlatformFee    int64 `json:"platformFee"`
	ProcessingFee  int64 `json:"processingFee"`
	NetToCampaign  int64 `json:"netToCampaign"`
	CoveredByDonor bool  `json:"coveredByDonor"`
}

type DonationQuoteRequest struct {
	Amount    int64 `json:"amount" validate:"required,gt=0"`
	CoverFees bool  `json:"coverFees"`
}
