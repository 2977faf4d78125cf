package services

import (
	"context"

	"fonegitim-api-io/api/pkg/models"
	"fonegitim-api-io/api/pkg/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmitContext carries the request-scoped signals only the transport layer
// can observe. Everything else the engine needs is read from its own stores.
type SubmitContext struct {
	OriginCountry   string
	ExpectedVersion int64
}

// VerificationService owns the student verification lifecycle: tiered
// document collection, submission with risk scoring, admin review and
// supersession of rejected records.
type VerificationService interface {
	StartVerification(ctx context.Context, userID primitive.ObjectID, tier models.VerificationTier) (*models.StudentVerification, error)
	AppendDocument(ctx context.Context, verificationID, userID primitive.ObjectID, expectedVersion int64, docType models.DocumentType, storagePath string) (*models.StudentVerification, error)
	Submit(ctx context.Context, verificationID, userID primitive.ObjectID, submit SubmitContext) (*models.StudentVerification, error)
	Review(ctx context.Context, verificationID, adminID primitive.ObjectID, req models.ReviewVerificationRequest) (*models.StudentVerification, error)

	GetForUser(ctx context.Context, userID primitive.ObjectID) (*models.StudentVerification, error)
	GetByID(ctx context.Context, verificationID primitive.ObjectID) (*models.StudentVerification, error)
	ListPending(ctx context.Context, pagination util.PaginationArgs) ([]models.StudentVerification, int64, error)
}

// UserDirectory is the slice of user lookups the verification engine needs.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	CountDeviceReuse(ctx context.Context, fingerprint string, excludeUser primitive.ObjectID) (int64, error)
}

// UserService defines the interface for account operations.
type UserService interface {
	UserDirectory

	CreateUser(ctx context.Context, req models.CreateUserRequest, ip string) (*models.User, error)
	Authenticate(ctx context.Context, req models.UserLoginBody) (*models.User, error)
	AuthenticateGoogle(ctx context.Context, idToken string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// CampaignService defines the interface for campaign operations. Publish is
// the downstream consumer of the verification outcome.
type CampaignService interface {
	CreateCampaign(ctx context.Context, userID primitive.ObjectID, req models.CreateCampaignRequest) (primitive.ObjectID, error)
	UpdateCampaign(ctx context.Context, campaignID, userID primitive.ObjectID, req models.UpdateCampaignRequest) error
	PublishCampaign(ctx context.Context, campaignID, userID primitive.ObjectID) error
	GetCampaign(ctx context.Context, identifier string) (*models.Campaign, error)
	GetCampaigns(ctx context.Context, pagination util.PaginationArgs) ([]models.Campaign, int64, error)
}

// PaymentService defines the interface for donation fee quoting and saved
// card bookkeeping.
type PaymentService interface {
	QuoteDonation(ctx context.Context, req models.DonationQuoteRequest) (*models.DonationFee, error)
	CreatePaymentCard(ctx context.Context, userID primitive.ObjectID, req models.PaymentCardInformationRequest) (primitive.ObjectID, error)
	GetPaymentCards(ctx context.Context, userID primitive.ObjectID) ([]models.PaymentCardInformation, error)
	DeletePaymentCard(ctx context.Context, userID, cardID primitive.ObjectID) error
}

// Notifier delivers user-facing notifications. Best-effort from the caller's
// perspective: enqueueing never fails the primary operation.
type Notifier interface {
	NotifySubmitted(user *models.User, tier models.VerificationTier)
	NotifyReviewed(user *models.User, decision models.ReviewDecision, note string)
}

// EmailService composes and sends transactional email.
type EmailService interface {
	SendWelcomeEmail(email, loginName string) error
	SendVerificationSubmittedEmail(email, loginName string, tier models.VerificationTier) error
	SendVerificationApprovedEmail(email, loginName string) error
	SendVerificationRejectedEmail(email, loginName, note string) error
}
