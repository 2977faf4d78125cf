package services

import (
	"context"
	"testing"

	"fonegitim-api-io/api/pkg/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubVerificationService feeds PublishCampaign's owner check a canned
// verification record.
type stubVerificationService struct {
	VerificationService
	record *models.StudentVerification
	err    error
}

func (s *stubVerificationService) GetForUser(ctx context.Context, userID primitive.ObjectID) (*models.StudentVerification, error) {
	return s.record, s.err
}

func TestPublishCampaignRequiresVerifiedOwner(t *testing.T) {
	ctx := context.Background()
	campaignID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	cases := []struct {
		name   string
		record *models.StudentVerification
		err    error
	}{
		{name: "no verification record", err: ErrForbidden},
		{name: "draft", record: &models.StudentVerification{Status: models.VerificationDraft}},
		{name: "pending review", record: &models.StudentVerification{Status: models.VerificationPendingReview}},
		{name: "rejected", record: &models.StudentVerification{Status: models.VerificationRejected}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := NewCampaignService(&stubVerificationService{record: tc.record, err: tc.err})

			err := service.PublishCampaign(ctx, campaignID, userID)

			assert.ErrorIs(t, err, ErrIllegalState)
		})
	}
}
