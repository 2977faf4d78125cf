package services

import (
	"context"
	"time"

	"fonegitim-api-io/api/internal/common"
	"fonegitim-api-io/api/pkg/models"
	"fonegitim-api-io/api/pkg/util"

	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CampaignServiceImpl implements the CampaignService interface
type CampaignServiceImpl struct {
	verifications VerificationService
}

// NewCampaignService creates a new instance of CampaignService
func NewCampaignService(verifications VerificationService) CampaignService {
	return &CampaignServiceImpl{verifications: verifications}
}

// CreateCampaign creates a draft campaign for the user.
func (cs *CampaignServiceImpl) CreateCampaign(ctx context.Context, userID primitive.ObjectID, req models.CreateCampaignRequest) (primitive.ObjectID, error) {
	if err := common.Validate.Struct(&req); err != nil {
		return primitive.NilObjectID, err
	}

	now := time.Now()
	campaign := models.Campaign{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		Description: req.Description,
		CoverImage:  common.DEFAULT_COVER_IMAGE,
		GoalAmount:  req.GoalAmount,
		Status:      models.CampaignDraft,
		CreatedAt:   now,
		ModifiedAt:  now,
	}

	_, err := common.CampaignCollection().InsertOne(ctx, campaign)
	if err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "insert campaign")
	}

	return campaign.ID, nil
}

// UpdateCampaign edits a draft campaign owned by the user.
func (cs *CampaignServiceImpl) UpdateCampaign(ctx context.Context, campaignID, userID primitive.ObjectID, req models.UpdateCampaignRequest) error {
	if err := common.Validate.Struct(&req); err != nil {
		return err
	}

	set := bson.M{"modified_at": time.Now()}
	if req.Title != "" {
		set["title"] = req.Title
		set["slug"] = slug.Make(req.Title)
	}
	if req.Description != "" {
		set["description"] = req.Description
	}
	if req.GoalAmount > 0 {
		set["goal_amount"] = req.GoalAmount
	}

	filter := bson.M{"_id": campaignID, "user_id": userID}
	res, err := common.CampaignCollection().UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return errors.Wrap(err, "update campaign")
	}
	if res.MatchedCount == 0 {
		return ErrForbidden
	}

	return nil
}

// PublishCampaign makes a campaign publicly visible. Publication is gated on
// the owner holding a VERIFIED student verification.
func (cs *CampaignServiceImpl) PublishCampaign(ctx context.Context, campaignID, userID primitive.ObjectID) error {
	verification, err := cs.verifications.GetForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			return errors.Wrap(ErrIllegalState, "campaign owner has no verification record")
		}
		return err
	}
	if verification.Status != models.VerificationVerified {
		return errors.Wrapf(ErrIllegalState, "campaign owner verification status is %s", verification.Status)
	}

	now := time.Now()
	filter := bson.M{"_id": campaignID, "user_id": userID, "status": models.CampaignDraft}
	update := bson.M{
		"$set": bson.M{
			"status":       models.CampaignPublished,
			"published_at": now,
			"modified_at":  now,
		},
	}

	res, err := common.CampaignCollection().UpdateOne(ctx, filter, update)
	if err != nil {
		return errors.Wrap(err, "publish campaign")
	}
	if res.MatchedCount == 0 {
		return ErrForbidden
	}

	return nil
}

// GetCampaign resolves a campaign by hex id or slug.
func (cs *CampaignServiceImpl) GetCampaign(ctx context.Context, identifier string) (*models.Campaign, error) {
	filter := bson.M{"slug": identifier}
	if objID, err := primitive.ObjectIDFromHex(identifier); err == nil {
		filter = bson.M{"_id": objID}
	}

	var campaign models.Campaign
	err := common.CampaignCollection().FindOne(ctx, filter).Decode(&campaign)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &campaign, nil
}

// GetCampaigns lists published campaigns for public browsing.
func (cs *CampaignServiceImpl) GetCampaigns(ctx context.Context, pagination util.PaginationArgs) ([]models.Campaign, int64, error) {
	filter := bson.M{"status": models.CampaignPublished}

	count, err := common.CampaignCollection().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetLimit(int64(pagination.Limit)).
		SetSkip(int64(pagination.Skip)).
		SetSort(bson.D{{Key: "published_at", Value: -1}})

	cursor, err := common.CampaignCollection().Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var campaigns []models.Campaign
	if err := cursor.All(ctx, &campaigns); err != nil {
		return nil, 0, err
	}

	return campaigns, count, nil
}
