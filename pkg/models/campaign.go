package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "Draft"
	CampaignPublished CampaignStatus = "Published"
	CampaignClosed    CampaignStatus = "Closed"
)

// Campaign is a student's funding campaign. Publication is gated on the
// owner's verification outcome.
type Campaign struct {
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	ModifiedAt   time.Time          `bson:"modified_at" json:"modifiedAt"`
	PublishedAt  *time.Time         `bson:"published_at,omitempty" json:"publishedAt,omitempty"`
	Title        string             `bson:"title" json:"title" validate:"required,min=5,max=140"`
	Slug         string             `bson:"slug" json:"slug"`
	Description  string             `bson:"description" json:"description" validate:"required,min=25,max=2000"`
	CoverImage   string             `bson:"cover_image" json:"coverImage"`
	Status       CampaignStatus     `bson:"status" json:"status"`
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"userId"`
	GoalAmount   int64              `bson:"goal_amount" json:"goalAmount" validate:"required,gt=0"`
	RaisedAmount int64              `bson:"raised_amount" json:"raisedAmount"`
	DonorCount   int                `bson:"donor_count" json:"donorCount"`
}

type CreateCampaignRequest struct {
	Title       string `json:"title" validate:"required,min=5,max=140"`
	Description string `json:"description" validate:"required,min=25,max=2000"`
	GoalAmount  int64  `json:"goalAmount" validate:"required,gt=0"`
}

type UpdateCampaignRequest struct {
	Title       string `json:"title" validate:"omitempty,min=5,max=140"`
	Description string `json:"description" validate:"omitempty,min=25,max=2000"`
	GoalAmount  int64  `json:"goalAmount" validate:"omitempty,gt=0"`
}
