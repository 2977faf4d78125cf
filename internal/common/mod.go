package common

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fonegitim-api-io/api/pkg/util"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

var Validate = validator.New()

// Database collections. Resolved lazily so importing this package does not
// demand a live database (tests exercise the service layer through injected
// stores instead).
func UserCollection() *mongo.Collection {
	return util.GetCollection("User")
}

func StudentVerificationCollection() *mongo.Collection {
	return util.GetCollection("StudentVerification")
}

func CampaignCollection() *mongo.Collection {
	return util.GetCollection("Campaign")
}

func UserPaymentCardsTable() *mongo.Collection {
	return util.GetCollection("UserPaymentCards")
}

const (
	REQUEST_TIMEOUT_SECS     = 2 * 60 * time.Second
	MONGO_DUPLICATE_KEY_CODE = 11000

	// Rolling-window cap on verification submissions per user.
	MAX_SUBMITS_PER_WINDOW = 3
	SUBMIT_WINDOW          = 24 * time.Hour

	MIN_TITLE_LENGTH = 5
	MAX_TITLE_LENGTH = 140

	MIN_DESCRIPTION_LENGTH = 25
	MAX_DESCRIPTION_LENGTH = 2000

	DEFAULT_USER_THUMBNAIL = "https://res.cloudinary.com/fonegitim/image/upload/v1705607383/fonegitim/default_user.png"
	DEFAULT_COVER_IMAGE    = "https://res.cloudinary.com/fonegitim/image/upload/v1705607175/fonegitim/default_cover.jpg"
)

// Utility Functions

// IsEmptyString checks if a string is empty
func IsEmptyString(s string) bool {
	return strings.Compare(s, "") == 0
}

// ConvertMapToStruct converts a map to a struct using JSON marshaling
func ConvertMapToStruct(m map[string]any, v any) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal map: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal to struct: %w", err)
	}

	return nil
}
