package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	Super   UserRole = "Super"
	Mod     UserRole = "Mod"
	Regular UserRole = "User"
)

type UserStatus string

const (
	UserStatusActive UserStatus = "Active"
	Inactive         UserStatus = "Inactive"
	Suspended        UserStatus = "Suspended"
	Deleted          UserStatus = "Deleted"
	Banned           UserStatus = "Banned"
)

// User basic account data
type User struct {
	LastLogin         time.Time          `bson:"last_login" json:"lastLogin"`
	ModifiedAt        time.Time          `bson:"modified_at" json:"modifiedAt"`
	CreatedAt         time.Time          `bson:"created_at" json:"createdAt"`
	Auth              UserAuthData       `bson:"auth,omitempty" json:"auth,omitempty" validate:"required"`
	Thumbnail         string             `bson:"thumbnail" json:"thumbnail"`
	LoginName         string             `bson:"login_name" json:"loginName" validate:"required"`
	LastLoginIp       string             `bson:"last_login_ip" json:"-"`
	FirstName         string             `bson:"first_name" json:"firstName"`
	LastName          string             `bson:"last_name" json:"lastName"`
	PrimaryEmail      string             `bson:"primary_email" json:"primaryEmail" validate:"required"`
	Phone             string             `bson:"phone" json:"phone"`
	School            string             `bson:"school" json:"school"`
	Department        string             `bson:"department" json:"department"`
	DeclaredCountry   string             `bson:"declared_country" json:"declaredCountry"`
	DeviceFingerprint string             `bson:"device_fingerprint" json:"-"`
	Status            UserStatus         `bson:"status" json:"status"`
	Role              UserRole           `bson:"role" json:"role"`
	Id                primitive.ObjectID `bson:"_id" json:"_id" validate:"required"`
	CampaignID        primitive.ObjectID `bson:"campaign_id,omitempty" json:"campaignId,omitempty"`
	LoginCounts       int                `bson:"login_counts" json:"-"`
	IsStudent         bool               `bson:"is_student" json:"isStudent"`
}

// UserAuthData -> authentication data
type UserAuthData struct {
	ModifiedAt     time.Time `bson:"modified_at" json:"modifiedAt"`
	PasswordDigest string    `bson:"password_digest,omitempty" json:"-"`
	EmailVerified  bool      `bson:"email_verified" json:"emailVerified"`
	GoogleAccount  bool      `bson:"google_account" json:"googleAccount"`
}

type CreateUserRequest struct {
	FirstName string `json:"firstName,omitempty" validate:"required,min=3"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty" validate:"required,email"`
	Password  string `json:"password,omitempty" validate:"required"`
}

// UserLoginBody -> expected data for login process
type UserLoginBody struct {
	Email    string `json:"email,omitempty" validate:"required,email"`
	Password string `json:"password,omitempty" validate:"required"`
}

type GoogleAuthBody struct {
	IdToken string `json:"idToken" validate:"required"`
}
