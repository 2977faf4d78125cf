package services

import (
	"context"
	"time"

	"fonegitim-api-io/api/internal/common"
	"fonegitim-api-io/api/pkg/models"
	"fonegitim-api-io/api/pkg/util"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct{}

// NewUserService creates a new instance of UserService
func NewUserService() UserService {
	return &UserServiceImpl{}
}

// CreateUser registers a new account with a bcrypt password digest.
func (us *UserServiceImpl) CreateUser(ctx context.Context, req models.CreateUserRequest, ip string) (*models.User, error) {
	if err := common.Validate.Struct(&req); err != nil {
		return nil, err
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	now := time.Now()
	user := models.User{
		Id:           primitive.NewObjectID(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PrimaryEmail: req.Email,
		LoginName:    req.FirstName,
		Thumbnail:    common.DEFAULT_USER_THUMBNAIL,
		Status:       models.UserStatusActive,
		Role:         models.Regular,
		LastLoginIp:  ip,
		CreatedAt:    now,
		ModifiedAt:   now,
		Auth: models.UserAuthData{
			PasswordDigest: string(digest),
			ModifiedAt:     now,
		},
	}

	_, err = common.UserCollection().InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errors.New("an account with this email already exists")
		}
		return nil, errors.Wrap(err, "insert user")
	}

	return &user, nil
}

// Authenticate checks email/password credentials.
func (us *UserServiceImpl) Authenticate(ctx context.Context, req models.UserLoginBody) (*models.User, error) {
	if err := common.Validate.Struct(&req); err != nil {
		return nil, err
	}

	user, err := us.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Auth.PasswordDigest), []byte(req.Password))
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	return user, nil
}

// AuthenticateGoogle verifies a Google id token and resolves the account.
func (us *UserServiceImpl) AuthenticateGoogle(ctx context.Context, idToken string) (*models.User, error) {
	verifier := googleAuthIDTokenVerifier.Verifier{}
	audience := util.LoadEnvFor("GOOGLE_CLIENT_ID")

	err := verifier.VerifyIDToken(idToken, []string{audience})
	if err != nil {
		return nil, errors.Wrap(err, "verify google id token")
	}

	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, errors.Wrap(err, "decode google id token")
	}

	user, err := us.GetUserByEmail(ctx, claimSet.Email)
	if err != nil {
		return nil, errors.New("no account registered for this google identity")
	}

	return user, nil
}

func (us *UserServiceImpl) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := common.UserCollection().FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (us *UserServiceImpl) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := common.UserCollection().FindOne(ctx, bson.M{"primary_email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

// CountDeviceReuse counts other accounts sharing a device fingerprint.
func (us *UserServiceImpl) CountDeviceReuse(ctx context.Context, fingerprint string, excludeUser primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"device_fingerprint": fingerprint,
		"_id":                bson.M{"$ne": excludeUser},
	}

	return common.UserCollection().CountDocuments(ctx, filter)
}
