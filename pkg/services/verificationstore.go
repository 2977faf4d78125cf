package services

import (
	"context"
	"time"

	"fonegitim-api-io/api/pkg/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNoMatch is returned by the conditional-update store methods when no
// document satisfied the full filter (id + owner + version + status). Callers
// re-read the record to tell a stale version from a missing record or an
// illegal state.
var ErrNoMatch = errors.New("no document matched the conditional update")

// VerificationStore is the persistence boundary of the verification engine.
// Every mutating method is a single atomic compare-and-set keyed on id and
// version, never a read-then-write.
type VerificationStore interface {
	Insert(ctx context.Context, v *models.StudentVerification) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.StudentVerification, error)
	FindActiveByUser(ctx context.Context, userID primitive.ObjectID) (*models.StudentVerification, error)
	CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	ListByStatus(ctx context.Context, status models.VerificationStatus, limit, skip int64) ([]models.StudentVerification, int64, error)

	AppendDocument(ctx context.Context, id, userID primitive.ObjectID, expectedVersion int64, doc models.VerificationDocument) (*models.StudentVerification, error)
	MarkSubmitted(ctx context.Context, id, userID primitive.ObjectID, expectedVersion int64, risk RiskResult, at time.Time) (*models.StudentVerification, error)
	MarkReviewed(ctx context.Context, id primitive.ObjectID, expectedVersion int64, status models.VerificationStatus, reviewer primitive.ObjectID, note string, at time.Time) (*models.StudentVerification, error)
	Supersede(ctx context.Context, oldID primitive.ObjectID, fresh *models.StudentVerification) error
}

type mongoVerificationStore struct {
	collection *mongo.Collection
}

// NewMongoVerificationStore wraps the StudentVerification collection.
func NewMongoVerificationStore(collection *mongo.Collection) VerificationStore {
	return &mongoVerificationStore{collection: collection}
}

// EnsureVerificationIndexes creates the partial unique index that backs the
// one-active-record-per-user invariant. Two creators racing past the
// read-side check both reach Insert; the index rejects the second.
func EnsureVerificationIndexes(ctx context.Context, collection *mongo.Collection) error {
	model := mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"superseded": false}),
	}

	_, err := collection.Indexes().CreateOne(ctx, model)
	return errors.Wrap(err, "create verification indexes")
}

func (s *mongoVerificationStore) Insert(ctx context.Context, v *models.StudentVerification) error {
	_, err := s.collection.InsertOne(ctx, v)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Unique partial index on user_id where superseded=false.
			return errors.Wrap(ErrIllegalState, "an active verification already exists")
		}
		return errors.Wrap(err, "insert verification")
	}

	return nil
}

func (s *mongoVerificationStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.StudentVerification, error) {
	var verification models.StudentVerification
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&verification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find verification")
	}

	return &verification, nil
}

func (s *mongoVerificationStore) FindActiveByUser(ctx context.Context, userID primitive.ObjectID) (*models.StudentVerification, error) {
	var verification models.StudentVerification
	err := s.collection.FindOne(ctx, bson.M{"user_id": userID, "superseded": false}).Decode(&verification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find active verification")
	}

	return &verification, nil
}

func (s *mongoVerificationStore) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{"user_id": userID})
	return count, errors.Wrap(err, "count verifications")
}

func (s *mongoVerificationStore) ListByStatus(ctx context.Context, status models.VerificationStatus, limit, skip int64) ([]models.StudentVerification, int64, error) {
	filter := bson.M{"status": status, "superseded": false}

	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count by status")
	}

	findOptions := options.Find().
		SetLimit(limit).
		SetSkip(skip).
		SetSort(bson.D{{Key: "updated_at", Value: 1}})

	cursor, err := s.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list by status")
	}
	defer cursor.Close(ctx)

	var verifications []models.StudentVerification
	if err := cursor.All(ctx, &verifications); err != nil {
		return nil, 0, errors.Wrap(err, "decode verifications")
	}

	return verifications, count, nil
}

func (s *mongoVerificationStore) AppendDocument(ctx context.Context, id, userID primitive.ObjectID, expectedVersion int64, doc models.VerificationDocument) (*models.StudentVerification, error) {
	filter := bson.M{
		"_id":     id,
		"user_id": userID,
		"__v":     expectedVersion,
		"status":  models.VerificationDraft,
	}
	update := bson.M{
		"$push": bson.M{"documents": doc},
		"$set":  bson.M{"updated_at": doc.UploadedAt},
		"$inc":  bson.M{"__v": 1},
	}

	return s.findOneAndUpdate(ctx, filter, update)
}

func (s *mongoVerificationStore) MarkSubmitted(ctx context.Context, id, userID primitive.ObjectID, expectedVersion int64, risk RiskResult, at time.Time) (*models.StudentVerification, error) {
	flags := risk.Flags
	if flags == nil {
		flags = []models.RiskFlag{}
	}

	filter := bson.M{
		"_id":     id,
		"user_id": userID,
		"__v":     expectedVersion,
		"status":  models.VerificationDraft,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     models.VerificationPendingReview,
			"risk_score": risk.Score,
			"risk_flags": flags,
			"updated_at": at,
		},
		"$inc": bson.M{"__v": 1},
	}

	return s.findOneAndUpdate(ctx, filter, update)
}

func (s *mongoVerificationStore) MarkReviewed(ctx context.Context, id primitive.ObjectID, expectedVersion int64, status models.VerificationStatus, reviewer primitive.ObjectID, note string, at time.Time) (*models.StudentVerification, error) {
	filter := bson.M{
		"_id":    id,
		"__v":    expectedVersion,
		"status": models.VerificationPendingReview,
	}
	update := bson.M{
		"$set": bson.M{
			"status":      status,
			"reviewed_by": reviewer,
			"reviewed_at": at,
			"admin_note":  note,
			"updated_at":  at,
		},
		"$inc": bson.M{"__v": 1},
	}

	return s.findOneAndUpdate(ctx, filter, update)
}

// Supersede retires a rejected record and inserts the replacement draft in
// one transaction. The old record's review fields are left untouched.
func (s *mongoVerificationStore) Supersede(ctx context.Context, oldID primitive.ObjectID, fresh *models.StudentVerification) error {
	callback := func(sc mongo.SessionContext) (any, error) {
		filter := bson.M{
			"_id":        oldID,
			"status":     models.VerificationRejected,
			"superseded": false,
		}
		update := bson.M{
			"$set": bson.M{"superseded": true, "updated_at": fresh.CreatedAt},
			"$inc": bson.M{"__v": 1},
		}

		res, err := s.collection.UpdateOne(sc, filter, update)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, ErrNoMatch
		}

		return s.collection.InsertOne(sc, fresh)
	}

	_, err := ExecuteTransaction(ctx, callback)
	return err
}

func (s *mongoVerificationStore) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.StudentVerification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var verification models.StudentVerification
	err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&verification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNoMatch
		}
		return nil, errors.Wrap(err, "conditional update")
	}

	return &verification, nil
}
