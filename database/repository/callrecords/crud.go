package callrecords

import (
	"context"
	"errors"
	"time"

	"leadline/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("call record not found")

// Create inserts a new call record and returns its ID.
func (r *mongoCallRecordRepo) Create(ctx context.Context, record models.CallResult) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now()

	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return "", err
	}
	return record.ID, nil
}

func (r *mongoCallRecordRepo) GetByID(ctx context.Context, id string) (*models.CallResult, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *mongoCallRecordRepo) GetByCallID(ctx context.Context, callID string) (*models.CallResult, error) {
	return r.findOne(ctx, bson.M{"callId": callID})
}

func (r *mongoCallRecordRepo) findOne(ctx context.Context, filter bson.M) (*models.CallResult, error) {
	var record models.CallResult
	err := r.coll.FindOne(ctx, filter).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByPhone returns every call placed to a number, newest first.
func (r *mongoCallRecordRepo) ListByPhone(ctx context.Context, phone string) ([]models.CallResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	return r.find(ctx, bson.M{"phoneNumber": phone}, opts)
}

// ListScheduledSince returns calls that booked a meeting at or after since.
func (r *mongoCallRecordRepo) ListScheduledSince(ctx context.Context, since time.Time) ([]models.CallResult, error) {
	filter := bson.M{
		"appointmentScheduled": true,
		"timestamp":            bson.M{"$gte": since},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
}

func (r *mongoCallRecordRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.CallResult, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.CallResult
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteByID removes a call record by ID.
func (r *mongoCallRecordRepo) DeleteByID(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
