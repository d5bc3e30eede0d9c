package callrecords

import (
	"context"
	"time"

	"leadline/database"
	"leadline/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// CallRecordRepository stores the history of finished calls.
type CallRecordRepository interface {
	Create(ctx context.Context, record models.CallResult) (string, error)
	GetByID(ctx context.Context, id string) (*models.CallResult, error)
	GetByCallID(ctx context.Context, callID string) (*models.CallResult, error)
	ListByPhone(ctx context.Context, phone string) ([]models.CallResult, error)
	ListScheduledSince(ctx context.Context, since time.Time) ([]models.CallResult, error)
	DeleteByID(ctx context.Context, id string) error
	EnsureIndexes() error
}

type mongoCallRecordRepo struct {
	coll *mongo.Collection
}

// NewMongoCallRecordRepo returns a CallRecordRepository backed by MongoDB.
func NewMongoCallRecordRepo() CallRecordRepository {
	return NewCallRecordRepo(database.Database().Collection("call_results"))
}

// NewCallRecordRepo wraps an existing collection.
func NewCallRecordRepo(coll *mongo.Collection) CallRecordRepository {
	return &mongoCallRecordRepo{coll: coll}
}
