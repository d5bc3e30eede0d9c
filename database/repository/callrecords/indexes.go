package callrecords

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes used by the call record queries.
func (r *mongoCallRecordRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// One record per call, whatever the number of finalize triggers.
		{
			Keys:    bson.D{{Key: "callId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_call_id"),
		},
		{
			Keys:    bson.D{{Key: "phoneNumber", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("phone_timestamp_idx"),
		},
		{
			Keys:    bson.D{{Key: "appointmentScheduled", Value: 1}, {Key: "timestamp", Value: 1}},
			Options: options.Index().SetName("scheduled_timestamp_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create call record indexes: %w", err)
	}
	return nil
}
