package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"zeena/models"
)

// EnsureIndexes creates the indexes the committer depends on. The partial
// unique index over non-terminal bookings is what turns a racing duplicate
// start into a duplicate-key error instead of a silent second row; cancelled
// and completed bookings fall out of the index so their slot can be re-sold.
func (repo *MongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "id", Value: 1}},
			Options: options.Index().
				SetName("booking_id_unique").
				SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "providerId", Value: 1},
				{Key: "date", Value: 1},
				{Key: "start", Value: 1},
			},
			Options: options.Index().
				SetName("provider_date_start_active_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": bson.A{
						string(models.StatusPending),
						string(models.StatusConfirmed),
					}},
				}),
		},
		{
			Keys: bson.D{
				{Key: "providerId", Value: 1},
				{Key: "date", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().SetName("provider_date_status"),
		},
		{
			Keys:    bson.D{{Key: "customerId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("customer_date"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
