package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"zeena/database"
	"zeena/models"
)

const commitTimeout = 5 * time.Second

// MongoBookingRepo implements BookingRepository on the bookings collection.
// The atomic unit is a Mongo session transaction. Snapshot reads alone never
// conflict across transactions, so each commit also upserts a per
// (providerId, date) claim document: two racing committers for the same day
// contend on that single document, the loser aborts with a write conflict
// and the driver retries it against the winner's committed state, where the
// overlap check sees the rival booking. The partial unique index on
// (providerId, date, start) additionally rejects exact duplicate starts from
// any writer.
type MongoBookingRepo struct {
	coll   *mongo.Collection
	claims *mongo.Collection
}

func NewMongoBookingRepo() *MongoBookingRepo {
	db := database.MongoClient.Database(database.DBName())
	return &MongoBookingRepo{
		coll:   db.Collection("bookings"),
		claims: db.Collection("booking_day_claims"),
	}
}

var nonTerminalStatuses = bson.A{
	string(models.StatusPending),
	string(models.StatusConfirmed),
}

func overlapFilter(providerID, date string, iv models.Interval, excludeID string) bson.M {
	f := bson.M{
		"providerId": providerID,
		"date":       date,
		"status":     bson.M{"$in": nonTerminalStatuses},
		"start":      bson.M{"$lt": iv.End},
		"end":        bson.M{"$gt": iv.Start},
	}
	if excludeID != "" {
		f["id"] = bson.M{"$ne": excludeID}
	}
	return f
}

func (repo *MongoBookingRepo) findBlockingIDs(ctx context.Context, providerID, date string, iv models.Interval, excludeID string) ([]string, error) {
	cursor, err := repo.coll.Find(ctx, overlapFilter(providerID, date, iv, excludeID),
		options.Find().SetProjection(bson.M{"id": 1}).SetSort(bson.M{"start": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID string `bson:"id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// claimDay upserts the per-(providerId, date) claim document inside the
// transaction. The overlap check is a plain read and registers no conflict
// at snapshot isolation; this write is what makes two simultaneous commits
// for the same provider and day collide, so two overlapping-but-not-identical
// starts cannot both pass the check.
func (repo *MongoBookingRepo) claimDay(sc mongo.SessionContext, providerID, date string) error {
	_, err := repo.claims.UpdateOne(sc,
		bson.M{"_id": providerID + "|" + date},
		bson.M{"$inc": bson.M{"commits": 1}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("claim provider day failed: %w", err)
	}
	return nil
}

// overlapAt reports the bookings holding a contested slot. Used after a
// duplicate-key abort, where the session transaction is already dead, so
// the lookup runs outside it.
func (repo *MongoBookingRepo) overlapAt(ctx context.Context, b *models.Booking) error {
	ids, err := repo.findBlockingIDs(ctx, b.ProviderID, b.Date, b.Interval(), b.ID)
	if err != nil || len(ids) == 0 {
		return &OverlapError{}
	}
	return &OverlapError{BlockingIDs: ids}
}

func (repo *MongoBookingRepo) CreateIfFree(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, commitTimeout)
	defer cancel()

	sess, err := repo.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if err := repo.claimDay(sc, b.ProviderID, b.Date); err != nil {
			return nil, err
		}
		ids, err := repo.findBlockingIDs(sc, b.ProviderID, b.Date, b.Interval(), b.ID)
		if err != nil {
			return nil, fmt.Errorf("overlap check failed: %w", err)
		}
		if len(ids) > 0 {
			return nil, &OverlapError{BlockingIDs: ids}
		}
		if _, err := repo.coll.InsertOne(sc, b); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, repo.overlapAt(ctx, b)
			}
			return nil, fmt.Errorf("insert booking failed: %w", err)
		}
		return nil, nil
	})
	return err
}

func (repo *MongoBookingRepo) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, commitTimeout)
	defer cancel()

	filter := bson.M{"id": id, "status": string(from)}
	update := bson.M{
		"$set": bson.M{"status": string(to), "updatedAt": time.Now()},
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Booking
	err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("update booking status failed: %w", err)
	}

	// Lost the CAS or the id never existed; tell the caller which.
	count, countErr := repo.coll.CountDocuments(ctx, bson.M{"id": id})
	if countErr != nil {
		return nil, fmt.Errorf("update booking status failed: %w", countErr)
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrStaleStatus
}

func (repo *MongoBookingRepo) Reschedule(ctx context.Context, oldID string, oldStatus models.BookingStatus, replacement *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, commitTimeout)
	defer cancel()

	sess, err := repo.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if err := repo.claimDay(sc, replacement.ProviderID, replacement.Date); err != nil {
			return nil, err
		}

		res, err := repo.coll.UpdateOne(sc,
			bson.M{"id": oldID, "status": string(oldStatus)},
			bson.M{
				"$set": bson.M{"status": string(models.StatusCancelled), "updatedAt": time.Now()},
				"$inc": bson.M{"version": 1},
			})
		if err != nil {
			return nil, fmt.Errorf("cancel original booking failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, ErrStaleStatus
		}

		// The just-cancelled original is terminal in this snapshot, so it
		// cannot block its own replacement.
		ids, err := repo.findBlockingIDs(sc, replacement.ProviderID, replacement.Date, replacement.Interval(), replacement.ID)
		if err != nil {
			return nil, fmt.Errorf("overlap check failed: %w", err)
		}
		if len(ids) > 0 {
			return nil, &OverlapError{BlockingIDs: ids}
		}

		if _, err := repo.coll.InsertOne(sc, replacement); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, repo.overlapAt(ctx, replacement)
			}
			return nil, fmt.Errorf("insert replacement booking failed: %w", err)
		}
		return nil, nil
	})
	return err
}

func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, commitTimeout)
	defer cancel()

	var b models.Booking
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch booking %s failed: %w", id, err)
	}
	return &b, nil
}

func (repo *MongoBookingRepo) ListActive(ctx context.Context, providerID, date string) ([]models.Booking, error) {
	return repo.list(ctx, bson.M{
		"providerId": providerID,
		"date":       date,
		"status":     bson.M{"$in": nonTerminalStatuses},
	})
}

func (repo *MongoBookingRepo) ListByProviderDate(ctx context.Context, providerID, date string) ([]models.Booking, error) {
	return repo.list(ctx, bson.M{"providerId": providerID, "date": date})
}

func (repo *MongoBookingRepo) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, commitTimeout)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, filter, options.Find().SetSort(bson.M{"start": 1}))
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode bookings failed: %w", err)
	}
	return bookings, nil
}
