package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepository stores each booking as one document with the timeline
// embedded, so a transition is a single-document update.
type MongoBookingRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoBookingRepository(client *mongo.Client, db *mongo.Database) *MongoBookingRepository {
	return &MongoBookingRepository{client: client, collection: db.Collection(BookingsCollection)}
}

func (r *MongoBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if _, err := r.collection.InsertOne(ctx, b); err != nil {
		return domain.StoreError("insert booking", err)
	}
	return nil
}

func (r *MongoBookingRepository) GetByRefID(ctx context.Context, refID string) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.collection.FindOne(ctx, bson.M{"ref_id": refID}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.StoreError("find booking", err)
	}
	return &b, nil
}

func (r *MongoBookingRepository) SaveTransition(ctx context.Context, refID string, status domain.BookingStatus, event domain.TimelineEvent, updatedAt time.Time) error {
	update := bson.M{
		"$set":  bson.M{"status": status, "updated_at": updatedAt},
		"$push": bson.M{"timeline": event},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"ref_id": refID}, update)
	if err != nil {
		return domain.StoreError("update booking", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoBookingRepository) List(ctx context.Context, filter domain.BookingFilter, page domain.PaginationParams) ([]domain.Booking, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "ref_id", Value: -1}}).
		SetLimit(int64(page.Limit)).
		SetSkip(int64(page.Offset()))

	cursor, err := r.collection.Find(ctx, bookingFilterDoc(filter), opts)
	if err != nil {
		return nil, domain.StoreError("find bookings", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]domain.Booking, 0, page.Limit)
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, domain.StoreError("decode bookings", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepository) Count(ctx context.Context, filter domain.BookingFilter) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bookingFilterDoc(filter))
	if err != nil {
		return 0, domain.StoreError("count bookings", err)
	}
	return n, nil
}

func (r *MongoBookingRepository) CountByStatus(ctx context.Context) (map[domain.BookingStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$status"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, domain.StoreError("aggregate status counts", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status domain.BookingStatus `bson:"_id"`
		Count  int64                `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, domain.StoreError("decode status counts", err)
	}

	counts := make(map[domain.BookingStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *MongoBookingRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func bookingFilterDoc(filter domain.BookingFilter) bson.M {
	doc := bson.M{}
	if filter.Status != "" {
		doc["status"] = filter.Status
	}
	if filter.Origin != "" {
		doc["origin"] = filter.Origin
	}
	if filter.Destination != "" {
		doc["destination"] = filter.Destination
	}
	return doc
}

var _ BookingRepository = (*MongoBookingRepository)(nil)
