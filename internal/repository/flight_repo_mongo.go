package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoFlightRepository struct {
	collection *mongo.Collection
}

func NewMongoFlightRepository(db *mongo.Database) *MongoFlightRepository {
	return &MongoFlightRepository{collection: db.Collection(FlightsCollection)}
}

func (r *MongoFlightRepository) GetByID(ctx context.Context, flightID string) (*domain.Flight, error) {
	var f domain.Flight
	if err := r.collection.FindOne(ctx, bson.M{"flight_id": flightID}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.StoreError("find flight", err)
	}
	return &f, nil
}

func (r *MongoFlightRepository) CountByIDs(ctx context.Context, flightIDs []string) (int, error) {
	if len(flightIDs) == 0 {
		return 0, nil
	}
	n, err := r.collection.CountDocuments(ctx, bson.M{"flight_id": bson.M{"$in": flightIDs}})
	if err != nil {
		return 0, domain.StoreError("count flights", err)
	}
	return int(n), nil
}

func (r *MongoFlightRepository) List(ctx context.Context, page domain.PaginationParams) ([]domain.Flight, error) {
	opts := byDeparture().SetLimit(int64(page.Limit)).SetSkip(int64(page.Offset()))
	return r.find(ctx, "list flights", bson.M{}, opts)
}

func (r *MongoFlightRepository) FindDirect(ctx context.Context, origin, destination string, from, to time.Time, limit int) ([]domain.Flight, error) {
	filter := bson.M{
		"origin":              origin,
		"destination":         destination,
		"departure_date_time": departureWindow(from, to),
	}
	return r.find(ctx, "find direct flights", filter, byDeparture().SetLimit(int64(limit)))
}

func (r *MongoFlightRepository) FindDepartingFrom(ctx context.Context, origin, excludeDestination string, from, to time.Time, limit int) ([]domain.Flight, error) {
	filter := bson.M{
		"origin":              origin,
		"destination":         bson.M{"$ne": excludeDestination},
		"departure_date_time": departureWindow(from, to),
	}
	return r.find(ctx, "find first legs", filter, byDeparture().SetLimit(int64(limit)))
}

func (r *MongoFlightRepository) FindArrivingAt(ctx context.Context, destination string, from, to time.Time, limit int) ([]domain.Flight, error) {
	filter := bson.M{
		"destination":         destination,
		"departure_date_time": departureWindow(from, to),
	}
	return r.find(ctx, "find second legs", filter, byDeparture().SetLimit(int64(limit)))
}

func (r *MongoFlightRepository) Airports(ctx context.Context) ([]domain.Airport, error) {
	codes := make(map[string]struct{})
	for _, field := range []string{"origin", "destination"} {
		values, err := r.collection.Distinct(ctx, field, bson.M{})
		if err != nil {
			return nil, domain.StoreError("distinct "+field, err)
		}
		for _, v := range values {
			if code, ok := v.(string); ok {
				codes[code] = struct{}{}
			}
		}
	}

	airports := make([]domain.Airport, 0, len(codes))
	for code := range codes {
		airports = append(airports, domain.Airport{Code: code})
	}
	sort.Slice(airports, func(i, j int) bool { return airports[i].Code < airports[j].Code })
	return airports, nil
}

func (r *MongoFlightRepository) Upsert(ctx context.Context, flights []domain.Flight) (int, error) {
	if len(flights) == 0 {
		return 0, nil
	}

	models := make([]mongo.WriteModel, 0, len(flights))
	for _, f := range flights {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"flight_id": f.FlightID}).
			SetReplacement(f).
			SetUpsert(true))
	}

	res, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, domain.StoreError("upsert flights", err)
	}
	return int(res.UpsertedCount + res.MatchedCount), nil
}

func (r *MongoFlightRepository) find(ctx context.Context, op string, filter bson.M, opts *options.FindOptions) ([]domain.Flight, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, domain.StoreError(op, err)
	}
	defer cursor.Close(ctx)

	flights := make([]domain.Flight, 0)
	if err := cursor.All(ctx, &flights); err != nil {
		return nil, domain.StoreError(op, err)
	}
	return flights, nil
}

func byDeparture() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "departure_date_time", Value: 1}, {Key: "flight_id", Value: 1}})
}

func departureWindow(from, to time.Time) bson.M {
	return bson.M{"$gte": from, "$lt": to}
}

var _ FlightRepository = (*MongoFlightRepository)(nil)
