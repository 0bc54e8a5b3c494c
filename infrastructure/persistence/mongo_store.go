package persistence

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/helixml/moviefinder/domain/recommendation"
	"github.com/helixml/moviefinder/domain/repository"
	"github.com/helixml/moviefinder/internal/database"
)

// Mongo naming defaults.
const (
	DefaultMongoDatabase     = "moviefinder"
	recommendationCollection = "recommendations"
	countersCollection       = "counters"
)

// IsMongoURL reports whether the URL names a MongoDB deployment.
func IsMongoURL(uri string) bool {
	return strings.HasPrefix(uri, "mongodb://") || strings.HasPrefix(uri, "mongodb+srv://")
}

type recommendationDocument struct {
	ID                int64     `bson:"_id"`
	UserInput         string    `bson:"user_input"`
	RecommendedMovies string    `bson:"recommended_movies"`
	Timestamp         time.Time `bson:"timestamp"`
}

type counterDocument struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// MongoRecommendationStore implements recommendation.Store on MongoDB. Ids
// come from an atomic counter document so they stay integer and monotonic.
type MongoRecommendationStore struct {
	client   *mongo.Client
	records  *mongo.Collection
	counters *mongo.Collection
}

// NewMongoRecommendationStore connects to uri and verifies the deployment is
// reachable. The database name is taken from the URI path, defaulting to
// DefaultMongoDatabase.
func NewMongoRecommendationStore(ctx context.Context, uri string) (*MongoRecommendationStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(mongoDatabaseName(uri))
	return &MongoRecommendationStore{
		client:   client,
		records:  db.Collection(recommendationCollection),
		counters: db.Collection(countersCollection),
	}, nil
}

func mongoDatabaseName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return DefaultMongoDatabase
	}
	name := strings.Trim(u.Path, "/")
	if name == "" {
		return DefaultMongoDatabase
	}
	return name
}

// Close disconnects from the deployment.
func (s *MongoRecommendationStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Insert appends a recommendation with the next id and the current time.
func (s *MongoRecommendationStore) Insert(ctx context.Context, rec recommendation.Stored) (recommendation.Stored, error) {
	if rec.ID() != 0 {
		return recommendation.Stored{}, ErrAlreadyStored
	}

	id, err := s.nextID(ctx)
	if err != nil {
		return recommendation.Stored{}, err
	}

	doc := recommendationDocument{
		ID:                id,
		UserInput:         rec.UserInput(),
		RecommendedMovies: rec.RecommendedMovies(),
		Timestamp:         time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.records.InsertOne(ctx, doc); err != nil {
		return recommendation.Stored{}, fmt.Errorf("insert recommendation: %w", err)
	}
	return documentToDomain(doc), nil
}

func (s *MongoRecommendationStore) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter counterDocument
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": recommendationCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate recommendation id: %w", err)
	}
	return counter.Seq, nil
}

// Find retrieves recommendations matching the given options.
func (s *MongoRecommendationStore) Find(ctx context.Context, opts ...repository.Option) ([]recommendation.Stored, error) {
	q := repository.Build(opts...)

	findOpts := options.Find()
	if sort := mongoSort(q); len(sort) > 0 {
		findOpts.SetSort(sort)
	}
	if q.LimitValue() > 0 {
		findOpts.SetLimit(int64(q.LimitValue()))
	}
	if q.OffsetValue() > 0 {
		findOpts.SetSkip(int64(q.OffsetValue()))
	}

	cursor, err := s.records.Find(ctx, mongoFilter(q), findOpts)
	if err != nil {
		return nil, fmt.Errorf("find recommendation: %w", err)
	}

	var docs []recommendationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode recommendation: %w", err)
	}

	out := make([]recommendation.Stored, len(docs))
	for i, doc := range docs {
		out[i] = documentToDomain(doc)
	}
	return out, nil
}

// FindOne retrieves a single recommendation matching the given options.
func (s *MongoRecommendationStore) FindOne(ctx context.Context, opts ...repository.Option) (recommendation.Stored, error) {
	q := repository.Build(opts...)

	findOpts := options.FindOne()
	if sort := mongoSort(q); len(sort) > 0 {
		findOpts.SetSort(sort)
	}
	if q.OffsetValue() > 0 {
		findOpts.SetSkip(int64(q.OffsetValue()))
	}

	var doc recommendationDocument
	err := s.records.FindOne(ctx, mongoFilter(q), findOpts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return recommendation.Stored{}, fmt.Errorf("%w: recommendation", database.ErrNotFound)
	}
	if err != nil {
		return recommendation.Stored{}, fmt.Errorf("find one recommendation: %w", err)
	}
	return documentToDomain(doc), nil
}

// Count returns the number of recommendations matching the given options.
func (s *MongoRecommendationStore) Count(ctx context.Context, opts ...repository.Option) (int64, error) {
	n, err := s.records.CountDocuments(ctx, mongoFilter(repository.Build(opts...)))
	if err != nil {
		return 0, fmt.Errorf("count recommendation: %w", err)
	}
	return n, nil
}

func mongoField(field string) string {
	if field == "id" {
		return "_id"
	}
	return field
}

func mongoFilter(q repository.Query) bson.D {
	filter := bson.D{}
	for _, cond := range q.Conditions() {
		if cond.In() {
			filter = append(filter, bson.E{Key: mongoField(cond.Field()), Value: bson.M{"$in": cond.Value()}})
			continue
		}
		filter = append(filter, bson.E{Key: mongoField(cond.Field()), Value: cond.Value()})
	}
	return filter
}

func mongoSort(q repository.Query) bson.D {
	sort := bson.D{}
	for _, ord := range q.Orders() {
		dir := 1
		if !ord.Ascending() {
			dir = -1
		}
		sort = append(sort, bson.E{Key: mongoField(ord.Field()), Value: dir})
	}
	return sort
}

func documentToDomain(doc recommendationDocument) recommendation.Stored {
	return recommendation.ReconstructStored(doc.ID, doc.UserInput, doc.RecommendedMovies, doc.Timestamp)
}

var _ recommendation.Store = (*MongoRecommendationStore)(nil)
