// Package mongostore keeps asked-question records in a MongoDB collection
// so several machines can share one user's history.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/mindcheck/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// CollectionName is the collection holding asked-question records.
const CollectionName = "asked_questions"

// Store wraps a connected Mongo client.
type Store struct {
	Client   *mongo.Client
	Database *mongo.Database
	logger   *zap.Logger
}

// Connect dials uri, pings the server, selects database and makes sure the
// record key index exists.
func Connect(ctx context.Context, uri, database string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &Store{
		Client:   client,
		Database: client.Database(database),
		logger:   logger,
	}
	if err := NewAskedRepository(s.Database, logger).CreateIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	logger.Debug("mongo connected", zap.String("database", database))
	return s, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

// AskedRepo returns a store.AskedRepo backed by this database.
func (s *Store) AskedRepo() store.AskedRepo {
	return NewAskedRepository(s.Database, s.logger)
}

// askedDoc is the stored shape of one record.
type askedDoc struct {
	Namespace string    `bson:"namespace"`
	UserID    string    `bson:"user_id"`
	TopicSlug string    `bson:"topic_slug"`
	Topic     string    `bson:"topic"`
	Questions []string  `bson:"questions"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// AskedRepository implements store.AskedRepo on a Mongo collection.
type AskedRepository struct {
	Col    *mongo.Collection
	logger *zap.Logger
}

// NewAskedRepository binds the repository to db's asked_questions collection.
func NewAskedRepository(db *mongo.Database, logger *zap.Logger) *AskedRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AskedRepository{Col: db.Collection(CollectionName), logger: logger}
}

// CreateIndexes adds the unique (namespace, user_id, topic_slug) index, so
// two first-time upserts for one topic cannot leave two records behind.
func (r *AskedRepository) CreateIndexes(ctx context.Context) error {
	_, err := r.Col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "namespace", Value: 1},
			{Key: "user_id", Value: 1},
			{Key: "topic_slug", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("asked_key"),
	})
	if err != nil {
		return fmt.Errorf("create asked questions index: %w", err)
	}
	return nil
}

func keyFilter(key store.AskedKey) bson.M {
	return bson.M{
		"namespace":  key.Namespace,
		"user_id":    key.UserID,
		"topic_slug": store.Slug(key.Topic),
	}
}

func (r *AskedRepository) Asked(ctx context.Context, key store.AskedKey) ([]string, error) {
	var doc askedDoc
	err := r.Col.FindOne(ctx, keyFilter(key)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find asked questions: %w", err)
	}
	if doc.Questions == nil {
		return []string{}, nil
	}
	return doc.Questions, nil
}

// MergeAsked relies on $addToSet so concurrent merges never drop texts.
func (r *AskedRepository) MergeAsked(ctx context.Context, key store.AskedKey, texts []string) error {
	if store.Slug(key.Topic) == "" {
		return fmt.Errorf("merge asked questions: empty topic")
	}

	clean := make([]string, 0, len(texts))
	for _, t := range texts {
		if t != "" {
			clean = append(clean, t)
		}
	}

	update := bson.M{
		"$addToSet": bson.M{"questions": bson.M{"$each": clean}},
		"$set":      bson.M{"topic": key.Topic, "updated_at": time.Now().UTC()},
	}
	opts := options.Update().SetUpsert(true)
	res, err := r.Col.UpdateOne(ctx, keyFilter(key), update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// Lost the insert race; the record exists now, so update it.
		res, err = r.Col.UpdateOne(ctx, keyFilter(key), update, opts)
	}
	if err != nil {
		return fmt.Errorf("upsert asked questions: %w", err)
	}

	r.logger.Debug("asked questions merged",
		zap.String("topic", store.Slug(key.Topic)),
		zap.Int64("matched", res.MatchedCount),
		zap.Int64("upserted", res.UpsertedCount))
	return nil
}

func (r *AskedRepository) ClearAsked(ctx context.Context, key store.AskedKey) error {
	if _, err := r.Col.DeleteOne(ctx, keyFilter(key)); err != nil {
		return fmt.Errorf("clear asked questions: %w", err)
	}
	return nil
}

func (r *AskedRepository) AskedTopics(ctx context.Context, namespace, userID string) ([]store.AskedTopic, error) {
	cur, err := r.Col.Find(ctx,
		bson.M{"namespace": namespace, "user_id": userID},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find asked topics: %w", err)
	}

	var docs []askedDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode asked topics: %w", err)
	}

	out := make([]store.AskedTopic, 0, len(docs))
	for _, d := range docs {
		out = append(out, store.AskedTopic{
			Slug:      d.TopicSlug,
			Topic:     d.Topic,
			Count:     len(d.Questions),
			UpdatedAt: d.UpdatedAt,
		})
	}
	return out, nil
}
