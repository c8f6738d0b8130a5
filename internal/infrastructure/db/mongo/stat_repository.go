package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flappyv/platform/internal/core/domain"
)

const statsCollection = "stats"

type StatRepository struct {
	col *mongo.Collection
}

func NewStatRepository(db *mongo.Database) *StatRepository {
	return &StatRepository{col: db.Collection(statsCollection)}
}

// Create inserts a stat. A repeated idempotency key yields domain.ErrDuplicateStat.
func (r *StatRepository) Create(ctx context.Context, s *domain.Stat) (*domain.Stat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *s
	doc.ID = ""
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateStat
		}
		return nil, fmt.Errorf("insert stat: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid.Hex()
	}
	return &doc, nil
}

// FindByIdempotencyKey retrieves the stat that was recorded with the given key.
func (r *StatRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Stat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc statDocument
	err := r.col.FindOne(ctx, bson.M{"idempotency_key": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStatNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// Latest returns up to limit stats ordered by date, newest first.
func (r *StatRepository) Latest(ctx context.Context, limit int) ([]*domain.Stat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []statDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domain.Stat, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// DailyJumps sums jumps per UTC calendar day, oldest day first.
func (r *StatRepository) DailyJumps(ctx context.Context) ([]domain.DailyJumps, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$date"},
				{Key: "timezone", Value: "UTC"},
			}}}},
			{Key: "jumps", Value: bson.D{{Key: "$sum", Value: "$jumps"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []domain.DailyJumps{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the stats collection.
func (r *StatRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "player_id", Value: 1}}},
		{
			Keys: bson.D{{Key: "idempotency_key", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$type": "string"}}),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// statDocument mirrors domain.Stat with a native ObjectID.
type statDocument struct {
	ID             primitive.ObjectID `bson:"_id"`
	PlayerID       string             `bson:"player_id"`
	PlayerName     string             `bson:"player_name"`
	Jumps          int                `bson:"jumps"`
	PipesPassed    int                `bson:"pipes_passed"`
	GameMode       string             `bson:"game_mode"`
	Date           time.Time          `bson:"date"`
	IdempotencyKey string             `bson:"idempotency_key,omitempty"`
}

func (d *statDocument) toDomain() *domain.Stat {
	return &domain.Stat{
		ID:             d.ID.Hex(),
		PlayerID:       d.PlayerID,
		PlayerName:     d.PlayerName,
		Jumps:          d.Jumps,
		PipesPassed:    d.PipesPassed,
		GameMode:       d.GameMode,
		Date:           d.Date.UTC(),
		IdempotencyKey: d.IdempotencyKey,
	}
}
