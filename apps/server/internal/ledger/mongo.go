package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultMongoDatabase = "wolfsim"

// MongoService keeps game headers in "games" (keyed by game id) and
// envelopes in "rounds".
type MongoService struct {
	client *mongo.Client
	games  *mongo.Collection
	rounds *mongo.Collection
}

type mongoGame struct {
	GameID      string    `bson:"_id"`
	Seed        int64     `bson:"seed"`
	Players     int       `bson:"players"`
	Rounds      int       `bson:"rounds"`
	Status      string    `bson:"status"`
	Winner      string    `bson:"winner"`
	SummaryJSON string    `bson:"summary_json"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

type mongoRound struct {
	GameID      string    `bson:"game_id"`
	Seq         int64     `bson:"seq"`
	EventType   string    `bson:"event_type"`
	EnvelopeB64 string    `bson:"envelope_b64"`
	CreatedAt   time.Time `bson:"created_at"`
}

func NewMongoServiceFromEnv() (*MongoService, error) {
	uri := strings.TrimSpace(os.Getenv("MONGODB_URI"))
	if uri == "" {
		return nil, fmt.Errorf("MONGODB_URI environment variable not set")
	}
	dbName := strings.TrimSpace(os.Getenv("MONGODB_DATABASE"))
	if dbName == "" {
		dbName = defaultMongoDatabase
	}
	return NewMongoService(uri, dbName)
}

func NewMongoService(uri, dbName string) (*MongoService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	db := client.Database(dbName)
	s := &MongoService{
		client: client,
		games:  db.Collection("games"),
		rounds: db.Collection("rounds"),
	}
	_, err = s.rounds.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "game_id", Value: 1}, {Key: "seq", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoService) SaveGame(ctx context.Context, game GameRecord) error {
	if err := validateGame(game); err != nil {
		return err
	}
	summary, err := json.Marshal(game.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary for %s: %w", game.GameID, err)
	}
	now := nowUTC()
	update := bson.M{
		"$set": bson.M{
			"seed":         game.Seed,
			"players":      game.Players,
			"rounds":       game.Rounds,
			"status":       string(game.Status),
			"winner":       game.Winner,
			"summary_json": string(summary),
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	_, err = s.games.UpdateOne(ctx, bson.M{"_id": game.GameID}, update, options.Update().SetUpsert(true))
	return err
}

func (s *MongoService) AppendRound(ctx context.Context, gameID string, item RoundItem) error {
	if err := validateRound(gameID, item); err != nil {
		return err
	}
	n, err := s.games.CountDocuments(ctx, bson.M{"_id": gameID})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("append round to %s: %w", gameID, ErrNotFound)
	}
	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = nowUTC()
	}
	filter := bson.M{"game_id": gameID, "seq": int64(item.Seq)}
	insert := bson.M{
		"event_type":   item.EventType,
		"envelope_b64": item.EnvelopeB64,
		"created_at":   createdAt,
	}
	_, err = s.rounds.UpdateOne(ctx, filter, bson.M{"$setOnInsert": insert}, options.Update().SetUpsert(true))
	return err
}

func (s *MongoService) ListRecent(ctx context.Context, limit int) ([]GameRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(clampLimit(limit)))
	cursor, err := s.games.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []mongoGame
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]GameRecord, 0, len(docs))
	for _, d := range docs {
		g := GameRecord{
			GameID:    d.GameID,
			Seed:      d.Seed,
			Players:   d.Players,
			Rounds:    d.Rounds,
			Status:    Status(d.Status),
			Winner:    d.Winner,
			CreatedAt: d.CreatedAt.UTC(),
			UpdatedAt: d.UpdatedAt.UTC(),
		}
		if d.SummaryJSON != "" && d.SummaryJSON != "null" {
			if err := json.Unmarshal([]byte(d.SummaryJSON), &g.Summary); err != nil {
				return nil, fmt.Errorf("decode summary for %s: %w", d.GameID, err)
			}
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *MongoService) GetRounds(ctx context.Context, gameID string) ([]RoundItem, error) {
	var game mongoGame
	if err := s.games.FindOne(ctx, bson.M{"_id": gameID}).Decode(&game); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cursor, err := s.rounds.Find(ctx, bson.M{"game_id": gameID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []mongoRound
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]RoundItem, 0, len(docs))
	for _, d := range docs {
		out = append(out, RoundItem{
			Seq:         uint64(d.Seq),
			EventType:   d.EventType,
			EnvelopeB64: d.EnvelopeB64,
			CreatedAt:   d.CreatedAt.UTC(),
		})
	}
	return out, nil
}
