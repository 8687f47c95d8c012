package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gangland/server/gangland/config"
	"github.com/gangland/server/internal/clock"
	"github.com/gangland/server/internal/domain/engine"
	"github.com/gangland/server/internal/domain/tables"
)

// Source yields legacy player documents one at a time.
type Source interface {
	EachPlayer(ctx context.Context, fn func(LegacyPlayer) error) error
}

// Sink writes converted players and reports how many rows were new.
type Sink interface {
	ImportPlayers(ctx context.Context, ps []engine.Player) (int64, error)
}

type Migrator struct {
	source    Source
	sink      Sink
	tables    *tables.Tables
	clock     clock.Clock
	batchSize int
	dryRun    bool
	stats     Stats
}

func NewMigrator(source Source, sink Sink, t *tables.Tables, clk clock.Clock) *Migrator {
	return &Migrator{
		source:    source,
		sink:      sink,
		tables:    t,
		clock:     clk,
		batchSize: config.ImportBatchSize,
	}
}

// SetBatchSize overrides how many converted players are buffered per write.
func (m *Migrator) SetBatchSize(size int) {
	if size > 0 {
		m.batchSize = size
	}
}

// SetDryRun converts every document without writing anything.
func (m *Migrator) SetDryRun(v bool) { m.dryRun = v }

func (m *Migrator) Stats() Stats { return m.stats }

// MigratePlayers streams every legacy document through the converter and
// writes the results in batches. Documents that cannot be converted are
// logged and skipped.
func (m *Migrator) MigratePlayers(ctx context.Context) (Stats, error) {
	now := m.clock.Now()
	m.stats = Stats{Start: now}
	logProgress("Starting legacy player import")

	batch := make([]engine.Player, 0, m.batchSize)
	flush := func() error {
		if len(batch) == 0 || m.dryRun {
			batch = batch[:0]
			return nil
		}
		n, err := m.sink.ImportPlayers(ctx, batch)
		m.stats.Written += n
		if err != nil {
			return fmt.Errorf("failed to write player batch: %w", err)
		}
		logProgress(fmt.Sprintf("Imported %d/%d players", m.stats.Written, m.stats.Read))
		batch = batch[:0]
		return nil
	}

	err := m.source.EachPlayer(ctx, func(lp LegacyPlayer) error {
		m.stats.Read++
		p, adjusted, err := convertPlayer(lp, m.tables, now)
		if err != nil {
			m.stats.Skipped++
			slog.Warn("Skipping legacy player",
				slog.String("type", "db"),
				slog.String("object_id", lp.ObjectID.Hex()),
				slog.String("error", err.Error()))
			return nil
		}
		if adjusted {
			m.stats.Adjusted++
			slog.Debug("Adjusted legacy player",
				slog.String("type", "db"),
				slog.String("player", p.ID))
		}
		batch = append(batch, p)
		if len(batch) >= m.batchSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	m.stats.Duration = m.clock.Now().Sub(m.stats.Start)
	if err != nil {
		return m.stats, err
	}

	slog.Info("Legacy player import finished",
		slog.String("type", "db"),
		slog.Int("read", m.stats.Read),
		slog.Int("skipped", m.stats.Skipped),
		slog.Int("adjusted", m.stats.Adjusted),
		slog.Int64("written", m.stats.Written),
		slog.Bool("dry_run", m.dryRun))
	return m.stats, nil
}

func logProgress(message string) {
	slog.Info(message, slog.String("type", "db"), slog.String("service", "Gangland Migration"))
}

// MongoSource reads legacy players from a live Mongo collection.
type MongoSource struct {
	coll *mongo.Collection
}

func NewMongoSource(client *mongo.Client, database, collection string) *MongoSource {
	return &MongoSource{coll: client.Database(database).Collection(collection)}
}

// ConnectMongo dials uri and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, config.NetworkDialTimeout*time.Duration(config.DialRetries))
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

func (s *MongoSource) EachPlayer(ctx context.Context, fn func(LegacyPlayer) error) error {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return fmt.Errorf("failed to query players: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var lp LegacyPlayer
		if err := cur.Decode(&lp); err != nil {
			slog.Warn("Failed to decode legacy player",
				slog.String("type", "db"),
				slog.String("error", err.Error()))
			continue
		}
		if err := fn(lp); err != nil {
			return err
		}
	}
	return cur.Err()
}
