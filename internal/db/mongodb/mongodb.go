package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/promptbench/promptbench/internal/db"
	"github.com/promptbench/promptbench/internal/models"
)

// MongoDB implements the db.RunStore interface for MongoDB. Benchmark
// runs are document-shaped, which is why they live here rather than in
// the relational store.
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	config   *models.Config
}

const collRuns = "benchmark_runs"

// New creates a new MongoDB run store instance
func New(config *models.Config) (*MongoDB, error) {
	return &MongoDB{
		config: config,
	}, nil
}

// Connect establishes connection to MongoDB
func (m *MongoDB) Connect(ctx context.Context) error {
	clientOptions := options.Client().ApplyURI(m.config.URI)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.client = client
	m.database = client.Database(m.config.Database)

	if err := m.createIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// Disconnect closes the MongoDB connection
func (m *MongoDB) Disconnect(ctx context.Context) error {
	if m.client != nil {
		return m.client.Disconnect(ctx)
	}
	return nil
}

// Ping checks the database connection
func (m *MongoDB) Ping(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("not connected to database")
	}
	return m.client.Ping(ctx, nil)
}

// createIndexes creates indexes needed by the leaderboard queries
func (m *MongoDB) createIndexes(ctx context.Context) error {
	runIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "model_ids", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
	}

	_, err := m.database.Collection(collRuns).Indexes().CreateMany(ctx, runIndexes)
	if err != nil {
		return fmt.Errorf("failed to create run indexes: %w", err)
	}

	return nil
}

// CreateRun stores a finalized benchmark run. Runs are append-only;
// a duplicate id is an error.
func (m *MongoDB) CreateRun(ctx context.Context, run *models.BenchmarkRun) error {
	_, err := m.database.Collection(collRuns).InsertOne(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to insert benchmark run: %w", err)
	}
	return nil
}

// GetRun retrieves a benchmark run by ID
func (m *MongoDB) GetRun(ctx context.Context, id string) (*models.BenchmarkRun, error) {
	var run models.BenchmarkRun
	err := m.database.Collection(collRuns).FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("benchmark run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get benchmark run: %w", err)
	}
	return &run, nil
}

// ListRuns lists benchmark runs matching the filter, newest first
func (m *MongoDB) ListRuns(ctx context.Context, filter db.RunFilter) ([]*models.BenchmarkRun, error) {
	query := bson.M{}
	if filter.ModelID != "" {
		query["model_ids"] = filter.ModelID
	}
	if filter.StartTime != nil || filter.EndTime != nil {
		timeQuery := bson.M{}
		if filter.StartTime != nil {
			timeQuery["$gte"] = *filter.StartTime
		}
		if filter.EndTime != nil {
			timeQuery["$lte"] = *filter.EndTime
		}
		query["timestamp"] = timeQuery
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := m.database.Collection(collRuns).Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list benchmark runs: %w", err)
	}
	defer cursor.Close(ctx)

	var runs []*models.BenchmarkRun
	for cursor.Next(ctx) {
		var run models.BenchmarkRun
		if err := cursor.Decode(&run); err != nil {
			return nil, fmt.Errorf("failed to decode benchmark run: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, cursor.Err()
}

// CountRuns returns the total number of stored runs
func (m *MongoDB) CountRuns(ctx context.Context) (int, error) {
	count, err := m.database.Collection(collRuns).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count benchmark runs: %w", err)
	}
	return int(count), nil
}
