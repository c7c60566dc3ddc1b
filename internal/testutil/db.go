package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TestMongoEnv names the env var holding the Mongo URI for store tests.
// Tests that need a database skip when it is unset.
const TestMongoEnv = "PRAXIS_TEST_MONGO_URI"

// SetupTestDB connects to the test Mongo instance and returns a
// per-test database that is dropped on cleanup. Skips the test when
// PRAXIS_TEST_MONGO_URI is not set.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv(TestMongoEnv)
	if uri == "" {
		t.Skipf("%s not set; skipping database test", TestMongoEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect to test mongo: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("ping test mongo: %v", err)
	}

	dbName := fmt.Sprintf("praxis_test_%d", time.Now().UnixNano())
	db := client.Database(dbName)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return db
}

// TestContext returns a context with the standard test deadline.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}
