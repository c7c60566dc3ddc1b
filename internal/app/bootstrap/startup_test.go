// internal/app/bootstrap/startup_test.go
package bootstrap

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/praxishq/praxis/internal/domain/models"
	"github.com/praxishq/praxis/internal/testutil"
)

func TestEnsureAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}

	if err := ensureAdmin(ctx, deps, "admin@test.example", zap.NewNop()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"email": "admin@test.example"}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find created user: %v", err)
	}
	if user.Role != "admin" {
		t.Errorf("role = %q, want admin", user.Role)
	}
	if user.Status != "active" {
		t.Errorf("status = %q, want active", user.Status)
	}
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	existing := f.CreateStudent(ctx, "Future Admin", "promote@test.example")

	deps := DBDeps{MongoDatabase: db}
	if err := ensureAdmin(ctx, deps, "promote@test.example", zap.NewNop()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find user: %v", err)
	}
	if user.Role != "admin" {
		t.Errorf("role = %q, want admin", user.Role)
	}
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	for i := 0; i < 2; i++ {
		if err := ensureAdmin(ctx, deps, "repeat@test.example", zap.NewNop()); err != nil {
			t.Fatalf("ensureAdmin run %d failed: %v", i+1, err)
		}
	}

	n, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": "repeat@test.example"})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("got %d admin users, want 1", n)
	}
}
