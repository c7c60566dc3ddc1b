package organizationstore_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	organizationstore "github.com/praxishq/praxis/internal/app/store/organizations"
	"github.com/praxishq/praxis/internal/domain/models"
	"github.com/praxishq/praxis/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := models.Organization{
		OwnerUserID:  primitive.NewObjectID(),
		Name:         "Acme Robotics",
		Description:  "Robots",
		Industry:     "Manufacturing",
		Location:     "Springfield",
		ContactEmail: "hello@acme.example",
	}

	created, err := store.Create(ctx, org)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.NameCI == "" || created.LocationCI == "" {
		t.Error("expected folded search fields to be set")
	}
	if created.Status != "active" {
		t.Errorf("status = %q, want active", created.Status)
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	org := models.Organization{OwnerUserID: primitive.NewObjectID(), Name: "Acme"}
	if _, err := store.Create(ctx, org); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	dup := models.Organization{OwnerUserID: primitive.NewObjectID(), Name: "ACME"}
	if _, err := store.Create(ctx, dup); err != organizationstore.ErrDuplicateOrganization {
		t.Errorf("expected ErrDuplicateOrganization, got %v", err)
	}
}

func TestStore_GetByOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ownerID := primitive.NewObjectID()
	created, err := store.Create(ctx, models.Organization{OwnerUserID: ownerID, Name: "Owned Co"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := store.GetByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("GetByOwner failed: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID: got %v, want %v", found.ID, created.ID)
	}

	if _, err := store.GetByOwner(ctx, primitive.NewObjectID()); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_Update_PartialLeavesFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Organization{
		OwnerUserID: primitive.NewObjectID(),
		Name:        "Before Co",
		Industry:    "Energy",
		Location:    "Old Town",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	upd := models.Organization{Location: "New Town", ContactPhone: "+1 555 0101"}
	if err := store.Update(ctx, created.ID, upd); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	found, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.Location != "New Town" {
		t.Errorf("Location = %q, want New Town", found.Location)
	}
	if found.ContactPhone != "+1 555 0101" {
		t.Errorf("ContactPhone = %q", found.ContactPhone)
	}
	if found.Industry != "Energy" {
		t.Errorf("Industry should be untouched, got %q", found.Industry)
	}
	if found.Name != "Before Co" {
		t.Errorf("Name should be untouched, got %q", found.Name)
	}
}

func TestStore_ExistsByNameCI(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Organization{OwnerUserID: primitive.NewObjectID(), Name: "Exists Co"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	exists, err := store.ExistsByNameCI(ctx, created.NameCI)
	if err != nil {
		t.Fatalf("ExistsByNameCI failed: %v", err)
	}
	if !exists {
		t.Error("expected true for existing name")
	}

	exists, err = store.ExistsByNameCI(ctx, "nope co")
	if err != nil {
		t.Fatalf("ExistsByNameCI failed: %v", err)
	}
	if exists {
		t.Error("expected false for unknown name")
	}
}
