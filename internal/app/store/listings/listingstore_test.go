package listingstore_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	listingstore "github.com/praxishq/praxis/internal/app/store/listings"
	"github.com/praxishq/praxis/internal/domain/models"
	"github.com/praxishq/praxis/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := listingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Listing{
		OrganizationID: primitive.NewObjectID(),
		Title:          "Backend Intern",
		Location:       "Springfield",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.Ref == "" {
		t.Error("expected external ref to be assigned")
	}
	if created.TitleCI == "" {
		t.Error("expected TitleCI to be set")
	}
	if created.Status != models.ListingOpen {
		t.Errorf("status = %q, want open", created.Status)
	}
}

func TestStore_GetByRef(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := listingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Listing{
		OrganizationID: primitive.NewObjectID(),
		Title:          "Find Me",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := store.GetByRef(ctx, created.Ref)
	if err != nil {
		t.Fatalf("GetByRef failed: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID: got %v, want %v", found.ID, created.ID)
	}

	if _, err := store.GetByRef(ctx, "missing-ref"); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_ListOpenExcludesClosed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := listingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgID := primitive.NewObjectID()
	open, err := store.Create(ctx, models.Listing{OrganizationID: orgID, Title: "Open Role"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	closed, err := store.Create(ctx, models.Listing{OrganizationID: orgID, Title: "Closed Role"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.SetStatus(ctx, closed.ID, models.ListingClosed); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	listings, err := store.ListOpen(ctx, 50)
	if err != nil {
		t.Fatalf("ListOpen failed: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("got %d open listings, want 1", len(listings))
	}
	if listings[0].ID != open.ID {
		t.Errorf("got %v, want %v", listings[0].ID, open.ID)
	}
}

func TestStore_ListByOrganization(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := listingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgID := primitive.NewObjectID()
	otherOrg := primitive.NewObjectID()

	for _, title := range []string{"One", "Two"} {
		if _, err := store.Create(ctx, models.Listing{OrganizationID: orgID, Title: title}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if _, err := store.Create(ctx, models.Listing{OrganizationID: otherOrg, Title: "Elsewhere"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	listings, err := store.ListByOrganization(ctx, orgID, 50)
	if err != nil {
		t.Fatalf("ListByOrganization failed: %v", err)
	}
	if len(listings) != 2 {
		t.Errorf("got %d listings, want 2", len(listings))
	}
	for _, l := range listings {
		if l.OrganizationID != orgID {
			t.Errorf("listing %q belongs to %v", l.Title, l.OrganizationID)
		}
	}
}
