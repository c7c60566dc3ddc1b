package rolestore_test

import (
	"context"
	"errors"
	"testing"

	rolestore "github.com/praxishq/praxis/internal/app/store/roles"
	"github.com/praxishq/praxis/internal/app/system/identity"
	"github.com/praxishq/praxis/internal/testutil"
)

func TestStore_GetRoleRecord_Student(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := rolestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateStudent(ctx, "Ada Lovelace", "ada@example.com")

	rec, err := store.GetRoleRecord(ctx, user.ID.Hex())
	if err != nil {
		t.Fatalf("GetRoleRecord failed: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a role record")
	}
	if rec.UserType != identity.UserTypeStudent {
		t.Errorf("UserType = %q, want student", rec.UserType)
	}
	if rec.UserID != user.ID.Hex() {
		t.Errorf("UserID = %q, want %q", rec.UserID, user.ID.Hex())
	}
}

func TestStore_GetRoleRecord_Organization(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := rolestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateStudent(ctx, "Owner", "owner@example.com")
	org := fixtures.CreateOrganization(ctx, "Acme", owner.ID)
	user := fixtures.CreateOrganizationUser(ctx, "Org User", "org@example.com", org.ID)

	rec, err := store.GetRoleRecord(ctx, user.ID.Hex())
	if err != nil {
		t.Fatalf("GetRoleRecord failed: %v", err)
	}
	if rec == nil || rec.UserType != identity.UserTypeOrganization {
		t.Errorf("rec = %+v, want organization record", rec)
	}
}

func TestStore_GetRoleRecord_NoRecord(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := rolestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cases := []struct {
		name   string
		userID string
	}{
		{"invalid object id", "not-an-id"},
		{"missing user", "64b7f0000000000000000000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := store.GetRoleRecord(ctx, tc.userID)
			if err != nil {
				t.Fatalf("GetRoleRecord failed: %v", err)
			}
			if rec != nil {
				t.Errorf("rec = %+v, want nil", rec)
			}
		})
	}

	// Admins have no reconciler mapping either.
	admin := fixtures.CreateAdmin(ctx, "Admin", "admin@example.com")
	rec, err := store.GetRoleRecord(ctx, admin.ID.Hex())
	if err != nil {
		t.Fatalf("GetRoleRecord failed: %v", err)
	}
	if rec != nil {
		t.Errorf("admin rec = %+v, want nil", rec)
	}
}

func TestStore_PolicyGuardShortCircuits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateStudent(ctx, "Guarded", "guarded@example.com")

	store := rolestore.New(db).WithPolicyGuard(func(_ context.Context, _ string) error {
		return identity.ErrPolicyRecursion
	})

	rec, err := store.GetRoleRecord(ctx, user.ID.Hex())
	if !errors.Is(err, identity.ErrPolicyRecursion) {
		t.Errorf("err = %v, want ErrPolicyRecursion", err)
	}
	if rec != nil {
		t.Errorf("rec = %+v, want nil", rec)
	}
}
