package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/praxishq/praxis/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateStudent inserts an active student user.
func (f *Fixtures) CreateStudent(ctx context.Context, fullName, email string) models.User {
	return f.createUser(ctx, fullName, email, "student", nil)
}

// CreateOrganizationUser inserts an active organization user scoped to orgID.
func (f *Fixtures) CreateOrganizationUser(ctx context.Context, fullName, email string, orgID primitive.ObjectID) models.User {
	return f.createUser(ctx, fullName, email, "organization", &orgID)
}

// CreateOrganizationOwner inserts an organization user that has not yet
// created a company record, so OrganizationID is unset.
func (f *Fixtures) CreateOrganizationOwner(ctx context.Context, fullName, email string) models.User {
	return f.createUser(ctx, fullName, email, "organization", nil)
}

// CreateAdmin inserts an active admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	return f.createUser(ctx, fullName, email, "admin", nil)
}

func (f *Fixtures) createUser(ctx context.Context, fullName, email, role string, orgID *primitive.ObjectID) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:             primitive.NewObjectID(),
		FullName:       fullName,
		FullNameCI:     text.Fold(fullName),
		Email:          email,
		AuthMethod:     "password",
		Role:           role,
		Status:         "active",
		OrganizationID: orgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateOrganization inserts an active organization owned by ownerID.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string, ownerID primitive.ObjectID) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:           primitive.NewObjectID(),
		OwnerUserID:  ownerID,
		Name:         name,
		NameCI:       text.Fold(name),
		Description:  "Test organization",
		Industry:     "Software",
		Location:     "Test City",
		LocationCI:   text.Fold("Test City"),
		ContactEmail: "contact@test.example",
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateListing inserts an open listing for orgID.
func (f *Fixtures) CreateListing(ctx context.Context, orgID primitive.ObjectID, title string) models.Listing {
	f.t.Helper()

	now := time.Now().UTC()
	listing := models.Listing{
		ID:             primitive.NewObjectID(),
		Ref:            primitive.NewObjectID().Hex(),
		OrganizationID: orgID,
		Title:          title,
		TitleCI:        text.Fold(title),
		Summary:        "Test listing",
		Location:       "Test City",
		LocationCI:     text.Fold("Test City"),
		Duration:       "12 weeks",
		Status:         models.ListingOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := f.db.Collection("listings").InsertOne(ctx, listing); err != nil {
		f.t.Fatalf("failed to create test listing: %v", err)
	}
	return listing
}

// CreateStudentProfile inserts a fully populated profile for userID.
func (f *Fixtures) CreateStudentProfile(ctx context.Context, userID primitive.ObjectID) models.StudentProfile {
	f.t.Helper()

	now := time.Now().UTC()
	profile := models.StudentProfile{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		AvatarURL: "https://cdn.test.example/avatar.png",
		Phone:     "+1 555 0100",
		Bio:       "Test bio",
		Skills:    []string{"Go"},
		Education: []models.EducationEntry{
			{Institution: "Test University", Degree: "BSc", StartYear: 2022},
		},
		Experience: []models.ExperienceEntry{
			{Company: "Test Co", Title: "Intern"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("student_profiles").InsertOne(ctx, profile); err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}
	return profile
}
