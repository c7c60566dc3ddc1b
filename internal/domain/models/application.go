// internal/domain/models/application.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Application statuses.
const (
	ApplicationSubmitted = "submitted"
	ApplicationReviewing = "reviewing"
	ApplicationAccepted  = "accepted"
	ApplicationRejected  = "rejected"
)

// Application is a student's application to a listing. A student may
// apply to a given listing at most once (unique index on
// listing_id + student_id).
type Application struct {
	ID             primitive.ObjectID `bson:"_id" json:"-"`
	Ref            string             `bson:"ref" json:"ref"`
	ListingID      primitive.ObjectID `bson:"listing_id" json:"listing_id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	StudentID      primitive.ObjectID `bson:"student_id" json:"student_id"`

	Status string `bson:"status" json:"status"`

	// Notes is the free-text blob the student composed. Details is the
	// best-effort structured extraction captured at submission time.
	Notes   string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Details *ApplicationDetails `bson:"details,omitempty" json:"details,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ApplicationDetails holds the fields extracted from an application's
// notes blob. Every field is optional; absence means the pattern did
// not match, not that extraction failed.
type ApplicationDetails struct {
	CoverLetter    string           `bson:"cover_letter,omitempty" json:"cover_letter,omitempty"`
	WhyApplying    string           `bson:"why_applying,omitempty" json:"why_applying,omitempty"`
	PreferredStart string           `bson:"preferred_start,omitempty" json:"preferred_start,omitempty"`
	Duration       string           `bson:"duration,omitempty" json:"duration,omitempty"`
	Education      *EducationLine   `bson:"education,omitempty" json:"education,omitempty"`
	Personal       *PersonalDetails `bson:"personal,omitempty" json:"personal,omitempty"`
	Address        string           `bson:"address,omitempty" json:"address,omitempty"`
}

// EducationLine is the education triple extracted from one notes line.
// It is only present when institution, degree, and year all matched.
type EducationLine struct {
	Institution string `bson:"institution" json:"institution"`
	Degree      string `bson:"degree" json:"degree"`
	YearOfStudy int    `bson:"year_of_study" json:"year_of_study"`
}

// PersonalDetails is the date-of-birth/gender pair; only present when
// both appeared together.
type PersonalDetails struct {
	DateOfBirth string `bson:"date_of_birth" json:"date_of_birth"`
	Gender      string `bson:"gender" json:"gender"`
}
