// internal/domain/models/listing.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Listing statuses.
const (
	ListingOpen   = "open"
	ListingClosed = "closed"
)

// Listing is an internship posting owned by an organization.
// Ref is the externally visible identifier (UUID); the ObjectID stays
// internal to the database.
type Listing struct {
	ID             primitive.ObjectID `bson:"_id" json:"-"`
	Ref            string             `bson:"ref" json:"ref"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`

	Title      string `bson:"title" json:"title"`
	TitleCI    string `bson:"title_ci" json:"-"`
	Summary    string `bson:"summary,omitempty" json:"summary,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"` // sanitized HTML

	Location   string `bson:"location,omitempty" json:"location,omitempty"`
	LocationCI string `bson:"location_ci,omitempty" json:"-"`
	Remote     bool   `bson:"remote,omitempty" json:"remote,omitempty"`
	Duration   string `bson:"duration,omitempty" json:"duration,omitempty"` // e.g. "12 weeks"
	Paid       bool   `bson:"paid,omitempty" json:"paid,omitempty"`

	Status    string    `bson:"status" json:"status"` // open | closed
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
