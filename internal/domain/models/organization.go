// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization is a company account that posts internship listings.
// Includes case/diacritic-insensitive fields for search/sort.
type Organization struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	OwnerUserID primitive.ObjectID `bson:"owner_user_id" json:"owner_user_id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"` // ← always stored
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Industry    string             `bson:"industry,omitempty" json:"industry,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	LocationCI  string             `bson:"location_ci,omitempty" json:"-"` // ← always stored when location set
	Website     string             `bson:"website,omitempty" json:"website,omitempty"`

	// Contact channels. Completeness requires at least one of these.
	ContactEmail string `bson:"contact_email,omitempty" json:"contact_email,omitempty"`
	ContactPhone string `bson:"contact_phone,omitempty" json:"contact_phone,omitempty"`

	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
