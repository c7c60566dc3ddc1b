// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents students, organization users, and admins.
//
// NOTE:
//   - Student profile data is not embedded on User.
//     Use the student_profiles collection keyed by user_id.
//   - Organization users carry OrganizationID pointing at the
//     organizations collection.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	AuthMethod string             `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // password | google
	Role       string             `bson:"role" json:"role"`                                   // student | organization | admin
	Status     string             `bson:"status,omitempty" json:"status,omitempty"`           // active | disabled

	// PasswordHash is set only for auth_method == "password".
	PasswordHash *string `bson:"password_hash,omitempty" json:"-"`

	// GoogleID is the Google account subject, set only for auth_method == "google".
	GoogleID *string `bson:"google_id,omitempty" json:"-"`

	OrganizationID *primitive.ObjectID `bson:"organization_id,omitempty" json:"organization_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
