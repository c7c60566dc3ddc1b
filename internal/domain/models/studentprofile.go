// internal/domain/models/studentprofile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StudentProfile holds the optional, student-authored profile fields.
// Every field is independently present or absent; completeness is
// evaluated field by field, never enforced on write.
type StudentProfile struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`

	// AvatarURL is the primary profile image; PhotoURL is the legacy
	// alternate image field. Either satisfies the picture check.
	AvatarURL string `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	PhotoURL  string `bson:"photo_url,omitempty" json:"photo_url,omitempty"`

	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
	Bio   string `bson:"bio,omitempty" json:"bio,omitempty"`

	Skills     []string          `bson:"skills,omitempty" json:"skills,omitempty"`
	Education  []EducationEntry  `bson:"education,omitempty" json:"education,omitempty"`
	Experience []ExperienceEntry `bson:"experience,omitempty" json:"experience,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// EducationEntry is one row of a student's education history.
type EducationEntry struct {
	Institution string `bson:"institution" json:"institution"`
	Degree      string `bson:"degree,omitempty" json:"degree,omitempty"`
	Field       string `bson:"field,omitempty" json:"field,omitempty"`
	StartYear   int    `bson:"start_year,omitempty" json:"start_year,omitempty"`
	EndYear     int    `bson:"end_year,omitempty" json:"end_year,omitempty"`
}

// ExperienceEntry is one row of a student's work history.
type ExperienceEntry struct {
	Company string `bson:"company" json:"company"`
	Title   string `bson:"title,omitempty" json:"title,omitempty"`
	Summary string `bson:"summary,omitempty" json:"summary,omitempty"`
	Start   string `bson:"start,omitempty" json:"start,omitempty"`
	End     string `bson:"end,omitempty" json:"end,omitempty"`
}
