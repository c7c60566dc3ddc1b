// Package completeness classifies profile records as complete or
// incomplete against a fixed required-field table. Evaluation order is
// stable because the UI renders missing items in table order.
package completeness

import (
	"math"
	"strings"

	"github.com/praxishq/praxis/internal/domain/models"
)

// Field identifies one tracked profile field.
type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Verdict is the result of evaluating a record. Missing preserves the
// field table's order.
type Verdict struct {
	IsComplete bool    `json:"is_complete"`
	Missing    []Field `json:"missing_fields"`
}

// Numbers of tracked fields per record shape, for percentage display.
const (
	StudentTrackedFields      = 6
	OrganizationTrackedFields = 5
)

// check pairs a field with the outcome of its presence predicate;
// shared traversal below, per-shape tables in the Evaluate funcs.
type check struct {
	field Field
	ok    bool
}

func verdict(checks []check) Verdict {
	v := Verdict{}
	for _, c := range checks {
		if !c.ok {
			v.Missing = append(v.Missing, c.field)
		}
	}
	v.IsComplete = len(v.Missing) == 0
	return v
}

// Evaluate classifies a student profile. A nil profile yields a single
// sentinel entry, not the full field list. Pure: no I/O, deterministic.
func Evaluate(p *models.StudentProfile) Verdict {
	if p == nil {
		return Verdict{Missing: []Field{{Key: "profile", Label: "Profile not loaded"}}}
	}
	return verdict([]check{
		{Field{"avatar", "Profile picture"}, p.AvatarURL != "" || p.PhotoURL != ""},
		{Field{"phone", "Phone number"}, strings.TrimSpace(p.Phone) != ""},
		{Field{"bio", "Bio"}, strings.TrimSpace(p.Bio) != ""},
		{Field{"skills", "Skills"}, len(p.Skills) > 0},
		{Field{"education", "Education"}, len(p.Education) > 0},
		{Field{"experience", "Experience"}, len(p.Experience) > 0},
	})
}

// EvaluateOrganization classifies an organization record with its own
// field table; the traversal and ordering rules match Evaluate.
func EvaluateOrganization(o *models.Organization) Verdict {
	if o == nil {
		return Verdict{Missing: []Field{{Key: "organization", Label: "Organization not loaded"}}}
	}
	return verdict([]check{
		{Field{"name", "Company name"}, strings.TrimSpace(o.Name) != ""},
		{Field{"description", "Company description"}, strings.TrimSpace(o.Description) != ""},
		{Field{"industry", "Industry"}, strings.TrimSpace(o.Industry) != ""},
		{Field{"location", "Location"}, strings.TrimSpace(o.Location) != ""},
		{Field{"contact", "Contact channel"},
			strings.TrimSpace(o.ContactEmail) != "" || strings.TrimSpace(o.ContactPhone) != ""},
	})
}

// Percentage converts a verdict to a 0-100 progress figure over the
// given number of tracked fields, rounded and clamped.
func Percentage(v Verdict, totalTracked int) int {
	if totalTracked <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(totalTracked-len(v.Missing)) / float64(totalTracked)))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
