// Package appnotes extracts structured fields from the free-text notes
// blob attached to an application. Each field is matched independently;
// a pattern that does not match simply leaves its field absent. The
// input is human-authored text of variable shape, so this stays a
// best-effort extractor, not a grammar.
package appnotes

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/praxishq/praxis/internal/domain/models"
)

var (
	// Block fields capture from their label up to the next blank line
	// or end of input.
	reCoverLetter = regexp.MustCompile(`(?is)cover letter:[ \t]*(.+?)(?:\n[ \t]*\n|\z)`)
	reWhyApplying = regexp.MustCompile(`(?is)why applying:[ \t]*(.+?)(?:\n[ \t]*\n|\z)`)

	// Line fields capture the remainder of their own line.
	reStartDate = regexp.MustCompile(`(?im)^preferred start(?: date)?:[ \t]*(.+)$`)
	reDuration  = regexp.MustCompile(`(?im)^duration:[ \t]*(.+)$`)
	reAddress   = regexp.MustCompile(`(?im)^address:[ \t]*(.+)$`)

	// The education triple only matches when institution, degree, and
	// year all appear on one line in the
	// "Education: <institution>, <degree> (Year <n>)" shape. Looser
	// variants deliberately do not match.
	reEducation = regexp.MustCompile(`(?im)^education:[ \t]*([^,\n]+),[ \t]*([^(\n]+?)[ \t]*\(year[ \t]+(\d+)\)[ \t]*$`)

	// The personal pair requires date of birth and gender together.
	rePersonal = regexp.MustCompile(`(?im)^date of birth:[ \t]*([0-9][0-9/.-]*)[ \t]*\|[ \t]*gender:[ \t]*([A-Za-z]+)[ \t]*$`)
)

// Parse extracts whatever fields it can from text. It never fails; an
// empty or unmatchable input yields the zero value.
func Parse(text string) models.ApplicationDetails {
	var d models.ApplicationDetails

	d.CoverLetter = capture(reCoverLetter, text)
	d.WhyApplying = capture(reWhyApplying, text)
	d.PreferredStart = capture(reStartDate, text)
	d.Duration = capture(reDuration, text)
	d.Address = capture(reAddress, text)

	if m := reEducation.FindStringSubmatch(text); m != nil {
		year, err := strconv.Atoi(m[3])
		if err == nil {
			d.Education = &models.EducationLine{
				Institution: strings.TrimSpace(m[1]),
				Degree:      strings.TrimSpace(m[2]),
				YearOfStudy: year,
			}
		}
	}

	if m := rePersonal.FindStringSubmatch(text); m != nil {
		d.Personal = &models.PersonalDetails{
			DateOfBirth: strings.TrimSpace(m[1]),
			Gender:      strings.ToLower(strings.TrimSpace(m[2])),
		}
	}

	return d
}

func capture(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
