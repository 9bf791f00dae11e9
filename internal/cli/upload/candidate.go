package upload

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Categories a report can be filed under; the first one is the default.
var Categories = []string{"lab", "imaging", "prescription"}

// DateLayout is the expected format of DateTaken.
const DateLayout = "2006-01-02"

// Candidate is one file plus the metadata entered for it.
type Candidate struct {
	File      File
	Title     string
	DateTaken string
	Category  string
	Notes     string
}

// ValidationError lists every problem found in a Candidate.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid upload: " + strings.Join(e.Problems, "; ")
}

// Validate checks c without touching the network and fills in the default category.
func (c *Candidate) Validate() error {
	var problems []string
	if c.File == nil {
		problems = append(problems, "please select a file (PDF or image)")
	}
	c.Title = strings.TrimSpace(c.Title)
	c.DateTaken = strings.TrimSpace(c.DateTaken)
	if c.Title == "" || c.DateTaken == "" {
		problems = append(problems, "title and date are required")
	} else if _, err := time.Parse(DateLayout, c.DateTaken); err != nil {
		problems = append(problems, fmt.Sprintf("date %q must be YYYY-MM-DD", c.DateTaken))
	}
	c.Category = strings.ToLower(strings.TrimSpace(c.Category))
	if c.Category == "" {
		c.Category = Categories[0]
	} else if !validCategory(c.Category) {
		problems = append(problems, fmt.Sprintf("category must be one of %s", strings.Join(Categories, ", ")))
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func validCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
