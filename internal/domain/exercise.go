package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/net/html"
)

var (
	ErrExerciseNotFound   = errors.New("exercise not found")
	ErrCatalogUnavailable = errors.New("exercise catalog unavailable")
	ErrStaleResponse      = errors.New("catalog response superseded by a newer search")
)

// ExerciseSummary is an exercise from the external catalog
type ExerciseSummary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"` // HTML
	Category    int    `json:"category,omitempty"`
	Equipment   []int  `json:"equipment,omitempty"`
	Muscles     []int  `json:"muscles,omitempty"`
}

// PlainDescription returns the description with markup removed
func (e ExerciseSummary) PlainDescription() string {
	return StripHTML(e.Description)
}

// MuscleGroup is a filter option for catalog searches
type MuscleGroup struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	NameEN  string `json:"name_en,omitempty"`
	IsFront bool   `json:"is_front"`
}

// CatalogStatus is the banner state of the exercise browser: the outcome of the
// user's latest completed catalog call
type CatalogStatus struct {
	Available bool      `json:"available"`
	LastError string    `json:"last_error,omitempty"`
	CheckedAt time.Time `json:"checked_at,omitempty"`
}

// ExerciseQuery is a catalog search. Empty fields don't filter.
type ExerciseQuery struct {
	Term          string
	MuscleGroupID string
}

// ExerciseCatalog is the external exercise database
type ExerciseCatalog interface {
	Search(ctx context.Context, query ExerciseQuery) ([]ExerciseSummary, error)
	MuscleGroups(ctx context.Context) ([]MuscleGroup, error)
	Exercise(ctx context.Context, id int) (*ExerciseSummary, error)
}

// StripHTML flattens an HTML fragment to its text, collapsing whitespace
func StripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			// keep words from adjacent blocks apart
			b.WriteByte(' ')
		}
	}
}
