package store

import (
	"fmt"
	"regexp"
	"time"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/page"
	"github.com/niio972/phis-ws/internal/rdf"
)

// DateLayout is the storage and query format of experiment dates.
const DateLayout = "2006-01-02"

// Experiment is one experiment's metadata.
type Experiment struct {
	URI         string   `json:"uri" yaml:"uri"`
	StartDate   string   `json:"startDate" yaml:"startDate"`
	EndDate     string   `json:"endDate" yaml:"endDate"`
	Field       string   `json:"field,omitempty" yaml:"field"`
	Campaign    string   `json:"campaign,omitempty" yaml:"campaign"`
	Place       string   `json:"place,omitempty" yaml:"place"`
	Alias       string   `json:"alias,omitempty" yaml:"alias"`
	Comment     string   `json:"comment,omitempty" yaml:"comment"`
	Keywords    string   `json:"keywords,omitempty" yaml:"keywords"`
	Objective   string   `json:"objective,omitempty" yaml:"objective"`
	CropSpecies string   `json:"cropSpecies,omitempty" yaml:"cropSpecies"`
	Projects    []string `json:"projects" yaml:"projects"`
	Variables   []string `json:"variables" yaml:"variables"`
	Sensors     []string `json:"sensors" yaml:"sensors"`
}

var campaignPattern = regexp.MustCompile(`^[0-9]{4}$`)

// Validate checks the fields a caller supplies on create or update.
func (e Experiment) Validate() error {
	if e.URI != "" {
		if err := rdf.ValidateIRI(e.URI); err != nil {
			return apperr.Validation("uri", "%v", err)
		}
	}
	start, err := parseDate("startDate", e.StartDate)
	if err != nil {
		return err
	}
	end, err := parseDate("endDate", e.EndDate)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return apperr.Validation(e.URI, "endDate %s is before startDate %s", e.EndDate, e.StartDate)
	}
	if e.Campaign != "" && !campaignPattern.MatchString(e.Campaign) {
		return apperr.Validation("campaign", "campaign %q is not a year (YYYY)", e.Campaign)
	}
	for _, p := range e.Projects {
		if err := rdf.ValidateIRI(p); err != nil {
			return apperr.Validation("projects", "%v", err)
		}
	}
	return nil
}

func parseDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperr.Validation(name, "%s is required", name)
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, apperr.Validation(name, "%s %q is not a date (YYYY-MM-DD)", name, value)
	}
	return t, nil
}

// ExperimentCriteria filters an experiment search. Empty fields are
// unconstrained.
type ExperimentCriteria struct {
	URI        string
	ProjectURI string
	StartDate  string // experiments starting on or after
	EndDate    string // experiments ending on or before
	Field      string
	Campaign   string
	Place      string
	Alias      string
	Keywords   string
	Page       page.Request
}

// Validate checks identifiers, dates and paging.
func (c ExperimentCriteria) Validate() error {
	for _, f := range []struct{ name, iri string }{
		{"uri", c.URI},
		{"projectUri", c.ProjectURI},
	} {
		if f.iri == "" {
			continue
		}
		if err := rdf.ValidateIRI(f.iri); err != nil {
			return apperr.Validation(f.name, "%v", err)
		}
	}
	for _, f := range []struct{ name, date string }{
		{"startDate", c.StartDate},
		{"endDate", c.EndDate},
	} {
		if f.date == "" {
			continue
		}
		if _, err := parseDate(f.name, f.date); err != nil {
			return err
		}
	}
	if c.Campaign != "" && !campaignPattern.MatchString(c.Campaign) {
		return apperr.Validation("campaign", "campaign %q is not a year (YYYY)", c.Campaign)
	}
	if err := c.Page.Validate(); err != nil {
		return fmt.Errorf("experiment criteria: %w", err)
	}
	return nil
}
