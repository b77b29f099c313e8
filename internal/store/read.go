package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/page"
)

// CountExperiments returns the number of experiments matching c.
func (s *Store) CountExperiments(ctx context.Context, c ExperimentCriteria) (n int, err error) {
	defer func(start time.Time) { s.observe("count_experiments", start, err) }(time.Now())

	query, params, err := s.compiler.Compile(experimentQuery(c).Count())
	if err != nil {
		return 0, fmt.Errorf("compile experiment count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, query, params...).Scan(&n); err != nil {
		return 0, apperr.StoreFailure("count experiments", err)
	}
	return n, nil
}

// FindExperiments returns the requested page of experiments matching c,
// ordered by URI, with their linked projects, variables and sensors.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) FindExperiments(ctx context.Context, c ExperimentCriteria) (exps []Experiment, err error) {
	defer func(start time.Time) { s.observe("find_experiments", start, err) }(time.Now())

	query, params, err := s.compiler.Compile(experimentQuery(c))
	if err != nil {
		return nil, fmt.Errorf("compile experiment search: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, apperr.StoreFailure("query experiments", err)
	}
	defer rows.Close()

	exps = []Experiment{}
	for rows.Next() {
		e, err := scanExperiment(rows)
		if err != nil {
			return nil, apperr.StoreFailure("scan experiment", err)
		}
		exps = append(exps, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StoreFailure("iterate experiments", err)
	}
	rows.Close()

	for i := range exps {
		if err := s.loadLinks(ctx, &exps[i]); err != nil {
			return nil, err
		}
	}
	return exps, nil
}

// GetExperiment returns one experiment by URI.
func (s *Store) GetExperiment(ctx context.Context, uri string) (Experiment, error) {
	exps, err := s.FindExperiments(ctx, ExperimentCriteria{URI: uri, Page: page.Request{PageSize: 1}})
	if err != nil {
		return Experiment{}, err
	}
	if len(exps) == 0 {
		return Experiment{}, apperr.NotFound(uri, "experiment not found")
	}
	return exps[0], nil
}

// ExperimentVariables returns the variables linked to an experiment.
func (s *Store) ExperimentVariables(ctx context.Context, uri string) ([]string, error) {
	return s.readLinks(ctx, "experiment_variables", "variable_uri", uri)
}

// ExperimentSensors returns the sensors linked to an experiment.
func (s *Store) ExperimentSensors(ctx context.Context, uri string) ([]string, error) {
	return s.readLinks(ctx, "experiment_sensors", "sensor_uri", uri)
}

func (s *Store) loadLinks(ctx context.Context, e *Experiment) error {
	var err error
	if e.Projects, err = s.readLinks(ctx, "experiment_projects", "project_uri", e.URI); err != nil {
		return err
	}
	if e.Variables, err = s.ExperimentVariables(ctx, e.URI); err != nil {
		return err
	}
	if e.Sensors, err = s.ExperimentSensors(ctx, e.URI); err != nil {
		return err
	}
	return nil
}

// readLinks returns the linked URIs of one experiment from a link table.
// table and column are package constants, never caller input.
func (s *Store) readLinks(ctx context.Context, table, column, uri string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE experiment_uri = ?
		ORDER BY %s COLLATE BINARY ASC
	`, column, table, column), uri)
	if err != nil {
		return nil, apperr.StoreFailure("query "+table, err)
	}
	defer rows.Close()

	links := []string{}
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, apperr.StoreFailure("scan "+table, err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StoreFailure("iterate "+table, err)
	}
	return links, nil
}

// experimentExists reports whether uri names a stored experiment.
func experimentExists(ctx context.Context, q queryRower, uri string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM experiments WHERE uri = ?", uri).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperr.StoreFailure("check experiment", err)
	}
	return true, nil
}

// queryRower is implemented by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanExperiment reads one row selected with experimentColumns.
func scanExperiment(rows *sql.Rows) (Experiment, error) {
	var e Experiment
	err := rows.Scan(
		&e.Alias,
		&e.Campaign,
		&e.Comment,
		&e.CropSpecies,
		&e.EndDate,
		&e.Field,
		&e.Keywords,
		&e.Objective,
		&e.Place,
		&e.StartDate,
		&e.URI,
	)
	if err != nil {
		return Experiment{}, err
	}
	return e, nil
}
