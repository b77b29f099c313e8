package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/rdf"
)

// CreateExperiments inserts experiments and their project links in one
// transaction and returns their URIs, in input order.
//
// An experiment without a URI gets one minted from the store prefix and a
// UUIDv7. A URI that is already stored is a validation error and nothing
// is written.
func (s *Store) CreateExperiments(ctx context.Context, exps []Experiment) ([]string, error) {
	for _, e := range exps {
		if err := e.Validate(); err != nil {
			return nil, err
		}
	}

	uris := make([]string, len(exps))
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for i, e := range exps {
			if e.URI == "" {
				id, err := uuid.NewV7()
				if err != nil {
					return fmt.Errorf("mint experiment uri: %w", err)
				}
				e.URI = s.uriPrefix + id.String()
			}

			exists, err := experimentExists(ctx, tx, e.URI)
			if err != nil {
				return err
			}
			if exists {
				return apperr.Validation(e.URI, "experiment already exists")
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO experiments
				(uri, start_date, end_date, field, campaign, place, alias, comment, keywords, objective, crop_species)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				e.URI,
				e.StartDate,
				e.EndDate,
				e.Field,
				e.Campaign,
				e.Place,
				e.Alias,
				e.Comment,
				e.Keywords,
				e.Objective,
				e.CropSpecies,
			); err != nil {
				return apperr.StoreFailure("insert experiment", err)
			}

			if err := replaceLinks(ctx, tx, "experiment_projects", "project_uri", e.URI, e.Projects); err != nil {
				return err
			}
			uris[i] = e.URI
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create experiments: %w", err)
	}
	return uris, nil
}

// UpdateExperiments replaces the metadata and project links of existing
// experiments in one transaction. An unknown URI is a not-found error and
// nothing is written.
func (s *Store) UpdateExperiments(ctx context.Context, exps []Experiment) error {
	for _, e := range exps {
		if e.URI == "" {
			return apperr.Validation("uri", "uri is required to update an experiment")
		}
		if err := e.Validate(); err != nil {
			return err
		}
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, e := range exps {
			res, err := tx.ExecContext(ctx, `
				UPDATE experiments SET
				start_date = ?, end_date = ?, field = ?, campaign = ?, place = ?,
				alias = ?, comment = ?, keywords = ?, objective = ?, crop_species = ?
				WHERE uri = ?
			`,
				e.StartDate,
				e.EndDate,
				e.Field,
				e.Campaign,
				e.Place,
				e.Alias,
				e.Comment,
				e.Keywords,
				e.Objective,
				e.CropSpecies,
				e.URI,
			)
			if err != nil {
				return apperr.StoreFailure("update experiment", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return apperr.StoreFailure("update experiment", err)
			}
			if n == 0 {
				return apperr.NotFound(e.URI, "experiment not found")
			}

			if err := replaceLinks(ctx, tx, "experiment_projects", "project_uri", e.URI, e.Projects); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update experiments: %w", err)
	}
	return nil
}

// LinkVariables replaces the set of variables measured in an experiment.
func (s *Store) LinkVariables(ctx context.Context, uri string, variables []string) error {
	return s.link(ctx, "experiment_variables", "variable_uri", uri, variables)
}

// LinkSensors replaces the set of sensors deployed in an experiment.
func (s *Store) LinkSensors(ctx context.Context, uri string, sensors []string) error {
	return s.link(ctx, "experiment_sensors", "sensor_uri", uri, sensors)
}

func (s *Store) link(ctx context.Context, table, column, uri string, targets []string) error {
	for _, t := range targets {
		if err := rdf.ValidateIRI(t); err != nil {
			return apperr.Validation(column, "%v", err)
		}
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		exists, err := experimentExists(ctx, tx, uri)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound(uri, "experiment not found")
		}
		return replaceLinks(ctx, tx, table, column, uri, targets)
	})
	if err != nil {
		return fmt.Errorf("link %s: %w", table, err)
	}
	return nil
}

// replaceLinks deletes the links of uri in table and inserts targets.
// Duplicates in targets are stored once.
func replaceLinks(ctx context.Context, tx *sql.Tx, table, column, uri string, targets []string) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE experiment_uri = ?", table), uri); err != nil {
		return apperr.StoreFailure("clear "+table, err)
	}

	unique := make(map[string]bool, len(targets))
	for _, t := range targets {
		unique[t] = true
	}
	sorted := make([]string, 0, len(unique))
	for t := range unique {
		sorted = append(sorted, t)
	}
	sort.Strings(sorted)

	stmt := fmt.Sprintf("INSERT INTO %s (experiment_uri, %s) VALUES (?, ?)", table, column)
	for _, t := range sorted {
		if _, err := tx.ExecContext(ctx, stmt, uri, t); err != nil {
			return apperr.StoreFailure("insert "+table, err)
		}
	}
	return nil
}
