package store

import "github.com/niio972/phis-ws/internal/queryir"

// experimentColumns are the columns of the experiments table, sorted: the
// compiler emits bindings in key order and scanExperiment reads them so.
var experimentColumns = []string{
	"alias", "campaign", "comment", "crop_species", "end_date", "field",
	"keywords", "objective", "place", "start_date", "uri",
}

// experimentQuery builds the paged search over experiments. Count and
// fetch are both derived from it.
func experimentQuery(c ExperimentCriteria) queryir.Select {
	var preds []queryir.Predicate

	if c.URI != "" {
		preds = append(preds, queryir.Equals{Field: "uri", Value: c.URI})
	}
	if c.ProjectURI != "" {
		preds = append(preds, queryir.InSelect{
			Field: "uri",
			Sub: queryir.Select{
				From:   "experiment_projects",
				Key:    "experiment_uri",
				Filter: queryir.Equals{Field: "project_uri", Value: c.ProjectURI},
			},
		})
	}
	if c.StartDate != "" {
		preds = append(preds, queryir.Compare{Field: "start_date", Op: queryir.OpGte, Value: c.StartDate})
	}
	if c.EndDate != "" {
		preds = append(preds, queryir.Compare{Field: "end_date", Op: queryir.OpLte, Value: c.EndDate})
	}
	if c.Campaign != "" {
		preds = append(preds, queryir.Equals{Field: "campaign", Value: c.Campaign})
	}
	for _, sub := range []struct{ field, value string }{
		{"field", c.Field},
		{"place", c.Place},
		{"alias", c.Alias},
		{"keywords", c.Keywords},
	} {
		if sub.value != "" {
			preds = append(preds, queryir.Contains{Field: sub.field, Value: sub.value})
		}
	}

	bindings := make(map[string]string, len(experimentColumns))
	for _, col := range experimentColumns {
		bindings[col] = col
	}

	q := queryir.Select{
		From:     "experiments",
		Key:      "uri",
		Bindings: bindings,
		Window:   c.Page.Window(),
	}
	switch len(preds) {
	case 0:
	case 1:
		q.Filter = preds[0]
	default:
		q.Filter = queryir.And{Predicates: preds}
	}
	return q
}
