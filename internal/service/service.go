package service

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/metrics"
	"github.com/niio972/phis-ws/internal/page"
)

// Family names used in logs and metrics.
const (
	FamilyInfrastructures = "infrastructures"
	FamilyExperiments     = "experiments"
	FamilyData            = "data"
)

// observer records the outcome of searches for one family.
type observer struct {
	family  string
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func newObserver(family string, m *metrics.Metrics, log zerolog.Logger) observer {
	return observer{
		family:  family,
		metrics: m,
		log:     log.With().Str("family", family).Logger(),
	}
}

// finish logs and records one search. A failed search is labelled with
// its error code, a finished one with its page outcome.
func (o observer) finish(start time.Time, outcome page.Outcome, total int, err error) {
	label := outcomeLabel(outcome, err)
	elapsed := time.Since(start)
	o.metrics.RecordSearch(o.family, label, elapsed)

	switch {
	case apperr.IsStoreFailure(err) || apperr.IsMaterialization(err):
		o.log.Error().Err(err).Dur("elapsed", elapsed).Msg("search failed")
	case err != nil:
		o.log.Debug().Err(err).Str("outcome", label).Msg("search rejected")
	default:
		o.log.Debug().
			Str("outcome", label).
			Int("total", total).
			Dur("elapsed", elapsed).
			Msg("search finished")
	}
}

func outcomeLabel(outcome page.Outcome, err error) string {
	if err == nil {
		return string(outcome)
	}
	code := apperr.CodeOf(err)
	if code == "" || code == apperr.CodeStoreFailure {
		return string(page.StoreFailure)
	}
	return strings.ReplaceAll(strings.ToLower(string(code)), "_", "-")
}
