package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/metrics"
	"github.com/niio972/phis-ws/internal/page"
	"github.com/niio972/phis-ws/internal/rdf"
	"github.com/niio972/phis-ws/internal/search"
	"github.com/niio972/phis-ws/internal/store"
	"github.com/niio972/phis-ws/internal/triplestore"
)

// ExperimentStore is the relational experiment store. *store.Store
// implements it.
type ExperimentStore interface {
	CountExperiments(ctx context.Context, c store.ExperimentCriteria) (int, error)
	FindExperiments(ctx context.Context, c store.ExperimentCriteria) ([]store.Experiment, error)
	GetExperiment(ctx context.Context, uri string) (store.Experiment, error)
	CreateExperiments(ctx context.Context, exps []store.Experiment) ([]string, error)
	UpdateExperiments(ctx context.Context, exps []store.Experiment) error
	LinkVariables(ctx context.Context, uri string, variables []string) error
	LinkSensors(ctx context.Context, uri string, sensors []string) error
}

// ExperimentService searches and maintains experiments.
type ExperimentService struct {
	store   ExperimentStore
	session triplestore.Session
	obs     observer
	log     zerolog.Logger
}

// NewExperimentService creates the service. The triplestore session is
// used to check variables before they are linked. m may be nil.
func NewExperimentService(st ExperimentStore, s triplestore.Session, m *metrics.Metrics, log zerolog.Logger) *ExperimentService {
	return &ExperimentService{
		store:   st,
		session: s,
		obs:     newObserver(FamilyExperiments, m, log),
		log:     log,
	}
}

// Search returns one page of the experiments matching c.
func (s *ExperimentService) Search(ctx context.Context, c store.ExperimentCriteria) (res page.Result[store.Experiment], err error) {
	start := time.Now()
	defer func() { s.obs.finish(start, res.Outcome, res.TotalCount, err) }()

	if err := c.Validate(); err != nil {
		return page.Empty[store.Experiment](c.Page), err
	}
	count := func(ctx context.Context) (int, error) {
		return s.store.CountExperiments(ctx, c)
	}
	fetch := func(ctx context.Context) ([]store.Experiment, error) {
		return s.store.FindExperiments(ctx, c)
	}
	return page.Assemble(ctx, c.Page, count, fetch)
}

// Get returns one experiment.
func (s *ExperimentService) Get(ctx context.Context, uri string) (store.Experiment, error) {
	if err := rdf.ValidateIRI(uri); err != nil {
		return store.Experiment{}, apperr.Validation("uri", "%v", err)
	}
	return s.store.GetExperiment(ctx, uri)
}

// Create stores new experiments and returns their URIs.
func (s *ExperimentService) Create(ctx context.Context, exps []store.Experiment) ([]string, error) {
	if len(exps) == 0 {
		return nil, apperr.Validation("experiments", "no experiment given")
	}
	uris, err := s.store.CreateExperiments(ctx, exps)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("count", len(uris)).Msg("experiments created")
	return uris, nil
}

// Update replaces the metadata of existing experiments.
func (s *ExperimentService) Update(ctx context.Context, exps []store.Experiment) error {
	if len(exps) == 0 {
		return apperr.Validation("experiments", "no experiment given")
	}
	if err := s.store.UpdateExperiments(ctx, exps); err != nil {
		return err
	}
	s.log.Info().Int("count", len(exps)).Msg("experiments updated")
	return nil
}

// LinkVariables replaces the variables measured in an experiment. Every
// variable must be known to the triplestore as a variable.
func (s *ExperimentService) LinkVariables(ctx context.Context, uri string, variables []string) error {
	for _, v := range variables {
		ok, err := search.ExistsAndIsVariable(ctx, s.session, v)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Validation(v, "unknown variable URI")
		}
	}
	if err := s.store.LinkVariables(ctx, uri, variables); err != nil {
		return err
	}
	s.log.Info().Str("experiment", uri).Int("count", len(variables)).Msg("variables linked")
	return nil
}

// LinkSensors replaces the sensors deployed in an experiment.
func (s *ExperimentService) LinkSensors(ctx context.Context, uri string, sensors []string) error {
	if err := s.store.LinkSensors(ctx, uri, sensors); err != nil {
		return err
	}
	s.log.Info().Str("experiment", uri).Int("count", len(sensors)).Msg("sensors linked")
	return nil
}
