package cli

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/niio972/phis-ws/internal/config"
	"github.com/niio972/phis-ws/internal/docstore"
	"github.com/niio972/phis-ws/internal/handler"
	"github.com/niio972/phis-ws/internal/logging"
	"github.com/niio972/phis-ws/internal/metrics"
	"github.com/niio972/phis-ws/internal/resolver"
	"github.com/niio972/phis-ws/internal/service"
	"github.com/niio972/phis-ws/internal/store"
	"github.com/niio972/phis-ws/internal/triplestore"
)

// app holds the stores and services shared by the commands.
type app struct {
	cfg      config.Config
	log      zerolog.Logger
	registry *prometheus.Registry

	experiments *store.Store
	docs        *docstore.Store

	infraSvc *service.InfrastructureService
	expSvc   *service.ExperimentService
	dataSvc  *service.DataService
}

// openApp loads the configuration, opens both stores and builds the
// services. Callers must Close the app.
func openApp(opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	log := logging.New(logging.Config{Level: level, Pretty: cfg.Log.Pretty})

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	a := &app{cfg: cfg, log: log, registry: reg}

	a.experiments, err = store.Open(cfg.SQLite.Path, store.WithMetrics(m))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open experiment database", err)
	}

	a.docs, err = docstore.Open(docstore.Options{
		Dir:      cfg.DocStore.Dir,
		InMemory: cfg.DocStore.InMemory,
		Logger:   logging.Component(log, "docstore"),
		Metrics:  m,
	})
	if err != nil {
		a.experiments.Close()
		return nil, WrapExitError(ExitCommandError, "failed to open document store", err)
	}

	session := opts.Session
	if session == nil {
		client, err := triplestore.NewClient(cfg.Triplestore.Endpoint)
		if err != nil {
			a.Close()
			return nil, WrapExitError(ExitCommandError, "failed to create triplestore client", err)
		}
		session = client
	}
	session = triplestore.WithTimeout(
		triplestore.Instrumented(
			triplestore.Logged(session, logging.Component(log, "triplestore")),
			m),
		cfg.Triplestore.TimeoutDuration())

	r := resolver.New(session, a.docs, m, logging.Component(log, "resolver"))
	r.SetProvenanceCap(cfg.Paging.ProvenanceCap)

	svcLog := logging.Component(log, "service")
	a.infraSvc = service.NewInfrastructureService(session, m, svcLog)
	a.expSvc = service.NewExperimentService(a.experiments, session, m, svcLog)
	a.dataSvc = service.NewDataService(r, a.docs, m, svcLog)

	return a, nil
}

// handler builds the REST handler over the app's services.
func (a *app) handler() *handler.Handler {
	h := handler.New(a.infraSvc, a.expSvc, a.dataSvc, logging.Component(a.log, "http"))
	h.SetDefaultPageSize(a.cfg.Paging.DefaultPageSize)
	return h
}

// Close closes both stores.
func (a *app) Close() error {
	var errs []error
	if a.docs != nil {
		errs = append(errs, a.docs.Close())
	}
	if a.experiments != nil {
		errs = append(errs, a.experiments.Close())
	}
	return errors.Join(errs...)
}
