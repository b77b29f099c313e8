package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/niio972/phis-ws/internal/metrics"
	"github.com/niio972/phis-ws/internal/page"
	"github.com/niio972/phis-ws/internal/search"
	"github.com/niio972/phis-ws/internal/triplestore"
)

// InfrastructureService searches infrastructures in the triplestore.
type InfrastructureService struct {
	session triplestore.Session
	obs     observer
}

// NewInfrastructureService creates the service. m may be nil.
func NewInfrastructureService(s triplestore.Session, m *metrics.Metrics, log zerolog.Logger) *InfrastructureService {
	return &InfrastructureService{
		session: s,
		obs:     newObserver(FamilyInfrastructures, m, log),
	}
}

// Search returns one page of the infrastructures matching c.
func (s *InfrastructureService) Search(ctx context.Context, c search.Criteria) (page.Result[search.Infrastructure], error) {
	start := time.Now()
	res, err := search.Run(ctx, s.session, search.Infrastructures{}, c)
	s.obs.finish(start, res.Outcome, res.TotalCount, err)
	return res, err
}

// Create, Update, Delete and Get are part of the family contract but the
// triplestore is read-only here; each returns an Unsupported error.

// Create rejects infrastructure creation.
func (s *InfrastructureService) Create(ctx context.Context, infs []search.Infrastructure) error {
	return search.Infrastructures{}.Create(infs)
}

// Update rejects infrastructure updates.
func (s *InfrastructureService) Update(ctx context.Context, infs []search.Infrastructure) error {
	return search.Infrastructures{}.Update(infs)
}

// Delete rejects infrastructure deletion.
func (s *InfrastructureService) Delete(ctx context.Context, infs []search.Infrastructure) error {
	return search.Infrastructures{}.Delete(infs)
}

// Get rejects lookup by identifier; Search with a fixed URI instead.
func (s *InfrastructureService) Get(ctx context.Context, uri string) (search.Infrastructure, error) {
	return search.Infrastructures{}.FindByID(uri)
}
