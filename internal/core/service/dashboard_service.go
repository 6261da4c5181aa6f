package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/synergia/erp-api/internal/core/domain"
	"github.com/synergia/erp-api/internal/core/ports"
)

const recentLimit = 5

// DashboardService fans six independent reads out concurrently. Any failing
// read fails the whole aggregate.
type DashboardService struct {
	clients  ports.ClientRepository
	projects ports.ProjectRepository
	now      func() time.Time
}

func NewDashboardService(clients ports.ClientRepository, projects ports.ProjectRepository) *DashboardService {
	return &DashboardService{clients: clients, projects: projects, now: time.Now}
}

// monthStart is the first instant of t's month in UTC.
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func (s *DashboardService) Stats(ctx context.Context) (*ports.DashboardStats, error) {
	var stats ports.DashboardStats
	since := monthStart(s.now())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalClients, err = s.clients.Count(ctx, ports.ClientFilter{})
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveProjects, err = s.projects.Count(ctx, ports.ProjectFilter{Status: domain.ProjectInProgress})
		return err
	})
	g.Go(func() (err error) {
		stats.CompletedProjects, err = s.projects.Count(ctx, ports.ProjectFilter{Status: domain.ProjectCompleted})
		return err
	})
	g.Go(func() (err error) {
		stats.NewClientsThisMonth, err = s.clients.Count(ctx, ports.ClientFilter{CreatedSince: since})
		return err
	})
	g.Go(func() (err error) {
		stats.RecentProjects, err = s.projects.List(ctx, ports.ProjectFilter{Limit: recentLimit})
		return err
	})
	g.Go(func() (err error) {
		stats.RecentClients, err = s.clients.List(ctx, recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if stats.RecentProjects == nil {
		stats.RecentProjects = []domain.Project{}
	}
	if stats.RecentClients == nil {
		stats.RecentClients = []domain.ClientSummary{}
	}
	return &stats, nil
}
