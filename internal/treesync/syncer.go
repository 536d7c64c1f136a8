// Package treesync keeps a client-side forest in step with the store: it
// commits reorder plans, refetches the canonical lists when a write fails and
// drives drag gestures through their lifecycle.
package treesync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/casetree/internal/contract"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/tree"
	"golang.org/x/sync/errgroup"
)

// ReorderClient sends a batched reorder to the store.
type ReorderClient interface {
	Reorder(ctx context.Context, req contract.ReorderRequest) error
}

// Source returns the canonical flat lists of one project.
type Source interface {
	Suites(ctx context.Context, projectID string) ([]domain.Suite, error)
	Sections(ctx context.Context, projectID string) ([]domain.Section, error)
	TestCases(ctx context.Context, projectID string) ([]domain.TestCase, error)
}

// Result is the outcome of a background write. When the write failed and the
// forest was refetched, Reconciled is set and Forest holds the store's view.
// Forest stays nil when the refetch failed as well.
type Result struct {
	Reconciled bool
	Forest     *tree.Forest
	Err        error

	// Created is the stored entity that replaces a placeholder.
	Created *tree.Node
}

type Syncer struct {
	projectID string
	client    ReorderClient
	source    Source
	logger    *slog.Logger
}

type Option func(*Syncer)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Syncer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewSyncer(projectID string, client ReorderClient, source Source, opts ...Option) *Syncer {
	s := &Syncer{
		projectID: projectID,
		client:    client,
		source:    source,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Syncer) ProjectID() string { return s.projectID }

// Commit sends every update of plan in one request. Empty plans send nothing.
func (s *Syncer) Commit(ctx context.Context, plan tree.Plan) error {
	if plan.Empty() {
		return nil
	}
	req := contract.NewReorderRequest(s.projectID, plan)
	startedAt := time.Now()
	err := s.client.Reorder(ctx, req)
	attrs := []any{
		"project", s.projectID,
		"node", plan.NodeID,
		"items", len(req.Items),
		"reparent", plan.Reparented(),
		"duration_ms", time.Since(startedAt).Milliseconds(),
	}
	if err != nil {
		s.logger.WarnContext(ctx, "reorder_commit", append(attrs, "error", err.Error())...)
		return fmt.Errorf("committing reorder of %s: %w", plan.NodeID, err)
	}
	s.logger.InfoContext(ctx, "reorder_commit", attrs...)
	return nil
}

// Reconcile refetches the three lists concurrently and rebuilds the forest.
func (s *Syncer) Reconcile(ctx context.Context) (*tree.Forest, error) {
	var (
		suites    []domain.Suite
		sections  []domain.Section
		testCases []domain.TestCase
	)
	startedAt := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		suites, err = s.source.Suites(gctx, s.projectID)
		return err
	})
	g.Go(func() (err error) {
		sections, err = s.source.Sections(gctx, s.projectID)
		return err
	})
	g.Go(func() (err error) {
		testCases, err = s.source.TestCases(gctx, s.projectID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "reconcile", "project", s.projectID, "error", err.Error())
		return nil, fmt.Errorf("refetching tree: %w", err)
	}

	f, err := tree.Build(suites, sections, testCases)
	if err != nil {
		s.logger.WarnContext(ctx, "reconcile", "project", s.projectID, "error", err.Error())
		return nil, err
	}
	s.logger.InfoContext(ctx, "reconcile",
		"project", s.projectID,
		"nodes", f.Len(),
		"duration_ms", time.Since(startedAt).Milliseconds(),
	)
	return f, nil
}

// CommitOrReconcile is the background half of a gesture. A failed commit is
// followed by one refetch; nothing is retried.
func (s *Syncer) CommitOrReconcile(ctx context.Context, plan tree.Plan) Result {
	return s.Run(ctx, func(ctx context.Context) error { return s.Commit(ctx, plan) })
}

// Run performs write and, if it fails, reconciles.
func (s *Syncer) Run(ctx context.Context, write func(context.Context) error) Result {
	err := write(ctx)
	if err == nil {
		return Result{}
	}
	f, rerr := s.Reconcile(ctx)
	if rerr != nil {
		return Result{Reconciled: true, Err: fmt.Errorf("%w (reconcile also failed: %w)", err, rerr)}
	}
	return Result{Reconciled: true, Forest: f, Err: err}
}
