package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sai290404/Kochi-Metro/pkg/core/model"
	"github.com/sai290404/Kochi-Metro/pkg/core/simulation"
	"github.com/sai290404/Kochi-Metro/pkg/db"
)

// Engine owns the canonical fleet snapshot and the latest committed
// plan. The snapshot is copy-on-read: every run, live or simulated,
// works on its own clone, so concurrent runs never share mutable
// state.
type Engine struct {
	logger *zap.Logger
	store  db.PlanStore // nil disables persistence

	mu     sync.RWMutex
	snap   *model.Snapshot
	latest *PlanResult
}

// NewEngine creates an induction engine. store may be nil for
// storeless (dry-run or simulation-only) operation.
func NewEngine(logger *zap.Logger, store db.PlanStore) *Engine {
	return &Engine{logger: logger, store: store}
}

// Refresh replaces the canonical snapshot after validating its
// invariants. Runs already in progress keep their own clones and are
// unaffected.
func (e *Engine) Refresh(snap *model.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("snapshot rejected: %w", err)
	}

	e.mu.Lock()
	e.snap = snap
	e.mu.Unlock()

	e.logger.Info("Fleet snapshot refreshed",
		zap.String("version", snap.Version),
		zap.Int("trainsets", len(snap.Trainsets)))
	return nil
}

// Snapshot returns a private clone of the canonical snapshot.
func (e *Engine) Snapshot() (*model.Snapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.snap == nil {
		return nil, fmt.Errorf("no fleet snapshot loaded - refresh data first")
	}
	return e.snap.Clone(), nil
}

// LatestPlan returns the most recently committed plan, or nil.
func (e *Engine) LatestPlan() *PlanResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.latest
}

// Optimize runs the full pipeline against the live snapshot and
// commits the result as the latest plan. Configuration errors are
// returned before anything is computed; infeasible targets and solver
// timeouts come back inside the result, not as errors.
func (e *Engine) Optimize(ctx context.Context, cfg RunConfig) (*PlanResult, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return nil, err
	}

	result, err := runPipeline(ctx, snap, cfg, e.logger)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.latest = result
	e.mu.Unlock()

	if e.store != nil {
		if err := e.persist(ctx, result); err != nil {
			// Persistence trouble must not invalidate a computed plan.
			e.logger.Error("Failed to persist plan", zap.Error(err))
		}
	}

	return result, nil
}

// Simulate runs a counterfactual against a clone of the live snapshot.
// The canonical snapshot and the latest committed plan are untouched.
func (e *Engine) Simulate(ctx context.Context, cfg RunConfig, overrides simulation.Overrides) (*PlanResult, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return nil, err
	}

	if err := overrides.ApplySnapshot(snap); err != nil {
		return nil, fmt.Errorf("failed to apply overrides: %w", err)
	}
	applyConfigOverrides(&cfg, overrides)

	e.logger.Debug("Running simulation",
		zap.String("base_version", snap.Version),
		zap.Int("target_service_count", cfg.TargetServiceCount))

	return runPipeline(ctx, snap, cfg, e.logger)
}

// SimulateScenarios runs a batch of named what-if scenarios
// concurrently, one snapshot clone each.
func (e *Engine) SimulateScenarios(ctx context.Context, cfg RunConfig, scenarios []simulation.Scenario) ([]ScenarioResult, error) {
	results := make([]ScenarioResult, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	for i, scenario := range scenarios {
		i, scenario := i, scenario
		g.Go(func() error {
			plan, err := e.Simulate(gctx, cfg, scenario.Overrides)
			if err != nil {
				return fmt.Errorf("scenario %q: %w", scenario.Name, err)
			}
			results[i] = ScenarioResult{Name: scenario.Name, Plan: plan}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Alerts returns the latest plan's alerts, most severe first. Empty
// when no plan has been committed yet.
func (e *Engine) Alerts() []string {
	latest := e.LatestPlan()
	if latest == nil {
		return nil
	}
	return latest.Alerts
}

// ScenarioResult pairs a scenario name with its simulated plan.
type ScenarioResult struct {
	Name string
	Plan *PlanResult
}

func applyConfigOverrides(cfg *RunConfig, o simulation.Overrides) {
	if o.TargetServiceCount != nil {
		cfg.TargetServiceCount = *o.TargetServiceCount
	}
	if o.Weights != nil {
		cfg.Weights = *o.Weights
	}
	if o.SolverTimeBudget != nil {
		cfg.SolverTimeBudget = *o.SolverTimeBudget
	}
	if o.CriticalUrgencyThreshold != nil {
		cfg.CriticalUrgencyThreshold = *o.CriticalUrgencyThreshold
	}
	if o.MaintenanceUrgencyThreshold != nil {
		cfg.MaintenanceUrgencyThreshold = *o.MaintenanceUrgencyThreshold
	}
}

func (e *Engine) persist(ctx context.Context, result *PlanResult) error {
	plan := db.InductionPlan{
		ID:                 uuid.NewString(),
		RunID:              result.RunID,
		SnapshotVersion:    result.SnapshotVersion,
		ServiceDate:        result.Config.ServiceDate,
		Status:             string(result.Solver.Status),
		ObjectiveValue:     result.Solver.ObjectiveValue,
		TargetServiceCount: result.Config.TargetServiceCount,
		Shortfall:          result.Solver.Shortfall,
		GeneratedAt:        result.GeneratedAt,
	}

	decisions := make([]db.PlanDecision, 0, len(result.Solver.Decisions))
	rationales := make(map[string]string, len(result.Rationales))
	for _, r := range result.Rationales {
		rationales[r.TrainsetID] = r.Summary
	}
	for _, d := range result.Solver.Decisions {
		decisions = append(decisions, db.PlanDecision{
			ID:          uuid.NewString(),
			PlanID:      plan.ID,
			TrainsetID:  d.TrainsetID,
			Role:        string(d.Role),
			Readiness:   d.Scores.Readiness,
			Branding:    d.Scores.Branding,
			Urgency:     d.Scores.Urgency,
			Combined:    d.Combined,
			StablingBay: d.StablingBay,
			Rationale:   rationales[d.TrainsetID],
		})
	}

	return e.store.InsertPlan(ctx, plan, decisions)
}
