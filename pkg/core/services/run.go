package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sai290404/Kochi-Metro/pkg/core/explain"
	"github.com/sai290404/Kochi-Metro/pkg/core/feasibility"
	"github.com/sai290404/Kochi-Metro/pkg/core/model"
	"github.com/sai290404/Kochi-Metro/pkg/core/optimizer"
	"github.com/sai290404/Kochi-Metro/pkg/core/scoring"
)

// RunConfig is the per-run configuration for the induction pipeline.
type RunConfig struct {
	ServiceDate                 time.Time
	TargetServiceCount          int
	Weights                     optimizer.Weights
	SolverTimeBudget            time.Duration
	CertificateWarningWindow    time.Duration
	CriticalUrgencyThreshold    float64
	MaintenanceUrgencyThreshold float64
}

// Validate rejects configurations before anything is computed. It is
// the only error path a caller must treat as fatal; every other
// condition is reported inside the result.
func (c RunConfig) Validate() error {
	if c.TargetServiceCount < 0 {
		return fmt.Errorf("invalid configuration: target service count must not be negative, got %d", c.TargetServiceCount)
	}
	sum := c.Weights.Readiness + c.Weights.Branding + c.Weights.Urgency
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("invalid configuration: objective weights must sum to 1.0, got %.4f", sum)
	}
	if c.Weights.Readiness < 0 || c.Weights.Branding < 0 || c.Weights.Urgency < 0 {
		return fmt.Errorf("invalid configuration: objective weights must not be negative")
	}
	return nil
}

// PlanSummary counts trainsets per assigned role.
type PlanSummary struct {
	Service     int
	Standby     int
	Maintenance int
}

// PlanResult is the full outcome of one induction run: the solver
// result plus rationales, alerts and run metadata. Never mutated after
// creation.
type PlanResult struct {
	RunID           string
	GeneratedAt     time.Time
	SnapshotVersion string
	Config          RunConfig

	Solver          *optimizer.Result
	Rationales      []explain.Rationale
	Alerts          []string
	Recommendations []string
	Summary         PlanSummary
}

// runPipeline executes feasibility, scoring, optimization and
// explanation against one snapshot. The snapshot must be private to
// this call; Engine hands in clones.
func runPipeline(ctx context.Context, snap *model.Snapshot, cfg RunConfig, logger *zap.Logger) (*PlanResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Evaluating feasibility",
		zap.Int("trainsets", len(snap.Trainsets)),
		zap.Time("service_date", cfg.ServiceDate))
	assessments := feasibility.EvaluateAll(snap, cfg.ServiceDate)

	feasibleCount := 0
	for _, a := range assessments {
		if a.Feasible {
			feasibleCount++
		}
	}
	logger.Debug("Feasibility evaluated", zap.Int("feasible", feasibleCount))

	logger.Debug("Scoring fleet")
	engine := scoring.NewEngine(snap, scoring.Config{
		ServiceDate:              cfg.ServiceDate,
		CertificateWarningWindow: cfg.CertificateWarningWindow,
	})
	scores := engine.ScoreAll()

	logger.Debug("Running assignment optimizer",
		zap.Int("target_service_count", cfg.TargetServiceCount),
		zap.Duration("time_budget", cfg.SolverTimeBudget))
	solverResult, err := optimizer.Solve(ctx, optimizer.Input{
		Snapshot:                    snap,
		Assessments:                 assessments,
		Scores:                      scores,
		TargetServiceCount:          cfg.TargetServiceCount,
		Weights:                     cfg.Weights,
		TimeBudget:                  cfg.SolverTimeBudget,
		CriticalUrgencyThreshold:    cfg.CriticalUrgencyThreshold,
		MaintenanceUrgencyThreshold: cfg.MaintenanceUrgencyThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("solver failed: %w", err)
	}

	logger.Info("Assignment solved",
		zap.String("status", string(solverResult.Status)),
		zap.Float64("objective", solverResult.ObjectiveValue),
		zap.Int("shortfall", solverResult.Shortfall),
		zap.Int("nodes", solverResult.NodesExplored),
		zap.Duration("elapsed", solverResult.Elapsed))

	result := &PlanResult{
		RunID:           uuid.NewString(),
		GeneratedAt:     time.Now(),
		SnapshotVersion: snap.Version,
		Config:          cfg,
		Solver:          solverResult,
		Rationales:      explain.BuildAll(solverResult, cfg.Weights),
		Alerts:          explain.Alerts(solverResult),
		Recommendations: explain.Recommendations(solverResult),
	}

	for _, d := range solverResult.Decisions {
		switch d.Role {
		case model.RoleService:
			result.Summary.Service++
		case model.RoleStandby:
			result.Summary.Standby++
		case model.RoleMaintenance:
			result.Summary.Maintenance++
		}
	}

	return result, nil
}
