package db

import "context"

// PlanStore persists committed induction plans. Services depend on
// this interface so tests can swap in mocks and the CLI can run
// storeless with a nil store.
type PlanStore interface {
	InsertPlan(ctx context.Context, plan InductionPlan, decisions []PlanDecision) error
	GetLatestPlan(ctx context.Context) (*InductionPlan, []PlanDecision, error)
	ListPlans(ctx context.Context, limit int) ([]InductionPlan, error)
}
