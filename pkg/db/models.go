package db

import "time"

// InductionPlan is one committed nightly plan.
type InductionPlan struct {
	ID                 string
	RunID              string
	SnapshotVersion    string
	ServiceDate        time.Time
	Status             string
	ObjectiveValue     float64
	TargetServiceCount int
	Shortfall          int
	GeneratedAt        time.Time
}

// PlanDecision is one trainset's decision within a committed plan,
// with the scores retained so dashboards can replay the rationale.
type PlanDecision struct {
	ID          string
	PlanID      string
	TrainsetID  string
	Role        string
	Readiness   float64
	Branding    float64
	Urgency     float64
	Combined    float64
	StablingBay string // empty if no bay preference was assigned
	Rationale   string
}
