package services

import (
	"sort"

	"github.com/sai290404/Kochi-Metro/pkg/core/feasibility"
	"github.com/sai290404/Kochi-Metro/pkg/core/model"
	"github.com/sai290404/Kochi-Metro/pkg/core/scoring"
)

// TrainsetSummary is the dashboard projection of one trainset: the
// last committed role, current sub-scores and open issues.
type TrainsetSummary struct {
	TrainsetID string
	Role       model.Role
	Readiness  float64
	Branding   float64
	Urgency    float64
	Feasible   bool
	Issues     []string
}

// FleetSummaryResult is the read-only fleet projection consumed by
// dashboards, plus roll-up counts.
type FleetSummaryResult struct {
	SnapshotVersion string
	Trainsets       []TrainsetSummary
	CertExpired     int
	OpenJobCards    int
	BrandingActive  int
	Allocation      PlanSummary
	AlertCount      int
}

// FleetSummary projects the current snapshot for dashboards. Roles
// come from the latest committed plan when one exists, otherwise from
// each trainset's last known role.
func (e *Engine) FleetSummary(cfg RunConfig) (*FleetSummaryResult, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	latest := e.LatestPlan()

	assessments := feasibility.EvaluateAll(snap, cfg.ServiceDate)
	engine := scoring.NewEngine(snap, scoring.Config{
		ServiceDate:              cfg.ServiceDate,
		CertificateWarningWindow: cfg.CertificateWarningWindow,
	})

	out := &FleetSummaryResult{SnapshotVersion: snap.Version}

	for _, ts := range snap.Trainsets {
		scores := engine.Score(ts.ID)
		assessment := assessments[ts.ID]

		role := ts.CurrentRole
		if latest != nil {
			if d := latest.Solver.Decision(ts.ID); d != nil {
				role = d.Role
			}
		}

		out.Trainsets = append(out.Trainsets, TrainsetSummary{
			TrainsetID: ts.ID,
			Role:       role,
			Readiness:  scores.Readiness,
			Branding:   scores.Branding,
			Urgency:    scores.Urgency,
			Feasible:   assessment.Feasible,
			Issues:     assessment.BlockingReasons,
		})
	}
	sort.Slice(out.Trainsets, func(i, j int) bool {
		return out.Trainsets[i].TrainsetID < out.Trainsets[j].TrainsetID
	})

	for _, cert := range snap.Certificates {
		if !cert.ValidOn(cfg.ServiceDate) {
			out.CertExpired++
		}
	}
	for _, job := range snap.JobCards {
		if job.Status == model.JobOpen {
			out.OpenJobCards++
		}
	}
	out.BrandingActive = len(snap.Branding)

	if latest != nil {
		out.Allocation = latest.Summary
		out.AlertCount = len(latest.Alerts)
	}

	return out, nil
}
