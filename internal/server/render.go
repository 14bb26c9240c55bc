package server

import (
	"github.com/gin-gonic/gin"

	"github.com/sai290404/Kochi-Metro/pkg/core/model"
	"github.com/sai290404/Kochi-Metro/pkg/core/services"
)

// renderPlan flattens a plan result into the JSON shape dashboards
// consume.
func renderPlan(plan *services.PlanResult) gin.H {
	var service, standby, maintenance []string
	details := make([]gin.H, 0, len(plan.Solver.Decisions))

	rationales := make(map[string][]string, len(plan.Rationales))
	summaries := make(map[string]string, len(plan.Rationales))
	for _, r := range plan.Rationales {
		rationales[r.TrainsetID] = r.Factors
		summaries[r.TrainsetID] = r.Summary
	}

	for _, d := range plan.Solver.Decisions {
		switch d.Role {
		case model.RoleService:
			service = append(service, d.TrainsetID)
		case model.RoleStandby:
			standby = append(standby, d.TrainsetID)
		case model.RoleMaintenance:
			maintenance = append(maintenance, d.TrainsetID)
		}

		details = append(details, gin.H{
			"train_id":            d.TrainsetID,
			"status":              d.Role,
			"readiness_score":     round1(d.Scores.Readiness),
			"branding_priority":   round1(d.Scores.Branding),
			"maintenance_urgency": round1(d.Scores.Urgency),
			"combined_score":      round1(d.Combined),
			"stabling_bay":        d.StablingBay,
			"summary":             summaries[d.TrainsetID],
			"factors":             rationales[d.TrainsetID],
		})
	}

	return gin.H{
		"run_id":           plan.RunID,
		"generated_at":     plan.GeneratedAt,
		"snapshot_version": plan.SnapshotVersion,
		"solver_status":    plan.Solver.Status,
		"objective_value":  plan.Solver.ObjectiveValue,
		"shortfall":        plan.Solver.Shortfall,
		"inducted_for_service": service,
		"standby":              standby,
		"maintenance_ibl":      maintenance,
		"standby_order":        plan.Solver.StandbyOrder,
		"summary": gin.H{
			"service_count":     plan.Summary.Service,
			"standby_count":     plan.Summary.Standby,
			"maintenance_count": plan.Summary.Maintenance,
		},
		"train_details":   details,
		"alerts":          plan.Alerts,
		"recommendations": plan.Recommendations,
	}
}
