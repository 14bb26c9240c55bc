package main

import (
	"fmt"
	"strings"

	"github.com/sai290404/Kochi-Metro/pkg/core/model"
	"github.com/sai290404/Kochi-Metro/pkg/core/services"
)

// printPlan writes a plan to stdout grouped by role, with the
// rationale for each trainset underneath its line.
func printPlan(plan *services.PlanResult) {
	fmt.Printf("\nInduction plan for %s (run %s)\n",
		plan.Config.ServiceDate.Format("2006-01-02"), plan.RunID[:8])
	fmt.Printf("Status: %s, objective %.2f", plan.Solver.Status, plan.Solver.ObjectiveValue)
	if plan.Solver.Shortfall > 0 {
		fmt.Printf(", shortfall %d", plan.Solver.Shortfall)
	}
	fmt.Println()

	printRoleSection(plan, model.RoleService, "Inducted for service")
	printRoleSection(plan, model.RoleStandby, "Standby")
	printRoleSection(plan, model.RoleMaintenance, "Maintenance (IBL)")

	if len(plan.Solver.StandbyOrder) > 0 {
		fmt.Printf("\nStandby call-up order: %s\n", strings.Join(plan.Solver.StandbyOrder, ", "))
	}

	if len(plan.Alerts) > 0 {
		fmt.Println("\nAlerts:")
		for _, alert := range plan.Alerts {
			fmt.Printf("  %s\n", alert)
		}
	}
	for _, rec := range plan.Recommendations {
		fmt.Printf("Recommendation: %s\n", rec)
	}
}

func printRoleSection(plan *services.PlanResult, role model.Role, title string) {
	fmt.Printf("\n%s:\n", title)
	for _, r := range plan.Rationales {
		if r.Role != role {
			continue
		}
		line := fmt.Sprintf("  %s  %s", r.TrainsetID, r.Summary)
		if role == model.RoleService {
			if d := plan.Solver.Decision(r.TrainsetID); d != nil && d.StablingBay != "" {
				line += fmt.Sprintf(" (bay %s)", d.StablingBay)
			}
		}
		fmt.Println(line)
	}
}

// planEmailBody renders the plan as plain text for the nightly
// supervisor email.
func planEmailBody(plan *services.PlanResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Induction plan for %s\n\n", plan.Config.ServiceDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Service: %d, standby: %d, maintenance: %d (solver status: %s)\n\n",
		plan.Summary.Service, plan.Summary.Standby, plan.Summary.Maintenance, plan.Solver.Status)

	fmt.Fprintf(&b, "Service trainsets: %s\n", strings.Join(plan.Solver.ServiceIDs(), ", "))
	if len(plan.Solver.StandbyOrder) > 0 {
		fmt.Fprintf(&b, "Standby call-up order: %s\n", strings.Join(plan.Solver.StandbyOrder, ", "))
	}

	if len(plan.Alerts) > 0 {
		b.WriteString("\nAlerts:\n")
		for _, alert := range plan.Alerts {
			fmt.Fprintf(&b, "- %s\n", alert)
		}
	}
	if len(plan.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range plan.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}

	fmt.Fprintf(&b, "\nGenerated at %s from snapshot %s.\n",
		plan.GeneratedAt.Format("2006-01-02 15:04:05"), plan.SnapshotVersion[:8])
	return b.String()
}
