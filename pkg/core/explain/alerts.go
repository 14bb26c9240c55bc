package explain

import (
	"fmt"

	"github.com/sai290404/Kochi-Metro/pkg/core/model"
	"github.com/sai290404/Kochi-Metro/pkg/core/optimizer"
)

// lowReadinessWarning is the readiness score below which inducting a
// trainset is worth a warning.
const lowReadinessWarning = 50.0

// Alerts derives operator alerts from a solver result, most severe
// first: hard exclusions, then shortfall, then questionable inductions,
// then branding exposure at risk, then degraded data.
func Alerts(res *optimizer.Result) []string {
	var critical, warning, info []string

	if res.Status == optimizer.StatusInfeasible {
		critical = append(critical,
			fmt.Sprintf("CRITICAL: service target short by %d trainsets - only %d feasible",
				res.Shortfall, len(res.ServiceIDs())))
	}

	for _, d := range res.Decisions {
		if !d.Feasible {
			for _, reason := range d.BlockingReasons {
				critical = append(critical,
					fmt.Sprintf("CRITICAL: %s - %s", d.TrainsetID, reason))
			}
		}

		if d.Role == model.RoleService && d.Scores.Readiness < lowReadinessWarning {
			warning = append(warning,
				fmt.Sprintf("WARNING: %s inducted with low readiness score %.1f",
					d.TrainsetID, d.Scores.Readiness))
		}

		// A high branding score on a non-service trainset means
		// contracted exposure hours are being missed tonight.
		if d.Role != model.RoleService && d.Scores.Branding >= 75 {
			warning = append(warning,
				fmt.Sprintf("WARNING: %s held out of service with branding exposure at risk (score %.1f)",
					d.TrainsetID, d.Scores.Branding))
		}

		for _, note := range d.Scores.Degraded {
			info = append(info, fmt.Sprintf("INFO: %s - %s", d.TrainsetID, note))
		}
	}

	if res.Status == optimizer.StatusSuboptimal {
		info = append(info, "INFO: solver time budget expired - plan is best found, not proven optimal")
	}

	alerts := append(critical, warning...)
	return append(alerts, info...)
}

// Recommendations turns run-level patterns into operator suggestions.
func Recommendations(res *optimizer.Result) []string {
	var recs []string

	standby := 0
	for _, d := range res.Decisions {
		if d.Role == model.RoleStandby {
			standby++
		}
	}
	if standby < 3 {
		recs = append(recs, "Consider maintaining more standby trainsets for operational flexibility")
	}

	if len(Alerts(res)) > 5 {
		recs = append(recs, "High number of alerts - review maintenance scheduling")
	}

	return recs
}
