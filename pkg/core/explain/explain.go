package explain

import (
	"fmt"
	"sort"

	"github.com/sai290404/Kochi-Metro/pkg/core/model"
	"github.com/sai290404/Kochi-Metro/pkg/core/optimizer"
)

// Rationale is the structured explanation for one trainset's decision.
// Everything here is derived from intermediate values the optimizer
// already retained; building a rationale recomputes nothing.
type Rationale struct {
	TrainsetID string
	Role       model.Role
	Summary    string
	Factors    []string
	Degraded   []string
}

// Build renders the deciding factors for a single decision.
//
// Service and standby assignments list the weighted score contributors
// largest first. Infeasible trainsets get every blocking reason
// verbatim. Feasible trainsets that still missed selection get their
// combined score against the cutoff of the lowest-ranked selected
// trainset, so an operator can see how close the call was.
func Build(d optimizer.Decision, res *optimizer.Result, w optimizer.Weights) Rationale {
	r := Rationale{
		TrainsetID: d.TrainsetID,
		Role:       d.Role,
		Degraded:   append([]string(nil), d.Scores.Degraded...),
	}

	switch {
	case !d.Feasible:
		r.Summary = "excluded from service: not feasible"
		r.Factors = append(r.Factors, d.BlockingReasons...)

	case d.ForcedMaintenance:
		r.Summary = "held for maintenance: urgency above critical ceiling"
		r.Factors = append(r.Factors,
			fmt.Sprintf("maintenance urgency %.1f forced the maintenance role", d.Scores.Urgency))

	case d.Role == model.RoleService:
		r.Summary = fmt.Sprintf("inducted for service with combined score %.1f", d.Combined)
		r.Factors = contributors(d, w)

	default:
		r.Factors = contributors(d, w)
		if res.HasCutoff {
			r.Summary = fmt.Sprintf("not selected: combined score %.1f below service cutoff %.1f (missed by %.1f)",
				d.Combined, res.CutoffScore, res.CutoffScore-d.Combined)
		} else {
			r.Summary = fmt.Sprintf("not selected: combined score %.1f", d.Combined)
		}
	}

	return r
}

// BuildAll explains every decision in the result, ordered by trainset id.
func BuildAll(res *optimizer.Result, w optimizer.Weights) []Rationale {
	out := make([]Rationale, 0, len(res.Decisions))
	for _, d := range res.Decisions {
		out = append(out, Build(d, res, w))
	}
	return out
}

// contributors lists the three weighted score terms, largest first.
// Ties keep the readiness/branding/urgency declaration order.
func contributors(d optimizer.Decision, w optimizer.Weights) []string {
	type term struct {
		name     string
		raw      float64
		weighted float64
	}
	terms := []term{
		{"readiness", d.Scores.Readiness, d.Scores.Readiness * w.Readiness},
		{"branding", d.Scores.Branding, d.Scores.Branding * w.Branding},
		{"urgency", d.Scores.Urgency, d.Scores.Urgency * w.Urgency},
	}
	sort.SliceStable(terms, func(i, j int) bool {
		return terms[i].weighted > terms[j].weighted
	})

	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = fmt.Sprintf("%s %.1f contributed %.1f", t.name, t.raw, t.weighted)
	}
	return out
}
