package feasibility

import (
	"fmt"
	"sort"
	"time"

	"github.com/sai290404/Kochi-Metro/pkg/core/model"
)

// Assessment is the feasibility verdict for one trainset. BlockingReasons
// collects every failing rule, not just the first, so the explanation
// layer can show the complete picture.
type Assessment struct {
	TrainsetID      string
	Feasible        bool
	BlockingReasons []string
}

// Evaluate decides whether a trainset may legally be inducted into
// service on the given date.
//
// Rules (all must hold):
//   - every required department holds a certificate whose validity
//     window contains the service date
//   - no open Critical job card exists on the trainset
//
// Pure function of the snapshot; reasons come out in deterministic
// order (departments in their canonical order, then job cards by id).
func Evaluate(snap *model.Snapshot, trainsetID string, serviceDate time.Time) Assessment {
	assessment := Assessment{TrainsetID: trainsetID, Feasible: true}

	certsByDept := make(map[model.Department]model.FitnessCertificate)
	for _, cert := range snap.CertificatesFor(trainsetID) {
		// Keep the certificate with the latest expiry per department;
		// a renewed certificate supersedes the lapsed one.
		existing, ok := certsByDept[cert.Department]
		if !ok || cert.ExpiresAt.After(existing.ExpiresAt) {
			certsByDept[cert.Department] = cert
		}
	}

	for _, dept := range model.RequiredDepartments {
		cert, ok := certsByDept[dept]
		if !ok {
			assessment.Feasible = false
			assessment.BlockingReasons = append(assessment.BlockingReasons,
				fmt.Sprintf("no %s fitness certificate on record", dept))
			continue
		}
		if !cert.ValidOn(serviceDate) {
			assessment.Feasible = false
			assessment.BlockingReasons = append(assessment.BlockingReasons,
				fmt.Sprintf("%s fitness certificate expired %s", dept, cert.ExpiresAt.Format("2006-01-02")))
		}
	}

	blocking := make([]model.JobCard, 0)
	for _, job := range snap.JobCardsFor(trainsetID) {
		if job.IsBlocking() {
			blocking = append(blocking, job)
		}
	}
	sort.Slice(blocking, func(i, j int) bool {
		return blocking[i].JobCardID < blocking[j].JobCardID
	})
	for _, job := range blocking {
		assessment.Feasible = false
		assessment.BlockingReasons = append(assessment.BlockingReasons,
			fmt.Sprintf("open critical job card %s: %s", job.JobCardID, job.Description))
	}

	return assessment
}

// EvaluateAll assesses every trainset in the snapshot, keyed by id.
func EvaluateAll(snap *model.Snapshot, serviceDate time.Time) map[string]Assessment {
	out := make(map[string]Assessment, len(snap.Trainsets))
	for _, ts := range snap.Trainsets {
		out[ts.ID] = Evaluate(snap, ts.ID, serviceDate)
	}
	return out
}
