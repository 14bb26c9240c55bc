package feasibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sai290404/Kochi-Metro/pkg/core/model"
)

var serviceDate = time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)

// fullyCertified returns a snapshot where the trainset holds a valid
// certificate from every required department.
func fullyCertified(trainsetID string) *model.Snapshot {
	snap := model.NewSnapshot(serviceDate.Add(-2 * time.Hour))
	snap.Trainsets = []model.Trainset{{ID: trainsetID}}
	for i, dept := range model.RequiredDepartments {
		snap.Certificates = append(snap.Certificates, model.FitnessCertificate{
			CertificateID: string(rune('A' + i)),
			TrainsetID:    trainsetID,
			Department:    dept,
			IssuedAt:      serviceDate.AddDate(0, -3, 0),
			ExpiresAt:     serviceDate.AddDate(0, 3, 0),
		})
	}
	return snap
}

func TestEvaluate_AllRulesPass(t *testing.T) {
	snap := fullyCertified("KMRL-001")

	assessment := Evaluate(snap, "KMRL-001", serviceDate)

	assert.True(t, assessment.Feasible)
	assert.Empty(t, assessment.BlockingReasons)
}

func TestEvaluate_MissingDepartmentCertificate(t *testing.T) {
	snap := fullyCertified("KMRL-001")
	// Drop the Telecom certificate.
	snap.Certificates = snap.Certificates[:2]

	assessment := Evaluate(snap, "KMRL-001", serviceDate)

	assert.False(t, assessment.Feasible)
	require.Len(t, assessment.BlockingReasons, 1)
	assert.Equal(t, "no Telecom fitness certificate on record", assessment.BlockingReasons[0])
}

func TestEvaluate_ExpiredCertificate(t *testing.T) {
	snap := fullyCertified("KMRL-001")
	snap.Certificates[0].ExpiresAt = serviceDate.AddDate(0, 0, -5)

	assessment := Evaluate(snap, "KMRL-001", serviceDate)

	assert.False(t, assessment.Feasible)
	require.Len(t, assessment.BlockingReasons, 1)
	assert.Contains(t, assessment.BlockingReasons[0], "Rolling-Stock fitness certificate expired")
}

func TestEvaluate_RenewedCertificateSupersedesLapsed(t *testing.T) {
	snap := fullyCertified("KMRL-001")
	// A lapsed Rolling-Stock certificate sits alongside the valid
	// renewal; the renewal must win.
	snap.Certificates = append(snap.Certificates, model.FitnessCertificate{
		CertificateID: "OLD",
		TrainsetID:    "KMRL-001",
		Department:    model.DeptRollingStock,
		IssuedAt:      serviceDate.AddDate(-1, 0, 0),
		ExpiresAt:     serviceDate.AddDate(0, -6, 0),
	})

	assessment := Evaluate(snap, "KMRL-001", serviceDate)

	assert.True(t, assessment.Feasible)
}

func TestEvaluate_OpenCriticalJobCardBlocks(t *testing.T) {
	snap := fullyCertified("KMRL-001")
	snap.JobCards = []model.JobCard{
		{JobCardID: "JC-2001", TrainsetID: "KMRL-001", Description: "Brake caliper replacement", Priority: model.PriorityCritical, Status: model.JobOpen},
	}

	assessment := Evaluate(snap, "KMRL-001", serviceDate)

	assert.False(t, assessment.Feasible)
	require.Len(t, assessment.BlockingReasons, 1)
	assert.Equal(t, "open critical job card JC-2001: Brake caliper replacement", assessment.BlockingReasons[0])
}

func TestEvaluate_ClosedCriticalAndOpenHighDoNotBlock(t *testing.T) {
	snap := fullyCertified("KMRL-001")
	snap.JobCards = []model.JobCard{
		{JobCardID: "JC-1", TrainsetID: "KMRL-001", Priority: model.PriorityCritical, Status: model.JobClosed},
		{JobCardID: "JC-2", TrainsetID: "KMRL-001", Priority: model.PriorityHigh, Status: model.JobOpen},
	}

	assessment := Evaluate(snap, "KMRL-001", serviceDate)

	assert.True(t, assessment.Feasible)
}

func TestEvaluate_CollectsEveryReasonInOrder(t *testing.T) {
	snap := fullyCertified("KMRL-001")
	snap.Certificates = snap.Certificates[1:] // no Rolling-Stock cert
	snap.JobCards = []model.JobCard{
		{JobCardID: "JC-9", TrainsetID: "KMRL-001", Description: "Pantograph fault", Priority: model.PriorityCritical, Status: model.JobOpen},
		{JobCardID: "JC-3", TrainsetID: "KMRL-001", Description: "Door actuator fault", Priority: model.PriorityCritical, Status: model.JobOpen},
	}

	assessment := Evaluate(snap, "KMRL-001", serviceDate)

	require.Len(t, assessment.BlockingReasons, 3)
	// Departments first in canonical order, then job cards by id.
	assert.Equal(t, "no Rolling-Stock fitness certificate on record", assessment.BlockingReasons[0])
	assert.Equal(t, "open critical job card JC-3: Door actuator fault", assessment.BlockingReasons[1])
	assert.Equal(t, "open critical job card JC-9: Pantograph fault", assessment.BlockingReasons[2])
}

func TestEvaluateAll(t *testing.T) {
	snap := fullyCertified("KMRL-001")
	snap.Trainsets = append(snap.Trainsets, model.Trainset{ID: "KMRL-002"})

	out := EvaluateAll(snap, serviceDate)

	require.Len(t, out, 2)
	assert.True(t, out["KMRL-001"].Feasible)
	// KMRL-002 has no certificates at all.
	assert.False(t, out["KMRL-002"].Feasible)
	assert.Len(t, out["KMRL-002"].BlockingReasons, 3)
}
