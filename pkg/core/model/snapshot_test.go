package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *Snapshot {
	snap := NewSnapshot(time.Date(2025, 11, 1, 22, 0, 0, 0, time.UTC))
	snap.Trainsets = []Trainset{
		{ID: "KMRL-001", CurrentRole: RoleService},
		{ID: "KMRL-002", CurrentRole: RoleStandby},
	}
	snap.Certificates = []FitnessCertificate{
		{CertificateID: "C-1", TrainsetID: "KMRL-001", Department: DeptRollingStock},
	}
	snap.JobCards = []JobCard{
		{JobCardID: "J-1", TrainsetID: "KMRL-002", Priority: PriorityLow, Status: JobOpen},
	}
	snap.Mileage = []MileageRecord{
		{TrainsetID: "KMRL-001", CumulativeKm: 50000},
	}
	snap.Cleaning = []CleaningSchedule{
		{TrainsetID: "KMRL-002", Due: true},
	}
	snap.CleaningBayCapacity = 2
	return snap
}

func TestSnapshotValidate_Valid(t *testing.T) {
	snap := testSnapshot()
	assert.NoError(t, snap.Validate())
}

func TestSnapshotValidate_DuplicateTrainsetID(t *testing.T) {
	snap := testSnapshot()
	snap.Trainsets = append(snap.Trainsets, Trainset{ID: "KMRL-001"})

	err := snap.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate trainset id")
}

func TestSnapshotValidate_OrphanedCertificate(t *testing.T) {
	snap := testSnapshot()
	snap.Certificates = append(snap.Certificates, FitnessCertificate{
		CertificateID: "C-99", TrainsetID: "KMRL-099", Department: DeptTelecom,
	})

	err := snap.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown trainset")
}

func TestSnapshotValidate_DuplicateBrandingContract(t *testing.T) {
	snap := testSnapshot()
	snap.Branding = []BrandingContract{
		{TrainsetID: "KMRL-001", Brand: "Lulu Mall"},
		{TrainsetID: "KMRL-001", Brand: "Federal Bank"},
	}

	err := snap.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one active branding contract")
}

func TestSnapshotValidate_NegativeMileage(t *testing.T) {
	snap := testSnapshot()
	snap.Mileage[0].CumulativeKm = -1

	err := snap.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative cumulative mileage")
}

func TestSnapshotValidate_InvalidRole(t *testing.T) {
	snap := testSnapshot()
	snap.Trainsets[0].CurrentRole = "Parked"

	err := snap.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid role")
}

func TestSnapshotClone_Independence(t *testing.T) {
	snap := testSnapshot()
	clone := snap.Clone()

	assert.NotEqual(t, snap.Version, clone.Version)
	assert.Equal(t, snap.TakenAt, clone.TakenAt)

	// Mutating the clone must leave the original untouched.
	clone.JobCards[0].Status = JobClosed
	clone.Mileage[0].CumulativeKm = 0
	clone.Certificates = clone.Certificates[:0]

	assert.Equal(t, JobOpen, snap.JobCards[0].Status)
	assert.Equal(t, 50000.0, snap.Mileage[0].CumulativeKm)
	assert.Len(t, snap.Certificates, 1)
}

func TestCertificateValidOn(t *testing.T) {
	cert := FitnessCertificate{
		IssuedAt:  time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, cert.ValidOn(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, cert.ValidOn(time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)))
	// The expiry instant itself is no longer valid.
	assert.False(t, cert.ValidOn(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, cert.ValidOn(time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)))
}

func TestJobCardIsBlocking(t *testing.T) {
	assert.True(t, JobCard{Priority: PriorityCritical, Status: JobOpen}.IsBlocking())
	assert.False(t, JobCard{Priority: PriorityCritical, Status: JobClosed}.IsBlocking())
	assert.False(t, JobCard{Priority: PriorityHigh, Status: JobOpen}.IsBlocking())
}

func TestMileageAverageWear(t *testing.T) {
	m := MileageRecord{BogieWear: 30, BrakeWear: 60, HVACWear: 90}
	assert.InDelta(t, 60.0, m.AverageWear(), 1e-9)
}

func TestSnapshotAccessors(t *testing.T) {
	snap := testSnapshot()

	assert.Len(t, snap.CertificatesFor("KMRL-001"), 1)
	assert.Empty(t, snap.CertificatesFor("KMRL-002"))
	assert.Len(t, snap.JobCardsFor("KMRL-002"), 1)
	assert.Nil(t, snap.BrandingFor("KMRL-001"))
	require.NotNil(t, snap.MileageFor("KMRL-001"))
	assert.Nil(t, snap.MileageFor("KMRL-002"))
	require.NotNil(t, snap.CleaningFor("KMRL-002"))
}
