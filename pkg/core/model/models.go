package model

import "time"

type Role string

const (
	RoleService     Role = "Service"
	RoleStandby     Role = "Standby"
	RoleMaintenance Role = "Maintenance"
)

func (r Role) IsValid() bool {
	return r == RoleService || r == RoleStandby || r == RoleMaintenance
}

type Department string

const (
	DeptRollingStock Department = "Rolling-Stock"
	DeptSignalling   Department = "Signalling"
	DeptTelecom      Department = "Telecom"
)

// RequiredDepartments lists every department that must hold a valid
// fitness certificate before a trainset can enter service.
var RequiredDepartments = []Department{DeptRollingStock, DeptSignalling, DeptTelecom}

type JobCardStatus string

const (
	JobOpen   JobCardStatus = "Open"
	JobClosed JobCardStatus = "Closed"
)

type JobCardPriority string

const (
	PriorityLow      JobCardPriority = "Low"
	PriorityMedium   JobCardPriority = "Medium"
	PriorityHigh     JobCardPriority = "High"
	PriorityCritical JobCardPriority = "Critical"
)

// Trainset is a single four-car unit in the fleet. CurrentRole is the
// last committed role, carried as a stability signal for the next run;
// the next role is an output of the optimizer, never an input.
type Trainset struct {
	ID          string
	CurrentRole Role
}

// FitnessCertificate is a department-issued validity window authorizing
// a trainset for revenue service.
type FitnessCertificate struct {
	CertificateID string
	TrainsetID    string
	Department    Department
	IssuedAt      time.Time
	ExpiresAt     time.Time
	Inspector     string
}

// ValidOn reports whether the certificate covers the given service date.
func (c FitnessCertificate) ValidOn(date time.Time) bool {
	return !date.Before(c.IssuedAt) && date.Before(c.ExpiresAt)
}

// JobCard is a maintenance work order raised against a trainset.
type JobCard struct {
	JobCardID   string
	TrainsetID  string
	Description string
	Priority    JobCardPriority
	Status      JobCardStatus
	RaisedAt    time.Time
}

// IsBlocking reports whether this job card alone bars the trainset from
// service induction.
func (j JobCard) IsBlocking() bool {
	return j.Status == JobOpen && j.Priority == PriorityCritical
}

// BrandingContract is an advertising wrap contract with an exposure
// obligation. At most one active contract per trainset.
type BrandingContract struct {
	TrainsetID    string
	Brand         string
	RequiredHours float64
	AccruedHours  float64
	StartsAt      time.Time
	EndsAt        time.Time
	PenaltyPerHr  float64
}

// MileageRecord carries cumulative distance and derived component wear
// fractions for a trainset. Wear values are percentages in [0,100].
type MileageRecord struct {
	TrainsetID   string
	CumulativeKm float64
	BogieWear    float64
	BrakeWear    float64
	HVACWear     float64
}

// AverageWear returns the mean of the three component wear fractions.
func (m MileageRecord) AverageWear() float64 {
	return (m.BogieWear + m.BrakeWear + m.HVACWear) / 3
}

// CleaningSchedule records whether a trainset is due for a deep clean in
// the next cycle.
type CleaningSchedule struct {
	TrainsetID string
	Due        bool
	LastClean  time.Time
	NextDue    time.Time
}

// StablingPosition is a physical bay. ShuntCost ranks how expensive it
// is to move a trainset out of this bay for morning dispatch.
type StablingPosition struct {
	BayID      string
	TrainsetID string
	ShuntCost  float64
}
