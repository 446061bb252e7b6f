package application

import (
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a scholarship application.
type Status string

const (
	StatusPendingSAG        Status = "PENDING_SAG"
	StatusApprovedBySAG     Status = "APPROVED_BY_SAG"
	StatusRejectedBySAG     Status = "REJECTED_BY_SAG"
	StatusPendingFinance    Status = "PENDING_FINANCE"
	StatusPaid              Status = "PAID"
	StatusRejectedByFinance Status = "REJECTED_BY_FINANCE"
)

// AllStatuses lists every status in workflow order.
var AllStatuses = []Status{
	StatusPendingSAG,
	StatusApprovedBySAG,
	StatusRejectedBySAG,
	StatusPendingFinance,
	StatusPaid,
	StatusRejectedByFinance,
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	switch s {
	case StatusPaid, StatusRejectedBySAG, StatusRejectedByFinance:
		return true
	default:
		return false
	}
}

func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}

	return false
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", s)}
	}

	return status, nil
}

// Role identifies who is acting on an application.
type Role string

const (
	RoleStudent  Role = "student"
	RoleReviewer Role = "reviewer"
	RoleFinance  Role = "finance"
	// RoleSystem is never assigned to a user. It drives the automatic forward edge.
	RoleSystem Role = "system"
)

// Assignable reports whether r can be given to a user at registration.
func (r Role) Assignable() bool {
	return r == RoleStudent || r == RoleReviewer || r == RoleFinance
}

// Action is a request to move an application along the workflow.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionForward  Action = "forward"
	ActionDisburse Action = "disburse"
)

// Form holds the free-text answers a student gives when applying.
type Form struct {
	FullName             string `json:"full_name"`
	Email                string `json:"email"`
	Phone                string `json:"phone,omitempty"`
	Address              string `json:"address,omitempty"`
	DateOfBirth          string `json:"date_of_birth,omitempty"`
	University           string `json:"university"`
	Major                string `json:"major"`
	CurrentGPA           string `json:"current_gpa"`
	ExpectedGraduation   string `json:"expected_graduation,omitempty"`
	PersonalStatement    string `json:"personal_statement"`
	CareerGoals          string `json:"career_goals,omitempty"`
	LeadershipExperience string `json:"leadership_experience,omitempty"`
	CommunityService     string `json:"community_service,omitempty"`
	PreviousScholarships string `json:"previous_scholarships,omitempty"`
	SpecialCircumstances string `json:"special_circumstances,omitempty"`
}

// Application is a student's request for a scholarship award.
type Application struct {
	ID               uuid.UUID
	URN              string
	ScholarshipID    uuid.UUID
	ScholarshipTitle string
	StudentID        uuid.UUID
	Amount           int64 // whole currency units
	Status           Status
	Form             Form
	// Documents maps a required document name to an opaque storage reference.
	Documents        map[string]string
	ReviewerRemarks  *string
	FinanceRemarks   *string
	PaymentReference string
	AppliedDate      time.Time
	LastUpdated      time.Time
}

// Clone returns a deep copy so callers never share maps or remark pointers with a store.
func (a *Application) Clone() *Application {
	c := *a
	c.Documents = maps.Clone(a.Documents)

	if a.ReviewerRemarks != nil {
		c.ReviewerRemarks = new(*a.ReviewerRemarks)
	}

	if a.FinanceRemarks != nil {
		c.FinanceRemarks = new(*a.FinanceRemarks)
	}

	return &c
}

// Transition is the history record written in the same commit as a status change.
type Transition struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	From          Status
	To            Status
	Action        Action
	ActorRole     Role
	ActorID       *uuid.UUID
	Remarks       *string
	Amount        *int64
	CreatedAt     time.Time
}

// Event is emitted once per committed transition.
type Event struct {
	ApplicationID uuid.UUID  `json:"application_id"`
	URN           string     `json:"urn"`
	From          Status     `json:"from_status"`
	To            Status     `json:"to_status"`
	ActorRole     Role       `json:"actor_role"`
	ActorID       *uuid.UUID `json:"actor_id,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
}
