package activity

import (
	"time"

	"academia/internal/apperr"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// EventDecided is the queue message type published after every decision.
const EventDecided = "activity.decided"

var (
	ErrNotFound   = apperr.NotFound("activity record not found")
	ErrNotPending = apperr.Invalid("only pending records can be approved or rejected")
	ErrBadType    = apperr.Invalid("unknown activity type")
	ErrBadLink    = apperr.Invalid("driveLink must be an http or https URL")
)

// Activity is a student-submitted record awaiting or past approval.
type Activity struct {
	ID              string     `json:"id"`
	UniversityID    string     `json:"universityId"`
	ProgramID       string     `json:"programId"`
	StudentID       string     `json:"studentId"`
	Type            string     `json:"type"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	DriveLink       string     `json:"driveLink"`
	Status          string     `json:"status"`
	ApprovedBy      *string    `json:"approvedBy"`
	ApprovalDate    *time.Time `json:"approvalDate"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type CreateInput struct {
	Type        string `json:"type" binding:"required,activitytype"`
	Title       string `json:"title" binding:"max=200"`
	Description string `json:"description" binding:"max=2000"`
	DriveLink   string `json:"driveLink" binding:"required,http_url"`
}

type StatusInput struct {
	Status          string `json:"status" binding:"required,oneof=approved rejected"`
	RejectionReason string `json:"rejectionReason" binding:"max=500"`
}

// Decision is the state change applied to a pending record.
type Decision struct {
	Status    string
	ActorID   string
	Reason    string
	At        time.Time
	ExpiresAt *time.Time
}

// Event is the audit entry and queue payload of a decision.
type Event struct {
	ID         string    `json:"id"`
	ActivityID string    `json:"activityId"`
	StudentID  string    `json:"studentId"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	ActorID    string    `json:"actorId"`
	ActorRole  string    `json:"actorRole"`
	Reason     string    `json:"reason,omitempty"`
	At         time.Time `json:"at"`
}
