package notice

import (
	"strings"
	"time"

	"sitterboard/internal/common"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

type Application struct {
	ID          common.UUID       `json:"id"`
	StudentID   common.UUID       `json:"studentId"`
	StudentName string            `json:"studentName"`
	Message     string            `json:"message"`
	Status      ApplicationStatus `json:"status"`
	AppliedAt   time.Time         `json:"appliedAt"`
	UpdatedAt   time.Time         `json:"updatedAt,omitempty"`
}

// StudentApplication is one row of a student's application history.
type StudentApplication struct {
	Application
	Notice Summary `json:"notice"`
}

// ParseTargetStatus normalizes a requested transition target. Only accepted
// and rejected can be requested; pending is never a valid target.
func ParseTargetStatus(value string) (ApplicationStatus, error) {
	normalized := ApplicationStatus(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case ApplicationAccepted, ApplicationRejected:
		return normalized, nil
	default:
		return "", common.NewValidationError("invalid status", map[string]string{"status": "status must be accepted or rejected"})
	}
}
