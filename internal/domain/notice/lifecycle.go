package notice

import (
	"strings"
	"time"

	"sitterboard/internal/common"
)

// Transition is the outcome of one status change request.
type Transition struct {
	Application Application   `json:"application"`
	Notice      Notice        `json:"notice"`
	Cascaded    []common.UUID `json:"cascaded,omitempty"`
	Changed     bool          `json:"-"`
}

// New returns an open notice with no applications.
func New(id, ownerID common.UUID, ownerName string, fields Fields, now time.Time) Notice {
	fields = fields.normalized()
	return Notice{
		ID:           id,
		OwnerID:      ownerID,
		OwnerName:    ownerName,
		Fields:       fields,
		Status:       StatusOpen,
		Applications: []Application{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Submit appends a pending application. A student may hold at most one
// application per notice. Submissions to a notice that is no longer open are
// refused unless allowWhenNotOpen is set.
func (n *Notice) Submit(app Application, allowWhenNotOpen bool) error {
	if n.ApplicationByStudent(app.StudentID) >= 0 {
		return common.NewError(common.CodeConflict, "already applied to this notice", nil)
	}
	if n.Status != StatusOpen && !allowWhenNotOpen {
		return common.NewError(common.CodeConflict, "notice is not accepting applications", nil)
	}
	app.Status = ApplicationPending
	app.Message = strings.TrimSpace(app.Message)
	app.UpdatedAt = app.AppliedAt
	n.Applications = append(n.Applications, app)
	n.UpdatedAt = app.AppliedAt
	return nil
}

// Decide moves one application to target. Accepting fills the notice and
// rejects every other pending application in the same step. Repeating a
// decision that already holds is a no-op and reports Changed=false.
func (n *Notice) Decide(applicationID common.UUID, target ApplicationStatus, now time.Time) (Transition, error) {
	idx := n.ApplicationByID(applicationID)
	if idx < 0 {
		return Transition{}, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	switch target {
	case ApplicationAccepted:
		return n.accept(idx, now)
	case ApplicationRejected:
		return n.reject(idx, now)
	default:
		return Transition{}, common.NewValidationError("invalid status", map[string]string{"status": "status must be accepted or rejected"})
	}
}

func (n *Notice) accept(idx int, now time.Time) (Transition, error) {
	app := &n.Applications[idx]
	if n.Status == StatusFilled {
		if n.SelectedApplicationID == app.ID && app.Status == ApplicationAccepted {
			return n.result(idx, nil, false), nil
		}
		return Transition{}, common.NewError(common.CodeConflict, "notice is already filled", nil)
	}
	if n.Status == StatusClosed {
		return Transition{}, common.NewError(common.CodeConflict, "notice is closed", nil)
	}

	app.Status = ApplicationAccepted
	app.UpdatedAt = now
	n.Status = StatusFilled
	n.SelectedApplicationID = app.ID
	n.SelectedStudentID = app.StudentID
	n.UpdatedAt = now

	var cascaded []common.UUID
	for i := range n.Applications {
		other := &n.Applications[i]
		if i == idx || other.Status != ApplicationPending {
			continue
		}
		other.Status = ApplicationRejected
		other.UpdatedAt = now
		cascaded = append(cascaded, other.ID)
	}
	return n.result(idx, cascaded, true), nil
}

func (n *Notice) reject(idx int, now time.Time) (Transition, error) {
	app := &n.Applications[idx]
	switch app.Status {
	case ApplicationRejected:
		return n.result(idx, nil, false), nil
	case ApplicationAccepted:
		return Transition{}, common.NewError(common.CodeConflict, "accepted application cannot be rejected", nil)
	}
	app.Status = ApplicationRejected
	app.UpdatedAt = now
	n.UpdatedAt = now
	return n.result(idx, nil, true), nil
}

func (n *Notice) result(idx int, cascaded []common.UUID, changed bool) Transition {
	return Transition{
		Application: n.Applications[idx],
		Notice:      n.Clone(),
		Cascaded:    cascaded,
		Changed:     changed,
	}
}

// CheckInvariants reports whether the filled/accepted bookkeeping is consistent.
func (n Notice) CheckInvariants() error {
	accepted := 0
	var acceptedID common.UUID
	students := make(map[common.UUID]struct{}, len(n.Applications))
	for _, app := range n.Applications {
		if _, dup := students[app.StudentID]; dup {
			return common.NewError(common.CodeInternal, "duplicate application for student "+app.StudentID.String(), nil)
		}
		students[app.StudentID] = struct{}{}
		if app.Status == ApplicationAccepted {
			accepted++
			acceptedID = app.ID
		}
	}
	switch n.Status {
	case StatusFilled:
		if accepted != 1 || n.SelectedApplicationID != acceptedID {
			return common.NewError(common.CodeInternal, "filled notice must have exactly one selected accepted application", nil)
		}
	case StatusOpen:
		if accepted != 0 || n.SelectedApplicationID != "" {
			return common.NewError(common.CodeInternal, "open notice must not have an accepted application", nil)
		}
	}
	return nil
}
