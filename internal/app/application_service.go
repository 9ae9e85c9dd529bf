package app

import (
	"context"
	"sort"
	"time"

	"sitterboard/internal/common"
	"sitterboard/internal/domain/notice"
	"sitterboard/internal/domain/user"
)

type ApplicationOptions struct {
	// AllowApplicationsWhenFilled keeps accepting applications after a notice
	// stops being open.
	AllowApplicationsWhenFilled bool
	// Throttle limits submissions per notice and student. It is consulted
	// once the notice is known to exist and the caller is a student.
	Throttle    Throttle
	ApplyLimit  int
	ApplyWindow time.Duration
}

// Throttle is satisfied by the in-process and Redis limiters.
type Throttle interface {
	Allow(key string, limit int, window time.Duration) bool
}

func ApplyThrottleKey(noticeID, studentID common.UUID) string {
	return "apply:" + noticeID.String() + ":" + studentID.String()
}

type ApplicationService struct {
	notices notice.Repository
	events  Events
	opts    ApplicationOptions
	clock   Clock
}

func NewApplicationService(notices notice.Repository, events Events, opts ApplicationOptions) *ApplicationService {
	return &ApplicationService{notices: notices, events: eventsOrNoop(events), opts: opts, clock: systemClock}
}

func (s *ApplicationService) Apply(ctx context.Context, caller user.Caller, noticeID common.UUID, message string) (*notice.Application, error) {
	app := notice.Application{
		ID:          common.NewUUID(),
		StudentID:   caller.ID,
		StudentName: caller.Name,
		Message:     message,
		AppliedAt:   s.clock(),
	}
	var created notice.Application
	throttled := false
	_, err := s.notices.Update(ctx, noticeID, func(n *notice.Notice) error {
		if !caller.Is(user.RoleStudent) {
			return common.NewError(common.CodeForbidden, "only students can apply to notices", nil)
		}
		// a CAS retry runs this again; count the attempt once
		if !throttled {
			throttled = true
			if !s.allowApply(noticeID, caller.ID) {
				return common.NewError(common.CodeRateLimited, "too many applications, try again later", nil)
			}
		}
		if err := n.Submit(app, s.opts.AllowApplicationsWhenFilled); err != nil {
			return err
		}
		created = n.Applications[len(n.Applications)-1]
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.ApplicationSubmitted()
	return &created, nil
}

func (s *ApplicationService) allowApply(noticeID, studentID common.UUID) bool {
	if s.opts.Throttle == nil || s.opts.ApplyLimit <= 0 {
		return true
	}
	window := s.opts.ApplyWindow
	if window <= 0 {
		window = time.Minute
	}
	return s.opts.Throttle.Allow(ApplyThrottleKey(noticeID, studentID), s.opts.ApplyLimit, window)
}

// UpdateStatus is the only way an application leaves pending. Accepting fills
// the notice and rejects the remaining pending applications in the same write.
func (s *ApplicationService) UpdateStatus(ctx context.Context, caller user.Caller, noticeID, applicationID common.UUID, status string) (*notice.Transition, error) {
	var result notice.Transition
	_, err := s.notices.Update(ctx, noticeID, func(n *notice.Notice) error {
		if !n.IsOwnedBy(caller.ID) {
			return common.NewError(common.CodeForbidden, "notice belongs to another parent", nil)
		}
		if n.ApplicationByID(applicationID) < 0 {
			return common.NewError(common.CodeNotFound, "application not found", nil)
		}
		target, err := notice.ParseTargetStatus(status)
		if err != nil {
			return err
		}
		transition, err := n.Decide(applicationID, target, s.clock())
		if err != nil {
			return err
		}
		result = transition
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Changed {
		s.events.ApplicationDecided(string(result.Application.Status), len(result.Cascaded))
	}
	return &result, nil
}

// ListForStudent returns the caller's applications across all notices, newest first.
func (s *ApplicationService) ListForStudent(ctx context.Context, caller user.Caller) ([]notice.StudentApplication, error) {
	if !caller.Is(user.RoleStudent) {
		return nil, common.NewError(common.CodeForbidden, "only students have applications", nil)
	}
	items, err := s.notices.List(ctx)
	if err != nil {
		return nil, err
	}
	history := make([]notice.StudentApplication, 0)
	for _, n := range items {
		idx := n.ApplicationByStudent(caller.ID)
		if idx < 0 {
			continue
		}
		history = append(history, notice.StudentApplication{
			Application: n.Applications[idx],
			Notice:      n.Summary(),
		})
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].AppliedAt.After(history[j].AppliedAt)
	})
	return history, nil
}
