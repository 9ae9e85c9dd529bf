package app

import (
	"context"
	"sort"

	"sitterboard/internal/common"
	"sitterboard/internal/domain/notice"
	"sitterboard/internal/domain/user"
)

type NoticeService struct {
	repo   notice.Repository
	events Events
	clock  Clock
}

func NewNoticeService(repo notice.Repository, events Events) *NoticeService {
	return &NoticeService{repo: repo, events: eventsOrNoop(events), clock: systemClock}
}

func (s *NoticeService) Create(ctx context.Context, caller user.Caller, fields notice.Fields) (*notice.Notice, error) {
	if !caller.Is(user.RoleParent) {
		return nil, common.NewError(common.CodeForbidden, "only parents can create notices", nil)
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	n := notice.New(common.NewUUID(), caller.ID, caller.Name, fields, s.clock())
	created, err := s.repo.Create(ctx, n)
	if err != nil {
		return nil, err
	}
	s.events.NoticeCreated()
	return created, nil
}

// ListOpen is the student feed: every open notice, newest first.
func (s *NoticeService) ListOpen(ctx context.Context) ([]notice.Notice, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	open := make([]notice.Notice, 0, len(items))
	for _, n := range items {
		if n.Status == notice.StatusOpen {
			open = append(open, n)
		}
	}
	sortNewestFirst(open)
	return open, nil
}

func (s *NoticeService) ListOwned(ctx context.Context, caller user.Caller) ([]notice.Notice, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	owned := make([]notice.Notice, 0)
	for _, n := range items {
		if n.IsOwnedBy(caller.ID) {
			owned = append(owned, n)
		}
	}
	sortNewestFirst(owned)
	return owned, nil
}

// Get returns one notice. Only its owner sees every application; anyone else
// sees at most their own.
func (s *NoticeService) Get(ctx context.Context, caller user.Caller, id common.UUID) (*notice.Notice, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	visible := n.VisibleTo(caller.ID)
	return &visible, nil
}

func sortNewestFirst(items []notice.Notice) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
