package app

import (
	"time"
)

// Events receives business events after they are committed. Implementations
// must not fail the request; they are fire-and-forget.
type Events interface {
	NoticeCreated()
	ApplicationSubmitted()
	ApplicationDecided(status string, cascaded int)
}

type noopEvents struct{}

func (noopEvents) NoticeCreated()                  {}
func (noopEvents) ApplicationSubmitted()           {}
func (noopEvents) ApplicationDecided(string, int) {}

func eventsOrNoop(events Events) Events {
	if events == nil {
		return noopEvents{}
	}
	return events
}

// Clock is swapped in tests.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
