package demo

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitterboard/internal/app"
	"sitterboard/internal/domain/notice"
	"sitterboard/internal/kv"
	"sitterboard/internal/repository/kvstore"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	notices := kvstore.NewNoticeRepository(store, 0, zerolog.Nop())
	svc := Services{
		Profiles:     app.NewProfileService(kvstore.NewProfileRepository(store)),
		Notices:      app.NewNoticeService(notices, nil),
		Applications: app.NewApplicationService(notices, nil, app.ApplicationOptions{}),
	}

	result, err := Seed(ctx, svc)
	require.NoError(t, err)
	assert.Len(t, result.Profiles, len(people))
	assert.Len(t, result.Notices, len(listings))
	assert.Equal(t, ProfileID("demo-parent"), result.Profiles[0].ID)

	open, err := svc.Notices.ListOpen(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 3)

	filled, err := notices.GetByID(ctx, result.Notices[1])
	require.NoError(t, err)
	assert.Equal(t, notice.StatusFilled, filled.Status)
	require.NoError(t, filled.CheckInvariants())
	for _, a := range filled.Applications {
		if a.StudentID == ProfileID("demo-student-3") {
			assert.Equal(t, notice.ApplicationAccepted, a.Status)
		} else {
			assert.Equal(t, notice.ApplicationRejected, a.Status)
		}
	}

	// profiles are upserted, notices are added again
	_, err = Seed(ctx, svc)
	require.NoError(t, err)
	all, err := notices.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2*len(listings))
}
