package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calshare/calshare/constants"
	"github.com/calshare/calshare/internal/common"
	"github.com/calshare/calshare/internal/entity"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "calendars.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleEvents() []entity.Event {
	return []entity.Event{
		{
			UID:      "evt-000000000002",
			Title:    "Second",
			Start:    time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
			End:      time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC),
			Category: constants.Game,
		},
		{
			UID:      "evt-000000000001",
			Title:    "First",
			Start:    time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
			End:      time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
			Category: constants.Practice,
			Location: "Gym",
			AllDay:   false,
		},
	}
}

func TestCreateAndFetchCalendar(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cal, err := s.CreateCalendar(ctx, "Fall Season", "team schedule", "", sampleEvents())
	require.NoError(t, err)
	assert.NotEmpty(t, cal.Slug)
	assert.Contains(t, cal.Slug, "fall-season-")

	got, err := s.GetBySlug(ctx, cal.Slug)
	require.NoError(t, err)
	assert.Equal(t, "Fall Season", got.Name)
	assert.Equal(t, "team schedule", got.Description)

	events, err := s.ListEvents(ctx, got.ID, nil)
	require.NoError(t, err)
	require.Len(t, events, 2)
	// ordered by start time, not insertion order
	assert.Equal(t, "First", events[0].Title)
	assert.Equal(t, "Second", events[1].Title)
	assert.Equal(t, "Gym", events[0].Location)
	assert.Equal(t, constants.Practice, events[0].Category)
	assert.True(t, events[0].Start.Equal(time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)))
}

func TestCustomSlugConflict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.CreateCalendar(ctx, "One", "", "my-team", sampleEvents())
	require.NoError(t, err)

	_, err = s.CreateCalendar(ctx, "Two", "", "my-team", sampleEvents())
	require.Error(t, err)
	assert.Equal(t, common.CodeSlugConflict, common.ErrorCode(err))
}

func TestAutoSlugNeverConflicts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		cal, err := s.CreateCalendar(ctx, "Same Name", "", "", nil)
		require.NoError(t, err)
		assert.False(t, seen[cal.Slug])
		seen[cal.Slug] = true
	}
}

func TestListEventsCategoryFilter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cal, err := s.CreateCalendar(ctx, "Filtered", "", "", sampleEvents())
	require.NoError(t, err)

	practices, err := s.ListEvents(ctx, cal.ID, []string{"practice"})
	require.NoError(t, err)
	require.Len(t, practices, 1)
	assert.Equal(t, "First", practices[0].Title)

	both, err := s.ListEvents(ctx, cal.ID, []string{"practice", "game"})
	require.NoError(t, err)
	assert.Len(t, both, 2)
}

func TestGetBySlugNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetBySlug(context.Background(), "no-such-slug")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTouchAccess(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cal, err := s.CreateCalendar(ctx, "Counted", "", "", nil)
	require.NoError(t, err)

	require.NoError(t, s.TouchAccess(ctx, cal.Slug))
	require.NoError(t, s.TouchAccess(ctx, cal.Slug))

	got, err := s.GetBySlug(ctx, cal.Slug)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.AccessCount)
}

func TestGenerateSlugShape(t *testing.T) {
	slug := GenerateSlug("Riverside FC — Fall 2026!!")
	assert.Regexp(t, `^[a-z0-9-]+-[0-9a-f]{8}$`, slug)
	assert.NotContains(t, slug, "--")

	// base capped, suffix still present
	long := GenerateSlug("this is a very long calendar name that keeps going and going")
	assert.LessOrEqual(t, len(long), maxSlugBase+1+8)

	// degenerate names still produce a usable slug
	assert.Regexp(t, `^[0-9a-f]{8}$`, GenerateSlug("!!!"))
}

func TestSanitizeCustomSlug(t *testing.T) {
	assert.Equal(t, "myteam2026", SanitizeCustomSlug("  My Team 2026 "))
	assert.Equal(t, "ok-slug", SanitizeCustomSlug("ok-slug"))
	assert.Equal(t, "", SanitizeCustomSlug("???"))
}
