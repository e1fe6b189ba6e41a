package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calshare/calshare/constants"
	"github.com/calshare/calshare/internal/entity"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
}

func sampleEvents() []entity.Event {
	return []entity.Event{
		{
			UID:      "evt-aaaaaaaaaaaa",
			Title:    "Team Practice",
			Start:    time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
			End:      time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC),
			Location: "Main Field",
			Category: constants.Practice,
		},
		{
			UID:      "evt-bbbbbbbbbbbb",
			Title:    "Tournament Day",
			Start:    time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
			End:      time.Date(2026, 9, 5, 23, 59, 59, 0, time.UTC),
			Category: constants.Game,
			AllDay:   true,
		},
	}
}

func TestSerializeShape(t *testing.T) {
	s := NewSerializer(nil).WithClock(fixedClock)
	out := string(s.Serialize(sampleEvents(), "Fall Season"))

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "PRODID:-//CalShare//calshare.app//")
	assert.Contains(t, out, "METHOD:PUBLISH")
	assert.Contains(t, out, "X-WR-CALNAME:Fall Season")
	assert.Contains(t, out, "SUMMARY:Team Practice")
	assert.Contains(t, out, "LOCATION:Main Field")
	assert.Contains(t, out, "CATEGORIES:practice")
	assert.Contains(t, out, "DTSTART:20260901T090000Z")
	// all-day events carry DATE values, not date-times
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20260905")
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
}

func TestSerializeDeterministic(t *testing.T) {
	s := NewSerializer(nil).WithClock(fixedClock)
	a := s.Serialize(sampleEvents(), "Fall Season")
	b := s.Serialize(sampleEvents(), "Fall Season")
	assert.Equal(t, a, b)
}

func TestRoundTrip(t *testing.T) {
	s := NewSerializer(nil).WithClock(fixedClock)
	src := sampleEvents()

	parsed, err := s.Parse(s.Serialize(src, "Fall Season"))
	require.NoError(t, err)
	require.Len(t, parsed, len(src))

	timed := parsed[0]
	assert.Equal(t, "Team Practice", timed.Title)
	assert.True(t, timed.Start.Equal(src[0].Start))
	assert.True(t, timed.End.Equal(src[0].End))
	assert.Equal(t, "Main Field", timed.Location)
	assert.Equal(t, constants.Practice, timed.Category)
	assert.False(t, timed.AllDay)

	allDay := parsed[1]
	assert.Equal(t, "Tournament Day", allDay.Title)
	assert.True(t, allDay.AllDay)
	y, m, d := allDay.Start.Date()
	assert.Equal(t, [3]int{2026, 9, 5}, [3]int{y, int(m), d})
	assert.Equal(t, constants.Game, allDay.Category)
}

const fixtureICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Somewhere//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:abc-1\r\n" +
	"SUMMARY:Team Meeting\r\n" +
	"DTSTART:20260901T090000Z\r\n" +
	"DTEND:20260901T100000Z\r\n" +
	"LOCATION:Room 4\r\n" +
	"CATEGORIES:meeting\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"SUMMARY:No End\r\n" +
	"DTSTART:20260902T090000Z\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:bad-component\r\n" +
	"SUMMARY:No Start\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTART;VALUE=DATE:20260905\r\n" +
	"DTEND;VALUE=DATE:20260906\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParseTolerance(t *testing.T) {
	s := NewSerializer(nil)
	events, err := s.Parse([]byte(fixtureICS))
	require.NoError(t, err)
	require.Len(t, events, 3, "only the start-less component drops")

	meeting := events[0]
	assert.Equal(t, "abc-1", meeting.UID, "well-formed uid is kept")
	assert.Equal(t, constants.Meeting, meeting.Category)
	assert.Equal(t, "Room 4", meeting.Location)

	noEnd := events[1]
	assert.Equal(t, "No End", noEnd.Title)
	assert.True(t, noEnd.End.Equal(noEnd.Start.Add(time.Hour)), "missing DTEND defaults to start+1h")
	assert.Regexp(t, `^evt-[0-9a-f]{12}$`, noEnd.UID, "missing uid regenerated")

	bare := events[2]
	assert.Equal(t, "Untitled Event", bare.Title)
	assert.True(t, bare.AllDay)
	assert.False(t, bare.Start.After(bare.End))
}

func TestParseGarbage(t *testing.T) {
	s := NewSerializer(nil)
	_, err := s.Parse([]byte(""))
	require.Error(t, err)
}

func TestGoogleCalendarLink(t *testing.T) {
	ev := entity.Event{
		Title:       "Team Practice",
		Start:       time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		End:         time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC),
		Location:    "Main Field",
		Description: "Bring water",
	}
	link := GoogleCalendarLink(ev)
	assert.Contains(t, link, "action=TEMPLATE")
	assert.Contains(t, link, "text=Team+Practice")
	assert.Contains(t, link, "dates=20260901T090000/20260901T110000")
	assert.Contains(t, link, "location=Main+Field")
	assert.Contains(t, link, "details=Bring+water")

	allDay := entity.Event{
		Title:  "Tournament",
		Start:  time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC),
		AllDay: true,
	}
	assert.Contains(t, GoogleCalendarLink(allDay), "dates=20260905/20260906")
}
