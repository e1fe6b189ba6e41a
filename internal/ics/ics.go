// Package ics renders validated events into the iCalendar wire format and
// parses that format back. Calendar-file uploads take the parse path
// directly: no model call is ever involved.
package ics

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/calshare/calshare/constants"
	"github.com/calshare/calshare/internal/entity"
	"github.com/calshare/calshare/internal/validate"
)

const prodID = "-//CalShare//calshare.app//"

type Serializer struct {
	logger *slog.Logger
	now    func() time.Time // DTSTAMP clock, swappable for deterministic output
}

func NewSerializer(logger *slog.Logger) *Serializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Serializer{logger: logger, now: time.Now}
}

// WithClock pins the DTSTAMP clock. Fixed events plus a fixed clock make
// Serialize fully deterministic.
func (s *Serializer) WithClock(now func() time.Time) *Serializer {
	s.now = now
	return s
}

// Serialize renders events into one VCALENDAR container. All-day events
// use DATE values; timed events use UTC DATE-TIME.
func (s *Serializer) Serialize(events []entity.Event, name string) []byte {
	cal := ical.NewCalendar()
	cal.SetProductId(prodID)
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ical.MethodPublish)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	stamp := s.now().UTC()
	for _, ev := range events {
		ve := cal.AddEvent(ev.UID)
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		ve.SetProperty(ical.ComponentPropertyCategories, string(ev.Category))
		ve.SetDtStampTime(stamp)

		if ev.AllDay {
			ve.SetAllDayStartAt(ev.Start)
			ve.SetAllDayEndAt(ev.End)
		} else {
			ve.SetStartAt(ev.Start.UTC())
			ve.SetEndAt(ev.End.UTC())
		}
	}

	return []byte(cal.Serialize())
}

// Parse reads a calendar file into events. Minor malformation is tolerated
// component by component: a VEVENT we cannot make sense of is dropped and
// logged, the rest of the file survives. Missing uids are regenerated.
func (s *Serializer) Parse(content []byte) ([]entity.Event, error) {
	if len(content) == 0 {
		return nil, errors.New("empty calendar file")
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	events := make([]entity.Event, 0)
	for i, ve := range cal.Events() {
		ev, err := s.parseVEvent(ve)
		if err != nil {
			s.logger.Warn("ics.component_dropped", "index", i, "error", err)
			continue
		}
		events = append(events, ev)
	}

	s.logger.Info("ics.parse.ok", "events", len(events))
	return events, nil
}

func (s *Serializer) parseVEvent(ve *ical.VEvent) (entity.Event, error) {
	var ev entity.Event

	ev.UID = validate.NewUID()
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil && p.Value != "" {
		ev.UID = p.Value
	}

	ev.Title = "Untitled Event"
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil && strings.TrimSpace(p.Value) != "" {
		ev.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		ev.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		ev.Location = p.Value
	}
	ev.Category = constants.General
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
		ev.Category, _ = constants.Canonicalize(p.Value)
	}

	ev.AllDay = isAllDayStart(ve)

	start, err := ve.GetStartAt()
	if err != nil {
		start, err = ve.GetAllDayStartAt()
		if err != nil {
			return ev, errors.New("missing or unparsable DTSTART")
		}
		ev.AllDay = true
	}
	ev.Start = start

	end, err := ve.GetEndAt()
	if err != nil {
		end, err = ve.GetAllDayEndAt()
	}
	if err != nil || end.Before(start) {
		// DTEND is optional; substitute the documented defaults
		if ev.AllDay {
			end = start
		} else {
			end = start.Add(time.Hour)
		}
	}
	ev.End = end

	return ev, nil
}

// isAllDayStart detects DATE-valued DTSTART: VALUE=DATE or no time part.
func isAllDayStart(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if params := p.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(p.Value, "T")
}
