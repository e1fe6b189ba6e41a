// Package validate turns loose model candidates into events that honor the
// data-model invariants: non-empty title, start <= end, category in the
// fixed taxonomy, fresh uid.
package validate

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calshare/calshare/constants"
	"github.com/calshare/calshare/internal/entity"
	"github.com/calshare/calshare/internal/llm"
)

type Validator struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// Validate normalizes, repairs, or drops each candidate independently and
// returns the surviving events in candidate order, as one atomic list.
// Duplicate-looking events are preserved; deduplication is not our call.
func (v *Validator) Validate(candidates []llm.CandidateEvent) []entity.Event {
	events := make([]entity.Event, 0, len(candidates))
	for i, c := range candidates {
		ev, ok := v.validateOne(i, c)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	if len(events) < len(candidates) {
		v.logger.Info("validate.batch",
			"candidates", len(candidates),
			"kept", len(events),
			"dropped", len(candidates)-len(events),
		)
	}
	return events
}

func (v *Validator) validateOne(idx int, c llm.CandidateEvent) (entity.Event, bool) {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		v.logger.Warn("validate.candidate_dropped", "index", idx, "reason", "empty title")
		return entity.Event{}, false
	}

	start, bareDate, err := ParseFlexible(c.StartTime)
	if err != nil {
		v.logger.Warn("validate.candidate_dropped",
			"index", idx, "title", title, "reason", "bad start_time", "error", err)
		return entity.Event{}, false
	}
	allDay := c.AllDay || bareDate

	end, endBare, err := ParseFlexible(c.EndTime)
	if err != nil || end.Before(start) {
		if allDay {
			end = endOfDay(start)
		} else {
			end = start.Add(time.Hour)
		}
	} else if allDay && endBare {
		end = endOfDay(end)
	}

	category, recognized := constants.Canonicalize(c.Category)
	if !recognized && strings.TrimSpace(c.Category) != "" {
		v.logger.Debug("validate.category_defaulted", "index", idx, "raw", c.Category)
	}

	return entity.Event{
		UID:         NewUID(),
		Title:       title,
		Start:       start,
		End:         end,
		Location:    strings.TrimSpace(c.Location),
		Description: strings.TrimSpace(c.Description),
		Category:    category,
		AllDay:      allDay,
	}, true
}

// NewUID mints an event identifier from a v7 UUID (timestamp plus random
// bits), never from candidate content. Re-running the same batch yields
// different uids on purpose.
func NewUID() string {
	u, err := uuid.NewV7()
	if err != nil {
		u = uuid.New()
	}
	hex := strings.ReplaceAll(u.String(), "-", "")
	return "evt-" + hex[:12]
}
