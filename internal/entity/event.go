package entity

import (
	"time"

	"github.com/calshare/calshare/constants"
)

// Event represents a validated calendar entry for data transfer between layers.
// Every Event emitted by the pipeline satisfies: non-empty Title, Start <= End,
// Category drawn from the fixed taxonomy.
type Event struct {
	UID         string             `json:"uid"`
	Title       string             `json:"title"`
	Start       time.Time          `json:"start_time"`
	End         time.Time          `json:"end_time"`
	Location    string             `json:"location,omitempty"`
	Description string             `json:"description,omitempty"`
	Category    constants.Category `json:"category"`
	AllDay      bool               `json:"all_day"`
}
