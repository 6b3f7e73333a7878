package timetable

import (
	"academia/internal/apperr"
)

var ErrSlotConflict = apperr.Conflict("Time slot already occupied")

// Mode selects how SlotGuard decides that two entries collide.
type Mode string

const (
	// ModeStart treats entries as colliding only when they share section, day and start time.
	ModeStart Mode = "start"
	// ModeOverlap treats any overlap of [start, end) on the same section and day as a collision.
	ModeOverlap Mode = "overlap"
)

// ParseMode returns the named mode, defaulting to ModeStart.
func ParseMode(s string) Mode {
	if Mode(s) == ModeOverlap {
		return ModeOverlap
	}
	return ModeStart
}

// SlotGuard rejects timetable entries that would double-book a section.
type SlotGuard struct {
	mode Mode
}

func NewSlotGuard(mode Mode) SlotGuard {
	return SlotGuard{mode: ParseMode(string(mode))}
}

func (g SlotGuard) Mode() Mode { return g.mode }

// Check returns ErrSlotConflict when candidate collides with one of existing.
// Times are zero-padded HH:MM strings, so lexical order is chronological.
func (g SlotGuard) Check(existing []Entry, candidate Entry) error {
	for _, e := range existing {
		if e.SectionID != candidate.SectionID || e.DayOfWeek != candidate.DayOfWeek {
			continue
		}
		if e.StartTime == candidate.StartTime {
			return ErrSlotConflict
		}
		if g.mode == ModeOverlap && e.StartTime < candidate.EndTime && candidate.StartTime < e.EndTime {
			return ErrSlotConflict
		}
	}
	return nil
}
