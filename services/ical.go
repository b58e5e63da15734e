package services

import (
	"fmt"
	"strings"
	"time"
)

// icalEvent is one VEVENT pulled from an external feed. Dates are calendar
// dates; partner feeds carry no usable time-of-day.
type icalEvent struct {
	UID   string
	Start time.Time
	End   time.Time
}

// parseICalEvents scans line-oriented iCalendar text for VEVENT blocks and
// extracts UID, DTSTART and DTEND. Events missing any of the three are
// dropped silently; partner feeds are routinely sloppy and one bad event
// should not sink a sync.
func parseICalEvents(feed string) []icalEvent {
	var events []icalEvent
	var current *icalEvent

	for _, raw := range strings.Split(feed, "\n") {
		line := strings.TrimRight(raw, "\r")

		switch {
		case line == "BEGIN:VEVENT":
			current = &icalEvent{}
		case line == "END:VEVENT":
			if current != nil && current.UID != "" && !current.Start.IsZero() && !current.End.IsZero() {
				events = append(events, *current)
			}
			current = nil
		case current != nil:
			name, value, ok := splitICalLine(line)
			if !ok {
				continue
			}
			switch name {
			case "UID":
				current.UID = value
			case "DTSTART":
				if d, err := parseICalDate(value); err == nil {
					current.Start = d
				}
			case "DTEND":
				if d, err := parseICalDate(value); err == nil {
					current.End = d
				}
			}
		}
	}

	return events
}

// splitICalLine breaks "DTSTART;VALUE=DATE:20250910" into its property name
// and value, discarding parameters.
func splitICalLine(line string) (name, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	name = line[:idx]
	value = line[idx+1:]
	if semi := strings.Index(name, ";"); semi >= 0 {
		name = name[:semi]
	}
	return name, value, true
}

// parseICalDate reads the leading calendar date of an iCal date or
// date-time value ("20250910" or "20250910T160000Z").
func parseICalDate(value string) (time.Time, error) {
	if len(value) < 8 {
		return time.Time{}, fmt.Errorf("ical date too short: %q", value)
	}
	return time.Parse("20060102", value[:8])
}

// nightsOf expands an event into the calendar dates it occupies. DTEND is
// exclusive: calendars express checkout as the first free night, same as
// booking semantics.
func nightsOf(ev icalEvent) []time.Time {
	var nights []time.Time
	for d := DateOnly(ev.Start); d.Before(DateOnly(ev.End)); d = d.AddDate(0, 0, 1) {
		nights = append(nights, d)
	}
	return nights
}

const icalDateLayout = "20060102"

// icalWriter accumulates an RFC 5545 document with CRLF line endings.
type icalWriter struct {
	b strings.Builder
}

func (w *icalWriter) line(s string) {
	w.b.WriteString(s)
	w.b.WriteString("\r\n")
}

func (w *icalWriter) String() string {
	return w.b.String()
}
