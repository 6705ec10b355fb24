// Package stamp formats audit timestamps for API payloads.
//
// Clients that predate this service expect created/updated fields in the
// form "28-08-2026_14:05:09PM": day first, 24-hour clock, and an AM/PM
// marker appended to the 24-hour time. The marker is redundant but the
// format is what clients parse, so it is frozen here rather than left to
// individual handlers.
package stamp

import "time"

// Layout is the wire format for audit timestamps. "15" keeps the clock
// 24-hour while "PM" appends the marker clients expect.
const Layout = "02-01-2006_15:04:05PM"

// Format renders t in the audit wire format, in UTC.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}
