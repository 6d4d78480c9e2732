package cli

import (
	"fmt"
	"strings"
	"time"
)

// dueLayouts are tried in order. Day-first comes first to match how dates
// are printed by list.
var dueLayouts = []string{
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC3339,
}

const (
	listDateLayout = "02/01/2006"
	viewDateLayout = "15:04, 02-01-2006"
)

// parseDue parses a due date in loc. A bare date means midnight.
func parseDue(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse due date %q: expected dd/mm/yyyy [hh:mm] or yyyy-mm-dd [hh:mm]", s)
}
