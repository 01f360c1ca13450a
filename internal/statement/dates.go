package statement

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// dateLayouts is the parse priority order for statement date cells. Ambiguous
// day/month values resolve to whichever layout matches first, so US
// month-first forms outrank their day-first twins. Unpadded verbs accept both
// padded and unpadded cells.
var dateLayouts = []string{
	"1/2/2006",
	"2006-1-2",
	"1-2-2006",
	"2/1/2006",
	"2006/1/2",
	"Jan 2, 2006",
	"2 Jan 2006",
	"1/2/06",
	"2/1/06",
}

// ParseDate tries each supported layout in priority order and returns the
// first match as a civil date.
func ParseDate(s string) (civil.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), true
		}
	}
	return civil.Date{}, false
}

// looksLikeDate reports whether a sample cell is plausibly a date. Only column
// scoring uses this; record extraction re-parses each cell itself, without the
// length floor.
func looksLikeDate(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 6 {
		return false
	}
	_, ok := ParseDate(s)
	return ok
}
