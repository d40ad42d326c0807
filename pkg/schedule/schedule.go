// Package schedule defines the schedule items extracted from conversations
// and the date arithmetic applied to them.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the layout of Item.Date.
	DateLayout = "2006-01-02"

	// TimeLayout is the layout of Item.Time.
	TimeLayout = "15:04"

	// DefaultTimezone is used when no timezone is configured.
	DefaultTimezone = "Asia/Seoul"
)

// Item is one appointment, plan or errand mentioned in a conversation.
type Item struct {
	Date        string `json:"date" yaml:"date" jsonschema:"date in yyyy-mm-dd"`
	Time        string `json:"time" yaml:"time" jsonschema:"time in hh:MM, 24-hour"`
	Destination string `json:"destination" yaml:"destination" jsonschema:"where the schedule takes place"`
	Purpose     string `json:"purpose" yaml:"purpose" jsonschema:"what the schedule is for"`
	IsDone      bool   `json:"is_done" yaml:"is_done" jsonschema:"whether the schedule has already happened"`
	Comment     string `json:"comment" yaml:"comment" jsonschema:"follow-up question for the user, or what was corrected"`
}

// Day parses Date in loc.
func (it Item) Day(loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(it.Date), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("schedule: invalid date %q: %w", it.Date, err)
	}
	return d, nil
}

// Key identifies an item by when it happens. Two items with the same key are
// duplicates.
func (it Item) Key() string {
	return strings.TrimSpace(it.Date) + " " + strings.TrimSpace(it.Time)
}

// Since returns the items dated no more than days days before now's date.
// Items whose date cannot be parsed are kept. A non-positive days returns
// items unchanged.
func Since(items []Item, now time.Time, days int) []Item {
	if days <= 0 {
		return items
	}
	loc := now.Location()
	y, m, d := now.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, -days)

	out := make([]Item, 0, len(items))
	for _, it := range items {
		day, err := it.Day(loc)
		if err == nil && day.Before(cutoff) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Dedupe drops items whose Key was already seen, keeping the last occurrence
// at the position of the first.
func Dedupe(items []Item) []Item {
	index := make(map[string]int, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		k := it.Key()
		if i, ok := index[k]; ok {
			out[i] = it
			continue
		}
		index[k] = len(out)
		out = append(out, it)
	}
	return out
}

// LoadLocation loads name, falling back to DefaultTimezone when name is
// empty.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("schedule: load timezone %q: %w", name, err)
	}
	return loc, nil
}
