package schedule

import (
	"testing"
	"time"
)

func TestSince(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	now := time.Date(2024, 11, 20, 9, 30, 0, 0, loc)
	items := []Item{
		{Date: "2024-11-10", Purpose: "old"},
		{Date: "2024-11-17", Purpose: "cutoff"},
		{Date: "2024-11-19", Purpose: "yesterday"},
		{Date: "2024-11-25", Purpose: "future"},
		{Date: "someday", Purpose: "unparsed"},
	}

	tests := []struct {
		name string
		days int
		want []string
	}{
		{"zero keeps all", 0, []string{"old", "cutoff", "yesterday", "future", "unparsed"}},
		{"three days", 3, []string{"cutoff", "yesterday", "future", "unparsed"}},
		{"one day", 1, []string{"yesterday", "future", "unparsed"}},
		{"thirty days", 30, []string{"old", "cutoff", "yesterday", "future", "unparsed"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Since(items, now, tt.days)
			if len(got) != len(tt.want) {
				t.Fatalf("Since = %+v, want purposes %v", got, tt.want)
			}
			for i, p := range tt.want {
				if got[i].Purpose != p {
					t.Errorf("got[%d].Purpose = %q, want %q", i, got[i].Purpose, p)
				}
			}
		})
	}
}

func TestSince_UsesNowLocation(t *testing.T) {
	// 2024-11-20 23:30 UTC is already 2024-11-21 in Seoul.
	utc := time.Date(2024, 11, 20, 23, 30, 0, 0, time.UTC)
	kst := utc.In(time.FixedZone("KST", 9*60*60))
	items := []Item{{Date: "2024-11-19"}}

	if got := Since(items, utc, 1); len(got) != 1 {
		t.Errorf("UTC: got %d items, want 1", len(got))
	}
	if got := Since(items, kst, 1); len(got) != 0 {
		t.Errorf("KST: got %d items, want 0", len(got))
	}
}

func TestDedupe(t *testing.T) {
	items := []Item{
		{Date: "2024-11-21", Time: "10:00", Purpose: "hospital"},
		{Date: "2024-11-22", Time: "20:30", Purpose: "walk"},
		{Date: "2024-11-21", Time: "10:00", Purpose: "hospital checkup", Comment: "updated"},
	}
	got := Dedupe(items)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Purpose != "hospital checkup" {
		t.Errorf("got[0].Purpose = %q, want the later duplicate", got[0].Purpose)
	}
	if got[1].Purpose != "walk" {
		t.Errorf("got[1].Purpose = %q, want walk", got[1].Purpose)
	}
}

func TestItem_Day(t *testing.T) {
	if _, err := (Item{Date: "2024-13-01"}).Day(time.UTC); err == nil {
		t.Error("expected error for invalid month")
	}
	d, err := (Item{Date: " 2024-11-21 "}).Day(time.UTC)
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if d.Day() != 21 {
		t.Errorf("Day = %v", d)
	}
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	if loc.String() != DefaultTimezone {
		t.Errorf("LoadLocation(\"\") = %s, want %s", loc, DefaultTimezone)
	}
	if _, err := LoadLocation("Mars/Olympus"); err == nil {
		t.Error("expected error for unknown zone")
	}
}
