package feed

import (
	"testing"
	"time"
)

func TestLastMondayUTC(t *testing.T) {
	tests := []struct {
		name      string
		reference string
		want      string
	}{
		{"from a wednesday", "2026-08-26T15:04:05Z", "2026-08-17"},
		{"from a monday", "2026-08-24T00:00:00Z", "2026-08-17"},
		{"from a sunday", "2026-08-23T23:59:59Z", "2026-08-10"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := time.Parse(time.RFC3339, tc.reference)
			if err != nil {
				t.Fatalf("parse reference: %v", err)
			}
			got := LastMondayUTC(ref)
			if got.Format(dateLayout) != tc.want {
				t.Fatalf("LastMondayUTC(%s) = %s, want %s", tc.reference, got.Format(dateLayout), tc.want)
			}
			if got.Weekday() != time.Monday {
				t.Fatalf("result %s is a %s, want Monday", got, got.Weekday())
			}
			if h, m, s := got.Clock(); h != 0 || m != 0 || s != 0 {
				t.Fatalf("result not truncated to midnight: %s", got)
			}
		})
	}
}

func TestMondays(t *testing.T) {
	dates, err := Mondays("2026-08-03", "2026-08-24")
	if err != nil {
		t.Fatalf("Mondays: %v", err)
	}
	want := []string{"2026-08-03", "2026-08-10", "2026-08-17", "2026-08-24"}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates, want %d: %v", len(dates), len(want), dates)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("dates[%d] = %s, want %s", i, dates[i], want[i])
		}
	}
}

func TestMondaysSingleDate(t *testing.T) {
	dates, err := Mondays("2026-08-17", "2026-08-17")
	if err != nil {
		t.Fatalf("Mondays: %v", err)
	}
	if len(dates) != 1 || dates[0] != "2026-08-17" {
		t.Fatalf("single-date range = %v, want [2026-08-17]", dates)
	}
}

func TestMondaysBadInput(t *testing.T) {
	if _, err := Mondays("not-a-date", "2026-08-17"); err == nil {
		t.Fatal("expected error for malformed start date")
	}
	if _, err := Mondays("2026-08-17", "17/08/2026"); err == nil {
		t.Fatal("expected error for malformed end date")
	}
}
