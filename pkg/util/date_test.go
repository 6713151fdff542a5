package util

import (
	"strconv"
	"testing"
	"time"
)

func TestDayTruncatesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	in := time.Date(2024, 3, 2, 3, 0, 0, 0, loc) // 2024-03-01T20:00Z
	got := Day(in)
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestAddDaysAndBetween(t *testing.T) {
	d := time.Date(2024, 2, 28, 15, 0, 0, 0, time.UTC)
	got := AddDays(d, 2)
	if FormatDay(got) != "2024-03-01" {
		t.Fatalf("unexpected day %s", FormatDay(got))
	}
	if n := DaysBetween(d, got); n != 2 {
		t.Fatalf("expected 2 days, got %d", n)
	}
}

func TestParseDay(t *testing.T) {
	got, ok := ParseDay("2024-10-10")
	if !ok || FormatDay(got) != "2024-10-10" {
		t.Fatalf("date-only parse failed: %v %v", got, ok)
	}

	got, ok = ParseDay("2024-10-10T23:10:10Z")
	if !ok || FormatDay(got) != "2024-10-10" {
		t.Fatalf("rfc3339 parse failed: %v %v", got, ok)
	}

	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok = ParseDay(strconv.FormatInt(ts, 10))
	if !ok || FormatDay(got) != "2024-10-10" {
		t.Fatalf("unix parse failed: %v %v", got, ok)
	}

	if _, ok := ParseDay("yesterday"); ok {
		t.Fatalf("expected failure")
	}
}

func TestUnixMilli(t *testing.T) {
	got := UnixMilli(1704067200000)
	if FormatDay(got) != "2024-01-01" {
		t.Fatalf("unexpected %v", got)
	}
}
