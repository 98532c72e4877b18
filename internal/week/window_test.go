package week

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestForInstantSundayResolvesToSameWeek(t *testing.T) {
	// 2024-02-04 is a Sunday; its week started on Monday 2024-01-29.
	ref := time.Date(2024, time.February, 4, 15, 30, 0, 0, time.UTC)

	got := ForInstant(ref, Current)
	want := Window{
		Start: date(2024, time.January, 29),
		End:   date(2024, time.February, 4),
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("window mismatch (-want +got):\n%s", diff)
	}
}

func TestForInstantStableAcrossWeek(t *testing.T) {
	// Every instant of the same Monday-Sunday span maps to the same window.
	base := ForInstant(date(2024, time.January, 29), Current)

	for day := 0; day < 7; day++ {
		for _, hour := range []int{0, 9, 23} {
			ref := time.Date(2024, time.January, 29+day, hour, 17, 3, 0, time.UTC)
			got := ForInstant(ref, Current)
			if diff := cmp.Diff(base, got); diff != "" {
				t.Errorf("ref=%v window mismatch (-want +got):\n%s", ref, diff)
			}
		}
	}
}

func TestForInstantOffsets(t *testing.T) {
	ref := date(2024, time.February, 7) // Wednesday

	tests := []struct {
		name string
		off  Offset
		want Window
	}{
		{"previous", Previous, Window{Start: date(2024, time.January, 29), End: date(2024, time.February, 4)}},
		{"current", Current, Window{Start: date(2024, time.February, 5), End: date(2024, time.February, 11)}},
		{"next", Next, Window{Start: date(2024, time.February, 12), End: date(2024, time.February, 18)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForInstant(ref, tt.off)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("window mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNextEqualsCurrentOfFollowingMonday(t *testing.T) {
	refs := []time.Time{
		date(2024, time.February, 4),
		time.Date(2023, time.December, 31, 23, 59, 0, 0, time.UTC),
		date(2025, time.June, 16),
	}

	for _, ref := range refs {
		next := ForInstant(ref, Next)
		stepped := ForInstant(ForInstant(ref, Current).Start.AddDate(0, 0, 7), Current)
		if diff := cmp.Diff(stepped, next); diff != "" {
			t.Errorf("ref=%v next/stepped mismatch (-want +got):\n%s", ref, diff)
		}
	}
}

func TestWindowsContiguous(t *testing.T) {
	ref := date(2024, time.March, 14)
	prev := ForInstant(ref, Previous)
	cur := ForInstant(ref, Current)
	next := ForInstant(ref, Next)

	if got := prev.End.AddDate(0, 0, 1); !got.Equal(cur.Start) {
		t.Errorf("previous window ends %v, current starts %v", prev.End, cur.Start)
	}
	if got := cur.End.AddDate(0, 0, 1); !got.Equal(next.Start) {
		t.Errorf("current window ends %v, next starts %v", cur.End, next.Start)
	}
}

func TestLabels(t *testing.T) {
	w := ForInstant(date(2024, time.February, 4), Current)

	if got, want := w.Label(), "2024.01.29 ~ 2024.02.04"; got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
	if got, want := w.ISOLabel(), "2024-W05"; got != want {
		t.Errorf("ISOLabel() = %q, want %q", got, want)
	}
	if got, want := w.FromDate(), "2024-01-29"; got != want {
		t.Errorf("FromDate() = %q, want %q", got, want)
	}
	if got, want := w.ToDate(), "2024-02-04"; got != want {
		t.Errorf("ToDate() = %q, want %q", got, want)
	}
}

func TestContainsCountsWholeSunday(t *testing.T) {
	w := ForInstant(date(2024, time.February, 1), Current)

	inside := time.Date(2024, time.February, 4, 23, 59, 59, 0, time.UTC)
	if !w.Contains(inside) {
		t.Errorf("Contains(%v) = false, want true", inside)
	}
	outside := time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC)
	if w.Contains(outside) {
		t.Errorf("Contains(%v) = true, want false", outside)
	}
}

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in      string
		want    Offset
		wantErr bool
	}{
		{"current", Current, false},
		{"", Current, false},
		{"prev", Previous, false},
		{"previous", Previous, false},
		{"next", Next, false},
		{"NEXT", Next, false},
		{" current ", Current, false},
		{"tomorrow", Current, true},
		{"-1", Current, true},
	}

	for _, tt := range tests {
		got, err := ParseOffset(tt.in)
		if tt.wantErr {
			if !errors.Is(err, domain.ErrInvalidOffset) {
				t.Errorf("ParseOffset(%q) error = %v, want ErrInvalidOffset", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseOffset(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOffset(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
