package pipeline

import (
	"testing"
	"time"
)

func TestDeriveDatesFirstOfMonth(t *testing.T) {
	moment := time.Date(2026, time.August, 30, 15, 4, 5, 0, time.UTC)
	effective, _ := DeriveDates(moment)
	if got := effective.Format(dateLayout); got != "2026-08-01" {
		t.Fatalf("effective=%s", got)
	}
}

func TestDeriveDatesFixedOffset(t *testing.T) {
	cases := []struct {
		name    string
		moment  time.Time
		wantExp string
	}{
		// Offset crosses Feb 29, so it lands short of "same day next year".
		{name: "window spans leap day", moment: time.Date(2023, time.March, 10, 0, 0, 0, 0, time.UTC), wantExp: "2024-02-28"},
		{name: "start in leap February", moment: time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC), wantExp: "2025-01-30"},
		{name: "plain year", moment: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), wantExp: "2026-05-31"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			effective, expiration := DeriveDates(tc.moment)
			if got := expiration.Format(dateLayout); got != tc.wantExp {
				t.Fatalf("expiration=%s want %s", got, tc.wantExp)
			}
			if days := int(expiration.Sub(effective).Hours() / 24); days != 364 {
				t.Fatalf("offset=%d days", days)
			}
		})
	}
}
