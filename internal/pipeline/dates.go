package pipeline

import "time"

const dateLayout = "2006-01-02"

// DeriveDates computes the registration window from the moment of extraction.
// The effective date is the first day of that month. The expiration date is a
// fixed 365-minus-1-day offset, NOT a calendar "add 12 months": across leap
// years it drifts off "same day next year". Kept as-is until the council
// confirms the intended rule.
func DeriveDates(moment time.Time) (effective, expiration time.Time) {
	effective = time.Date(moment.Year(), moment.Month(), 1, 0, 0, 0, 0, time.UTC)
	expiration = effective.AddDate(0, 0, 365).AddDate(0, 0, -1)
	return effective, expiration
}
