package pipeline

import (
	"time"

	"routesheet/internal"
)

// Assemble merges parser output, derived dates, and fixed constants into the
// final Record. Each source contributes disjoint fields, so there are no
// precedence conflicts. Missing parser fields stay absent; whether an
// incomplete Record is acceptable is the mapper caller's call.
func Assemble(partial internal.PartialRecord, effective, expiration time.Time, councilNumber string) internal.Record {
	prices := partial.Prices
	if prices == nil {
		prices = internal.NewPriceMap()
	}
	return internal.Record{
		CouncilNumber:   councilNumber,
		DistrictName:    partial.DistrictName,
		DistrictNumber:  partial.DistrictNumber,
		LocalUnitNumber: partial.LocalUnitNumber,
		Program:         partial.Program,
		EffectiveDate:   effective.Format(dateLayout),
		Term:            internal.Term12Months,
		ExpirationDate:  expiration.Format(dateLayout),
		Prices:          prices,
	}
}
