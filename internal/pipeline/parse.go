package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"routesheet/internal"
)

// The council's districts. Closed table; a receipt naming anything else
// simply leaves the district fields absent.
var districts = []struct {
	Name   string
	Number int
}{
	{"Calumet", 1},
	{"Prairie Dunes", 3},
	{"Thunderbird", 4},
	{"Checaugau", 5},
	{"Iron Horse", 6},
	{"Tri-Star", 7},
	{"Five Creeks", 9},
	{"Tall Grass", 11},
	{"Trailblazer", 12},
}

var unitKeywords = []string{"Troop", "Pack", "Crew", "Ship", "Post"}

// Program classification pairs the formal program name with its unit-type
// keyword. Checked in priority order; the first branch satisfied on a line
// wins for that line.
var programRules = []struct {
	Program internal.Program
	Keyword string
}{
	{internal.ProgramScoutsBSA, "Troop"},
	{internal.ProgramCubScouts, "Pack"},
	{internal.ProgramVenturing, "Crew"},
	{internal.ProgramSeaScouts, "Ship"},
	{internal.ProgramExploring, "Post"},
}

var (
	priceLinePattern = regexp.MustCompile(`(?i)(\d+)\s+(Youth BL|Youth Renewal|Youth New|Adult Renewal|Adult New|Youth Program Fee|Adult Program Fee)`)
	digitRunPattern  = regexp.MustCompile(`\d+`)
)

// Parse folds over the raw OCR lines and accumulates a PartialRecord. OCR
// line order is unreliable, so a later match for the same field overwrites an
// earlier one; price lines are the exception and accumulate. Unmatched lines
// are ignored, never an error.
func Parse(raw string) internal.PartialRecord {
	acc := internal.PartialRecord{Prices: internal.NewPriceMap()}
	for _, line := range splitLines(raw) {
		acc = mergeLine(acc, line)
	}
	return acc
}

// mergeLine evaluates every rule against one line; a single line can trigger
// several of them.
func mergeLine(acc internal.PartialRecord, line string) internal.PartialRecord {
	lower := strings.ToLower(line)

	for _, d := range districts {
		if strings.Contains(lower, strings.ToLower(d.Name)) {
			name, number := d.Name, d.Number
			acc.DistrictName = &name
			acc.DistrictNumber = &number
		}
	}

	if containsAny(line, unitKeywords) {
		if digits := digitRunPattern.FindString(line); digits != "" {
			acc.LocalUnitNumber = &digits
		}
	}

	for _, r := range programRules {
		if strings.Contains(line, string(r.Program)) || strings.Contains(line, r.Keyword) {
			program := r.Program
			acc.Program = &program
			break
		}
	}

	if m := priceLinePattern.FindStringSubmatch(line); m != nil {
		count, err := strconv.Atoi(m[1])
		if err == nil {
			if category := priceCategory(m[2]); category != "" {
				acc.Prices[category] += count
			}
		}
	}

	return acc
}

func priceCategory(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.Contains(label, "youth bl"):
		return internal.PriceYouthSLSubscription
	case strings.Contains(label, "program fee"):
		return internal.PriceProgramFee
	case strings.Contains(label, "youth renewal"), strings.Contains(label, "youth new"):
		return internal.PriceYouthRegistration
	case strings.Contains(label, "adult renewal"), strings.Contains(label, "adult new"):
		return internal.PriceAdultRegistration
	default:
		return ""
	}
}

func containsAny(line string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}
