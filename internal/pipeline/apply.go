package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"routesheet/internal"
)

// Mapper fills the fixed-layout route sheet template from a Record and saves
// it under a deterministic, content-derived filename. The template is only
// ever read; each invocation opens its own handle.
type Mapper struct {
	TemplatePath string
	OutputDir    string
}

// Template contract: row 4 holds the header fields, rows 8-18 column C the
// price fields. Any template revision must move this table in lockstep.
var headerCells = []struct {
	Cell  string
	Value func(internal.Record) any
}{
	{"B4", func(r internal.Record) any { return derefProgram(r.Program) }},
	{"C4", func(r internal.Record) any { return r.CouncilNumber }},
	{"D4", func(r internal.Record) any { return derefInt(r.DistrictNumber) }},
	{"E4", func(r internal.Record) any { return UnitType(r.Program) }},
	{"G4", func(r internal.Record) any { return derefString(r.LocalUnitNumber) }},
	{"H4", func(r internal.Record) any { return formatUSDate(r.EffectiveDate) }},
	{"I4", func(r internal.Record) any { return r.Term }},
	{"J4", func(r internal.Record) any { return formatUSDate(r.ExpirationDate) }},
}

var priceCells = []struct {
	Category string
	Cell     string
}{
	{"Unit Charter", "C8"},
	{internal.PriceYouthRegistration, "C9"},
	{internal.PriceYouthSLSubscription, "C10"},
	{internal.PriceYouthTransfer, "C11"},
	{internal.PriceAdultRegistration, "C12"},
	{internal.PriceMultiplePositionChange, "C13"},
	{internal.PriceAdultTransfer, "C14"},
	{internal.PriceAdultSLSubscription, "C15"},
	{internal.PriceYouthExploring, "C16"},
	{internal.PriceAdultExploring, "C17"},
	{internal.PriceProgramFee, "C18"},
}

var unitTypes = map[internal.Program]string{
	internal.ProgramScoutsBSA: "Troop",
	internal.ProgramCubScouts: "Pack",
	internal.ProgramVenturing: "Crew",
	internal.ProgramSeaScouts: "Ship",
	internal.ProgramExploring: "Post",
	"District":                "Non-Unit",
	"Council":                 "Non-Unit",
}

// UnitType maps a program to the unit-type label written into the sheet.
func UnitType(program *internal.Program) string {
	if program == nil {
		return "Unknown"
	}
	if label, ok := unitTypes[*program]; ok {
		return label
	}
	return "Unknown"
}

// Apply writes the Record into the template and saves the artifact. Identical
// Records derive identical filenames, so a recurring input overwrites its
// prior artifact rather than piling up copies.
func (m Mapper) Apply(rec internal.Record) (string, error) {
	if _, err := os.Stat(m.TemplatePath); err != nil {
		return "", fmt.Errorf("%w: %s", internal.ErrTemplateNotFound, m.TemplatePath)
	}

	f, err := excelize.OpenFile(m.TemplatePath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", internal.ErrTemplateNotFound, m.TemplatePath, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for _, hc := range headerCells {
		_ = f.SetCellValue(sheet, hc.Cell, hc.Value(rec))
	}

	// Categories with an explicit zero are written; a category entirely
	// absent from the Record (Unit Charter) keeps the template default.
	for _, pc := range priceCells {
		if value, ok := rec.Prices[pc.Category]; ok {
			_ = f.SetCellValue(sheet, pc.Cell, value)
		}
	}

	outputPath := filepath.Join(m.OutputDir, ArtifactName(rec))
	if err := os.MkdirAll(m.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", internal.ErrTemplateWrite, err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("%w: %s: %v", internal.ErrTemplateWrite, outputPath, err)
	}
	return outputPath, nil
}

// ArtifactName derives the output filename from district, unit, and effective
// date. Absent fields fall back to "Unknown".
func ArtifactName(rec internal.Record) string {
	district := "Unknown"
	if rec.DistrictName != nil {
		district = strings.ReplaceAll(*rec.DistrictName, " ", "_")
	}
	unit := "Unknown"
	if rec.LocalUnitNumber != nil {
		unit = *rec.LocalUnitNumber
	}
	date := strings.ReplaceAll(formatUSDate(rec.EffectiveDate), "/", "-")
	return fmt.Sprintf("Route_Sheet_%s_%s_%s.xlsx", district, unit, date)
}

// formatUSDate reformats a stored YYYY-MM-DD date to MM/DD/YYYY for the
// sheet. A pure reformat: calendar dates, no timezone involved.
func formatUSDate(date string) string {
	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return parsed.Format("01/02/2006")
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func derefProgram(v *internal.Program) string {
	if v == nil {
		return ""
	}
	return string(*v)
}
