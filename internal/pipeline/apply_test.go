package pipeline

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"routesheet/internal"
)

// mkTemplate writes a minimal route sheet template. C8 (Unit Charter) carries
// a preset value so tests can check it survives mapping untouched.
func mkTemplate(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetCellValue(sheet, "A4", "Program")
	_ = f.SetCellValue(sheet, "C8", 1)
	path := filepath.Join(dir, "RouteSheetTemplateV2.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func testRecord() internal.Record {
	name := "Calumet"
	number := 1
	unit := "123"
	program := internal.ProgramCubScouts
	return internal.Record{
		CouncilNumber:   "456",
		DistrictName:    &name,
		DistrictNumber:  &number,
		LocalUnitNumber: &unit,
		Program:         &program,
		EffectiveDate:   "2026-08-01",
		Term:            internal.Term12Months,
		ExpirationDate:  "2027-07-31",
		Prices: func() map[string]int {
			p := internal.NewPriceMap()
			p[internal.PriceYouthRegistration] = 5
			p[internal.PriceAdultRegistration] = 2
			return p
		}(),
	}
}

func cellValue(t *testing.T, path, cell string) string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	value, err := f.GetCellValue(f.GetSheetName(0), cell)
	if err != nil {
		t.Fatal(err)
	}
	return value
}

func TestApplyWritesHeaderAndPrices(t *testing.T) {
	tmp := t.TempDir()
	m := Mapper{TemplatePath: mkTemplate(t, tmp), OutputDir: filepath.Join(tmp, "out")}

	out, err := m.Apply(testRecord())
	if err != nil {
		t.Fatal(err)
	}

	checks := map[string]string{
		"B4":  "Cub Scouts",
		"C4":  "456",
		"D4":  "1",
		"E4":  "Pack",
		"G4":  "123",
		"H4":  "08/01/2026",
		"I4":  "12 months",
		"J4":  "07/31/2027",
		"C9":  "5",
		"C12": "2",
		"C10": "0",
	}
	for cell, want := range checks {
		if got := cellValue(t, out, cell); got != want {
			t.Fatalf("%s=%q want %q", cell, got, want)
		}
	}

	// Unit Charter is never in the Record; the template default stays.
	if got := cellValue(t, out, "C8"); got != "1" {
		t.Fatalf("C8=%q", got)
	}
}

func TestApplyUnknownProgram(t *testing.T) {
	tmp := t.TempDir()
	m := Mapper{TemplatePath: mkTemplate(t, tmp), OutputDir: filepath.Join(tmp, "out")}

	rec := testRecord()
	rec.Program = nil
	out, err := m.Apply(rec)
	if err != nil {
		t.Fatal(err)
	}
	if got := cellValue(t, out, "E4"); got != "Unknown" {
		t.Fatalf("E4=%q", got)
	}
	if got := cellValue(t, out, "B4"); got != "" {
		t.Fatalf("B4=%q", got)
	}
}

func TestApplyIdempotent(t *testing.T) {
	tmp := t.TempDir()
	m := Mapper{TemplatePath: mkTemplate(t, tmp), OutputDir: filepath.Join(tmp, "out")}

	rec := testRecord()
	first, err := m.Apply(rec)
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Apply(rec)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("paths differ: %s vs %s", first, second)
	}
	for _, cell := range []string{"B4", "C4", "D4", "E4", "G4", "H4", "I4", "J4", "C9", "C12"} {
		before := cellValue(t, first, cell)
		after := cellValue(t, second, cell)
		if before != after {
			t.Fatalf("%s changed between applies: %q vs %q", cell, before, after)
		}
	}
}

func TestApplyArtifactName(t *testing.T) {
	rec := testRecord()
	if got := ArtifactName(rec); got != "Route_Sheet_Calumet_123_08-01-2026.xlsx" {
		t.Fatalf("name=%s", got)
	}

	rec.DistrictName = nil
	rec.LocalUnitNumber = nil
	if got := ArtifactName(rec); got != "Route_Sheet_Unknown_Unknown_08-01-2026.xlsx" {
		t.Fatalf("name=%s", got)
	}

	spaced := "Prairie Dunes"
	rec.DistrictName = &spaced
	if got := ArtifactName(rec); got != "Route_Sheet_Prairie_Dunes_Unknown_08-01-2026.xlsx" {
		t.Fatalf("name=%s", got)
	}
}

func TestApplyTemplateMissing(t *testing.T) {
	tmp := t.TempDir()
	m := Mapper{TemplatePath: filepath.Join(tmp, "nope.xlsx"), OutputDir: tmp}
	_, err := m.Apply(testRecord())
	if !errors.Is(err, internal.ErrTemplateNotFound) {
		t.Fatalf("err=%v", err)
	}
}
