package storage

import (
	"path/filepath"
	"testing"
)

func sp(v string) *string { return &v }

func TestReceiptUpsertByHash(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	first, err := db.UpsertReceipt("/in/receipt.png", "hash-1", "processed", sp("Troop 1"), sp(`{}`), nil)
	if err != nil {
		t.Fatal(err)
	}

	// Same content seen again replaces the row, keeping the id.
	second, err := db.UpsertReceipt("/in/copy.png", "hash-1", "processed", sp("Troop 1"), sp(`{}`), nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Fatalf("ids differ: %d vs %d", first.ID, second.ID)
	}
	if second.Path != "/in/copy.png" {
		t.Fatalf("path=%s", second.Path)
	}

	if err := db.SetReceiptArtifact(first.ID, "/out/Route_Sheet_Calumet_1_08-01-2026.xlsx"); err != nil {
		t.Fatal(err)
	}
	row, err := db.MustReceiptByID(first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if row.Status != "applied" || row.ArtifactPath == nil {
		t.Fatalf("row: %+v", row)
	}

	applied, err := db.ListReceiptsByStatus("applied", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(applied) != 1 {
		t.Fatalf("applied=%d", len(applied))
	}

	if err := db.InsertRun("trace-1", first.ID, map[string]float64{"totalMs": 12}, map[string]int{"priceTotal": 7}); err != nil {
		t.Fatal(err)
	}
}

func TestReceiptFailureRow(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	row, err := db.UpsertReceipt("/in/bad.png", "hash-2", "failed", nil, nil, sp("ocr engine failed"))
	if err != nil {
		t.Fatal(err)
	}
	if row.ErrorText == nil || *row.ErrorText == "" {
		t.Fatal("missing error text")
	}
	if row.RecordJSON != nil {
		t.Fatalf("unexpected record json: %v", *row.RecordJSON)
	}
}
