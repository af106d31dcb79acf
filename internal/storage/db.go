package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"routesheet/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS receipts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  path TEXT NOT NULL,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'processed',
  rawText TEXT,
  recordJson TEXT,
  artifactPath TEXT,
  errorText TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(hash)
);
CREATE INDEX IF NOT EXISTS idx_receipts_status ON receipts(status);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  receiptId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(receiptId) REFERENCES receipts(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// UpsertReceipt records one processed document keyed by content hash, so a
// re-run of the same file replaces its prior outcome instead of duplicating.
func (d *DB) UpsertReceipt(path, hash, status string, rawText, recordJSON, errorText *string) (internal.ReceiptRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO receipts (path, hash, status, rawText, recordJson, errorText)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(hash) DO UPDATE SET
  path=excluded.path,
  status=excluded.status,
  rawText=excluded.rawText,
  recordJson=excluded.recordJson,
  errorText=excluded.errorText,
  updatedAt=CURRENT_TIMESTAMP
`, path, hash, status, rawText, recordJSON, errorText)
	if err != nil {
		return internal.ReceiptRow{}, err
	}

	row, err := d.GetReceiptByHash(hash)
	if err != nil {
		return internal.ReceiptRow{}, err
	}
	if row == nil {
		return internal.ReceiptRow{}, errors.New("failed to upsert receipt")
	}
	return *row, nil
}

func (d *DB) GetReceiptByHash(hash string) (*internal.ReceiptRow, error) {
	var row internal.ReceiptRow
	err := d.conn.QueryRow(`
SELECT id, path, hash, status, rawText, recordJson, artifactPath, errorText
FROM receipts WHERE hash = ?
`, hash).Scan(
		&row.ID, &row.Path, &row.Hash, &row.Status, &row.RawText, &row.RecordJSON, &row.ArtifactPath, &row.ErrorText,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetReceiptByID(id int) (*internal.ReceiptRow, error) {
	var row internal.ReceiptRow
	err := d.conn.QueryRow(`
SELECT id, path, hash, status, rawText, recordJson, artifactPath, errorText
FROM receipts WHERE id = ?
`, id).Scan(
		&row.ID, &row.Path, &row.Hash, &row.Status, &row.RawText, &row.RecordJSON, &row.ArtifactPath, &row.ErrorText,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListReceiptsByStatus(status string, limit int) ([]internal.ReceiptRow, error) {
	query := `
SELECT id, path, hash, status, rawText, recordJson, artifactPath, errorText
FROM receipts`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY updatedAt DESC LIMIT ?`
	args = append(args, limit)

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ReceiptRow
	for rows.Next() {
		var row internal.ReceiptRow
		if err := rows.Scan(&row.ID, &row.Path, &row.Hash, &row.Status, &row.RawText, &row.RecordJSON, &row.ArtifactPath, &row.ErrorText); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateReceiptStatus(receiptID int, status string) error {
	_, err := d.conn.Exec(`UPDATE receipts SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, receiptID)
	return err
}

func (d *DB) SetReceiptArtifact(receiptID int, artifactPath string) error {
	_, err := d.conn.Exec(`
UPDATE receipts SET artifactPath = ?, status = 'applied', updatedAt = CURRENT_TIMESTAMP WHERE id = ?
`, artifactPath, receiptID)
	return err
}

func (d *DB) InsertRun(traceID string, receiptID int, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, receiptId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, traceID, receiptID, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (d *DB) MustReceiptByID(id int) (internal.ReceiptRow, error) {
	row, err := d.GetReceiptByID(id)
	if err != nil {
		return internal.ReceiptRow{}, err
	}
	if row == nil {
		return internal.ReceiptRow{}, fmt.Errorf("receipt not found: id=%d", id)
	}
	return *row, nil
}
