package pipeline

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"routesheet/internal"
	"routesheet/internal/config"
	"routesheet/internal/ocr"
	"routesheet/internal/storage"
)

// ProcessingService runs the full pipeline for receipt documents: extract,
// parse, derive dates, assemble, and optionally apply the template. Every
// outcome is recorded in storage keyed by content hash.
type ProcessingService struct {
	db      *storage.DB
	cfg     config.Config
	extract *ExtractService
	now     func() time.Time
}

func NewProcessingService(db *storage.DB, cfg config.Config, engine ocr.Engine) *ProcessingService {
	opts := NormalizeOptions{
		UpscaleFactor: cfg.UpscaleFactor,
		ContrastBoost: cfg.ContrastBoost,
		SharpenSigma:  cfg.SharpenSigma,
	}
	return &ProcessingService{
		db:      db,
		cfg:     cfg,
		extract: NewExtractService(engine, opts),
		now:     time.Now,
	}
}

type ProcessResult struct {
	ReceiptID    int
	Record       internal.Record
	ArtifactPath string
}

// ProcessReceipt runs one document through the pipeline. apply controls
// whether the route sheet is materialized immediately or left for a later
// apply call against the stored Record.
func (s *ProcessingService) ProcessReceipt(ctx context.Context, path string, apply bool) (ProcessResult, error) {
	start := s.now()

	blob, err := os.ReadFile(path)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("%w: %s: %v", internal.ErrLoad, path, err)
	}
	hash := contentHash(blob)

	text, err := s.extract.ExtractText(ctx, path)
	if err != nil {
		s.recordFailure(path, hash, err)
		return ProcessResult{}, err
	}

	partial := Parse(text)
	effective, expiration := DeriveDates(s.now())
	rec := Assemble(partial, effective, expiration, s.cfg.CouncilNumber)

	recordJSON, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return ProcessResult{}, err
	}
	s.writeSnapshots(text, recordJSON)

	recordStr := string(recordJSON)
	row, err := s.db.UpsertReceipt(path, hash, "processed", &text, &recordStr, nil)
	if err != nil {
		return ProcessResult{}, err
	}

	result := ProcessResult{ReceiptID: row.ID, Record: rec}
	if apply {
		mapper := Mapper{TemplatePath: s.cfg.TemplatePath, OutputDir: s.cfg.OutputDir}
		artifact, err := mapper.Apply(rec)
		if err != nil {
			s.recordFailure(path, hash, err)
			return ProcessResult{}, err
		}
		if err := s.db.SetReceiptArtifact(row.ID, artifact); err != nil {
			return ProcessResult{}, err
		}
		result.ArtifactPath = artifact
	}

	counts := map[string]int{
		"districtFound": boolCount(rec.DistrictName != nil),
		"unitFound":     boolCount(rec.LocalUnitNumber != nil),
		"programFound":  boolCount(rec.Program != nil),
		"priceTotal":    priceTotal(rec.Prices),
	}
	_ = s.db.InsertRun(traceID(), row.ID, map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}, counts)

	return result, nil
}

// ProcessBatch runs documents sequentially with per-document isolation: a
// failure is reported against its own path and never aborts the rest.
func (s *ProcessingService) ProcessBatch(ctx context.Context, paths []string, apply bool) []internal.DocumentResult {
	out := make([]internal.DocumentResult, 0, len(paths))
	for _, path := range paths {
		res, err := s.ProcessReceipt(ctx, path, apply)
		if err != nil {
			out = append(out, internal.DocumentResult{Path: path, Err: err})
			continue
		}
		rec := res.Record
		out = append(out, internal.DocumentResult{Path: path, Record: &rec, ArtifactPath: res.ArtifactPath})
	}
	return out
}

// ApplyRecord materializes the route sheet for an already-extracted Record.
func (s *ProcessingService) ApplyRecord(rec internal.Record) (string, error) {
	mapper := Mapper{TemplatePath: s.cfg.TemplatePath, OutputDir: s.cfg.OutputDir}
	return mapper.Apply(rec)
}

func (s *ProcessingService) recordFailure(path, hash string, cause error) {
	msg := cause.Error()
	_, _ = s.db.UpsertReceipt(path, hash, "failed", nil, nil, &msg)
}

// writeSnapshots dumps the raw OCR text and the last Record for diagnostics.
// Best effort: a failed dump never fails the document.
func (s *ProcessingService) writeSnapshots(text string, recordJSON []byte) {
	if s.cfg.DataDir == "" {
		return
	}
	if err := os.MkdirAll(s.cfg.DataDir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(s.cfg.DataDir, "raw_ocr_output.txt"), []byte(text), 0o644)
	_ = os.WriteFile(filepath.Join(s.cfg.DataDir, "receipt_data.json"), recordJSON, 0o644)
}

func contentHash(blob []byte) string {
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

func boolCount(v bool) int {
	if v {
		return 1
	}
	return 0
}

func priceTotal(prices map[string]int) int {
	total := 0
	for _, v := range prices {
		total += v
	}
	return total
}
