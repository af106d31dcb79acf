package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"routesheet/internal/config"
	"routesheet/internal/ocr"
	"routesheet/internal/pipeline"
	"routesheet/internal/storage"
)

// Service polls the inbox directory for scanned receipts and runs the
// pipeline over anything it has not seen before (by content hash). Stands in
// for the old hand-driven file picking.
type Service struct {
	db     *storage.DB
	cfg    config.Config
	engine ocr.Engine
}

func NewService(db *storage.DB, cfg config.Config, engine ocr.Engine) *Service {
	return &Service{db: db, cfg: cfg, engine: engine}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			fmt.Printf("watcher cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.WatchIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	paths, err := s.newReceipts()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}

	processor := pipeline.NewProcessingService(s.db, s.cfg, s.engine)
	results := processor.ProcessBatch(ctx, paths, s.cfg.WatchAutoApply)

	processed, failed := 0, 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Printf("watcher: %s failed: %v\n", res.Path, res.Err)
			continue
		}
		processed++
		if res.ArtifactPath != "" {
			fmt.Printf("watcher: %s -> %s\n", res.Path, res.ArtifactPath)
		} else {
			fmt.Printf("watcher: %s processed\n", res.Path)
		}
	}
	fmt.Printf("watcher cycle done processed=%d failed=%d\n", processed, failed)
	return nil
}

// newReceipts lists receipt files in the inbox whose content hash is not in
// storage yet, oldest first, capped at the batch size.
func (s *Service) newReceipts() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.InboxDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	type candidate struct {
		path    string
		modTime time.Time
	}
	candidates := make([]candidate, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !pipeline.IsReceiptFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{
			path:    filepath.Join(s.cfg.InboxDir, entry.Name()),
			modTime: info.ModTime(),
		})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].modTime.Before(candidates[j].modTime) })

	out := make([]string, 0, s.cfg.WatchBatch)
	for _, c := range candidates {
		if len(out) >= s.cfg.WatchBatch {
			break
		}
		blob, err := os.ReadFile(c.path)
		if err != nil {
			continue
		}
		sum := sha256.Sum256(blob)
		row, err := s.db.GetReceiptByHash(hex.EncodeToString(sum[:]))
		if err != nil {
			return nil, err
		}
		if row != nil {
			continue
		}
		out = append(out, c.path)
	}
	return out, nil
}
