package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"routesheet/internal"
	"routesheet/internal/config"
	"routesheet/internal/ocr"
	"routesheet/internal/pipeline"
	"routesheet/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		apply := fs.Bool("apply", false, "write the route sheet after extraction")
		_ = fs.Parse(os.Args[2:])
		paths := fs.Args()
		if len(paths) == 0 {
			must(fmt.Errorf("at least one receipt path is required"))
		}

		processor := pipeline.NewProcessingService(db, cfg, ocr.NewTesseract(cfg.OCRLanguage))
		results := processor.ProcessBatch(context.Background(), paths, *apply)

		failed := 0
		for _, res := range results {
			if res.Err != nil {
				failed++
				fmt.Printf("FAILED %s: %v\n", res.Path, res.Err)
				continue
			}
			fmt.Printf("OK %s district=%s unit=%s program=%s", res.Path,
				orUnknown(res.Record.DistrictName), orUnknown(res.Record.LocalUnitNumber), programLabel(res.Record.Program))
			if res.ArtifactPath != "" {
				fmt.Printf(" sheet=%s", res.ArtifactPath)
			}
			fmt.Println()
		}
		fmt.Printf("process done receipts=%d failed=%d\n", len(results), failed)
		if failed > 0 {
			os.Exit(1)
		}
	case "apply":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		recordPath := fs.String("record", "", "path to a saved record json")
		receiptID := fs.Int("receiptId", 0, "internal receipt id")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*recordPath) == "" && *receiptID == 0 {
			must(fmt.Errorf("--record or --receiptId is required"))
		}

		var rec internal.Record
		if *receiptID != 0 {
			row, err := db.MustReceiptByID(*receiptID)
			must(err)
			if row.RecordJSON == nil {
				must(fmt.Errorf("receipt id=%d has no extracted record", *receiptID))
			}
			must(json.Unmarshal([]byte(*row.RecordJSON), &rec))
		} else {
			blob, err := os.ReadFile(*recordPath)
			must(err)
			must(json.Unmarshal(blob, &rec))
		}

		mapper := pipeline.Mapper{TemplatePath: cfg.TemplatePath, OutputDir: cfg.OutputDir}
		artifact, err := mapper.Apply(rec)
		must(err)
		if *receiptID != 0 {
			must(db.SetReceiptArtifact(*receiptID, artifact))
		}
		fmt.Printf("route sheet written: %s\n", artifact)
	case "receipts:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		status := fs.String("status", "", "processed|applied|failed (empty for all)")
		limit := fs.Int("limit", 50, "max rows")
		_ = fs.Parse(os.Args[2:])

		rows, err := db.ListReceiptsByStatus(*status, *limit)
		must(err)
		for _, row := range rows {
			line := fmt.Sprintf("id=%d status=%s path=%s", row.ID, row.Status, row.Path)
			if row.ArtifactPath != nil {
				line += " sheet=" + *row.ArtifactPath
			}
			if row.ErrorText != nil {
				line += " error=" + *row.ErrorText
			}
			fmt.Println(line)
		}
		fmt.Printf("receipts listed: %d\n", len(rows))
	default:
		usage()
		os.Exit(1)
	}
}

func orUnknown(v *string) string {
	if v == nil {
		return "Unknown"
	}
	return *v
}

func programLabel(p *internal.Program) string {
	if p == nil {
		return "Unknown"
	}
	return string(*p)
}

func usage() {
	fmt.Println("usage: routesheet <command>")
	fmt.Println("commands:")
	fmt.Println("  process [--apply] <receipt files...>")
	fmt.Println("  apply --record=./data/receipt_data.json | --receiptId=1")
	fmt.Println("  receipts:list [--status=processed|applied|failed] [--limit=50]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
