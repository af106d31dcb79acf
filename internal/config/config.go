package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath       string
	DataDir      string
	OutputDir    string
	TemplatePath string
	InboxDir     string

	CouncilNumber string

	OCRLanguage   string
	UpscaleFactor int
	ContrastBoost float64
	SharpenSigma  float64

	WatchIntervalSec int
	WatchBatch       int
	WatchAutoApply   bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:       getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		DataDir:      getEnv("DATA_DIR", filepath.Join(cwd, "data")),
		OutputDir:    getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		TemplatePath: getEnv("TEMPLATE_PATH", filepath.Join(cwd, "assets", "RouteSheetTemplateV2.xlsx")),
		InboxDir:     getEnv("INBOX_DIR", filepath.Join(cwd, "inbox")),

		CouncilNumber: getEnv("COUNCIL_NUMBER", "456"),

		OCRLanguage:   getEnv("OCR_LANGUAGE", "eng"),
		UpscaleFactor: getEnvInt("OCR_UPSCALE_FACTOR", 2),
		ContrastBoost: getEnvFloat("OCR_CONTRAST_BOOST", 40),
		SharpenSigma:  getEnvFloat("OCR_SHARPEN_SIGMA", 1.0),

		WatchIntervalSec: getEnvInt("WATCH_INTERVAL_SEC", 30),
		WatchBatch:       getEnvInt("WATCH_BATCH", 20),
		WatchAutoApply:   getEnvBool("WATCH_AUTO_APPLY", true),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
