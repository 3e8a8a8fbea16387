// Package config reads service settings from the environment.
//
// Settings come from INVOICE_* environment variables. A .env file in the
// working directory, if present, is loaded first; variables already set in
// the environment take precedence over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ironsheep/invoice-tools/internal/detection"
	"github.com/ironsheep/invoice-tools/internal/logging"
	"github.com/ironsheep/invoice-tools/internal/normalize"
	"github.com/ironsheep/invoice-tools/internal/ocr"
)

// Prefix is prepended to every variable name.
const Prefix = "INVOICE_"

// Detector backends.
const (
	DetectorFile   = "file"
	DetectorRemote = "remote"
)

// Config holds the service settings.
type Config struct {
	LogLevel  string
	LogFormat string

	Addr      string
	UploadDir string
	OutputDir string

	OCRBackend    string
	OCRLanguage   string
	AzureEndpoint string
	AzureKey      string

	Detector      string
	DetectorURL   string
	DetectionsDir string
	MinConfidence float64

	RulesFile string
	Workers   int

	DatabaseURL string
}

// Default returns the settings used when no variables are set.
func Default() Config {
	return Config{
		LogLevel:    "info",
		LogFormat:   "json",
		Addr:        ":5000",
		UploadDir:   "uploads",
		OutputDir:   "outputs",
		OCRBackend:  ocr.BackendTesseract,
		OCRLanguage: ocr.DefaultLanguage,
		Detector:    DetectorFile,
		Workers:     4,
	}
}

// Load reads the optional .env files (default ".env") and then the
// environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, starting from Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	get := func(name string, dst *string) {
		if v, ok := lookup(Prefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	get("LOG_LEVEL", &c.LogLevel)
	get("LOG_FORMAT", &c.LogFormat)
	get("ADDR", &c.Addr)
	get("UPLOAD_DIR", &c.UploadDir)
	get("OUTPUT_DIR", &c.OutputDir)
	get("OCR_BACKEND", &c.OCRBackend)
	get("OCR_LANGUAGE", &c.OCRLanguage)
	get("AZURE_ENDPOINT", &c.AzureEndpoint)
	get("AZURE_KEY", &c.AzureKey)
	get("DETECTOR", &c.Detector)
	get("DETECTOR_URL", &c.DetectorURL)
	get("DETECTIONS_DIR", &c.DetectionsDir)
	get("RULES_FILE", &c.RulesFile)
	get("DATABASE_URL", &c.DatabaseURL)

	var s string
	get("MIN_CONFIDENCE", &s)
	if s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%sMIN_CONFIDENCE: %w", Prefix, err)
		}
		c.MinConfidence = v
	}

	s = ""
	get("WORKERS", &s)
	if s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return Config{}, fmt.Errorf("%sWORKERS: %w", Prefix, err)
		}
		c.Workers = v
	}

	c.OCRBackend = strings.ToLower(c.OCRBackend)
	c.Detector = strings.ToLower(c.Detector)
	c.LogFormat = strings.ToLower(c.LogFormat)
	return c, nil
}

// Validate reports every invalid setting or combination.
func (c Config) Validate() error {
	var errs []error
	if !logging.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		errs = append(errs, fmt.Errorf("log format must be json or console, got %q", c.LogFormat))
	}

	switch c.OCRBackend {
	case ocr.BackendTesseract:
	case ocr.BackendAzure:
		if c.AzureEndpoint == "" || c.AzureKey == "" {
			errs = append(errs, errors.New("azure OCR needs INVOICE_AZURE_ENDPOINT and INVOICE_AZURE_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown OCR backend %q", c.OCRBackend))
	}

	switch c.Detector {
	case DetectorFile:
	case DetectorRemote:
		if c.DetectorURL == "" {
			errs = append(errs, errors.New("remote detector needs INVOICE_DETECTOR_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown detector %q", c.Detector))
	}

	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("min confidence must be in [0,1], got %v", c.MinConfidence))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// Logging returns the logger settings.
func (c Config) Logging() logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat}
}

// OCR returns the recognizer settings.
func (c Config) OCR() ocr.Options {
	return ocr.Options{
		Backend:       c.OCRBackend,
		Language:      c.OCRLanguage,
		AzureEndpoint: c.AzureEndpoint,
		AzureKey:      c.AzureKey,
	}
}

// Detectors returns the detector resolver for the configured backend.
func (c Config) Detectors() detection.Resolver {
	if c.Detector == DetectorRemote {
		return detection.Shared(detection.NewRemoteDetector(c.DetectorURL))
	}
	return detection.Sidecars(c.DetectionsDir)
}

// Rules loads the normalization rules from RulesFile, or returns the
// built-in rules when it is unset.
func (c Config) Rules() (*normalize.RuleSet, error) {
	if c.RulesFile == "" {
		return normalize.DefaultRules(), nil
	}
	f, err := os.Open(c.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open rules file: %w", err)
	}
	defer f.Close()
	rules, err := normalize.LoadRules(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.RulesFile, err)
	}
	return rules, nil
}
