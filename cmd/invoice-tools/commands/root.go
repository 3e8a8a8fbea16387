// Package commands implements the invoice-tools command line.
package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ironsheep/invoice-tools/internal/config"
	"github.com/ironsheep/invoice-tools/internal/extract"
	"github.com/ironsheep/invoice-tools/internal/logging"
	"github.com/ironsheep/invoice-tools/internal/normalize"
	"github.com/ironsheep/invoice-tools/internal/ocr"
)

var (
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "invoice-tools",
	Short: "Extract structured records from scanned invoices",
	Long: `invoice-tools reads invoice images, recognizes the regions found by a
layout detector and assembles one record per document: cleaned field values
plus the line-item table. Results are written as JSON and as a workbook.

Settings come from INVOICE_* environment variables and an optional .env file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file to load if present")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override INVOICE_LOG_LEVEL")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// app holds the wired pipeline shared by the subcommands.
type app struct {
	cfg        config.Config
	log        zerolog.Logger
	normalizer *normalize.Normalizer
	extractor  *extract.Extractor
}

// loadConfig reads and validates the settings, applying flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newApp builds the recognizer, rules and extractor from cfg.
func newApp(cfg config.Config) (*app, error) {
	log := logging.New(cfg.Logging())

	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}
	recognizer, err := ocr.New(cfg.OCR())
	if err != nil {
		return nil, fmt.Errorf("create recognizer: %w", err)
	}

	n := normalize.New(rules)
	a := &app{
		cfg:        cfg,
		log:        log,
		normalizer: n,
		extractor: &extract.Extractor{
			Assembler:     extract.NewAssembler(recognizer, n, extract.WithLogger(log)),
			Detectors:     cfg.Detectors(),
			MinConfidence: cfg.MinConfidence,
		},
	}

	log.Debug().
		Str("ocr", cfg.OCRBackend).
		Str("language", cfg.OCRLanguage).
		Str("detector", cfg.Detector).
		Int("rules", rules.Len()).
		Msg("pipeline ready")
	return a, nil
}
