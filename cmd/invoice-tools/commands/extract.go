package commands

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ironsheep/invoice-tools/internal/detection"
	"github.com/ironsheep/invoice-tools/internal/export"
	"github.com/ironsheep/invoice-tools/internal/extract"
)

var (
	extractDetections string
	extractOutputDir  string
	extractWorkers    int
)

var extractCmd = &cobra.Command{
	Use:   "extract <image>...",
	Short: "Extract records from invoice images",
	Long: `Extract runs detection and recognition on each image and writes
<name>-<id>_output.json, <name>-<id>_invoice_data.xlsx and
<name>-<id>_boxes.png to the output directory.

Detections are read from <image>.json next to each image (or from
INVOICE_DETECTIONS_DIR) unless --detections names one file for every image.
A failed image is reported and the others continue.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractDetections, "detections", "d", "", "detections JSON file used for every image")
	extractCmd.Flags().StringVarP(&extractOutputDir, "out", "o", "", "output directory (default INVOICE_OUTPUT_DIR)")
	extractCmd.Flags().IntVarP(&extractWorkers, "workers", "w", 0, "documents processed in parallel (default INVOICE_WORKERS)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	if extractDetections != "" {
		a.extractor.Detectors = detection.Shared(detection.FileDetector{Path: extractDetections})
	}
	outDir := cfg.OutputDir
	if extractOutputDir != "" {
		outDir = extractOutputDir
	}
	workers := cfg.Workers
	if extractWorkers > 0 {
		workers = extractWorkers
	}

	failed := extractBatch(ctx, a.extractor, a.log, args, outDir, workers, cmd.OutOrStdout())
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(args))
	}
	return nil
}

// extractBatch runs the batch and writes each document's artifacts from its
// worker, so decoded images are released as documents finish. The JSON path
// of every written document is printed to out in input order. It returns the
// number of failed documents.
func extractBatch(ctx context.Context, ex *extract.Extractor, log zerolog.Logger, paths []string, outDir string, workers int, out io.Writer) int {
	var mu sync.Mutex
	written := make(map[string][]string)

	results := ex.RunBatchFunc(ctx, paths, workers, func(ctx context.Context, r extract.BatchResult, img image.Image) error {
		if r.Err != nil {
			return nil
		}
		artifacts := export.NewArtifacts(outDir, r.ImageID)
		if err := artifacts.Write(img, r.Result.Regions, r.Result.Record); err != nil {
			return err
		}
		mu.Lock()
		written[r.ImageID] = append(written[r.ImageID], artifacts.JSON)
		mu.Unlock()

		log.Info().
			Str("image", r.ImageID).
			Int("regions", len(r.Result.Regions)).
			Int("fields", r.Result.Record.Len()).
			Str("json", artifacts.JSON).
			Str("workbook", artifacts.Workbook).
			Msg("extracted")
		return nil
	})

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.Error().Err(r.Err).Str("image", r.ImageID).Msg("extraction failed")
			continue
		}
		if jsons := written[r.ImageID]; len(jsons) > 0 {
			fmt.Fprintln(out, jsons[0])
			written[r.ImageID] = jsons[1:]
		}
	}
	return failed
}
