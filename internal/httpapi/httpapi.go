package httpapi

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ironsheep/invoice-tools/internal/export"
	"github.com/ironsheep/invoice-tools/internal/extract"
	"github.com/ironsheep/invoice-tools/internal/imaging"
	"github.com/ironsheep/invoice-tools/internal/invoice"
	"github.com/ironsheep/invoice-tools/internal/store"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Store persists extracted records. *store.Store implements it.
type Store interface {
	Save(ctx context.Context, docID, source string, rec *invoice.Record) error
	Get(ctx context.Context, docID string) (*store.Stored, error)
	List(ctx context.Context, limit int) ([]*store.Stored, error)
}

// Options configures a Handler.
type Options struct {
	Extractor *extract.Extractor
	UploadDir string
	OutputDir string

	// Store is optional. When set, every extraction is saved and the
	// /invoices routes are registered.
	Store Store

	Log zerolog.Logger
}

// Handler holds the dependencies of the HTTP routes.
type Handler struct {
	extractor *extract.Extractor
	uploadDir string
	outputDir string
	store     Store
	log       zerolog.Logger
}

// New returns a Handler for opts.
func New(opts Options) *Handler {
	return &Handler{
		extractor: opts.Extractor,
		uploadDir: opts.UploadDir,
		outputDir: opts.OutputDir,
		store:     opts.Store,
		log:       opts.Log,
	}
}

// Router builds the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.log))
	r.MaxMultipartMemory = 32 << 20

	r.GET("/health", h.health)
	r.POST("/extract", h.extract)
	r.GET("/download", h.download)
	if h.store != nil {
		r.GET("/invoices", h.listInvoices)
		r.GET("/invoices/:id", h.getInvoice)
	}
	return r
}

// requestLogger logs one line per request.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "Invoice extraction service is running"})
}

func (h *Handler) extract(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}
	name := filepath.Base(file.Filename)
	if file.Filename == "" || name == "." || name == string(filepath.Separator) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No selected file"})
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	upload := filepath.Join(h.uploadDir, uuid.NewString()[:8]+"-"+name)
	if err := c.SaveUploadedFile(file, upload); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer func() {
		if err := os.Remove(upload); err != nil && !errors.Is(err, os.ErrNotExist) {
			h.log.Warn().Err(err).Str("path", upload).Msg("failed to remove upload")
		}
	}()

	img, err := imaging.Open(upload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The image ID carries the client's file name so sidecar detections
	// are found by the original stem.
	imageID := filepath.Join(h.uploadDir, name)
	res, err := h.extractor.Extract(c.Request.Context(), imageID, img)
	if err != nil {
		h.log.Error().Err(err).Str("image", name).Msg("extraction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	artifacts := export.NewArtifacts(h.outputDir, name)
	if err := artifacts.Write(img, res.Regions, res.Record); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	docID := strings.TrimSuffix(filepath.Base(artifacts.JSON), "_output.json")
	if h.store != nil {
		if err := h.store.Save(c.Request.Context(), docID, name, res.Record); err != nil {
			h.log.Error().Err(err).Str("document", docID).Msg("failed to store record")
		}
	}

	if c.Query("format") == "excel" {
		c.Header("Content-Type", xlsxMIME)
		c.FileAttachment(artifacts.Workbook, filepath.Base(artifacts.Workbook))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             "success",
		"document_id":        docID,
		"data":               res.Record,
		"excel_download_url": downloadURL(artifacts.Workbook),
		"image_download_url": downloadURL(artifacts.Boxes),
	})
}

func downloadURL(path string) string {
	return "/download?file=" + filepath.Base(path)
}

func (h *Handler) download(c *gin.Context) {
	name := c.Query("file")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file specified"})
		return
	}
	// Only plain names inside the output directory are served.
	if filepath.Base(name) != name || name == "." || name == ".." {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file name"})
		return
	}

	path := filepath.Join(h.outputDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	if strings.HasSuffix(name, ".xlsx") {
		c.Header("Content-Type", xlsxMIME)
	}
	c.FileAttachment(path, name)
}

func (h *Handler) listInvoices(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	records, err := h.store.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []*store.Stored{}
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) getInvoice(c *gin.Context) {
	rec, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}
