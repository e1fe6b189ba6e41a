// Package extract converts raw upload bytes into text the structuring
// model can work with, one strategy per FileKind.
package extract

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/calshare/calshare/constants"
	"github.com/calshare/calshare/internal/common"
)

// Content is what an extraction produces: text for the model plus, for
// visual inputs, the image bytes sent alongside it.
type Content struct {
	Text          string
	VisualPayload []byte
	Kind          constants.FileKind
	Pages         int
	Method        string // "image-ocr" | "pdf-text" | "pdf-mixed" | "docx" | "xlsx" | "plain"
	Duration      time.Duration
	Warnings      []string
}

type Extractor struct {
	cfg    common.OCRConfig
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg common.OCRConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 150
	}
	if cfg.MinPageTextLen <= 0 {
		cfg.MinPageTextLen = 16
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// NewExtractorWithRunner is NewExtractor with the external-command runner
// swapped out, for tests and callers that sandbox the OCR binaries.
func NewExtractorWithRunner(cfg common.OCRConfig, r Runner, logger *slog.Logger) *Extractor {
	e := NewExtractor(cfg, logger)
	if r != nil {
		e.runner = r
	}
	return e
}

// Extract picks a strategy based on the classified kind. Sub-step failures
// degrade to empty text for that unit; only a result with neither text nor
// a visual payload is a hard failure.
func (e *Extractor) Extract(ctx context.Context, content []byte, kind constants.FileKind) (Content, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	var res Content
	switch kind {
	case constants.KindImage:
		res = e.extractImage(ctx, content)
	case constants.KindPDF:
		res = e.extractPDF(ctx, content)
	case constants.KindOfficeDoc:
		res = e.extractDocx(content)
	case constants.KindSpreadsheet:
		res = e.extractSpreadsheet(content)
	case constants.KindPlainText, constants.KindStructured:
		res = Content{Text: lossyDecode(content), Method: "plain", Pages: 1}
	default:
		return Content{}, common.NewAppError(common.CodeUnsupportedFormat,
			"no extraction strategy for kind "+string(kind), common.ErrInvalidInput)
	}

	res.Kind = kind
	res.Duration = time.Since(start)

	if strings.TrimSpace(res.Text) == "" && len(res.VisualPayload) == 0 {
		e.logger.Error("extract.exhausted",
			"kind", kind,
			"warnings", res.Warnings,
			"elapsed_ms", res.Duration.Milliseconds(),
		)
		return res, common.NewAppError(common.CodeExtractionFailed,
			"no usable text or image could be extracted", common.ErrInternal)
	}

	e.logger.Info("extract.ok",
		"kind", kind,
		"method", res.Method,
		"pages", res.Pages,
		"text_len", len(res.Text),
		"has_visual", len(res.VisualPayload) > 0,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// lossyDecode mirrors a decode with errors ignored: invalid UTF-8 and NUL
// bytes are stripped rather than failing the document.
func lossyDecode(b []byte) string {
	s := strings.ToValidUTF8(string(b), "")
	return strings.ReplaceAll(s, "\x00", "")
}
