// Package pipeline coordinates one upload through classification,
// extraction, structuring, and validation. Each invocation is request
// scoped: stages run in sequence, nothing is shared across invocations,
// and the event list comes out atomically or not at all.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/calshare/calshare/constants"
	"github.com/calshare/calshare/internal/classify"
	"github.com/calshare/calshare/internal/common"
	"github.com/calshare/calshare/internal/entity"
	"github.com/calshare/calshare/internal/extract"
	"github.com/calshare/calshare/internal/ics"
	"github.com/calshare/calshare/internal/llm"
	"github.com/calshare/calshare/internal/validate"
)

// Result is what the upload boundary sees: success or a coded failure,
// never a panic and never a partial batch.
type Result struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message,omitempty"`
	ErrorKind string         `json:"error,omitempty"`
	Events    []entity.Event `json:"events"`
}

type Pipeline struct {
	logger     *slog.Logger
	extractor  *extract.Extractor
	structurer llm.Structurer
	validator  *validate.Validator
	serializer *ics.Serializer
	cfg        common.PipelineConfig
}

func New(
	extractor *extract.Extractor,
	structurer llm.Structurer,
	validator *validate.Validator,
	serializer *ics.Serializer,
	cfg common.PipelineConfig,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger:     logger,
		extractor:  extractor,
		structurer: structurer,
		validator:  validator,
		serializer: serializer,
		cfg:        cfg,
	}
}

// ProcessUpload runs the full pipeline for one raw upload. Calendar files
// short-circuit to the ICS parse path and never touch the model.
func (p *Pipeline) ProcessUpload(ctx context.Context, content []byte, filename string) Result {
	start := time.Now()

	kind, err := classify.Classify(content, filename)
	if err != nil {
		return p.fail(err, common.CodeUnsupportedFormat, "unsupported file format")
	}
	p.logger.Info("pipeline.classify.ok", "filename", filename, "kind", kind, "bytes", len(content))

	if kind == constants.KindCalendar {
		events, err := p.serializer.Parse(content)
		if err != nil {
			return p.fail(err, common.CodeExtractionFailed, "failed to parse calendar file")
		}
		return p.done(events, start)
	}

	extracted, err := p.extractor.Extract(ctx, content, kind)
	if err != nil {
		return p.fail(err, common.CodeExtractionFailed, "could not extract content from this file")
	}

	req := llm.StructureRequest{
		Text:          extracted.Text,
		SourceLabel:   kindLabel(kind),
		Image:         extracted.VisualPayload,
		MaxCandidates: p.cfg.MaxCandidates,
		MaxTextChars:  p.cfg.MaxTextChars,
	}
	if len(req.Image) > 0 {
		req.ImageMediaType = http.DetectContentType(req.Image)
	}

	candidates, _, err := p.structurer.StructureEvents(ctx, req)
	if err != nil {
		return p.fail(err, common.CodeStructuringFailed, "failed to extract events from this file")
	}

	return p.done(p.validator.Validate(candidates), start)
}

// ProcessText structures pasted text directly, same contract as an upload.
func (p *Pipeline) ProcessText(ctx context.Context, text string) Result {
	start := time.Now()

	candidates, _, err := p.structurer.StructureEvents(ctx, llm.StructureRequest{
		Text:          text,
		SourceLabel:   "pasted text",
		MaxCandidates: p.cfg.MaxCandidates,
		MaxTextChars:  p.cfg.MaxTextChars,
	})
	if err != nil {
		return p.fail(err, common.CodeStructuringFailed, "failed to extract events from this text")
	}

	return p.done(p.validator.Validate(candidates), start)
}

func (p *Pipeline) done(events []entity.Event, start time.Time) Result {
	msg := "No calendar events could be extracted from this file. Please try a different file or enter events manually."
	if len(events) > 0 {
		msg = successMessage(len(events))
	}
	p.logger.Info("pipeline.ok", "events", len(events), "elapsed_ms", time.Since(start).Milliseconds())
	return Result{Success: true, Message: msg, Events: events}
}

func (p *Pipeline) fail(err error, fallbackCode, msg string) Result {
	code := common.ErrorCode(err)
	if code == "" {
		code = fallbackCode
	}
	p.logger.Error("pipeline.failed", "kind", code, "error", err)
	return Result{Success: false, Message: msg, ErrorKind: code, Events: []entity.Event{}}
}

func successMessage(n int) string {
	if n == 1 {
		return "Successfully extracted 1 event"
	}
	return fmt.Sprintf("Successfully extracted %d events", n)
}

func kindLabel(kind constants.FileKind) string {
	switch kind {
	case constants.KindImage:
		return "image/schedule"
	case constants.KindPDF:
		return "PDF document"
	case constants.KindOfficeDoc:
		return "Word document"
	case constants.KindSpreadsheet:
		return "Excel spreadsheet"
	case constants.KindPlainText, constants.KindStructured:
		return "text file"
	default:
		return "document"
	}
}
