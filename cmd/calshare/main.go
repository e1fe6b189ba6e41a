// calshare converts a schedule document into calendar events: it runs the
// extraction pipeline on one file (or stdin text), writes the resulting
// ICS, and can optionally persist a shareable calendar.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/calshare/calshare/internal/common"
	"github.com/calshare/calshare/internal/extract"
	"github.com/calshare/calshare/internal/ics"
	"github.com/calshare/calshare/internal/llm/anthropic"
	"github.com/calshare/calshare/internal/pipeline"
	"github.com/calshare/calshare/internal/store"
	"github.com/calshare/calshare/internal/validate"
)

func main() {
	var (
		inPath   = flag.String("in", "", "input schedule document (omit to read pasted text from stdin)")
		outPath  = flag.String("out", "", "write ICS output to this path (default: stdout)")
		calName  = flag.String("name", "", "persist a calendar with this name and print its share slug")
		calDesc  = flag.String("desc", "", "calendar description (with -name)")
		slugFlag = flag.String("slug", "", "custom share slug (with -name)")
		asJSON   = flag.Bool("json", false, "print the extracted events as JSON instead of ICS")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(1)
	}

	serializer := ics.NewSerializer(logger)
	p := pipeline.New(
		extract.NewExtractor(cfg.OCR, logger),
		anthropic.NewClient(anthropic.Config{
			APIKey:    cfg.AI.APIKey,
			BaseURL:   cfg.AI.BaseURL,
			Model:     cfg.AI.Model,
			Version:   cfg.AI.Version,
			MaxTokens: cfg.AI.MaxTokens,
			Timeout:   cfg.AI.Timeout,
		}, logger),
		validate.New(logger),
		serializer,
		cfg.Pipeline,
		logger,
	)

	ctx := context.Background()

	var res pipeline.Result
	if *inPath != "" {
		content, err := os.ReadFile(*inPath)
		if err != nil {
			logger.Error("read input", "path", *inPath, "error", err)
			os.Exit(1)
		}
		res = p.ProcessUpload(ctx, content, filepath.Base(*inPath))
	} else {
		text, err := readAll(os.Stdin)
		if err != nil {
			logger.Error("read stdin", "error", err)
			os.Exit(1)
		}
		res = p.ProcessText(ctx, text)
	}

	if !res.Success {
		logger.Error("pipeline failed", "kind", res.ErrorKind, "message", res.Message)
		os.Exit(1)
	}
	logger.Info("pipeline done", "message", res.Message, "events", len(res.Events))

	if *calName != "" {
		st, err := store.Open(cfg.Store.DBPath, logger)
		if err != nil {
			logger.Error("open store", "error", err)
			os.Exit(1)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logger.Error("close store", "error", cerr)
			}
		}()
		cal, err := st.CreateCalendar(ctx, *calName, *calDesc, *slugFlag, res.Events)
		if err != nil {
			logger.Error("persist calendar", "error", err)
			os.Exit(1)
		}
		logger.Info("calendar created", "slug", cal.Slug, "name", cal.Name)
	}

	var out []byte
	if *asJSON {
		b, err := json.MarshalIndent(res.Events, "", "  ")
		if err != nil {
			logger.Error("encode events", "error", err)
			os.Exit(1)
		}
		out = append(b, '\n')
	} else {
		out = serializer.Serialize(res.Events, *calName)
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, out, 0o644); err != nil {
			logger.Error("write output", "path", *outPath, "error", err)
			os.Exit(1)
		}
		logger.Info("output written", "path", *outPath, "bytes", len(out))
		return
	}
	if _, err := os.Stdout.Write(out); err != nil {
		logger.Error("write stdout", "error", err)
		os.Exit(1)
	}
}

func readAll(f *os.File) (string, error) {
	b, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
