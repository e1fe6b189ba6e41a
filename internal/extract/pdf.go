package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// extractPDF extracts embedded text per page and falls through to OCR for
// pages that look scanned (embedded text below MinPageTextLen). Page
// results are concatenated in document order. The first page is also
// rasterized as the visual payload when possible.
func (e *Extractor) extractPDF(ctx context.Context, content []byte) Content {
	res := Content{Method: "pdf-text"}

	path, cleanup, err := e.spill(content, "upload.pdf")
	if err != nil {
		res.Warnings = append(res.Warnings, err.Error())
		return res
	}
	defer cleanup()

	var pages []string
	text, warns, terr := e.pdfToText(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if terr == nil {
		pages = splitPages(text)
	} else {
		res.Warnings = append(res.Warnings, terr.Error())
	}

	if e.cfg.MaxPages > 0 && len(pages) > e.cfg.MaxPages {
		res.Warnings = append(res.Warnings, fmt.Sprintf("truncated to %d pages", e.cfg.MaxPages))
		pages = pages[:e.cfg.MaxPages]
	}

	ocred := 0
	if len(pages) > 0 {
		for i := range pages {
			if len(strings.TrimSpace(pages[i])) >= e.cfg.MinPageTextLen {
				continue
			}
			txt, w, oerr := e.ocrPage(ctx, path, i+1)
			res.Warnings = append(res.Warnings, w...)
			if oerr != nil {
				// corrupt or unOCRable page degrades to empty, not abort
				res.Warnings = append(res.Warnings, oerr.Error())
				pages[i] = ""
				continue
			}
			pages[i] = txt
			ocred++
		}
	} else {
		// no embedded text layer at all: rasterize everything
		var w []string
		pages, w = e.ocrAllPages(ctx, path)
		res.Warnings = append(res.Warnings, w...)
		ocred = len(pages)
	}
	if ocred > 0 {
		res.Method = "pdf-mixed"
	}

	res.Pages = len(pages)
	res.Text = strings.TrimSpace(strings.Join(pages, "\n\f\n"))

	if png, perr := e.renderPage(ctx, path, 1); perr == nil {
		res.VisualPayload = png
	} else {
		res.Warnings = append(res.Warnings, perr.Error())
	}
	return res
}

// pdfToText runs pdftotext -layout -enc UTF-8 -eol unix <path> -.
func (e *Extractor) pdfToText(ctx context.Context, path string) (string, []string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("pdftotext: %w", err)
	}
	return lossyDecode(out), nil, nil
}

// splitPages splits pdftotext output on its form-feed page separators,
// dropping the empty trailing element pdftotext leaves behind.
func splitPages(text string) []string {
	pages := strings.Split(text, "\f")
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	if len(pages) == 1 && strings.TrimSpace(pages[0]) == "" {
		return nil
	}
	return pages
}

// ocrPage rasterizes a single page and OCRs it.
func (e *Extractor) ocrPage(ctx context.Context, path string, page int) (string, []string, error) {
	png, err := e.renderPage(ctx, path, page)
	if err != nil {
		return "", nil, err
	}
	imgPath, cleanup, err := e.spill(png, "page.png")
	if err != nil {
		return "", nil, err
	}
	defer cleanup()
	return e.tesseractOCR(ctx, imgPath)
}

// renderPage runs pdftoppm -f <n> -l <n> -r <dpi> -png and returns the
// rendered page bytes.
func (e *Extractor) renderPage(ctx context.Context, path string, page int) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "calshare-pp-*")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	prefix := filepath.Join(tmpDir, "page")
	pg := fmt.Sprintf("%d", page)
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
		"-f", pg, "-l", pg, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm page %d: %w (%s)", page, err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm rendered no image for page %d", page)
	}
	return os.ReadFile(matches[0])
}

// ocrAllPages rasterizes the whole document and OCRs every page, used when
// the PDF has no text layer we can read.
func (e *Extractor) ocrAllPages(ctx context.Context, path string) ([]string, []string) {
	tmpDir, err := os.MkdirTemp("", "calshare-pp-*")
	if err != nil {
		return nil, []string{err.Error()}
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	prefix := filepath.Join(tmpDir, "page")
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
		"-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return nil, []string{fmt.Sprintf("pdftoppm: %v (%s)", err, truncate(string(errb), 512))}
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}

	var pages []string
	var warns []string
	for _, img := range matches {
		txt, w, err := e.tesseractOCR(ctx, img)
		warns = append(warns, w...)
		if err != nil {
			warns = append(warns, err.Error())
			pages = append(pages, "")
			continue
		}
		pages = append(pages, txt)
	}
	return pages, warns
}
