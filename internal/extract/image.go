package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// extractImage OCRs the image and keeps the original bytes as the visual
// payload for the model. OCR failure is non-fatal: the model can still
// read the image itself.
func (e *Extractor) extractImage(ctx context.Context, content []byte) Content {
	res := Content{Method: "image-ocr", Pages: 1, VisualPayload: content}

	path, cleanup, err := e.spill(content, "upload.img")
	if err != nil {
		res.Warnings = append(res.Warnings, err.Error())
		return res
	}
	defer cleanup()

	txt, warns, err := e.tesseractOCR(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if err != nil {
		e.logger.Warn("extract.image.ocr_failed", "error", err)
		return res
	}
	res.Text = txt
	return res
}

// tesseractOCR runs tesseract <file> stdout -l <lang>.
func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	return lossyDecode(out), nil, nil
}

// spill writes upload bytes to a temp file for tools that only take paths.
func (e *Extractor) spill(content []byte, name string) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "calshare-*")
	if err != nil {
		return "", nil, fmt.Errorf("mkdtemp: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }
	path := filepath.Join(tmpDir, name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("spill upload: %w", err)
	}
	return path, cleanup, nil
}
