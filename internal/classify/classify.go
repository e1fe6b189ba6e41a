// Package classify decides which extraction strategy an upload gets.
package classify

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/calshare/calshare/constants"
	"github.com/calshare/calshare/internal/common"
)

// Classify inspects the filename extension first and, when that is missing
// or unrecognized, falls back to content signature bytes. It returns
// UNSUPPORTED_FORMAT only when neither identifies a supported kind.
func Classify(content []byte, filename string) (constants.FileKind, error) {
	if kind := constants.MapExtToKind(filepath.Ext(filename)); kind != constants.KindUnknown {
		return kind, nil
	}
	if kind := sniff(content); kind != constants.KindUnknown {
		return kind, nil
	}
	return constants.KindUnknown, common.NewAppError(
		common.CodeUnsupportedFormat,
		fmt.Sprintf("unrecognized file %q", filename),
		common.ErrInvalidInput,
	)
}

var imageMagics = map[string][]byte{
	"png":  {0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A},
	"jpeg": {0xFF, 0xD8, 0xFF},
	"gif":  []byte("GIF8"),
	"bmp":  []byte("BM"),
	"tiff-le": {0x49, 0x49, 0x2A, 0x00},
	"tiff-be": {0x4D, 0x4D, 0x00, 0x2A},
}

func sniff(content []byte) constants.FileKind {
	if len(content) == 0 {
		return constants.KindUnknown
	}

	head := bytes.TrimLeft(content[:min(len(content), 512)], " \t\r\n\xef\xbb\xbf")
	if bytes.HasPrefix(bytes.ToUpper(head), []byte("BEGIN:VCALENDAR")) {
		return constants.KindCalendar
	}
	if bytes.HasPrefix(content, []byte("%PDF-")) {
		return constants.KindPDF
	}
	for _, magic := range imageMagics {
		if bytes.HasPrefix(content, magic) {
			return constants.KindImage
		}
	}
	// RIFF....WEBP
	if len(content) >= 12 && bytes.HasPrefix(content, []byte("RIFF")) && bytes.Equal(content[8:12], []byte("WEBP")) {
		return constants.KindImage
	}
	if bytes.HasPrefix(content, []byte{'P', 'K', 0x03, 0x04}) {
		return sniffZip(content)
	}
	if looksLikeText(content) {
		return constants.KindPlainText
	}
	return constants.KindUnknown
}

// sniffZip distinguishes OOXML containers by their well-known part names.
func sniffZip(content []byte) constants.FileKind {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return constants.KindUnknown
	}
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "word/") {
			return constants.KindOfficeDoc
		}
		if strings.HasPrefix(f.Name, "xl/") {
			return constants.KindSpreadsheet
		}
	}
	return constants.KindUnknown
}

// looksLikeText accepts valid UTF-8 with a dominant share of printable runes.
func looksLikeText(content []byte) bool {
	sample := content[:min(len(content), 4096)]
	if !utf8.Valid(sample) {
		return false
	}
	printable := 0
	total := 0
	for _, r := range string(sample) {
		total++
		if r == '\n' || r == '\r' || r == '\t' || r >= ' ' {
			printable++
		}
	}
	if total == 0 {
		return false
	}
	return float64(printable)/float64(total) > 0.95
}
