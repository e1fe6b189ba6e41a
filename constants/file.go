package constants

import "strings"

// FileKind drives the extraction strategy selection for an upload.
type FileKind string

const (
	KindCalendar    FileKind = "CALENDAR"
	KindImage       FileKind = "IMAGE"
	KindPDF         FileKind = "PDF"
	KindOfficeDoc   FileKind = "OFFICE_DOC"
	KindSpreadsheet FileKind = "SPREADSHEET"
	KindPlainText   FileKind = "PLAIN_TEXT"
	KindStructured  FileKind = "STRUCTURED_TEXT"
	KindUnknown     FileKind = "UNKNOWN"
)

// extToKind holds the allowed file extensions for uploads.
var extToKind = map[string]FileKind{
	"ics":  KindCalendar,
	"ical": KindCalendar,

	"png":  KindImage,
	"jpg":  KindImage,
	"jpeg": KindImage,
	"gif":  KindImage,
	"bmp":  KindImage,
	"webp": KindImage,
	"tiff": KindImage,

	"pdf": KindPDF,

	"doc":  KindOfficeDoc,
	"docx": KindOfficeDoc,

	"xls":  KindSpreadsheet,
	"xlsx": KindSpreadsheet,

	"txt": KindPlainText,
	"rtf": KindPlainText,

	"csv":  KindStructured,
	"json": KindStructured,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToKind returns the FileKind for a normalized extension,
// or KindUnknown when the extension is not in the allowed set.
func MapExtToKind(ext string) FileKind {
	if k, ok := extToKind[NormalizeExt(ext)]; ok {
		return k
	}
	return KindUnknown
}
