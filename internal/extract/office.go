package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractDocx flattens the paragraphs of a .docx into a text blob. Legacy
// .doc and anything that is not a readable OOXML container degrades to a
// lossy plain-text decode: garbage in that case still beats aborting.
func (e *Extractor) extractDocx(content []byte) Content {
	res := Content{Method: "docx", Pages: 1}

	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		res.Warnings = append(res.Warnings, "not an OOXML container: "+err.Error())
		res.Text = lossyDecode(content)
		return res
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		res.Warnings = append(res.Warnings, "word/document.xml missing")
		res.Text = lossyDecode(content)
		return res
	}

	rc, err := doc.Open()
	if err != nil {
		res.Warnings = append(res.Warnings, err.Error())
		return res
	}
	defer func() { _ = rc.Close() }()

	text, err := flattenDocumentXML(rc)
	if err != nil {
		res.Warnings = append(res.Warnings, err.Error())
		return res
	}
	res.Text = text
	return res
}

// flattenDocumentXML walks WordprocessingML and emits the character data of
// w:t runs, one line per w:p paragraph.
func flattenDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// extractSpreadsheet flattens every sheet of an .xlsx row by row, cells
// joined with an explicit delimiter so the model can infer row-based
// events. Blank rows are skipped.
func (e *Extractor) extractSpreadsheet(content []byte) Content {
	res := Content{Method: "xlsx", Pages: 1}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		res.Warnings = append(res.Warnings, "not a readable workbook: "+err.Error())
		res.Text = lossyDecode(content)
		return res
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("extract.xlsx.close_error", "error", cerr)
		}
	}()

	var parts []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			res.Warnings = append(res.Warnings, sheet+": "+err.Error())
			continue
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " | "))
			if line == "" || strings.Trim(line, " |") == "" {
				continue
			}
			parts = append(parts, line)
		}
	}
	res.Text = strings.Join(parts, "\n")
	return res
}
