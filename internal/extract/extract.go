// Package extract pulls plain text out of uploaded resume documents
// without calling any provider. PDF and DOCX are handled natively; the
// caller falls back to the document-extraction provider when the result
// is too short to be a real resume.
package extract

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// MinTextLength is the minimum extracted length accepted as a valid
// resume. Shorter results usually mean a scanned document, which needs
// OCR instead.
const MinTextLength = 200

// MIME types the gateway accepts for resume uploads.
const (
	MIMEPDF   = "application/pdf"
	MIMEDocx  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEPlain = "text/plain"
)

// Supported reports whether mimeType can be extracted or OCR'd.
func Supported(mimeType string) bool {
	switch mimeType {
	case MIMEPDF, MIMEDocx, MIMEPlain:
		return true
	}
	return false
}

// Text extracts plain text from data according to its MIME type.
func Text(data []byte, mimeType string) (string, error) {
	switch mimeType {
	case MIMEPlain:
		return string(data), nil
	case MIMEPDF:
		return pdfText(data)
	case MIMEDocx:
		return docxText(data)
	default:
		return "", fmt.Errorf("unsupported file type: %s", mimeType)
	}
}

// Sufficient reports whether extracted text meets the minimum length
// after trimming.
func Sufficient(text string) bool {
	return len(strings.TrimSpace(text)) >= MinTextLength
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("reading pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}

	return strings.TrimSpace(strings.Join(pages, "\n\n")), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("reading docx: %w", err)
	}
	defer doc.Close()

	return flattenDocxXML(doc.Editable().GetContent())
}

// flattenDocxXML walks the document XML and keeps only run text,
// inserting a newline at each paragraph boundary.
func flattenDocxXML(content string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))

	var b strings.Builder
	var inText bool
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
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
