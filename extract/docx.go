package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

var errNoDocumentPart = errors.New("docx: missing word/document.xml")

// extractDocx pulls paragraph text out of a .docx payload. A .docx file is a
// zip archive whose word/document.xml holds runs of <w:t> text elements.
func extractDocx(content []byte) Result {
	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Result{Status: StatusCorrupt, Err: err}
	}

	var document *zip.File
	for _, file := range archive.File {
		if file.Name == "word/document.xml" {
			document = file
			break
		}
	}
	if document == nil {
		return Result{Status: StatusCorrupt, Err: errNoDocumentPart}
	}

	part, err := document.Open()
	if err != nil {
		return Result{Status: StatusIOError, Err: err}
	}
	defer part.Close()

	text, err := documentText(part)
	if err != nil {
		return Result{Status: StatusCorrupt, Err: err}
	}

	return Result{Status: StatusOK, Text: text}
}

// documentText walks the document XML, collecting text runs and inserting a
// newline at each paragraph boundary.
func documentText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		builder strings.Builder
		inText  bool
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "br", "cr":
				builder.WriteByte('\n')
			case "tab":
				builder.WriteByte('\t')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				builder.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				builder.Write(t)
			}
		}
	}

	return strings.TrimSpace(builder.String()), nil
}
