// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package extract

import (
	"path/filepath"
	"strings"
)

// Status classifies the outcome of a text extraction attempt. Failures are
// observable and countable rather than silently absorbed.
type Status int

const (
	// StatusOK means extraction succeeded. Text may still be empty for a
	// document with no textual content.
	StatusOK Status = iota
	// StatusUnsupported means the format is not extractable (unknown
	// extension and MIME type, or empty payload).
	StatusUnsupported
	// StatusCorrupt means the payload claimed a supported format but could
	// not be decoded.
	StatusCorrupt
	// StatusIOError means reading the payload failed.
	StatusIOError
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnsupported:
		return "unsupported"
	case StatusCorrupt:
		return "corrupt"
	case StatusIOError:
		return "io-error"
	default:
		return "unknown"
	}
}

// Result is the outcome of a text extraction attempt.
type Result struct {
	Status Status
	Text   string
	Err    error // underlying cause for Corrupt and IOError, nil otherwise
}

// OK reports whether extraction succeeded with non-empty text.
func (r Result) OK() bool {
	return r.Status == StatusOK && strings.TrimSpace(r.Text) != ""
}

var extensionToMime = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".doc":  "application/msword",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
	".txt":  "text/plain",
	".text": "text/plain",
	".csv":  "text/csv",
}

// MimeType infers a MIME type from the filename extension.
// Unknown extensions map to application/octet-stream.
func MimeType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if mime, ok := extensionToMime[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// CanExtract reports whether text extraction is supported for the attachment.
// mimeType may be empty when the source did not declare one.
func CanExtract(filename, mimeType string) bool {
	return kindOf(filename, mimeType) != kindUnknown
}

type kind int

const (
	kindUnknown kind = iota
	kindPDF
	kindDocx
	kindXlsx
	kindText
)

func kindOf(filename, mimeType string) kind {
	ext := strings.ToLower(filepath.Ext(filename))
	mime := strings.ToLower(mimeType)

	switch {
	case ext == ".pdf" || mime == "application/pdf":
		return kindPDF
	case ext == ".docx" || strings.Contains(mime, "wordprocessingml"):
		return kindDocx
	case ext == ".xlsx" || strings.Contains(mime, "spreadsheetml"):
		return kindXlsx
	case ext == ".txt" || ext == ".text" || ext == ".csv" || strings.HasPrefix(mime, "text/"):
		return kindText
	default:
		return kindUnknown
	}
}

// Text extracts plain text from attachment bytes.
//
// Supported formats: PDF, Word (.docx), Excel (.xlsx), and plain text/CSV.
// Any other format or an empty payload yields StatusUnsupported. Decoding
// failures yield StatusCorrupt; they are never propagated as a fault.
func Text(filename, mimeType string, content []byte) Result {
	if len(content) == 0 {
		return Result{Status: StatusUnsupported}
	}

	switch kindOf(filename, mimeType) {
	case kindPDF:
		return extractPDF(content)
	case kindDocx:
		return extractDocx(content)
	case kindXlsx:
		return extractXlsx(content)
	case kindText:
		return extractPlainText(content)
	default:
		return Result{Status: StatusUnsupported}
	}
}

func extractPlainText(content []byte) Result {
	text := strings.ToValidUTF8(string(content), "�")
	return Result{Status: StatusOK, Text: strings.TrimSpace(text)}
}
