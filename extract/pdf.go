package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF pulls plain text from a PDF payload.
// The pdf package panics on some malformed inputs, so decoding is wrapped in
// a recover that surfaces the failure as StatusCorrupt.
func extractPDF(content []byte) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Status: StatusCorrupt, Err: fmt.Errorf("pdf decode panic: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Result{Status: StatusCorrupt, Err: err}
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return Result{Status: StatusCorrupt, Err: err}
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return Result{Status: StatusIOError, Err: err}
	}

	return Result{Status: StatusOK, Text: strings.TrimSpace(buf.String())}
}
