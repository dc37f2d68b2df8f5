package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestMimeType(t *testing.T) {
	assert.Equal(t, "application/pdf", MimeType("report.pdf"))
	assert.Equal(t, "application/pdf", MimeType("REPORT.PDF"))
	assert.Equal(t, "text/csv", MimeType("data.csv"))
	assert.Equal(t, "text/plain", MimeType("notes.txt"))
	assert.Equal(t, "application/octet-stream", MimeType("archive.tar.gz"))
	assert.Equal(t, "application/octet-stream", MimeType("noextension"))
}

func TestCanExtract(t *testing.T) {
	assert.True(t, CanExtract("report.pdf", ""))
	assert.True(t, CanExtract("memo.docx", ""))
	assert.True(t, CanExtract("sheet.xlsx", ""))
	assert.True(t, CanExtract("notes.txt", ""))
	assert.True(t, CanExtract("unknown.bin", "application/pdf"))
	assert.True(t, CanExtract("unknown.bin", "text/plain"))
	assert.False(t, CanExtract("image.png", ""))
	assert.False(t, CanExtract("image.png", "image/png"))
}

func TestText_EmptyPayloadUnsupported(t *testing.T) {
	result := Text("report.pdf", "application/pdf", nil)
	assert.Equal(t, StatusUnsupported, result.Status)
	assert.False(t, result.OK())
}

func TestText_UnsupportedFormat(t *testing.T) {
	result := Text("image.png", "image/png", []byte{0x89, 0x50, 0x4e, 0x47})
	assert.Equal(t, StatusUnsupported, result.Status)
	assert.Nil(t, result.Err)
}

func TestText_PlainText(t *testing.T) {
	result := Text("notes.txt", "text/plain", []byte("  hello world\n"))
	require.Equal(t, StatusOK, result.Status)
	assert.Equal(t, "hello world", result.Text)
	assert.True(t, result.OK())
}

func TestText_CSV(t *testing.T) {
	result := Text("data.csv", "", []byte("a,b,c\n1,2,3"))
	require.Equal(t, StatusOK, result.Status)
	assert.Equal(t, "a,b,c\n1,2,3", result.Text)
}

func TestText_PlainTextInvalidUTF8(t *testing.T) {
	result := Text("notes.txt", "", []byte{0x68, 0x69, 0xff, 0xfe})
	require.Equal(t, StatusOK, result.Status)
	assert.Contains(t, result.Text, "hi")
}

func TestText_WhitespaceOnlyTextNotOK(t *testing.T) {
	result := Text("blank.txt", "", []byte("   \n\t  "))
	require.Equal(t, StatusOK, result.Status)
	assert.False(t, result.OK(), "whitespace-only extraction yields no usable text")
}

func TestText_CorruptPDF(t *testing.T) {
	result := Text("report.pdf", "application/pdf", []byte("definitely not a pdf"))
	assert.Equal(t, StatusCorrupt, result.Status)
	assert.Error(t, result.Err)
	assert.False(t, result.OK())
}

func TestText_Docx(t *testing.T) {
	content := buildDocx(t, `<?xml version="1.0"?>`+
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`+
		`<w:body>`+
		`<w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t>Second</w:t></w:r><w:r><w:t> paragraph.</w:t></w:r></w:p>`+
		`</w:body></w:document>`)

	result := Text("memo.docx", "", content)
	require.Equal(t, StatusOK, result.Status, "err: %v", result.Err)
	assert.Contains(t, result.Text, "First paragraph.")
	assert.Contains(t, result.Text, "Second paragraph.")
}

func TestText_DocxMissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	part, err := writer.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = part.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	result := Text("memo.docx", "", buf.Bytes())
	assert.Equal(t, StatusCorrupt, result.Status)
	assert.ErrorIs(t, result.Err, errNoDocumentPart)
}

func TestText_CorruptDocx(t *testing.T) {
	result := Text("memo.docx", "", []byte("not a zip archive"))
	assert.Equal(t, StatusCorrupt, result.Status)
}

func TestText_Xlsx(t *testing.T) {
	workbook := excelize.NewFile()
	require.NoError(t, workbook.SetCellValue("Sheet1", "A1", "name"))
	require.NoError(t, workbook.SetCellValue("Sheet1", "B1", "total"))
	require.NoError(t, workbook.SetCellValue("Sheet1", "A2", "widgets"))
	require.NoError(t, workbook.SetCellValue("Sheet1", "B2", 42))

	var buf bytes.Buffer
	require.NoError(t, workbook.Write(&buf))

	result := Text("sheet.xlsx", "", buf.Bytes())
	require.Equal(t, StatusOK, result.Status, "err: %v", result.Err)
	assert.Contains(t, result.Text, "--- Sheet1 ---")
	assert.Contains(t, result.Text, "name\ttotal")
	assert.Contains(t, result.Text, "widgets\t42")
}

func TestText_CorruptXlsx(t *testing.T) {
	result := Text("sheet.xlsx", "", []byte("not a workbook"))
	assert.Equal(t, StatusCorrupt, result.Status)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "unsupported", StatusUnsupported.String())
	assert.Equal(t, "corrupt", StatusCorrupt.String())
	assert.Equal(t, "io-error", StatusIOError.String())
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	part, err := writer.Create("word/document.xml")
	require.NoError(t, err)
	_, err = part.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return buf.Bytes()
}
