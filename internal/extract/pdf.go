package extract

import (
	"bytes"
	"io"

	"github.com/ledongthuc/pdf"
)

// extractPDF pulls the plain text out of a PDF and reports its page count.
func extractPDF(data []byte) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, err
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", 0, err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return "", 0, err
	}

	return buf.String(), reader.NumPage(), nil
}
