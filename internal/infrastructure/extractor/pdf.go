package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

func ExtractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Unreadable pages are skipped; the rest of the document still diffs.
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	text := cleanText(b.String())
	if text == "" {
		return "", fmt.Errorf("no text could be extracted from pdf")
	}
	return text, nil
}
