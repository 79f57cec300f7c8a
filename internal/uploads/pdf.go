package uploads

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText pulls plain text out of a PDF page by page. The caller is
// responsible for truncating the result to the prompt budget.
func ExtractText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("uploads: open pdf: %w", err)
	}
	defer f.Close()

	var out strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		out.WriteString(text)
	}
	return out.String(), nil
}
