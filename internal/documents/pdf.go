package documents

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dslipak/pdf"
	"go.uber.org/zap"
)

// PDFExtractor pulls plain text out of PDF files page by page. A page that
// fails to parse is skipped; only a fully empty result is an error.
type PDFExtractor struct {
	logger *zap.Logger
}

func NewPDFExtractor(logger *zap.Logger) *PDFExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFExtractor{logger: logger}
}

// ExtractText reads the whole document and returns its text plus the number
// of pages that were parsed.
func (p *PDFExtractor) ExtractText(reader io.Reader) (string, int, error) {
	// pdf.NewReader needs a ReaderAt, so buffer the file first.
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", 0, fmt.Errorf("read pdf content: %w", err)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	var buf strings.Builder
	numPages := r.NumPage()

	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			p.logger.Warn("skipping unparseable pdf page", zap.Int("page", i), zap.Error(err))
			continue
		}

		buf.WriteString(text)
		buf.WriteString("\n")
	}

	content := strings.TrimSpace(buf.String())
	if content == "" {
		return "", numPages, fmt.Errorf("pdf contains no extractable text")
	}
	return content, numPages, nil
}
