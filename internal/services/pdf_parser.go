package services

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

type PDFParserService interface {
	ExtractText(data []byte) (string, error)
}

type pdfParserService struct {
	storage StorageService
	logger  *zap.Logger
}

func NewPDFParserService(storage StorageService, logger *zap.Logger) PDFParserService {
	return &pdfParserService{
		storage: storage,
		logger:  logger,
	}
}

// ExtractText joins the plain text of every page with a single space, in page
// order. Pages without text contribute nothing, so an image-only PDF yields "".
func (p *pdfParserService) ExtractText(data []byte) (text string, err error) {
	filename, filePath, err := p.storage.SaveBytes(data, "resume")
	if err != nil {
		return "", newError(KindUnexpected, err, "failed to stage PDF for extraction")
	}
	defer func() {
		if delErr := p.storage.DeleteFile(filename); delErr != nil {
			p.logger.Warn("failed to remove staged PDF", zap.String("file", filename), zap.Error(delErr))
		}
	}()

	f, err := os.Open(filePath)
	if err != nil {
		return "", newError(KindUnexpected, err, "failed to open staged PDF")
	}
	defer f.Close()

	pages, err := readPages(f, int64(len(data)))
	if err != nil {
		return "", err
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = newError(KindUnexpected, fmt.Errorf("%v", r), "an error occurred while extracting text from the PDF")
		}
	}()

	texts := make([]string, 0, len(pages))
	for i, page := range pages {
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", newError(KindUnexpected, err,
				"an error occurred while extracting text from page %d of the PDF", i+1)
		}

		texts = append(texts, CleanText(pageText))
	}

	return strings.TrimSpace(strings.Join(texts, " ")), nil
}

// readPages parses the container and resolves the page tree. ledongthuc/pdf
// reports a broken xref, trailer or catalog by panicking, so a panic here is a
// malformed document just like a returned error.
func readPages(f io.ReaderAt, size int64) (pages []pdf.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = malformedDocument(fmt.Errorf("%v", r))
		}
	}()

	r, err := pdf.NewReader(f, size)
	if err != nil {
		return nil, malformedDocument(err)
	}

	total := r.NumPage()
	pages = make([]pdf.Page, 0, total)
	for i := 1; i <= total; i++ {
		pages = append(pages, r.Page(i))
	}

	return pages, nil
}

func malformedDocument(err error) *PipelineError {
	return newError(KindMalformedDocument, err,
		"Failed to read the PDF. It may be corrupted or malformed. (Error: %v)", err)
}

// CleanText trims every line and drops the empty ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
