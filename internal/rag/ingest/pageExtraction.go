package ingest

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

func extractPDF(path string) ([]rawPage, error) {
	f, err := pdf.Open(path)
	if err != nil {
		logger.Error("failed opening of pdf file", "error", err)
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []rawPage
	numPages := f.NumPage()
	logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// an unparseable page is skipped, the rest of the document survives
			logger.Warn("Error parsing page content", "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}

		pages = append(pages, rawPage{
			Number:  i,
			Content: content,
		})
	}
	return pages, nil
}

// extractWordDoc reads a .docx or .doc paragraph stream. The format has no
// native pagination, so everything is reported as page 1.
func extractWordDoc(path string) ([]rawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		logger.Error("Error extracting content from doc", "error", err)
		return nil, fmt.Errorf("failed to extract document text: %w", err)
	}
	return singlePage(text), nil
}

func extractTxt(path string) ([]rawPage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}
	return singlePage(string(raw)), nil
}

func singlePage(text string) []rawPage {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return []rawPage{{Number: 1, Content: text}}
}

// protectExtract guards against pdf pages whose content streams hang the
// decoder.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		return "", errors.New("page extraction timeout")
	}
}
