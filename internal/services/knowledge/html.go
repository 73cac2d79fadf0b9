package knowledge

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// convertHTMLFile reads an HTML file and converts it to markdown for
// chunking. The page <title> is returned so the caller can use it as the
// source name; it is empty when the document has none.
func (s *Service) convertHTMLFile(path string) (title, markdown string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read HTML file: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err == nil {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	converter := md.NewConverter("", true, nil)
	markdown, err = converter.ConvertString(string(raw))
	if err != nil {
		return "", "", fmt.Errorf("failed to convert %s to markdown: %w", filepath.Base(path), err)
	}

	return title, markdown, nil
}
