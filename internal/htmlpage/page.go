package htmlpage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// metaTitle is consulted when the page has no element matching the requested selector.
const metaTitle = `meta[property="og:title"]`

// Page is a parsed HTML document of a content page.
type Page struct {
	doc *goquery.Document
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	return &Page{doc: doc}, nil
}

// Fetch downloads and parses the page at pageURL.
func Fetch(ctx context.Context, c *http.Client, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "text/html")

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch page: %s", resp.Status)
	}

	return Parse(resp.Body)
}

// TitleText returns the text of the first element matching selector. Meta tags
// yield their content attribute. A nil page has no title.
func (p *Page) TitleText(selector string) (string, bool) {
	if p == nil || p.doc == nil {
		return "", false
	}

	for _, sel := range []string{selector, metaTitle} {
		if text, ok := p.first(sel); ok {
			return text, true
		}
	}

	return "", false
}

func (p *Page) first(selector string) (string, bool) {
	s := p.doc.Find(selector).First()
	if s.Length() == 0 {
		return "", false
	}

	var text string
	if goquery.NodeName(s) == "meta" {
		text, _ = s.Attr("content")
	} else {
		text = s.Text()
	}

	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "", false
	}

	return text, true
}
