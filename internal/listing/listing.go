package listing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cinerate/internal/services"
)

// TitleSelector matches the title blocks on the cinema listing and detail pages.
const TitleSelector = ".title-wrapper .title, .movie-list-detail .title"

// ExtractTitles returns the raw movie titles found in a listing page, in page
// order and without duplicates.
func ExtractTitles(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "listing", "parse page", "", err)
	}

	var titles []string
	seen := make(map[string]struct{})
	doc.Find(TitleSelector).Each(func(_ int, block *goquery.Selection) {
		title := extractTitle(block)
		if title == "" {
			return
		}
		if _, ok := seen[title]; ok {
			return
		}
		seen[title] = struct{}{}
		titles = append(titles, title)
	})
	return titles, nil
}

// extractTitle concatenates the direct text of the name span up to the first
// rating badge, which the site renders inline with the title.
func extractTitle(block *goquery.Selection) string {
	name := block.Find("span.name").First()
	if name.Length() == 0 {
		name = block.Find("span").First()
	}
	if name.Length() == 0 {
		return ""
	}

	var b strings.Builder
	name.Contents().EachWithBreak(func(_ int, node *goquery.Selection) bool {
		if goquery.NodeName(node) == "#text" {
			b.WriteString(node.Text())
			return true
		}
		return !node.HasClass("rating")
	})
	return strings.TrimSpace(b.String())
}

// Fetch downloads a listing page and extracts its titles.
func Fetch(ctx context.Context, client *http.Client, pageURL string) ([]string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "listing", "fetch page", "build request", err)
	}
	req.Header.Set("Accept", "text/html")
	resp, err := client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "listing", "fetch page", pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrStatus, "listing", "fetch page", fmt.Sprintf("%s returned %d", pageURL, resp.StatusCode), nil)
	}
	return ExtractTitles(resp.Body)
}
