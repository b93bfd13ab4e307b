package retriever

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"voice-shopping-be/pkg/shopping"
)

// Selectors locate product fields inside a search results page
type Selectors struct {
	Item     string
	Title    string
	Price    string
	Category string
	Link     string
	Brand    string
	Material string
	Snippet  string
}

// DefaultSelectors match pages that mark results with data-* attributes
var DefaultSelectors = Selectors{
	Item:     "[data-product]",
	Title:    "[data-title]",
	Price:    "[data-price]",
	Category: "[data-category]",
	Link:     "a[href]",
	Brand:    "[data-brand]",
	Material: "[data-material]",
	Snippet:  "[data-snippet]",
}

// HTMLRetriever scrapes a search results page. SearchURL must contain a
// single %s where the escaped query goes.
type HTMLRetriever struct {
	SearchURL string
	Selectors Selectors
	Client    *http.Client
	policy    *bluemonday.Policy
}

var _ Retriever = &HTMLRetriever{}

func NewHTMLRetriever(searchURL string, sel Selectors) *HTMLRetriever {
	return &HTMLRetriever{
		SearchURL: searchURL,
		Selectors: sel,
		Client:    &http.Client{Timeout: 15 * time.Second},
		policy:    bluemonday.StrictPolicy(),
	}
}

func (h *HTMLRetriever) Retrieve(ctx context.Context, query string, filters shopping.Filters, k int) ([]shopping.ProductRecord, error) {
	if k <= 0 {
		return []shopping.ProductRecord{}, nil
	}

	pageURL := fmt.Sprintf(h.SearchURL, url.QueryEscape(query))
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search error: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	items := doc.Find(h.Selectors.Item)
	total := items.Length()
	out := make([]shopping.ProductRecord, 0, k)

	items.EachWithBreak(func(i int, item *goquery.Selection) bool {
		rec := shopping.ProductRecord{
			DocID:    fmt.Sprintf("web_%03d", i+1),
			Title:    h.text(item, h.Selectors.Title),
			Price:    ParsePrice(h.text(item, h.Selectors.Price)),
			Category: h.text(item, h.Selectors.Category),
			Brand:    h.text(item, h.Selectors.Brand),
			Material: h.text(item, h.Selectors.Material),
			Content:  h.text(item, h.Selectors.Snippet),
			Score:    rankScore(i, total),
			Source:   shopping.OriginWeb,
			URL:      resolveLink(base, item.Find(h.Selectors.Link).First().AttrOr("href", "")),
		}
		if rec.Title == "" {
			return true
		}
		// Live pages rarely carry a category, so only filter on it when present
		f := filters
		if rec.Category == "" {
			f.Category = nil
		}
		if Matches(rec, f) {
			out = append(out, rec)
		}
		return len(out) < k
	})

	return out, nil
}

func (h *HTMLRetriever) text(item *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	sel := item.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	raw, err := sel.Html()
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(html.UnescapeString(h.policy.Sanitize(raw))), " ")
}

// rankScore gives the first hit 1.0 and decays linearly with page position
func rankScore(i, total int) float64 {
	if total <= 1 {
		return 1
	}
	return 1 - float64(i)/float64(total)
}

func resolveLink(base *url.URL, href string) string {
	if href == "" {
		return base.String()
	}
	ref, err := url.Parse(href)
	if err != nil {
		return base.String()
	}
	return base.ResolveReference(ref).String()
}
