// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refresh

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/pdiddy/post-engine/internal/httputil"
	"github.com/pdiddy/post-engine/pkg/types"
)

// Scraper collects topic phrases from headings and list items on allowed
// source pages and from item titles in allowed feeds.
type Scraper struct {
	client    *http.Client
	userAgent string
	log       logrus.FieldLogger
}

// NewScraper returns a Scraper. A nil client gets one bounded by timeout.
func NewScraper(client *http.Client, timeout time.Duration, userAgent string, log logrus.FieldLogger) *Scraper {
	if client == nil {
		if timeout <= 0 {
			timeout = types.DefaultScrapeTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scraper{client: client, userAgent: userAgent, log: log}
}

// Scrape returns, per bucket, the accepted phrases from every allowed page and
// then every allowed feed of that bucket, deduplicated by text. Sources that
// fail to load or return a non-200 status are logged and skipped.
func (s *Scraper) Scrape(ctx context.Context, buckets []string, r *Restrictions) map[string][]types.TopicRecord {
	out := make(map[string][]types.TopicRecord, len(buckets))
	for _, bucket := range buckets {
		records := []types.TopicRecord{}
		seen := make(map[string]bool)

		type source struct {
			url    string
			scrape func(context.Context, string, *Restrictions) ([]types.TopicRecord, error)
		}
		var sources []source
		for _, url := range r.Sources(bucket) {
			sources = append(sources, source{url, s.scrapePage})
		}
		for _, url := range r.Feeds(bucket) {
			sources = append(sources, source{url, s.scrapeFeed})
		}

		for _, src := range sources {
			url := src.url
			found, err := src.scrape(ctx, url, r)
			if err != nil {
				s.log.WithFields(logrus.Fields{
					"bucket": bucket,
					"url":    url,
				}).WithError(err).Warn("scraping source failed")
				continue
			}
			for _, rec := range found {
				if seen[rec.Topic] {
					continue
				}
				seen[rec.Topic] = true
				records = append(records, rec)
			}
		}
		out[bucket] = records
	}
	return out
}

// errSkipped marks a source that answered with a non-200 status.
type errSkipped struct{ status int }

func (e errSkipped) Error() string { return fmt.Sprintf("unexpected status: %d", e.status) }

// fetch GETs url and returns the body of a 200 response. The caller closes
// it.
func (s *Scraper) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, s.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, errSkipped{status: resp.StatusCode}
	}
	return resp.Body, nil
}

func (s *Scraper) scrapePage(ctx context.Context, url string, r *Restrictions) ([]types.TopicRecord, error) {
	body, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}
	return ExtractTopics(doc, r), nil
}

func (s *Scraper) scrapeFeed(ctx context.Context, url string, r *Restrictions) ([]types.TopicRecord, error) {
	body, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed failed: %w", err)
	}
	return ExtractFeedTopics(feed, r), nil
}

// ExtractFeedTopics keeps feed item titles that pass r. An item's image is
// its own image, else its first image enclosure.
func ExtractFeedTopics(feed *gofeed.Feed, r *Restrictions) []types.TopicRecord {
	var out []types.TopicRecord
	seen := make(map[string]bool)
	for _, item := range feed.Items {
		text := strings.TrimSpace(item.Title)
		if !r.Accepts(text) || utf8.RuneCountInString(text) < minTopicLen || seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, types.TopicRecord{Topic: text, Image: itemImage(item)})
	}
	return out
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

// ExtractTopics walks h2 and li elements in document order and keeps those
// whose text passes r. Each kept phrase takes the src of the nearest img
// before it in the document, or failing that the nearest one after it.
func ExtractTopics(doc *goquery.Document, r *Restrictions) []types.TopicRecord {
	// Find returns matches in document order, so imgs interleave with the
	// candidate elements.
	nodes := doc.Find("h2, li, img")

	var imgs []int
	nodes.Each(func(i int, sel *goquery.Selection) {
		if goquery.NodeName(sel) == "img" {
			imgs = append(imgs, i)
		}
	})

	var out []types.TopicRecord
	seen := make(map[string]bool)
	nodes.Each(func(i int, sel *goquery.Selection) {
		if goquery.NodeName(sel) == "img" {
			return
		}
		text := strippedText(sel.Nodes[0])
		if !r.Accepts(text) || utf8.RuneCountInString(text) < minTopicLen || seen[text] {
			return
		}
		seen[text] = true

		rec := types.TopicRecord{Topic: text}
		if idx := nearestImage(imgs, i); idx >= 0 {
			rec.Image, _ = nodes.Eq(idx).Attr("src")
		}
		out = append(out, rec)
	})
	return out
}

// nearestImage returns the last img index before pos, else the first after
// it, else -1.
func nearestImage(imgs []int, pos int) int {
	prev, next := -1, -1
	for _, idx := range imgs {
		if idx < pos {
			prev = idx
			continue
		}
		next = idx
		break
	}
	if prev >= 0 {
		return prev
	}
	return next
}

// strippedText concatenates the descendant text nodes of n, each trimmed of
// surrounding whitespace, with no separator.
func strippedText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
