package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/pfrederiksen/nascar-schedule/internal/logger"
	"github.com/pfrederiksen/nascar-schedule/internal/race"
	"github.com/pfrederiksen/nascar-schedule/internal/series"
)

const (
	UserAgent = "Mozilla/5.0 (compatible; nascar-schedule/1.0; +https://github.com/pfrederiksen/nascar-schedule)"
	Timeout   = 30 * time.Second

	// RequestsPerSecond paces consecutive requests to the feed host
	RequestsPerSecond = 1.0
	BurstSize         = 1

	// MaxRetries is the number of retries after the first failed attempt
	MaxRetries = 3

	maxBodyBytes = 16 << 20
	feedFileName = "schedule-combined-feed.json"
)

// ErrNoRaces is returned when a feed answers but lists no races
var ErrNoRaces = errors.New("feed contains no races")

var feedURLPattern = regexp.MustCompile(`[^"'\s()<>]*` + regexp.QuoteMeta(feedFileName))

// StatusError reports a non-200 answer
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.Code, e.URL)
}

// Temporary reports whether the request is worth retrying
func (e *StatusError) Temporary() bool {
	return e.Code >= http.StatusInternalServerError || e.Code == http.StatusTooManyRequests
}

// Scraper fetches schedule feeds
type Scraper struct {
	client     *http.Client
	limiter    *rate.Limiter
	newBackOff func() backoff.BackOff
}

// New creates a new Scraper instance
func New() *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(RequestsPerSecond), BurstSize),
		newBackOff: defaultBackOff,
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = time.Minute
	return backoff.WithMaxRetries(b, MaxRetries)
}

type feedResponse struct {
	Response []race.Raw `json:"response"`
}

// FetchSeries returns the raw race entries published for a series, in feed order
func (s *Scraper) FetchSeries(ctx context.Context, sr series.Series) ([]race.Raw, error) {
	start := time.Now()
	defer func() {
		logger.RecordTiming("fetch.series", time.Since(start))
	}()

	raws, err := s.fetchFeed(ctx, sr.APIURL)
	if err == nil || sr.PageURL == "" || ctx.Err() != nil {
		return raws, err
	}

	logger.Warn("feed unavailable, looking it up on the schedule page", logger.Fields{
		"series": sr.Key,
		"feed":   sr.APIURL,
		"page":   sr.PageURL,
		"error":  err.Error(),
	})

	feedURL, discoverErr := s.discoverFeedURL(ctx, sr)
	if discoverErr != nil {
		logger.Debug("schedule page lookup failed", logger.Fields{
			"series": sr.Key,
			"error":  discoverErr.Error(),
		})
		return nil, err
	}
	if feedURL == sr.APIURL {
		return nil, err
	}

	logger.Info("using feed found on schedule page", logger.Fields{
		"series": sr.Key,
		"feed":   feedURL,
	})
	return s.fetchFeed(ctx, feedURL)
}

// fetchFeed downloads and decodes one feed, retrying transient failures
func (s *Scraper) fetchFeed(ctx context.Context, feedURL string) ([]race.Raw, error) {
	var raws []race.Raw

	operation := func() error {
		resp, err := s.get(ctx, feedURL, "application/json")
		if err != nil {
			return classify(err)
		}
		defer resp.Body.Close()

		var feed feedResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&feed); err != nil {
			return backoff.Permanent(fmt.Errorf("parsing feed %s: %w", feedURL, err))
		}
		if len(feed.Response) == 0 {
			return backoff.Permanent(ErrNoRaces)
		}

		raws = feed.Response
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.IncrCounter("fetch.retries")
		logger.Warn("feed request failed, retrying", logger.Fields{
			"url":  feedURL,
			"wait": wait.String(),
		})
		logger.Debug("retry cause", logger.Fields{"error": err.Error()})
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(s.newBackOff(), ctx), notify); err != nil {
		return nil, err
	}

	logger.AddCounter("races.fetched", int64(len(raws)))
	return raws, nil
}

// discoverFeedURL loads a schedule page and returns the feed URL it references.
// A URL naming the series id is preferred over any other feed on the page.
func (s *Scraper) discoverFeedURL(ctx context.Context, sr series.Series) (string, error) {
	resp, err := s.get(ctx, sr.PageURL, "text/html")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	base, err := url.Parse(sr.PageURL)
	if err != nil {
		return "", fmt.Errorf("parsing page URL: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	candidates := findFeedURLs(doc, base)
	if len(candidates) == 0 {
		return "", fmt.Errorf("no %s reference on %s", feedFileName, sr.PageURL)
	}

	want := fmt.Sprintf("/%d/%s", sr.ID, feedFileName)
	for _, c := range candidates {
		if strings.HasSuffix(c, want) {
			return c, nil
		}
	}
	return candidates[0], nil
}

// findFeedURLs collects absolute feed URLs from element attributes and inline scripts
func findFeedURLs(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]bool)
	urls := make([]string, 0)

	add := func(text string) {
		for _, match := range feedURLPattern.FindAllString(text, -1) {
			ref, err := base.Parse(match)
			if err != nil {
				continue
			}
			abs := ref.String()
			if !seen[abs] {
				seen[abs] = true
				urls = append(urls, abs)
			}
		}
	}

	attrs := []string{"src", "href", "data-src", "data-url", "data-feed", "data-feed-url"}
	doc.Find("*").Each(func(i int, sel *goquery.Selection) {
		for _, attr := range attrs {
			if v, ok := sel.Attr(attr); ok {
				add(v)
			}
		}
	})

	doc.Find("script").Each(func(i int, sel *goquery.Selection) {
		add(sel.Text())
	})

	return urls
}

func (s *Scraper) get(ctx context.Context, target, accept string) (*http.Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", accept)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", target, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{URL: target, Code: resp.StatusCode}
	}

	return resp, nil
}

// classify marks errors that retrying cannot fix as permanent
func classify(err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && !statusErr.Temporary() {
		return backoff.Permanent(err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return backoff.Permanent(err)
	}
	return err
}
