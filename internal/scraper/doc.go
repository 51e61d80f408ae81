// Package scraper fetches the published NASCAR schedule feeds.
//
// Each series publishes a combined schedule feed as JSON. The scraper requests the
// feeds one series at a time, paced by a token bucket, and retries transient failures
// with exponential backoff. When a feed URL stops answering, the series' public
// schedule page is loaded and searched for the feed URL it currently references.
package scraper
