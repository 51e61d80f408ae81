package notifier

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
	"github.com/pfrederiksen/nascar-schedule/internal/logger"
	"github.com/pfrederiksen/nascar-schedule/internal/race"
)

const (
	maxTweetLen = 280
	tweetGap    = 2 * time.Second
)

// TwitterNotifier posts races to Twitter
type TwitterNotifier struct {
	client *twitter.Client
	gap    time.Duration
}

// NewTwitterNotifier creates a new Twitter notifier using environment variables
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterNotifier() (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)

	return &TwitterNotifier{
		client: twitter.NewClient(httpClient),
		gap:    tweetGap,
	}, nil
}

// Notify posts one tweet per race
func (n *TwitterNotifier) Notify(races []race.Race) error {
	for i, r := range races {
		tweet := formatTweet(r)

		if _, _, err := n.client.Statuses.Update(tweet, nil); err != nil {
			return fmt.Errorf("failed to post tweet for race %s: %w", r.RaceID.String(), err)
		}
		logger.IncrCounter("tweets_posted")
		logger.Info("Posted race announcement", logger.Fields{
			"race_id": r.RaceID.String(),
			"series":  r.Series,
		})

		if i < len(races)-1 {
			time.Sleep(n.gap)
		}
	}

	return nil
}

// formatTweet formats a race as a tweet of at most 280 characters
func formatTweet(r race.Race) string {
	var b strings.Builder

	if r.Series != "" {
		fmt.Fprintf(&b, "🏁 %s\n\n", r.Series)
	} else {
		b.WriteString("🏁 NASCAR\n\n")
	}

	name := r.RaceName
	if name == "" {
		name = "NASCAR Race"
	}
	fmt.Fprintf(&b, "🏆 %s\n", name)

	if r.TrackName != "" {
		if r.State != "" {
			fmt.Fprintf(&b, "📍 %s, %s\n", r.TrackName, r.State)
		} else {
			fmt.Fprintf(&b, "📍 %s\n", r.TrackName)
		}
	}

	if when := raceDay(r); when != "" {
		fmt.Fprintf(&b, "📅 %s\n", when)
	}

	if r.TVNetwork != "" {
		fmt.Fprintf(&b, "📺 %s\n", r.TVNetwork)
	}

	b.WriteString("\n#NASCAR")

	tweet := b.String()
	if runes := []rune(tweet); len(runes) > maxTweetLen {
		tweet = string(runes[:maxTweetLen-3]) + "..."
	}
	return tweet
}

// raceDay renders the plain date with the published start time, e.g. "Sun Feb 15, 2:30 PM ET"
func raceDay(r race.Race) string {
	day, err := time.Parse("2006-01-02", r.DatePlain)
	if err != nil {
		return r.DatePlain
	}

	s := day.Format("Mon Jan 2")
	if r.StartTime != "" {
		s += ", " + r.StartTime + " ET"
	}
	return s
}
