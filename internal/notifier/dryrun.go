package notifier

import (
	"fmt"
	"io"

	"github.com/pfrederiksen/nascar-schedule/internal/race"
)

// DryRunNotifier prints what would be tweeted without actually posting
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a new dry-run notifier writing to w
func NewDryRunNotifier(w io.Writer) *DryRunNotifier {
	return &DryRunNotifier{out: w}
}

// Notify prints the tweets that would be posted
func (n *DryRunNotifier) Notify(races []race.Race) error {
	for i, r := range races {
		tweet := formatTweet(r)
		fmt.Fprintf(n.out, "--- Tweet %d/%d ---\n", i+1, len(races))
		fmt.Fprintln(n.out, tweet)
		fmt.Fprintf(n.out, "\n(Length: %d characters)\n\n", len([]rune(tweet)))
	}
	return nil
}
