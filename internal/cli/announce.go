package cli

import (
	"fmt"

	"github.com/pfrederiksen/nascar-schedule/internal/notifier"
	"github.com/spf13/cobra"
)

// Replaced in tests
var newTwitterNotifier = func() (notifier.Notifier, error) {
	return notifier.NewTwitterNotifier()
}

func newAnnounceCmd() *cobra.Command {
	var (
		maxRaces int
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "announce",
		Short: "Post the next upcoming races to Twitter",
		Long: `Post the next upcoming races from the last scrape to Twitter.
Requires TWITTER_API_KEY, TWITTER_API_SECRET, TWITTER_ACCESS_TOKEN and
TWITTER_ACCESS_SECRET unless --dry-run is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnounce(cmd, maxRaces, dryRun)
		},
	}

	cmd.Flags().IntVar(&maxRaces, "max", 3, "Maximum number of races to announce")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the tweets instead of posting them")

	return cmd
}

func runAnnounce(cmd *cobra.Command, maxRaces int, dryRun bool) error {
	out := cmd.OutOrStdout()

	_, doc, err := loadSchedule(out)
	if err != nil || doc == nil {
		return err
	}

	races := notifier.Upcoming(doc.AllRacesChronological, now(), maxRaces)
	if len(races) == 0 {
		fmt.Fprintln(out, "No upcoming races.")
		return nil
	}

	var n notifier.Notifier
	if dryRun {
		n = notifier.NewDryRunNotifier(out)
	} else {
		n, err = newTwitterNotifier()
		if err != nil {
			return fmt.Errorf("initializing Twitter: %w", err)
		}
	}

	if err := n.Notify(races); err != nil {
		return fmt.Errorf("announcing races: %w", err)
	}
	return nil
}
