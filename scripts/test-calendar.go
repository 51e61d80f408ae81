package main

import (
	"fmt"
	"os"

	"github.com/pfrederiksen/nascar-schedule/internal/calendar"
	"github.com/pfrederiksen/nascar-schedule/internal/race"
)

func main() {
	// Create a sample race
	r := race.Race{
		RaceName:       "DAYTONA 500",
		RaceID:         race.Int(5546),
		TrackName:      "Daytona International Speedway",
		State:          "FL",
		Date:           "2026-02-15T14:30:00-0500",
		DatePlain:      "2026-02-15",
		StartTime:      "2:30 PM",
		ScheduledLaps:  race.Int(200),
		TVNetwork:      "FOX",
		Radio:          "MRN",
		Streaming:      "FOX One",
		RaceURL:        "https://www.nascar.com/races/2026/daytona-500",
		PreviousWinner: "William Byron",
		Series:         "NASCAR Cup Series",
		SeriesKey:      "nascar_cup_series",
	}

	icsContent, count := calendar.Generate([]race.Race{r}, calendar.DefaultOptions(2026))

	// Write to file (owner read/write only for security)
	filename := "test-nascar-race.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Generated calendar file with %d event(s): %s\n\n", count, filename)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(icsContent)
}
