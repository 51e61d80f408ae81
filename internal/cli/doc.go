// Package cli implements the command-line interface for nascar-schedule.
//
// The cli package provides the Cobra-based commands: scrape fetches every configured
// series and writes the JSON, CSV and (optionally) calendar files; calendar rebuilds the
// .ics feed from an earlier scrape; verify parses a feed back; announce posts the next
// races. It coordinates the scraper, schedule, storage, calendar and notifier packages.
package cli
