// Package storage reads and writes the files produced by nascar-schedule.
//
// All files live in one data directory and follow a fixed naming convention keyed by
// season year: nascar_schedules_<year>.json (schedule document),
// nascar_tracks_<year>.json (track list), nascar_schedules_<year>.csv and
// nascar_<year>_calendar.ics. The default data directory is the working directory.
package storage
