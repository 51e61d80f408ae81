// Package race provides the canonical race and track records for NASCAR schedules.
//
// Provider feeds use their own field names and mix nulls, empty strings and padded
// values. The race package maps those records onto fixed-shape Race and Track types:
// every text field is trimmed and never null, numeric fields pass through exactly as the
// feed sent them. It also parses the feed's offset-qualified start times into UTC.
package race
