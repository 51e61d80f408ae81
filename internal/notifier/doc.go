// Package notifier announces upcoming races.
//
// Announcements can be posted to Twitter or printed for review with the dry-run
// notifier. Twitter credentials are read from the environment.
package notifier
