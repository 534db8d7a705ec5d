// Package notifications delivers batch milestones via ntfy.
//
// The default implementation publishes to the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled, so callers never have to branch on configuration themselves.
package notifications
