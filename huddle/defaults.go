// Package huddle holds application-wide defaults shared by the config
// and storage layers.
package huddle

const (
	DefaultAppName      = "huddle"
	DefaultConfigPath   = "/etc/huddle"
	DefaultDatabaseDir  = ".huddle"
	DefaultDatabasePath = ".huddle/history.db"
)
