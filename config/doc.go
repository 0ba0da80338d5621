// Package config loads and validates lyricsync service configuration.
//
// Configuration is layered: config.yml provides the base, a .env file and
// process environment variables override it. Every subsystem section follows
// the ApplyDefaults/Validate convention so a zero config boots with sane
// local defaults.
package config
