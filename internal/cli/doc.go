// Package cli provides command-line interface setup and configuration
// for the hanzify converter. It handles flag parsing, command creation,
// configuration layering with cobra and viper, and terminal output.
package cli
