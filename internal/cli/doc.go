// Package cli provides command-line interface setup and configuration
// for the markanki application. It handles flag definitions, command
// creation, and configuration management using cobra and viper.
package cli
