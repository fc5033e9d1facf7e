// Package cli provides the command-line interface for the vision-researcher application.
package cli

import (
	"github.com/law-makers/vision-researcher/internal/app"
	"github.com/spf13/cobra"
)

// the application outlives a single command only in tests, where Execute is
// called repeatedly
var globalApp *app.Application

// SetApp stores the Application for the running command
func SetApp(cmd *cobra.Command, a *app.Application) {
	if cmd == nil {
		return
	}
	globalApp = a
}

// GetApp retrieves the Application of the running command
func GetApp() *app.Application {
	return globalApp
}
