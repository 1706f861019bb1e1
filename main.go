// Package main provides the entry point for the Hearth group-collaboration
// backend. It starts a Fiber web service exposing the JSON API for groups,
// albums, lists, calendars and chat channels, persisted with gorm.
package main

import (
	"os"

	"github.com/hearth-app/hearth/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
