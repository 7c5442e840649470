// Command metroctl is the operator CLI for the metro commuter backend:
// it applies migrations and queries the schedule the same way the API does.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
