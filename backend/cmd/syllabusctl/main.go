package main

import (
	"os"

	"course-portal/backend/internal/cli"
)

func main() {
	if err := cli.NewApp().Execute(); err != nil {
		os.Exit(1)
	}
}
