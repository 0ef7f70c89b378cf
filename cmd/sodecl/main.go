package main

import (
	"os"
)

func main() {
	// cobra has already printed the error.
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
