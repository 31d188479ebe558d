package main

import (
	"log"
	"os"
)

func main() {
	// Diagnostics go to stderr; stdout belongs to the stdout consumer.
	log.SetOutput(os.Stderr)

	if err := rootCmd.Execute(); err != nil {
		log.Printf("fatal: %v", err)
		os.Exit(1)
	}
}
