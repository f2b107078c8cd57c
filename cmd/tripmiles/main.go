package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"ifta-mileage/cmd/tripmiles/cmd"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
