// Command partspec queries and exports part specification workbooks.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/partspec/internal/cli"
)

func main() {
	// Optional .env, existing env vars win
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
