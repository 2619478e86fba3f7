package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/spigell/interview-coach/cmd"
)

func main() {
	// Local development keeps API keys in a .env file. A missing file is fine.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
