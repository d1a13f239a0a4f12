package main

import (
	"log"

	"github.com/compassd/compass/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ compassd failed to start: %v", err)
	}
}
