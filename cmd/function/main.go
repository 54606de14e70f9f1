package main

import (
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"

	// Blank import registers the RelayRequest function.
	_ "github.com/bartoszbak/mcqs-helper"
	"github.com/bartoszbak/mcqs-helper/internal/logging"
)

func main() {
	log := logging.GetLogger()

	port := "8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}

	if err := funcframework.Start(port); err != nil {
		log.Fatalf("funcframework.Start: %v", err)
	}
}
