package main

import (
	"log"

	"github.com/dextrolabs/dextro/internal/signals"
	"github.com/dextrolabs/dextro/internal/version"
)

func main() {
	log.Printf(
		"Starting Dextro API server -- version %s -- commit %s",
		version.Version(),
		version.Commit(),
	)

	apiServer, err := getAPIServerFromEnvironment(signals.Context())
	if err != nil {
		log.Fatal(err)
	}

	log.Println(apiServer.ListenAndServe())
}
