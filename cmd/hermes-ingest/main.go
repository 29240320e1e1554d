// Package main is the entry point for the Hermes corpus ingestion tool.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/hermes/internal/hermes"
)

func main() {
	hermes.NewIngestApp().Run()
}
