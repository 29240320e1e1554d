// Package main is the entry point for the Hermes regulation QA service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/hermes/internal/hermes"
)

func main() {
	hermes.NewApp().Run()
}
