package main

import (
	"log"

	"github.com/wizardline/wizardline/cmd/wizardline/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}
