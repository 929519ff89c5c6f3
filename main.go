package main

import (
	"log"

	"github.com/openhumility/humility-survey/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
