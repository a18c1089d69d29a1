package main

import (
	"log"

	"github.com/NVIDIA/request-monitor/pkg/api"
)

func main() {
	if err := api.Serve(); err != nil {
		log.Fatal(err)
	}
}
