package main

import (
	"log"

	"github.com/calyx/image-service/cmd"
	"github.com/calyx/image-service/config"
)

func main() {
	log.Printf("image service %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
