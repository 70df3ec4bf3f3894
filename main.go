package main

import (
	"photo-capture-backend/cmd"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Photo capture backend stopped")
	}
}
