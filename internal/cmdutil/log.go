package cmdutil

import (
	"io"
	"log"
)

func init() {
	// Silence the default logger; orphdat reports through the Reporter sink.
	log.SetOutput(io.Discard)
}
