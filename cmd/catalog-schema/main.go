package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	server "duskhollow/server"
)

// Writes the item catalog JSON schema to stdout or a file, for keeping
// client-side validation in sync with the server's catalog.
func main() {
	out := flag.String("o", "", "output path (defaults to stdout)")
	flag.Parse()

	schema, err := server.CatalogSchema()
	if err != nil {
		log.Fatalf("failed to render catalog schema: %v", err)
	}

	if *out == "" {
		fmt.Println(string(schema))
		return
	}
	if err := os.WriteFile(*out, append(schema, '\n'), 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", *out, err)
	}
}
