package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"isoremesh/pkg/api"
	"isoremesh/pkg/remesh"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	maxVertices := flag.Int("max-vertices", 2_000_000, "Largest accepted input mesh in vertices (0 = no limit)")
	flag.Parse()

	engine := remesh.NewEngine()

	// Setup HTTP server.
	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin
	log.Printf("Accepting meshes up to %d vertices, %d concurrent remeshes", *maxVertices, cfg.MaxConcurrent)

	handlers := api.NewHandlers(engine, *maxVertices)
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
