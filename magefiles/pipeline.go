//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/magefile/mage/sh"
)

// Ingest fetches papers from arXiv into the snapshot and catalog.
func Ingest() error {
	ensureBuilt()
	return sh.RunV(binPath(), "ingest")
}

// Recommend prints recommendations for the paper titled by $TITLE.
func Recommend() error {
	ensureBuilt()
	return sh.RunV(binPath(), "recommend", "--title", os.Getenv("TITLE"))
}

// Serve runs the HTTP API until interrupted.
func Serve() error {
	ensureBuilt()
	return sh.RunV(binPath(), "serve")
}

// Export writes the catalog to data/exports/catalog.yaml.
func Export() error {
	ensureBuilt()
	return sh.RunV(binPath(), "catalog", "export", "data/exports/catalog.yaml")
}
