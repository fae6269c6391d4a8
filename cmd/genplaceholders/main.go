package main

import (
	"flag"
	"fmt"
	"os"

	"chosenoffset.com/tiledmap/internal/logger"
	"chosenoffset.com/tiledmap/internal/placeholders"
)

func main() {
	dir := flag.String("out", "data/demo", "Directory to write demo maps and tilesets to")
	level := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log := logger.New(logger.Config{Level: *level, Console: true})
	defer log.Sync()

	fmt.Println("Tiled Map Demo Generator")
	fmt.Println("========================")
	fmt.Println()

	paths, err := placeholders.GenerateAndSave(*dir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("Done! Wrote %d demo maps to %s\n", len(paths), *dir)
	fmt.Println("Open one with: tiledview -map <name> -images", *dir)
}
