package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"invopt-mcp/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "mixed", "Scenario to generate: steady, trend, seasonal, intermittent, mixed")
	outDir := flag.String("out", "./snapshots", "Output directory for the snapshot file")
	count := flag.Int("count", 20, "Number of variants to generate")
	months := flag.Int("months", 24, "Months of history per variant")
	seed := flag.Int64("seed", 42, "Random seed")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Count:    *count,
		Months:   *months,
		Seed:     *seed,
		Now:      time.Now().UTC(),
	}

	fmt.Printf("Generating scenario '%s' (Count: %d, Months: %d, Seed: %d) to %s...\n", cfg.Scenario, cfg.Count, cfg.Months, cfg.Seed, *outDir)

	snaps, err := engine.Generate(cfg)
	if err != nil {
		fmt.Printf("Failed to generate mock data: %v\n", err)
		os.Exit(1)
	}

	if err := engine.Save(*outDir, snaps); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
