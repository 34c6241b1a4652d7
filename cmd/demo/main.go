// Runs the canonical red-SUV query against the deterministic reference
// stack and prints a compact JSON report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/agenthands/sightline/internal/adapter"
	"github.com/agenthands/sightline/internal/config"
	"github.com/agenthands/sightline/internal/fixture"
	"github.com/agenthands/sightline/internal/model"
	"github.com/agenthands/sightline/internal/pipeline"
)

type report struct {
	QueryID          string             `json:"query_id"`
	ValidatedWindows []string           `json:"validated_windows"`
	EntityLinks      []string           `json:"entity_links"`
	Claims           []string           `json:"claims"`
	Summary          string             `json:"summary"`
	Metrics          model.StageMetrics `json:"metrics"`
}

func main() {
	basePath := flag.String("base", "", "base config path (defaults apply when empty)")
	flag.Parse()

	cfg := config.Default()
	if *basePath != "" {
		loaded, err := config.Load(*basePath, flag.Args()...)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	engine := pipeline.New(cfg, adapter.DefaultSet())
	result, err := engine.Run(context.Background(), fixture.RedSUVQueryRequest())
	if err != nil {
		log.Fatalf("Pipeline run failed: %v", err)
	}

	out := report{
		QueryID: result.QueryID,
		Summary: result.Synthesis.Summary,
		Metrics: result.Metrics,
	}
	for _, window := range result.ValidatedWindows {
		out.ValidatedWindows = append(out.ValidatedWindows, window.WindowID)
	}
	for _, link := range result.EntityLinks {
		out.EntityLinks = append(out.EntityLinks, link.EntityID)
	}
	for _, claim := range result.Synthesis.Claims {
		out.Claims = append(out.Claims, claim.Text)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		log.Fatal(err)
	}
}
