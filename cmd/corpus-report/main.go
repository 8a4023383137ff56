package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/gmprep/simulado-backend/internal/config"
	"github.com/gmprep/simulado-backend/internal/corpus"
	"github.com/gmprep/simulado-backend/internal/exam"
	"github.com/gmprep/simulado-backend/internal/logger"
	"github.com/gmprep/simulado-backend/internal/subject"
	"github.com/gmprep/simulado-backend/internal/validator"
)

func main() {
	cfg := config.Load()

	var manifest string
	flag.StringVar(&manifest, "manifest", cfg.CorpusManifest, "Path to the corpus manifest")
	flag.Parse()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	validator.Setup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	batches, err := corpus.LoadManifest(manifest)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read corpus manifest")
	}

	questions, err := corpus.NewLoader(batches, log).LoadAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load corpus")
	}

	fmt.Printf("=== Corpus Report (%d sources, %d questions) ===\n\n", len(batches), len(questions))

	counts := corpus.CountBySubject(questions)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SUBJECT\tAVAILABLE\tQUOTA\tWEIGHT")
	for _, name := range subject.Canonical() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\n", name, counts[name], exam.QuotaFor(name), exam.Weight(name))
	}
	for name, n := range counts {
		if !subject.IsCanonical(name) {
			fmt.Fprintf(tw, "%s (unscored)\t%d\t-\t%.1f\n", name, n, exam.Weight(name))
		}
	}
	tw.Flush()

	comp := exam.Compose(questions, nil)
	fmt.Printf("\nSimulation composition: %s", comp.Summary())
	switch {
	case comp.Complete():
		fmt.Println(" (complete)")
	case len(comp.Questions) >= exam.MinimumSimulationSize:
		fmt.Printf(" (short by %d, simulations start with a warning)\n", comp.Shortfall)
	default:
		fmt.Printf(" (below the minimum of %d, simulations are refused)\n", exam.MinimumSimulationSize)
		os.Exit(1)
	}
}
