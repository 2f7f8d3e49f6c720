// ABOUTME: Command-line benchmark runner for retrieval quality evaluation
// ABOUTME: Executes RAGAS scenarios against the live pipeline and outputs JSON results
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/secondbrain-labs/cerebro/benchmarks/ragas"
)

func main() {
	scenarioID := flag.String("scenario", "", "Run a single scenario by ID. If empty, runs all scenarios.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	if err := godotenv.Load(); err != nil && *verbose {
		log.Printf("No .env file found (continuing anyway): %v", err)
	}

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required for benchmarks")
	}

	runner, err := ragas.NewRunner(*verbose)
	if err != nil {
		log.Fatalf("Failed to create benchmark runner: %v", err)
	}

	ctx := context.Background()
	var results []ragas.Result

	if *scenarioID == "" {
		fmt.Println("Running all retrieval benchmark scenarios...")
		results, err = runner.RunAll(ctx)
		if err != nil {
			log.Fatalf("Benchmark failed: %v", err)
		}
	} else {
		scenario, ok := ragas.ScenarioByID(*scenarioID)
		if !ok {
			log.Fatalf("Unknown scenario %q", *scenarioID)
		}
		result, err := runner.Run(ctx, scenario)
		if err != nil {
			log.Fatalf("Scenario %s failed: %v", *scenarioID, err)
		}
		results = []ragas.Result{result}
	}

	if err := ragas.WriteResults(*outputPath, results); err != nil {
		log.Fatalf("Failed to write results: %v", err)
	}
	fmt.Printf("Results written to %s\n", *outputPath)

	_, failed := ragas.Summarize(results)
	if failed > 0 {
		os.Exit(1)
	}
}
