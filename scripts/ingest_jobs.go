package main

import (
	"context"
	"flag"
	"log"
	"os"

	"resumatch/resume-matcher/internal/config"
	"resumatch/resume-matcher/internal/services"
)

func main() {
	catalogPath := flag.String("file", "./data/jobs.json", "path to the job catalog JSON file")
	recreate := flag.Bool("recreate", false, "delete the existing collection and re-embed every job")
	flag.Parse()

	log.Println("🚀 Starting job catalog ingestion...")

	// Load configuration
	cfg := config.Load()

	// Initialize services
	embedder, err := services.NewGeminiService(
		cfg.Gemini.APIKey,
		cfg.Gemini.EmbedModel,
		cfg.Gemini.Dimension,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	jobIndex, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		cfg.Gemini.Dimension,
		cfg.Matcher.MaxTopK,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	ctx := context.Background()

	if err := jobIndex.InitCollection(ctx, *recreate); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	// Load the catalog
	catalog := services.NewCatalogService()
	jobs, err := catalog.LoadJobs(*catalogPath)
	if err != nil {
		log.Fatalf("❌ Failed to load catalog: %v", err)
	}
	log.Printf("📄 Loaded %d jobs from %s\n", len(jobs), *catalogPath)

	// Embed and upsert
	ingester := services.NewIngesterService(
		embedder,
		jobIndex,
		cfg.Ingest.Concurrency,
		cfg.Ingest.BatchSize,
		cfg.Ingest.RetryMaxAttempts,
		cfg.Ingest.RetryInitialDelay,
	)

	report, err := ingester.Run(ctx, jobs)
	if err != nil {
		log.Fatalf("❌ Ingestion aborted: %v", err)
	}

	log.Printf("📊 Ingestion Summary: %d succeeded, %d failed\n", report.Succeeded, report.Failed)

	if report.Failed > 0 {
		log.Println("⚠️  Some jobs failed to ingest. Please check the logs above.")
		os.Exit(1)
	}

	log.Println("✅ All jobs ingested successfully!")
}
