package services

import (
	"context"
	"log"
	"sync"
	"time"

	"resumatch/resume-matcher/internal/models"
)

// IngestReport summarizes one catalog ingestion run.
type IngestReport struct {
	Succeeded int
	Failed    int
}

// IngesterService embeds catalog jobs concurrently and upserts them into
// the corpus index in batches.
type IngesterService interface {
	Run(ctx context.Context, jobs []models.Job) (*IngestReport, error)
}

type ingesterService struct {
	embedder    EmbeddingService
	index       JobIndexService
	concurrency int
	batchSize   int
	maxRetries  int
	retryDelay  time.Duration
}

func NewIngesterService(
	embedder EmbeddingService,
	index JobIndexService,
	concurrency, batchSize, maxRetries int,
	retryDelay time.Duration,
) IngesterService {
	if concurrency <= 0 {
		concurrency = 1
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ingesterService{
		embedder:    embedder,
		index:       index,
		concurrency: concurrency,
		batchSize:   batchSize,
		maxRetries:  maxRetries,
		retryDelay:  retryDelay,
	}
}

// Run implements IngesterService. Embedding failures are counted per job and
// do not stop the run; transient provider errors are retried with backoff.
func (s *ingesterService) Run(ctx context.Context, jobs []models.Job) (*IngestReport, error) {
	log.Printf("🚀 Ingesting %d jobs with %d workers\n", len(jobs), s.concurrency)

	jobQueue := make(chan models.Job)
	points := make(chan JobPoint)

	var (
		workers sync.WaitGroup
		mu      sync.Mutex
		failed  int
	)

	markFailed := func(n int) {
		mu.Lock()
		failed += n
		mu.Unlock()
	}

	for i := 0; i < s.concurrency; i++ {
		workers.Add(1)
		go func(workerID int) {
			defer workers.Done()
			for job := range jobQueue {
				text := BuildJobText(job)
				vector, err := s.embedder.GenerateEmbeddingWithRetry(ctx, text, s.maxRetries, s.retryDelay)
				if err != nil {
					log.Printf("❌ Worker #%d failed to embed job %s: %v\n", workerID, job.ID, err)
					markFailed(1)
					continue
				}

				select {
				case points <- JobPoint{Job: job, Vector: vector}:
				case <-ctx.Done():
					return
				}
			}
		}(i + 1)
	}

	collectorDone := make(chan struct{})
	var succeeded int
	go func() {
		defer close(collectorDone)

		batch := make([]JobPoint, 0, s.batchSize)
		flush := func() {
			if len(batch) == 0 {
				return
			}
			if err := s.index.UpsertJobs(ctx, batch); err != nil {
				log.Printf("❌ Failed to upsert batch of %d jobs: %v\n", len(batch), err)
				markFailed(len(batch))
			} else {
				succeeded += len(batch)
				log.Printf("📊 Progress: %d jobs stored\n", succeeded)
			}
			batch = batch[:0]
		}

		for point := range points {
			batch = append(batch, point)
			if len(batch) >= s.batchSize {
				flush()
			}
		}
		flush()
	}()

	feed := func() {
		defer close(jobQueue)
		for _, job := range jobs {
			select {
			case jobQueue <- job:
			case <-ctx.Done():
				return
			}
		}
	}
	feed()

	workers.Wait()
	close(points)
	<-collectorDone

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &IngestReport{Succeeded: succeeded, Failed: failed}
	log.Printf("✅ Ingestion finished: %d succeeded, %d failed\n", report.Succeeded, report.Failed)
	return report, nil
}
