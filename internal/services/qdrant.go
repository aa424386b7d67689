package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"resumatch/resume-matcher/internal/models"
)

// JobFilter is a conjunction of predicates over job metadata. The zero value
// restricts nothing; the orchestrator always adds status = active.
type JobFilter struct {
	Statuses            []models.JobStatus
	Categories          []string
	Location            string
	RequiresSponsorship bool
	MaxYoeMin           *int
}

// Describe renders the filter for response observability and logs.
func (f JobFilter) Describe() string {
	var parts []string
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		parts = append(parts, fmt.Sprintf("status IN [%s]", strings.Join(statuses, ", ")))
	}
	if len(f.Categories) > 0 {
		sorted := append([]string(nil), f.Categories...)
		sort.Strings(sorted)
		parts = append(parts, fmt.Sprintf("job_category IN [%s]", strings.Join(sorted, ", ")))
	}
	if f.Location != "" {
		parts = append(parts, fmt.Sprintf("location = %s", f.Location))
	}
	if f.RequiresSponsorship {
		parts = append(parts, "h1b_sponsorship = true")
	}
	if f.MaxYoeMin != nil {
		parts = append(parts, fmt.Sprintf("yoe_min <= %d", *f.MaxYoeMin))
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, " AND ")
}

// JobHit is one vector query result: higher similarity is more similar
// (qdrant reports cosine similarity directly).
type JobHit struct {
	JobID      string
	Similarity float32
	Metadata   models.JobMetadata
}

// JobPoint pairs a job with its embedding for upsert.
type JobPoint struct {
	Job    models.Job
	Vector []float32
}

type JobIndexService interface {
	InitCollection(ctx context.Context, recreate bool) error
	QueryJobs(ctx context.Context, vector []float32, filter JobFilter, topK int) ([]JobHit, error)
	UpsertJobs(ctx context.Context, points []JobPoint) error
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	dimension      int
	maxTopK        int
}

func NewQdrantService(urlStr, apiKey, collectionName string, dimension, maxTopK int) (JobIndexService, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		dimension:      dimension,
		maxTopK:        maxTopK,
	}, nil
}

// InitCollection implements JobIndexService. With recreate set, an existing
// collection is dropped and rebuilt (used by the ingestion command).
func (q *qdrantService) InitCollection(ctx context.Context, recreate bool) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return classifyIndexError(err, "failed to check collection")
	}

	if exists {
		if !recreate {
			log.Println("✅ Collection already exists")
			return nil
		}

		log.Printf("🗑  Deleting existing collection '%s'...\n", q.collectionName)
		if err := q.client.DeleteCollection(ctx, q.collectionName); err != nil {
			return classifyIndexError(err, "failed to delete collection")
		}
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(q.dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return classifyIndexError(err, "failed to create collection")
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// QueryJobs implements JobIndexService. topK is clamped to the configured
// ceiling to bound query cost.
func (q *qdrantService) QueryJobs(ctx context.Context, vector []float32, filter JobFilter, topK int) ([]JobHit, error) {
	if len(vector) != q.dimension {
		return nil, newPermanentError(CodeDimensionMismatch, nil,
			"query vector dimension %d does not match index dimension %d", len(vector), q.dimension)
	}

	if topK <= 0 {
		topK = 1
	}
	if topK > q.maxTopK {
		topK = q.maxTopK
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter:         buildQdrantFilter(filter),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, classifyIndexError(err, "vector query failed")
	}

	hits := make([]JobHit, 0, len(points))
	for _, point := range points {
		payload := point.Payload

		hits = append(hits, JobHit{
			JobID:      payloadString(payload, "job_id"),
			Similarity: point.Score,
			Metadata:   decodeJobMetadata(payload),
		})
	}

	return hits, nil
}

// UpsertJobs implements JobIndexService. Point IDs are derived
// deterministically from job IDs so re-ingesting the catalog overwrites
// rather than duplicates.
func (q *qdrantService) UpsertJobs(ctx context.Context, points []JobPoint) error {
	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		if len(p.Vector) != q.dimension {
			return newPermanentError(CodeDimensionMismatch, nil,
				"job %s: vector dimension %d does not match index dimension %d", p.Job.ID, len(p.Vector), q.dimension)
		}

		qdrantPoints = append(qdrantPoints, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointIDForJob(p.Job.ID)),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(jobPayload(p.Job)),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         qdrantPoints,
	})
	if err != nil {
		return classifyIndexError(err, "failed to upsert points")
	}

	return nil
}

// pointIDForJob maps a catalog job ID to a stable UUID point ID.
func pointIDForJob(jobID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(jobID)).String()
}

func buildQdrantFilter(filter JobFilter) *qdrant.Filter {
	var must []*qdrant.Condition

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		must = append(must, qdrant.NewMatchKeywords("status", statuses...))
	}
	if len(filter.Categories) > 0 {
		must = append(must, qdrant.NewMatchKeywords("job_category", filter.Categories...))
	}
	if filter.Location != "" {
		must = append(must, qdrant.NewMatch("location", filter.Location))
	}
	if filter.RequiresSponsorship {
		must = append(must, qdrant.NewMatchBool("h1b_sponsorship", true))
	}
	if filter.MaxYoeMin != nil {
		must = append(must, qdrant.NewRange("yoe_min", &qdrant.Range{
			Lte: qdrant.PtrOf(float64(*filter.MaxYoeMin)),
		}))
	}

	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

// jobPayload builds the metadata payload stored alongside each vector. The
// field names are the compatibility contract between matching and ingestion.
func jobPayload(job models.Job) map[string]interface{} {
	idealCompanies := make([]interface{}, len(job.IdealCompanies))
	for i, company := range job.IdealCompanies {
		idealCompanies[i] = company
	}

	status := job.Status
	if status == "" {
		status = models.JobStatusActive
	}

	return map[string]interface{}{
		"job_id":             job.ID,
		"title":              job.Title,
		"company_name":       job.CompanyName,
		"job_category":       job.Category,
		"employment_type":    job.EmploymentType,
		"work_location_type": job.WorkLocationType,
		"location":           job.Location,
		"ideal_companies":    idealCompanies,
		"h1b_sponsorship":    job.H1BSponsorship,
		"yoe_min":            job.YoeMin,
		"equity_min":         job.EquityMin,
		"equity_max":         job.EquityMax,
		"status":             string(status),
	}
}

func decodeJobMetadata(payload map[string]*qdrant.Value) models.JobMetadata {
	return models.JobMetadata{
		Title:            payloadString(payload, "title"),
		CompanyName:      payloadString(payload, "company_name"),
		Category:         payloadString(payload, "job_category"),
		EmploymentType:   payloadString(payload, "employment_type"),
		WorkLocationType: payloadString(payload, "work_location_type"),
		Location:         payloadString(payload, "location"),
		IdealCompanies:   payloadStrings(payload, "ideal_companies"),
		H1BSponsorship:   payloadBool(payload, "h1b_sponsorship"),
		YoeMin:           payloadInt(payload, "yoe_min"),
		EquityMin:        payloadFloat(payload, "equity_min"),
		EquityMax:        payloadFloat(payload, "equity_max"),
		Status:           models.JobStatus(payloadString(payload, "status")),
	}
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if value, ok := payload[key]; ok {
		if v, ok := value.GetKind().(*qdrant.Value_StringValue); ok {
			return v.StringValue
		}
	}
	return ""
}

func payloadBool(payload map[string]*qdrant.Value, key string) bool {
	if value, ok := payload[key]; ok {
		if v, ok := value.GetKind().(*qdrant.Value_BoolValue); ok {
			return v.BoolValue
		}
	}
	return false
}

func payloadInt(payload map[string]*qdrant.Value, key string) int {
	if value, ok := payload[key]; ok {
		switch v := value.GetKind().(type) {
		case *qdrant.Value_IntegerValue:
			return int(v.IntegerValue)
		case *qdrant.Value_DoubleValue:
			return int(v.DoubleValue)
		}
	}
	return 0
}

func payloadFloat(payload map[string]*qdrant.Value, key string) float64 {
	if value, ok := payload[key]; ok {
		switch v := value.GetKind().(type) {
		case *qdrant.Value_DoubleValue:
			return v.DoubleValue
		case *qdrant.Value_IntegerValue:
			return float64(v.IntegerValue)
		}
	}
	return 0
}

func payloadStrings(payload map[string]*qdrant.Value, key string) []string {
	value, ok := payload[key]
	if !ok {
		return nil
	}

	list, ok := value.GetKind().(*qdrant.Value_ListValue)
	if !ok || list.ListValue == nil {
		return nil
	}

	var result []string
	for _, item := range list.ListValue.Values {
		if v, ok := item.GetKind().(*qdrant.Value_StringValue); ok {
			result = append(result, v.StringValue)
		}
	}
	return result
}

// classifyIndexError separates index outages (retryable) from everything
// else (fatal).
func classifyIndexError(err error, message string) *PipelineError {
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
			return newTransientError(CodeIndexUnavailable, err, "%s: vector index unavailable", message)
		}
	}
	return newPermanentError(CodeIndexError, err, "%s", message)
}
