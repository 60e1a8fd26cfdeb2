// Package chi exposes the query pipeline over HTTP: the RAG endpoint,
// retrieval-only search, facet listing and the debug surfaces.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/answer"
	"github.com/kailas-cloud/askdex/internal/domain/document"
	"github.com/kailas-cloud/askdex/internal/domain/facet"
	"github.com/kailas-cloud/askdex/internal/domain/query"
	domschema "github.com/kailas-cloud/askdex/internal/domain/schema"
	raguc "github.com/kailas-cloud/askdex/internal/usecase/rag"
)

const dateLayout = "2006-01-02"

// Error response codes.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeUnauthorized     = "unauthorized"
	codeSearchError      = "search_error"
	codeGenerationError  = "generation_error"
	codeNetworkError     = "network_error"
	codeInternalError    = "internal_error"
)

// ragService is the pipeline surface the server consumes (ISP).
type ragService interface {
	ProcessQuery(ctx context.Context, q query.Query, criteria query.Criteria, opts query.Options) (answer.Answer, error)
	SearchDocuments(ctx context.Context, q query.Query, criteria query.Criteria, top int) ([]document.Document, int64, error)
	AvailableFilters(ctx context.Context) facet.Groups
	TestConnection(ctx context.Context) raguc.ConnectionReport
}

// schemaService exposes the resolved index schema for the debug surface.
type schemaService interface {
	Resolve(ctx context.Context) domschema.Mapping
	Fields(ctx context.Context) []string
}

// ConfigSummary holds the non-secret configuration identifiers reported by
// GET /api/config.
type ConfigSummary struct {
	IndexName    string
	Model        string
	Provider     string
	CacheEnabled bool
}

// Server is the HTTP API over the pipeline.
type Server struct {
	rag      ragService
	schema   schemaService
	defaults query.Options
	summary  ConfigSummary
	logger   *zap.Logger
}

// NewServer creates an HTTP API server. defaults supplies the generation
// parameters applied when a request omits them.
func NewServer(
	rag ragService,
	schema schemaService,
	defaults query.Options,
	summary ConfigSummary,
	logger *zap.Logger,
) *Server {
	return &Server{
		rag:      rag,
		schema:   schema,
		defaults: defaults,
		summary:  summary,
		logger:   logger,
	}
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.Health)
	r.Get("/metrics", s.Metrics)
	r.Route("/api", func(r chi.Router) {
		r.Post("/rag", s.ProcessQuery)
		r.Post("/search", s.Search)
		r.Get("/facets", s.Facets)
		r.Get("/schema", s.Schema)
		r.Get("/config", s.Config)
	})
}

type filtersPayload struct {
	Authors       []string          `json:"authors"`
	Categories    []string          `json:"categories"`
	DocumentTypes []string          `json:"document_types"`
	DocumentIDs   []string          `json:"document_ids"`
	DateRange     *dateRangePayload `json:"date_range"`
}

type dateRangePayload struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type ragRequest struct {
	Query        string          `json:"query"`
	Filters      *filtersPayload `json:"filters"`
	Temperature  *float64        `json:"temperature"`
	MaxTokens    *int            `json:"max_tokens"`
	TopDocuments *int            `json:"top_documents"`
}

type sourcePayload struct {
	Name             string  `json:"name"`
	Author           string  `json:"author"`
	Relevance        float64 `json:"relevance"`
	DisplayRelevance float64 `json:"display_relevance"`
	Type             string  `json:"type"`
	Category         string  `json:"category"`
	ID               string  `json:"id"`
}

type ragResponse struct {
	Response       string          `json:"response"`
	Sources        []sourcePayload `json:"sources"`
	Confidence     float64         `json:"confidence"`
	Tokens         int             `json:"tokens"`
	ProcessingTime float64         `json:"processing_time"`
	Model          string          `json:"model"`
}

// ProcessQuery handles POST /api/rag.
func (s *Server) ProcessQuery(w http.ResponseWriter, r *http.Request) {
	var req ragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query is required")
		return
	}

	q, err := query.New(req.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	criteria, err := criteriaFromPayload(req.Filters)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	opts, err := query.NewOptions(
		derefFloat(req.Temperature, s.defaults.Temperature()),
		derefInt(req.MaxTokens, s.defaults.MaxTokens()),
		derefInt(req.TopDocuments, s.defaults.TopDocuments()),
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	ans, err := s.rag.ProcessQuery(r.Context(), q, criteria, opts)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answerToPayload(ans))
}

type searchRequest struct {
	Query   string          `json:"query"`
	Filters *filtersPayload `json:"filters"`
	Top     int             `json:"top"`
}

type documentPayload struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	Author       string  `json:"author"`
	Category     string  `json:"category"`
	Type         string  `json:"type"`
	LastModified string  `json:"last_modified,omitempty"`
	Size         string  `json:"size"`
	Score        float64 `json:"score"`
	Status       string  `json:"status"`
}

type searchResponse struct {
	Documents  []documentPayload `json:"documents"`
	TotalCount int64             `json:"total_count"`
}

// Search handles POST /api/search (retrieval without generation).
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := query.New(req.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	criteria, err := criteriaFromPayload(req.Filters)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	docs, total, err := s.rag.SearchDocuments(r.Context(), q, criteria, req.Top)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	items := make([]documentPayload, len(docs))
	for i := range docs {
		items[i] = documentToPayload(&docs[i])
	}

	writeJSON(w, http.StatusOK, searchResponse{Documents: items, TotalCount: total})
}

type facetPayload struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

type facetsResponse struct {
	Authors       []facetPayload `json:"authors"`
	Categories    []facetPayload `json:"categories"`
	DocumentTypes []facetPayload `json:"document_types"`
}

// Facets handles GET /api/facets.
func (s *Server) Facets(w http.ResponseWriter, r *http.Request) {
	groups := s.rag.AvailableFilters(r.Context())
	writeJSON(w, http.StatusOK, facetsResponse{
		Authors:       facetsToPayload(groups.Authors()),
		Categories:    facetsToPayload(groups.Categories()),
		DocumentTypes: facetsToPayload(groups.DocumentTypes()),
	})
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Errors    []string          `json:"errors,omitempty"`
}

// Health handles GET /health: the backend connectivity self-test.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.rag.TestConnection(r.Context())

	status := "healthy"
	httpStatus := http.StatusOK
	if !report.Healthy() {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Services: map[string]string{
			"search":     healthWord(report.Search),
			"generation": healthWord(report.Generation),
		},
		Errors: report.Errors,
	})
}

type schemaResponse struct {
	Fields     map[string]string `json:"fields"`
	Discovered []string          `json:"discovered_fields"`
}

// Schema handles GET /api/schema: the resolved field mapping plus the raw
// physical field names the probe discovered.
func (s *Server) Schema(w http.ResponseWriter, r *http.Request) {
	mapping := s.schema.Resolve(r.Context())

	fields := make(map[string]string, mapping.Len())
	for _, logical := range domschema.Fields() {
		if name, ok := mapping.Resolve(logical); ok {
			fields[string(logical)] = name
		}
	}

	writeJSON(w, http.StatusOK, schemaResponse{
		Fields:     fields,
		Discovered: s.schema.Fields(r.Context()),
	})
}

type configResponse struct {
	SearchConfigured     bool   `json:"search_configured"`
	GenerationConfigured bool   `json:"generation_configured"`
	CacheEnabled         bool   `json:"cache_enabled"`
	IndexName            string `json:"index_name"`
	Model                string `json:"model"`
	Provider             string `json:"provider"`
}

// Config handles GET /api/config: presence booleans and non-secret
// identifiers only, never credentials.
func (s *Server) Config(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{
		SearchConfigured:     s.summary.IndexName != "",
		GenerationConfigured: s.summary.Model != "",
		CacheEnabled:         s.summary.CacheEnabled,
		IndexName:            s.summary.IndexName,
		Model:                s.summary.Model,
		Provider:             s.summary.Provider,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleServiceError(w http.ResponseWriter, err error) {
	s.logger.Warn("request failed", zap.Error(err), zap.String("service", domain.ServiceOf(err)))

	switch {
	case errors.Is(err, domain.ErrSearchBackend):
		writeError(w, http.StatusBadGateway, codeSearchError, "search backend failed")
	case errors.Is(err, domain.ErrGeneration):
		writeError(w, http.StatusBadGateway, codeGenerationError, "generation backend failed")
	case errors.Is(err, domain.ErrNetwork):
		writeError(w, http.StatusBadGateway, codeNetworkError,
			fmt.Sprintf("%s backend unreachable", domain.ServiceOf(err)))
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func criteriaFromPayload(p *filtersPayload) (query.Criteria, error) {
	if p == nil {
		return query.Criteria{}, nil
	}

	dates, err := dateRangeFromPayload(p.DateRange)
	if err != nil {
		return query.Criteria{}, err
	}

	c, err := query.NewCriteria(p.Authors, p.Categories, p.DocumentTypes, p.DocumentIDs, dates)
	if err != nil {
		return query.Criteria{}, fmt.Errorf("parse filters: %w", err)
	}
	return c, nil
}

func dateRangeFromPayload(p *dateRangePayload) (query.DateRange, error) {
	if p == nil {
		return query.DateRange{}, nil
	}

	var start, end time.Time
	var err error
	if p.Start != "" {
		if start, err = time.Parse(dateLayout, p.Start); err != nil {
			return query.DateRange{}, fmt.Errorf("date_range.start must be YYYY-MM-DD")
		}
	}
	if p.End != "" {
		if end, err = time.Parse(dateLayout, p.End); err != nil {
			return query.DateRange{}, fmt.Errorf("date_range.end must be YYYY-MM-DD")
		}
	}

	r, err := query.NewDateRange(start, end)
	if err != nil {
		return query.DateRange{}, fmt.Errorf("parse date_range: %w", err)
	}
	return r, nil
}

func answerToPayload(a answer.Answer) ragResponse {
	sources := make([]sourcePayload, len(a.Sources()))
	for i, src := range a.Sources() {
		sources[i] = sourcePayload{
			Name:             src.Name(),
			Author:           src.Author(),
			Relevance:        src.Relevance(),
			DisplayRelevance: src.DisplayRelevance(),
			Type:             src.Type(),
			Category:         src.Category(),
			ID:               src.ID(),
		}
	}
	return ragResponse{
		Response:       a.Response(),
		Sources:        sources,
		Confidence:     a.Confidence(),
		Tokens:         a.Tokens(),
		ProcessingTime: a.ProcessingTime(),
		Model:          a.Model(),
	}
}

func documentToPayload(d *document.Document) documentPayload {
	p := documentPayload{
		ID:       d.ID(),
		Title:    d.Title(),
		Content:  d.Content(),
		Author:   d.Author(),
		Category: d.Category(),
		Type:     d.Type(),
		Size:     d.Size(),
		Score:    d.Score(),
		Status:   d.Status(),
	}
	if !d.LastModified().IsZero() {
		p.LastModified = d.LastModified().UTC().Format(time.RFC3339)
	}
	return p
}

func facetsToPayload(ff []facet.Facet) []facetPayload {
	out := make([]facetPayload, len(ff))
	for i, f := range ff {
		out[i] = facetPayload{Value: f.Value(), Count: f.Count()}
	}
	return out
}

func healthWord(ok bool) string {
	if ok {
		return "healthy"
	}
	return "unhealthy"
}

func derefFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}
