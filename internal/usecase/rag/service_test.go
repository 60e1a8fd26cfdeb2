package rag

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/document"
	"github.com/kailas-cloud/askdex/internal/domain/facet"
	"github.com/kailas-cloud/askdex/internal/domain/query"
)

func TestProcessQuery_EndToEnd(t *testing.T) {
	searcher := &mockSearcher{
		docs: []document.Document{
			testDoc("reports/expansion.pdf", "Expansion Plan", longContent, 8.2),
			testDoc("reports/risk.pdf", "Risk Register", longContent, 5.1),
			testDoc("notes/old.txt", "Old Note", longContent, 0.4),
		},
		total: 3,
	}
	gen := &mockGenerator{result: domain.CompletionResult{
		Content:     "The expansion carries two principal risks.",
		TotalTokens: 245,
		Model:       "gpt-4o",
		Finished:    true,
	}}
	svc := newTestService(searcher, gen)

	ans, err := svc.ProcessQuery(context.Background(),
		mustQuery(t, "expansion risk"), query.Criteria{}, query.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ans.Response() != "The expansion carries two principal risks." {
		t.Errorf("unexpected response: %q", ans.Response())
	}
	// mean(8.2, 5.1, 0.4)*0.06 + 0.35
	if want := 0.624; math.Abs(ans.Confidence()-want) > 1e-9 {
		t.Errorf("expected confidence %.3f, got %.6f", want, ans.Confidence())
	}
	if ans.Tokens() != 245 {
		t.Errorf("expected 245 tokens, got %d", ans.Tokens())
	}
	if ans.Model() != "gpt-4o" {
		t.Errorf("unexpected model: %s", ans.Model())
	}
	if ans.ProcessingTime() < 0 {
		t.Errorf("negative processing time: %f", ans.ProcessingTime())
	}

	sources := ans.Sources()
	if len(sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(sources))
	}
	wantNames := []string{"Expansion Plan", "Risk Register", "Old Note"}
	for i, name := range wantNames {
		if sources[i].Name() != name {
			t.Errorf("source %d: expected %q, got %q", i, name, sources[i].Name())
		}
	}
	if sources[0].Relevance() != 8.2 {
		t.Errorf("expected raw score 8.2, got %f", sources[0].Relevance())
	}
}

func TestProcessQuery_NoDocumentsSkipsGeneration(t *testing.T) {
	searcher := &mockSearcher{}
	gen := &mockGenerator{}
	svc := newTestService(searcher, gen)

	ans, err := svc.ProcessQuery(context.Background(),
		mustQuery(t, "nothing matches this"), query.Criteria{}, query.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gen.calls != 0 {
		t.Errorf("expected generation to be skipped, got %d calls", gen.calls)
	}
	if ans.Response() != NoResultsResponse {
		t.Errorf("unexpected response: %q", ans.Response())
	}
	if ans.Confidence() != 0.1 {
		t.Errorf("expected confidence 0.1, got %f", ans.Confidence())
	}
	if ans.Tokens() != 0 {
		t.Errorf("expected 0 tokens, got %d", ans.Tokens())
	}
	if ans.Model() != NoResultsModel {
		t.Errorf("unexpected model: %s", ans.Model())
	}
	if ans.Sources() == nil || len(ans.Sources()) != 0 {
		t.Errorf("expected empty sources, got %v", ans.Sources())
	}
}

func TestProcessQuery_SearchError(t *testing.T) {
	searcher := &mockSearcher{err: domain.NewSearchError(errors.New("index unreachable"))}
	svc := newTestService(searcher, &mockGenerator{})

	_, err := svc.ProcessQuery(context.Background(),
		mustQuery(t, "q"), query.Criteria{}, query.DefaultOptions())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrSearchBackend) {
		t.Errorf("expected ErrSearchBackend, got %v", err)
	}
	if !strings.Contains(err.Error(), "search documents") {
		t.Errorf("error %q missing context", err.Error())
	}
}

func TestProcessQuery_GenerationError(t *testing.T) {
	searcher := &mockSearcher{docs: []document.Document{
		testDoc("a.pdf", "A", longContent, 5),
	}}
	gen := &mockGenerator{err: domain.NewGenerationError(errors.New("rate limited"))}
	svc := newTestService(searcher, gen)

	_, err := svc.ProcessQuery(context.Background(),
		mustQuery(t, "q"), query.Criteria{}, query.DefaultOptions())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", err)
	}
	if !strings.Contains(err.Error(), "generate answer") {
		t.Errorf("error %q missing context", err.Error())
	}
}

func TestProcessQuery_FallbackBand(t *testing.T) {
	searcher := &mockSearcher{docs: []document.Document{
		testDoc("a.pdf", "Annual Report", "", 9.0),
		testDoc("b.pdf", "Budget", "", 8.0),
	}}
	gen := &mockGenerator{result: domain.CompletionResult{
		Content: "Both files appear to be financial documents.",
		Model:   "gpt-4o", TotalTokens: 40, Finished: true,
	}}
	svc := newTestService(searcher, gen)

	ans, err := svc.ProcessQuery(context.Background(),
		mustQuery(t, "budget"), query.Criteria{}, query.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gen.calls != 1 {
		t.Fatalf("expected 1 generation call, got %d", gen.calls)
	}
	if ans.Confidence() != 0.25 {
		t.Errorf("expected fallback confidence 0.25, got %f", ans.Confidence())
	}
	if !strings.Contains(gen.lastReq.SystemPrompt, "Note: Text content not accessible for this PDF file.") {
		t.Error("expected metadata-only note in fallback prompt")
	}
	if len(ans.Sources()) != 2 {
		t.Errorf("expected 2 sources, got %d", len(ans.Sources()))
	}
}

func TestProcessQuery_PassesGenerationOptions(t *testing.T) {
	searcher := &mockSearcher{docs: []document.Document{
		testDoc("a.pdf", "A", longContent, 5),
	}}
	gen := &mockGenerator{result: domain.CompletionResult{Content: "ok", Finished: true}}
	svc := newTestService(searcher, gen)

	_, err := svc.ProcessQuery(context.Background(),
		mustQuery(t, "what changed"), query.Criteria{}, mustOptions(t, 0.2, 800, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if searcher.lastTop != 5 {
		t.Errorf("expected top 5, got %d", searcher.lastTop)
	}
	if gen.lastReq.Temperature != 0.2 {
		t.Errorf("unexpected temperature: %f", gen.lastReq.Temperature)
	}
	if gen.lastReq.MaxTokens != 800 {
		t.Errorf("unexpected max tokens: %d", gen.lastReq.MaxTokens)
	}
	if gen.lastReq.UserPrompt != "what changed" {
		t.Errorf("unexpected user prompt: %q", gen.lastReq.UserPrompt)
	}
	if !strings.Contains(gen.lastReq.SystemPrompt, `[Document 1: "A"]`) {
		t.Error("expected document block in system prompt")
	}
}

func TestProcessQuery_CitationsKeepRetrievalOrder(t *testing.T) {
	searcher := &mockSearcher{docs: []document.Document{
		testDoc("1.pdf", "First", longContent, 3),
		testDoc("2.pdf", "Second", "", 2),
		testDoc("3.pdf", "Third", longContent, 1),
	}}
	gen := &mockGenerator{result: domain.CompletionResult{Content: "ok", Finished: true}}
	svc := newTestService(searcher, gen)

	ans, err := svc.ProcessQuery(context.Background(),
		mustQuery(t, "q"), query.Criteria{}, query.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Citations cover every retrieved document even when the context skips
	// the ones without content.
	names := []string{"First", "Second", "Third"}
	for i, name := range names {
		if ans.Sources()[i].Name() != name {
			t.Errorf("source %d: expected %q, got %q", i, name, ans.Sources()[i].Name())
		}
	}
	if strings.Contains(gen.lastReq.SystemPrompt, `"Second"`) {
		t.Error("expected content-less document to stay out of the context")
	}
	if !strings.Contains(gen.lastReq.SystemPrompt, `[Document 2: "Third"]`) {
		t.Error("expected context numbering to follow usable documents")
	}
}

func TestProcessQuery_EstimatesPromptTokens(t *testing.T) {
	searcher := &mockSearcher{docs: []document.Document{
		testDoc("a.pdf", "A", longContent, 5),
	}}
	gen := &mockGenerator{result: domain.CompletionResult{Content: "ok", Finished: true}}
	counter := &countingCounter{}
	svc := New(searcher, &mockFacetSource{}, gen, &mockChecker{}, counter, zap.NewNop())

	if _, err := svc.ProcessQuery(context.Background(),
		mustQuery(t, "q"), query.Criteria{}, query.DefaultOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One count for the system prompt, one for the query.
	if counter.calls != 2 {
		t.Errorf("expected 2 counter calls, got %d", counter.calls)
	}
}

func TestSearchDocuments_ClampsTop(t *testing.T) {
	searcher := &mockSearcher{docs: []document.Document{
		testDoc("a.pdf", "A", longContent, 5),
	}, total: 7}
	svc := newTestService(searcher, &mockGenerator{})

	_, total, err := svc.SearchDocuments(context.Background(),
		mustQuery(t, "q"), query.Criteria{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if searcher.lastTop != query.DefaultTopDocuments {
		t.Errorf("expected default top, got %d", searcher.lastTop)
	}
	if total != 7 {
		t.Errorf("expected total 7, got %d", total)
	}

	if _, _, err = svc.SearchDocuments(context.Background(),
		mustQuery(t, "q"), query.Criteria{}, 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if searcher.lastTop != query.MaxTopDocuments {
		t.Errorf("expected max top, got %d", searcher.lastTop)
	}
}

func TestSearchDocuments_Error(t *testing.T) {
	searcher := &mockSearcher{err: errors.New("boom")}
	svc := newTestService(searcher, &mockGenerator{})

	if _, _, err := svc.SearchDocuments(context.Background(),
		mustQuery(t, "q"), query.Criteria{}, 10); err == nil {
		t.Fatal("expected error")
	}
}

func TestAvailableFilters_Delegates(t *testing.T) {
	groups := facet.NewGroups([]facet.Facet{facet.New("Jane Doe", 3)}, nil, nil)
	fs := &mockFacetSource{groups: groups}
	svc := New(&mockSearcher{}, fs, &mockGenerator{}, &mockChecker{}, nil, zap.NewNop())

	got := svc.AvailableFilters(context.Background())

	if fs.calls != 1 {
		t.Errorf("expected 1 facet call, got %d", fs.calls)
	}
	if len(got.Authors()) != 1 || got.Authors()[0].Value() != "Jane Doe" {
		t.Errorf("unexpected authors: %v", got.Authors())
	}
}
