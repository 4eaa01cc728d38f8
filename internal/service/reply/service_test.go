package reply_test

import (
	"context"
	"sync"
	"testing"

	"github.com/heva-hub/assistant/backend/internal/analysis/response"
	"github.com/heva-hub/assistant/backend/internal/service/reply"
)

func newService(t *testing.T) *reply.Service {
	t.Helper()
	svc, err := reply.NewService(context.Background(), response.Default())
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	return svc
}

func TestGenerateMatchesEngine(t *testing.T) {
	svc := newService(t)
	engine := response.Default()
	ctx := context.Background()

	for _, input := range []string{"How can I apply for funding?", "grant deadlines", "", "xyz123"} {
		out, err := svc.Generate(ctx, input)
		if err != nil {
			t.Fatalf("Generate(%q) err: %v", input, err)
		}
		want := engine.Match(input)
		if out.Category != want.Category || out.Text != want.Reply {
			t.Fatalf("Generate(%q) = %+v, want %s", input, out, want.Category)
		}
	}
}

func TestRespondReturnsText(t *testing.T) {
	svc := newService(t)
	text, err := svc.Respond(context.Background(), "I need money")
	if err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	if text != response.Default().Classify("I need money") {
		t.Fatalf("unexpected reply %q", text)
	}
}

func TestCountsTrackCategories(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, input := range []string{"funding", "finance", "grant", "hello"} {
		if _, err := svc.Generate(ctx, input); err != nil {
			t.Fatalf("Generate err: %v", err)
		}
	}

	counts := svc.Counts()
	if len(counts) != len(response.Default().Categories()) {
		t.Fatalf("expected a row per category, got %d", len(counts))
	}
	got := make(map[string]int, len(counts))
	for _, c := range counts {
		got[c.Category] = c.Count
	}
	if got["funding"] != 2 || got["grant"] != 1 || got["default"] != 1 || got["support"] != 0 {
		t.Fatalf("unexpected counts: %v", got)
	}
	if svc.Total() != 4 {
		t.Fatalf("expected total 4, got %d", svc.Total())
	}
	if counts[0].Category != "funding" {
		t.Fatalf("expected priority order, got %s first", counts[0].Category)
	}
}

func TestCountsConcurrentGenerate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Generate(ctx, "any grants?"); err != nil {
				t.Errorf("Generate err: %v", err)
			}
		}()
	}
	wg.Wait()

	if svc.Total() != workers {
		t.Fatalf("expected total %d, got %d", workers, svc.Total())
	}
}
