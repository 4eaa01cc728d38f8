package reply

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/cloudwego/eino/compose"
	"github.com/heva-hub/assistant/backend/internal/analysis/response"
)

// Reply is the classified answer to one utterance.
type Reply struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// CategoryCount is the number of utterances routed to a category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Service runs utterances through the rule engine and keeps per-category
// query counters for the dashboard.
type Service struct {
	engine *response.Engine
	chain  compose.Runnable[string, Reply]

	mu     sync.Mutex
	counts map[string]int
}

// NewService compiles the reply chain around the engine: match the rule,
// record its category, then build the reply.
func NewService(ctx context.Context, engine *response.Engine) (*Service, error) {
	s := &Service{
		engine: engine,
		counts: make(map[string]int),
	}

	chain := compose.NewChain[string, Reply]()
	chain.AppendLambda(compose.InvokableLambda(func(_ context.Context, utterance string) (response.Rule, error) {
		return engine.Match(utterance), nil
	}), compose.WithNodeName("match"))
	chain.AppendLambda(compose.InvokableLambda(func(_ context.Context, rule response.Rule) (response.Rule, error) {
		s.record(rule.Category)
		return rule, nil
	}), compose.WithNodeName("count"))
	chain.AppendLambda(compose.InvokableLambda(func(_ context.Context, rule response.Rule) (Reply, error) {
		return Reply{Category: rule.Category, Text: rule.Reply}, nil
	}), compose.WithNodeName("reply"))

	runnable, err := chain.Compile(ctx, compose.WithGraphName("reply"))
	if err != nil {
		return nil, fmt.Errorf("failed to compile reply chain: %w", err)
	}
	s.chain = runnable
	return s, nil
}

// Generate classifies the utterance; the chain records the matched category.
func (s *Service) Generate(ctx context.Context, utterance string) (Reply, error) {
	out, err := s.chain.Invoke(ctx, utterance)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to run reply chain: %w", err)
	}

	log.Printf("[reply] category=%s input_length=%d", out.Category, len(utterance))
	return out, nil
}

func (s *Service) record(category string) {
	s.mu.Lock()
	s.counts[category]++
	s.mu.Unlock()
}

// Respond returns only the reply text.
func (s *Service) Respond(ctx context.Context, utterance string) (string, error) {
	out, err := s.Generate(ctx, utterance)
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

// Counts lists every category in priority order with its query count.
func (s *Service) Counts() []CategoryCount {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories := s.engine.Categories()
	out := make([]CategoryCount, len(categories))
	for i, category := range categories {
		out[i] = CategoryCount{Category: category, Count: s.counts[category]}
	}
	return out
}

// Total returns the number of utterances answered.
func (s *Service) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, n := range s.counts {
		total += n
	}
	return total
}

// Rules exposes the active rule table.
func (s *Service) Rules() []response.Rule {
	return s.engine.Rules()
}
