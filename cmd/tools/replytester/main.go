package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/heva-hub/assistant/backend/internal/analysis/response"
	"github.com/heva-hub/assistant/backend/internal/config"
	"github.com/heva-hub/assistant/backend/internal/service/reply"
	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(0)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] .env not loaded, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	rulesPath := flag.String("rules", cfg.Chat.RulesFile, "rule table TOML file (default: embedded table)")
	text := flag.String("text", "", "single utterance to classify; reads stdin lines when empty")
	asJSON := flag.Bool("json", false, "print one JSON object per utterance")
	list := flag.Bool("list", false, "print the rule table and exit")

	flag.Parse()

	engine, err := loadEngine(*rulesPath)
	if err != nil {
		log.Fatalf("failed to load rule table: %v", err)
	}

	if *list {
		printRules(engine.Rules())
		return
	}

	ctx := context.Background()
	svc, err := reply.NewService(ctx, engine)
	if err != nil {
		log.Fatalf("failed to initialize reply service: %v", err)
	}

	if *text != "" {
		emit(ctx, svc, *text, *asJSON)
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		emit(ctx, svc, line, *asJSON)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("failed to read stdin: %v", err)
	}

	if !*asJSON {
		fmt.Println()
		for _, c := range svc.Counts() {
			if c.Count > 0 {
				fmt.Printf("%-12s %d\n", c.Category, c.Count)
			}
		}
	}
}

func loadEngine(path string) (*response.Engine, error) {
	if path == "" {
		return response.Default(), nil
	}
	rules, err := response.LoadRules(path)
	if err != nil {
		return nil, err
	}
	return response.NewEngine(rules)
}

func emit(ctx context.Context, svc *reply.Service, utterance string, asJSON bool) {
	out, err := svc.Generate(ctx, utterance)
	if err != nil {
		log.Fatalf("classification failed: %v", err)
	}

	if asJSON {
		payload := map[string]string{
			"input":    utterance,
			"category": out.Category,
			"reply":    out.Text,
		}
		if err := json.NewEncoder(os.Stdout).Encode(payload); err != nil {
			log.Fatalf("failed to encode output: %v", err)
		}
		return
	}
	fmt.Printf("[%s] %s\n  -> %s\n", out.Category, utterance, out.Text)
}

func printRules(rules []response.Rule) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCATEGORY\tKEYWORDS")
	for i, rule := range rules {
		keywords := strings.Join(rule.Keywords, ", ")
		if rule.CatchAll() {
			keywords = "(catch-all)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, rule.Category, keywords)
	}
	w.Flush()
}
