// Package export renders downloadable artifacts: chat transcripts and the
// settings document.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/heva-hub/assistant/backend/internal/model/chat"
	"github.com/heva-hub/assistant/backend/internal/model/settings"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

const (
	TranscriptTextFile = "heva-chat-export.txt"
	TranscriptHTMLFile = "heva-chat-export.html"
	SettingsJSONFile   = "heva-settings-export.json"
	SettingsTOMLFile   = "heva-settings-export.toml"
	DashboardXLSXFile  = "heva-dashboard-export.xlsx"

	UserDisplayName      = "You"
	DefaultAssistantName = "HEVA Bot"
	TimeLayout           = "3:04:05 PM"
)

// Format selects an export encoding.
type Format string

const (
	FormatText Format = "txt"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// ParseFormat maps a query value to a Format, using fallback when blank.
func ParseFormat(raw string, fallback Format, allowed ...Format) (Format, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return fallback, nil
	}
	for _, f := range allowed {
		if Format(raw) == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format %q", raw)
}

var transcriptTemplate = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Entries}}<section class="message {{.Sender}}">
<header><strong>{{.Name}}</strong> <time datetime="{{.ISO}}">{{.At}}</time></header>
{{.HTML}}</section>
{{end}}</body>
</html>
`))

type entryView struct {
	Sender string
	Name   string
	At     string
	ISO    string
	HTML   template.HTML
}

// Exporter renders transcripts with a fixed assistant display name and
// time zone.
type Exporter struct {
	assistantName string
	loc           *time.Location
	md            goldmark.Markdown
	policy        *bluemonday.Policy
}

// New creates an Exporter. A blank name falls back to DefaultAssistantName
// and a nil location to UTC.
func New(assistantName string, loc *time.Location) *Exporter {
	if assistantName == "" {
		assistantName = DefaultAssistantName
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Exporter{
		assistantName: assistantName,
		loc:           loc,
		md:            goldmark.New(goldmark.WithRendererOptions(gmhtml.WithHardWraps())),
		policy:        bluemonday.UGCPolicy(),
	}
}

// DisplayName returns the transcript label for a sender.
func (e *Exporter) DisplayName(sender chat.Sender) string {
	if sender == chat.SenderUser {
		return UserDisplayName
	}
	return e.assistantName
}

// TranscriptText renders one "<name> (<time>): <text>" entry per message,
// separated by a blank line.
func (e *Exporter) TranscriptText(messages []chat.Message) string {
	entries := make([]string, len(messages))
	for i, msg := range messages {
		entries[i] = fmt.Sprintf("%s (%s): %s", e.DisplayName(msg.Sender), e.formatTime(msg.Timestamp), msg.Text)
	}
	return strings.Join(entries, "\n\n")
}

// WriteTranscriptHTML renders message bodies as sanitized markdown inside a
// standalone HTML page.
func (e *Exporter) WriteTranscriptHTML(w io.Writer, messages []chat.Message) error {
	entries := make([]entryView, 0, len(messages))
	for _, msg := range messages {
		var buf bytes.Buffer
		if err := e.md.Convert([]byte(msg.Text), &buf); err != nil {
			return fmt.Errorf("render message %s: %w", msg.ID, err)
		}
		entries = append(entries, entryView{
			Sender: string(msg.Sender),
			Name:   e.DisplayName(msg.Sender),
			At:     e.formatTime(msg.Timestamp),
			ISO:    msg.Timestamp.Format(time.RFC3339),
			HTML:   template.HTML(e.policy.SanitizeBytes(buf.Bytes())),
		})
	}

	data := struct {
		Title   string
		Entries []entryView
	}{
		Title:   e.assistantName + " conversation",
		Entries: entries,
	}
	if err := transcriptTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render transcript: %w", err)
	}
	return nil
}

func (e *Exporter) formatTime(ts time.Time) string {
	return ts.In(e.loc).Format(TimeLayout)
}

// SettingsJSON encodes settings as 2-space indented JSON without HTML
// escaping.
func SettingsJSON(s settings.Settings) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode settings json: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// SettingsTOML encodes settings as a TOML document with one table per
// section.
func SettingsTOML(s settings.Settings) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("encode settings toml: %w", err)
	}
	return buf.Bytes(), nil
}
