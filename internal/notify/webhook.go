package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/raysh454/kanshi/internal/monitor"
	"github.com/raysh454/kanshi/internal/webclient"
)

// Webhook payload kinds. KindAuto picks one from the URL's host.
const (
	KindAuto    = "auto"
	KindDiscord = "discord"
	KindSlack   = "slack"
	KindGeneric = "generic"
)

const webhookTimeout = 10 * time.Second

// WebhookNotifier posts change notifications to a webhook URL, shaping the
// payload for Discord, Slack or a generic JSON consumer.
type WebhookNotifier struct {
	url  string
	kind string
	wc   webclient.WebClient
}

func NewWebhookNotifier(url, kind string, wc webclient.WebClient) *WebhookNotifier {
	if kind == "" || kind == KindAuto {
		switch {
		case strings.Contains(url, "discord.com"):
			kind = KindDiscord
		case strings.Contains(url, "slack.com"):
			kind = KindSlack
		default:
			kind = KindGeneric
		}
	}
	return &WebhookNotifier{url: url, kind: kind, wc: wc}
}

func (w *WebhookNotifier) Name() string { return "webhook:" + w.kind }

func (w *WebhookNotifier) Notify(ctx context.Context, change *monitor.ChangeRecord) error {
	var payload any
	switch w.kind {
	case KindDiscord:
		payload = discordPayload(change)
	case KindSlack:
		payload = slackPayload(change)
	default:
		payload = genericPayload(change)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, webhookTimeout)
	defer cancel()

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	resp, err := w.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     w.url,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// changedLines filters a diff down to its added/removed lines, skipping the
// file headers.
func changedLines(diff []string) []string {
	out := make([]string, 0, len(diff))
	for _, line := range diff {
		if strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---") {
			continue
		}
		if strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-") {
			out = append(out, line)
		}
	}
	return out
}

func diffPreview(diff []string, maxLines, maxChars int) string {
	lines := changedLines(diff)
	truncated := 0
	if len(lines) > maxLines {
		truncated = len(lines) - maxLines
		lines = lines[:maxLines]
	}
	preview := strings.Join(lines, "\n")
	if truncated > 0 {
		preview += fmt.Sprintf("\n... and %d more changes", truncated)
	}
	if len(preview) > maxChars {
		preview = preview[:maxChars]
	}
	return preview
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbed struct {
	Title  string         `json:"title"`
	Color  int            `json:"color"`
	Fields []discordField `json:"fields"`
	Footer struct {
		Text string `json:"text"`
	} `json:"footer"`
}

func discordPayload(change *monitor.ChangeRecord) any {
	embed := discordEmbed{
		Title: "Website Change Detected!",
		Color: 0xFF6B6B,
		Fields: []discordField{
			{Name: "Target", Value: change.TargetName, Inline: true},
			{Name: "URL", Value: change.URL, Inline: true},
			{Name: "Detected At", Value: change.Timestamp, Inline: false},
		},
	}
	embed.Footer.Text = "kanshi"

	if preview := diffPreview(change.Diff, 20, 1000); preview != "" {
		embed.Fields = append(embed.Fields, discordField{
			Name:   "Changes Preview",
			Value:  fmt.Sprintf("```diff\n%s\n```", preview),
			Inline: false,
		})
	}

	return map[string]any{"embeds": []discordEmbed{embed}}
}

func slackPayload(change *monitor.ChangeRecord) any {
	blocks := []map[string]any{
		{
			"type": "header",
			"text": map[string]any{"type": "plain_text", "text": "Website Change Detected!"},
		},
		{
			"type": "section",
			"fields": []map[string]any{
				{"type": "mrkdwn", "text": "*Target:*\n" + change.TargetName},
				{"type": "mrkdwn", "text": "*URL:*\n" + change.URL},
				{"type": "mrkdwn", "text": "*Time:*\n" + change.Timestamp},
			},
		},
	}

	if preview := diffPreview(change.Diff, 20, 2000); preview != "" {
		blocks = append(blocks, map[string]any{
			"type": "section",
			"text": map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Changes:*\n```%s```", preview)},
		})
	}

	return map[string]any{"blocks": blocks}
}

func genericPayload(change *monitor.ChangeRecord) any {
	return map[string]any{
		"event":      "site_change",
		"target":     change.TargetName,
		"url":        change.URL,
		"timestamp":  change.Timestamp,
		"old_hash":   change.OldHash,
		"new_hash":   change.NewHash,
		"diff_lines": change.DiffLines,
	}
}
