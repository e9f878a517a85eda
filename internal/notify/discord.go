package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dealscout/deal-engine/internal/metrics"
	domain "github.com/dealscout/deal-engine/pkg/types"
)

const (
	colorGreen  = 0x2ECC71 // score 90+
	colorYellow = 0xF1C40F // score 80-89
	colorOrange = 0xE67E22 // below 80
)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Thumbnail   *discordThumbnail   `json:"thumbnail,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordThumbnail struct {
	URL string `json:"url"`
}

// SendDeal announces a deal of the day as a Discord embed.
func (d *DiscordNotifier) SendDeal(ctx context.Context, deal *domain.DealOfTheDay) error {
	payload := discordWebhookPayload{
		Embeds: []discordEmbed{buildEmbed(deal)},
	}
	if err := d.post(ctx, payload); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		return err
	}
	metrics.NotificationsSentTotal.Inc()
	return nil
}

func buildEmbed(deal *domain.DealOfTheDay) discordEmbed {
	l := deal.Listing
	embed := discordEmbed{
		Title:       fmt.Sprintf("Deal of the Day (%s): %s", l.Category, l.Title),
		URL:         l.ItemURL,
		Color:       scoreColor(deal.Score),
		Description: deal.Reason,
		Fields: []discordEmbedField{
			{Name: "Score", Value: fmt.Sprintf("%d/100", deal.Score), Inline: true},
			{Name: "Grade", Value: deal.Grade, Inline: true},
			{Name: "Price", Value: fmt.Sprintf("$%.2f", l.Price), Inline: true},
			{Name: "Seller", Value: valueOr(l.Seller, "unknown"), Inline: true},
			{Name: "Condition", Value: valueOr(l.Condition, "unspecified"), Inline: true},
			{Name: "Source", Value: valueOr(l.Source, "unknown"), Inline: true},
		},
	}

	if p := deal.Profit; p != nil && p.NetProfit != nil {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:   "Est. Net Profit",
			Value:  fmt.Sprintf("$%.2f (%s confidence)", *p.NetProfit, p.Confidence),
			Inline: true,
		})
	}

	if len(l.Images) > 0 {
		embed.Thumbnail = &discordThumbnail{URL: l.Images[0]}
	}

	return embed
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func scoreColor(score int) int {
	switch {
	case score >= 90:
		return colorGreen
	case score >= 80:
		return colorYellow
	default:
		return colorOrange
	}
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
