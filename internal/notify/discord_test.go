package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/dealscout/deal-engine/pkg/types"
)

func sampleDeal() *domain.DealOfTheDay {
	net := 640.0
	return &domain.DealOfTheDay{
		Listing: domain.Listing{
			Category:  domain.CategoryWatch,
			Brand:     "Rolex",
			Model:     "Submariner",
			Title:     "Rolex Submariner 116610LN",
			ItemURL:   "https://example.com/listings/1",
			Price:     7500,
			Source:    "chrono24",
			Seller:    "verified dealer",
			Condition: "Excellent",
			Images:    []string{"https://example.com/img/1.jpg"},
		},
		Score: 92,
		Grade: "HOT DEAL",
		Profit: &domain.ProfitPotential{
			ListingPrice: 7500,
			NetProfit:    &net,
			Confidence:   domain.ConfidenceHigh,
		},
		Reason:     "priced 17% below market",
		SelectedAt: time.Now(),
	}
}

func TestDiscordNotifier_SendDeal(t *testing.T) {
	var got discordWebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewDiscordNotifier(srv.URL)
	require.NoError(t, n.SendDeal(context.Background(), sampleDeal()))

	require.Len(t, got.Embeds, 1)
	embed := got.Embeds[0]
	assert.Contains(t, embed.Title, "Rolex Submariner")
	assert.Equal(t, "priced 17% below market", embed.Description)
	assert.Equal(t, colorGreen, embed.Color)
	require.NotNil(t, embed.Thumbnail)
	assert.Equal(t, "https://example.com/img/1.jpg", embed.Thumbnail.URL)

	var fields []string
	for _, f := range embed.Fields {
		fields = append(fields, f.Name)
	}
	assert.Contains(t, fields, "Est. Net Profit")
}

func TestDiscordNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad webhook", http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewDiscordNotifier(srv.URL)
	err := n.SendDeal(context.Background(), sampleDeal())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestDiscordNotifier_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := NewDiscordNotifier(srv.URL)
	err := n.SendDeal(context.Background(), sampleDeal())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestScoreColor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, colorGreen, scoreColor(95))
	assert.Equal(t, colorYellow, scoreColor(84))
	assert.Equal(t, colorOrange, scoreColor(60))
}
