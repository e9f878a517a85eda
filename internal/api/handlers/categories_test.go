package handlers_test

import (
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealscout/deal-engine/internal/api/handlers"
	"github.com/dealscout/deal-engine/internal/catalog"
)

func newCategoriesAPI(t *testing.T) (humatest.TestAPI, *catalog.Store) {
	t.Helper()

	cat := catalog.NewStore()
	h := handlers.NewCategoriesHandler(cat)

	_, api := humatest.New(t)
	handlers.RegisterCategoryRoutes(api, h)

	return api, cat
}

func TestCategoriesHandler_List(t *testing.T) {
	t.Parallel()

	api, _ := newCategoriesAPI(t)

	resp := api.Get("/api/v1/categories")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"car","sneaker","watch"`)
}

func TestCategoriesHandler_GetConfig(t *testing.T) {
	t.Parallel()

	api, _ := newCategoriesAPI(t)

	resp := api.Get("/api/v1/categories/watch/config")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"name":"watch"`)
	assert.Contains(t, resp.Body.String(), `"hot_deal":85`)
	assert.Contains(t, resp.Body.String(), `"shipping_cost":40`)
}

func TestCategoriesHandler_GetConfig_Unknown(t *testing.T) {
	t.Parallel()

	api, _ := newCategoriesAPI(t)

	// Reads do not fall back to the default category the way scoring does.
	resp := api.Get("/api/v1/categories/boats/config")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "boats")
}

func TestCategoriesHandler_UpdateConfig(t *testing.T) {
	t.Parallel()

	api, cat := newCategoriesAPI(t)

	resp := api.Patch("/api/v1/categories/watch/config", map[string]any{
		"thresholds": map[string]int{
			"hot_deal": 90, "great_deal": 80, "good_deal": 70, "fair": 55,
		},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"hot_deal":90`)

	got := cat.Snapshot("watch")
	assert.Equal(t, 90, got.Thresholds.HotDeal)
	// Untouched sections survive a partial update.
	assert.Equal(t, 30, got.Weights.Price)
}

func TestCategoriesHandler_UpdateConfig_BadWeights(t *testing.T) {
	t.Parallel()

	api, cat := newCategoriesAPI(t)

	resp := api.Patch("/api/v1/categories/watch/config", map[string]any{
		"weights": map[string]int{
			"price": 90, "condition": 90, "seller": 0,
			"velocity": 0, "demand": 0, "quality": 0,
		},
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Contains(t, resp.Body.String(), "weights must sum to 100")

	got := cat.Snapshot("watch")
	assert.Equal(t, 30, got.Weights.Price, "rejected update must not land")
}

func TestCategoriesHandler_UpdateConfig_UnorderedThresholds(t *testing.T) {
	t.Parallel()

	api, cat := newCategoriesAPI(t)

	resp := api.Patch("/api/v1/categories/watch/config", map[string]any{
		"thresholds": map[string]int{
			"hot_deal": 70, "great_deal": 80, "good_deal": 60, "fair": 50,
		},
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Contains(t, resp.Body.String(), "non-increasing")

	got := cat.Snapshot("watch")
	assert.Equal(t, 85, got.Thresholds.HotDeal, "rejected update must not land")
}

func TestCategoriesHandler_UpdateConfig_Unknown(t *testing.T) {
	t.Parallel()

	api, cat := newCategoriesAPI(t)

	resp := api.Patch("/api/v1/categories/boats/config", map[string]any{
		"shipping_cost": 100,
	})
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.False(t, cat.Has("boats"), "updates never create categories")
}
