package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/pageza/vinoteca/backend/internal/model"
	"github.com/pageza/vinoteca/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splitLines(body string) []string {
	var lines []string
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func wineNames(wines []types.EnrichedWine) []string {
	names := make([]string, len(wines))
	for i, w := range wines {
		names[i] = w.Name
	}
	return names
}

func TestCatalogHandler_List(t *testing.T) {
	env := setupTestRouter(t, &scriptedLLM{}, nil)

	w := performRequest(env.router, http.MethodGet, "/api/v1/wines", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Wines []types.EnrichedWine `json:"wines"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, []string{"Muga Reserva", "Catena Malbec", "Cloudy Bay Sauvignon Blanc", "House Red"}, wineNames(resp.Wines))
}

func TestCatalogHandler_Search(t *testing.T) {
	env := setupTestRouter(t, &scriptedLLM{}, nil)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantNames  []string
	}{
		{name: "filter and value", path: "/api/v1/wines/search?filter=grape&value=tempranillo", wantStatus: http.StatusOK, wantNames: []string{"Muga Reserva"}},
		{name: "appelation filter", path: "/api/v1/wines/search?filter=appelation&value=marlborough", wantStatus: http.StatusOK, wantNames: []string{"Cloudy Bay Sauvignon Blanc"}},
		{name: "several keys", path: "/api/v1/wines/search?classification=red&year=2020", wantStatus: http.StatusOK, wantNames: []string{"House Red"}},
		{name: "no match", path: "/api/v1/wines/search?filter=country&value=france", wantStatus: http.StatusOK, wantNames: []string{}},
		{name: "unknown filter", path: "/api/v1/wines/search?filter=mood&value=happy", wantStatus: http.StatusBadRequest},
		{name: "bad year", path: "/api/v1/wines/search?filter=year&value=old", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(env.router, http.MethodGet, tt.path, nil)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantStatus != http.StatusOK {
				var resp map[string]string
				decodeJSON(t, w, &resp)
				assert.NotEmpty(t, resp["error"])
				return
			}
			var resp struct {
				Wines []types.EnrichedWine `json:"wines"`
			}
			decodeJSON(t, w, &resp)
			assert.Equal(t, tt.wantNames, wineNames(resp.Wines))
		})
	}
}

func TestCatalogHandler_Get(t *testing.T) {
	env := setupTestRouter(t, &scriptedLLM{}, nil)

	w := performRequest(env.router, http.MethodGet, "/api/v1/wines/4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var wine types.EnrichedWine
	decodeJSON(t, w, &wine)
	assert.Equal(t, "Unrated Rosé", wine.Name)
	assert.Nil(t, wine.Rating)

	assert.Equal(t, http.StatusNotFound, performRequest(env.router, http.MethodGet, "/api/v1/wines/999", nil).Code)
	assert.Equal(t, http.StatusBadRequest, performRequest(env.router, http.MethodGet, "/api/v1/wines/abc", nil).Code)
}

func TestCatalogHandler_FoodPairingsAndVineyard(t *testing.T) {
	env := setupTestRouter(t, &scriptedLLM{}, nil)

	w := performRequest(env.router, http.MethodGet, "/api/v1/wines/3/food-pairings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pairings":["oysters","goat cheese"]}`, w.Body.String())

	w = performRequest(env.router, http.MethodGet, "/api/v1/vineyards/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var vineyard model.Vineyard
	decodeJSON(t, w, &vineyard)
	assert.Equal(t, "Bodegas Muga", vineyard.Name)
	assert.Equal(t, "Rioja DOCa", vineyard.Appellation)

	assert.Equal(t, http.StatusNotFound, performRequest(env.router, http.MethodGet, "/api/v1/vineyards/42", nil).Code)
}
