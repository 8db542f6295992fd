package mockapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/metrics"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/normalize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "a-test-secret-that-is-long-enough-32"

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	if opts.Store == nil {
		opts.Store = newTestStore()
		Seed(opts.Store)
	}
	s := NewServer(t.Context(), opts)
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(func() {
		srv.Close()
		s.Stop()
	})
	return srv
}

// call sends a JSON request and returns status and body.
func call(t *testing.T, srv *httptest.Server, method, path string, body any, header ...string) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(t.Context(), method, srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestRoutes_ListEnvelopesRotate(t *testing.T) {
	srv := newTestServer(t, Options{})

	tests := []struct {
		path     string
		itemsKey string
		shape    normalize.Shape
	}{
		{"/api/civilites", "civilites", normalize.ShapeData},
		{"/api/pays", "pays", normalize.ShapeKeyed},
		{"/api/villes", "villes", normalize.ShapeNested},
		{"/api/categories", "categories", normalize.ShapeArray},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := call(t, srv, http.MethodGet, tt.path, nil)
			require.Equal(t, http.StatusOK, status)

			page, shape := normalize.List[map[string]any](body, tt.itemsKey)
			assert.Equal(t, tt.shape, shape)
			assert.Equal(t, 3, page.Count)
		})
	}
}

func TestRoutes_CreateEchoesRecord(t *testing.T) {
	srv := newTestServer(t, Options{})

	status, body := call(t, srv, http.MethodPost, "/api/civilites", map[string]any{"libelle": "Docteur", "code": "DR"})
	require.Equal(t, http.StatusCreated, status)

	created, err := normalize.Entity[map[string]any](body, "civilite")
	require.NoError(t, err)
	assert.Equal(t, "Docteur", (*created)["libelle"])
	assert.Equal(t, "actif", (*created)["statut"], "default statut applied")
	assert.NotEmpty(t, (*created)["created_at"])

	id := (*created)["uuid"].(string)
	status, body = call(t, srv, http.MethodGet, "/api/civilites/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	got, err := normalize.Entity[map[string]any](body, "civilite")
	require.NoError(t, err)
	assert.Equal(t, "DR", (*got)["code"])

	status, _ = call(t, srv, http.MethodPost, "/api/civilites", map[string]any{"libelle": "Autre", "code": "dr"})
	assert.Equal(t, http.StatusConflict, status, "codes are unique")
}

func TestRoutes_UpdateDeleteLifecycle(t *testing.T) {
	srv := newTestServer(t, Options{})
	id := SeedUUID("villes", 1)

	status, body := call(t, srv, http.MethodPut, "/api/villes/"+id, map[string]any{"region": "IDF"})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"region":"IDF"`)

	status, _ = call(t, srv, http.MethodDelete, "/api/villes/"+id, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = call(t, srv, http.MethodGet, "/api/villes/"+id, nil)
	require.Equal(t, http.StatusOK, status, "soft-deleted records stay readable")
	assert.Contains(t, string(body), `"is_deleted":true`)

	status, _ = call(t, srv, http.MethodDelete, "/api/villes/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, srv, http.MethodGet, "/api/villes/unknown", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRoutes_Bulk(t *testing.T) {
	srv := newTestServer(t, Options{})
	ids := []string{SeedUUID("pays", 1), SeedUUID("pays", 2), "unknown"}

	status, body := call(t, srv, http.MethodPost, "/api/pays/bulk-update", map[string]any{
		"uuids":   ids,
		"updates": map[string]any{"statut": "inactif"},
	})
	require.Equal(t, http.StatusOK, status)
	page, _ := normalize.List[map[string]any](body, "pays")
	assert.Equal(t, 2, page.Count, "unknown uuids are skipped")

	status, _ = call(t, srv, http.MethodPost, "/api/pays/bulk-update", map[string]any{"uuids": ids})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, body = call(t, srv, http.MethodPost, "/api/pays/bulk-delete", map[string]any{"uuids": ids})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"deleted":2`)

	status, _ = call(t, srv, http.MethodPost, "/api/pays/bulk-delete", map[string]any{"uuids": []string{}})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestRoutes_CheckUnique(t *testing.T) {
	srv := newTestServer(t, Options{})

	tests := []struct {
		name   string
		path   string
		status int
		want   string
	}{
		{"Taken code", "/api/civilites/check-code?code=m", http.StatusOK, `"available":false`},
		{"Own code excluded", "/api/civilites/check-code?code=M&exclude_uuid=" + SeedUUID("civilites", 1), http.StatusOK, `"available":true`},
		{"Free slug", "/api/categories/check-slug?slug=jardin", http.StatusOK, `"available":true`},
		{"Missing parameter", "/api/pays/check-code", http.StatusBadRequest, "code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, srv, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.status, status)
			assert.Contains(t, string(body), tt.want)
		})
	}
}

func TestRoutes_ExportIsNotImplemented(t *testing.T) {
	srv := newTestServer(t, Options{})

	status, body := call(t, srv, http.MethodGet, "/api/commandes/export?format=pdf", nil)

	assert.Equal(t, http.StatusNotImplemented, status)
	assert.Contains(t, string(body), "non disponible")
}

func TestRoutes_StatutAndModeration(t *testing.T) {
	srv := newTestServer(t, Options{})

	status, body := call(t, srv, http.MethodPut, "/api/commandes/"+SeedUUID("commandes", 2)+"/statut", map[string]any{"statut": "confirmee"})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"statut":"confirmee"`)

	status, body = call(t, srv, http.MethodPut, "/api/commentaires/"+SeedUUID("commentaires", 2)+"/moderation", map[string]any{"statut": "rejete", "motif": "hors sujet"})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"motif":"hors sujet"`)

	status, _ = call(t, srv, http.MethodPut, "/api/commandes/"+SeedUUID("commandes", 2)+"/statut", map[string]any{"motif": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestRoutes_Stats(t *testing.T) {
	srv := newTestServer(t, Options{})

	status, body := call(t, srv, http.MethodGet, "/api/civilites/stats", nil)
	require.Equal(t, http.StatusOK, status)
	var ref struct {
		Total    int `json:"total"`
		Actifs   int `json:"actifs"`
		Inactifs int `json:"inactifs"`
	}
	require.NoError(t, normalize.Into(body, &ref, "stats"))
	assert.Equal(t, 3, ref.Total)
	assert.Equal(t, 2, ref.Actifs)
	assert.Equal(t, 1, ref.Inactifs)

	status, body = call(t, srv, http.MethodGet, "/api/commandes/stats", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"chiffre_affaires":"238.90"`)
	assert.Contains(t, string(body), `"panier_moyen":"119.45"`)
}

func TestRoutes_Analyse(t *testing.T) {
	srv := newTestServer(t, Options{})

	tests := []struct {
		contenu   string
		propre    bool
		sentiment string
	}{
		{"Super produit, merci", true, "positif"},
		{"C'est une arnaque", false, "negatif"},
		{"Reçu hier", true, "neutre"},
	}
	for _, tt := range tests {
		t.Run(tt.contenu, func(t *testing.T) {
			status, body := call(t, srv, http.MethodPost, "/api/commentaires/analyse", map[string]any{"contenu": tt.contenu})
			require.Equal(t, http.StatusOK, status)

			var got struct {
				Propre    bool   `json:"propre"`
				Sentiment string `json:"sentiment"`
			}
			require.NoError(t, normalize.Into(body, &got, "analyse"))
			assert.Equal(t, tt.propre, got.Propre)
			assert.Equal(t, tt.sentiment, got.Sentiment)
		})
	}
}

func TestRoutes_StockAndListings(t *testing.T) {
	srv := newTestServer(t, Options{})

	status, body := call(t, srv, http.MethodGet, "/api/produits/"+SeedUUID("produits", 1)+"/stock", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"stock":12`)

	status, body = call(t, srv, http.MethodGet, "/api/produits/"+SeedUUID("produits", 2)+"/stock", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"disponible":false`)

	status, _ = call(t, srv, http.MethodGet, "/api/produits/unknown/stock", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = call(t, srv, http.MethodGet, "/api/dons/"+SeedUUID("dons", 1), nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.HasPrefix(string(body), `{"don":`))

	status, _ = call(t, srv, http.MethodGet, "/api/echanges/unknown", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRoutes_ConversationsAndFeedback(t *testing.T) {
	srv := newTestServer(t, Options{})
	base := "/api/don-interesses/" + SeedUUID("don-interesses", 1)

	status, _ := call(t, srv, http.MethodPost, base+"/conversations", map[string]any{"contenu": "Bonjour"})
	require.Equal(t, http.StatusCreated, status)
	status, _ = call(t, srv, http.MethodPost, base+"/conversations", map[string]any{"contenu": "  "})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, body := call(t, srv, http.MethodGet, base+"/conversations", nil)
	require.Equal(t, http.StatusOK, status)
	page, shape := normalize.List[map[string]any](body, "messages")
	assert.Equal(t, normalize.ShapeKeyed, shape)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, "Bonjour", page.Items[0]["contenu"])

	status, _ = call(t, srv, http.MethodPost, base+"/feedback", map[string]any{"note": 6})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	status, body = call(t, srv, http.MethodPost, base+"/feedback", map[string]any{"note": 4, "commentaire": "Parfait"})
	require.Equal(t, http.StatusCreated, status)
	assert.Contains(t, string(body), `"feedback":`)

	status, _ = call(t, srv, http.MethodGet, "/api/don-interesses/unknown/conversations", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRoutes_AuthRequired(t *testing.T) {
	srv := newTestServer(t, Options{RequireAuth: true, JWTSecret: testSecret})

	status, _ := call(t, srv, http.MethodGet, "/api/civilites", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, srv, http.MethodGet, "/api/civilites", nil, "Authorization", "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := call(t, srv, http.MethodPost, "/api/auth/token", map[string]any{"subject": "ops"})
	require.Equal(t, http.StatusOK, status)
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(body, &tok))
	require.NotEmpty(t, tok.AccessToken)

	status, _ = call(t, srv, http.MethodGet, "/api/civilites", nil, "Authorization", "Bearer "+tok.AccessToken)
	assert.Equal(t, http.StatusOK, status)

	status, body = call(t, srv, http.MethodPost, "/api/don-interesses/"+SeedUUID("don-interesses", 1)+"/conversations",
		map[string]any{"contenu": "Toujours dispo ?"}, "Authorization", "Bearer "+tok.AccessToken)
	require.Equal(t, http.StatusCreated, status)
	assert.Contains(t, string(body), `"expediteur_uuid":"ops"`)

	status, _ = call(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status, "health stays public")
}

func TestRoutes_TokenDisabledWithoutSecret(t *testing.T) {
	srv := newTestServer(t, Options{})

	status, _ := call(t, srv, http.MethodPost, "/api/auth/token", map[string]any{})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRoutes_RequestIDAndTokenLeak(t *testing.T) {
	srv := newTestServer(t, Options{})

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+"/api/civilites", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "req-42")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "req-42", resp.Header.Get(RequestIDHeader))

	status, _ := call(t, srv, http.MethodGet, "/api/civilites?access_token=abc", nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestRoutes_HealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := newTestServer(t, Options{Metrics: metrics.NewMetrics(reg), Gatherer: reg, Version: "test"})

	status, body := call(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, status)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "test", health.Version)
	assert.Contains(t, health.Checks["store"], "civilites=3")

	call(t, srv, http.MethodGet, "/api/civilites/"+SeedUUID("civilites", 1), nil)

	status, body = call(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "http_requests_total")
	assert.Contains(t, string(body), "{uuid}", "paths are labeled by route pattern")
}
