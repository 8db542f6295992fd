package logging_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushBody struct {
	Streams []struct {
		Stream map[string]string `json:"stream"`
		Values [][]string        `json:"values"`
	} `json:"streams"`
}

// fakeLoki records every push it receives.
type fakeLoki struct {
	*httptest.Server
	mu     sync.Mutex
	pushes []pushBody
	paths  []string
}

func newFakeLoki(t *testing.T) *fakeLoki {
	t.Helper()
	f := &fakeLoki{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body pushBody
		require.NoError(t, json.Unmarshal(raw, &body))

		f.mu.Lock()
		f.pushes = append(f.pushes, body)
		f.paths = append(f.paths, r.URL.Path)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeLoki) received() []pushBody {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pushBody(nil), f.pushes...)
}

func decodeLine(t *testing.T, line string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &out))
	return out
}

func TestLokiHandler_PushesJSONLine(t *testing.T) {
	loki := newFakeLoki(t)
	h := logging.NewLokiHandler(loki.URL+"/", map[string]string{"app": "backoffice-test"}, 0, true, slog.LevelInfo)
	defer h.Close()

	slog.New(h).Info("liste chargée", "resource", "civilites", "count", 3)

	pushes := loki.received()
	require.Len(t, pushes, 1)
	assert.Equal(t, "/loki/api/v1/push", loki.paths[0])

	stream := pushes[0].Streams[0]
	assert.Equal(t, map[string]string{"app": "backoffice-test", "level": "info"}, stream.Stream)
	require.Len(t, stream.Values, 1)
	assert.NotEmpty(t, stream.Values[0][0])

	line := decodeLine(t, stream.Values[0][1])
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "liste chargée", line["msg"])
	assert.Equal(t, "civilites", line["resource"])
	assert.Equal(t, float64(3), line["count"])
}

func TestLokiHandler_BatchesUntilFullOrClosed(t *testing.T) {
	loki := newFakeLoki(t)
	h := logging.NewLokiHandler(loki.URL, nil, 3, true, slog.LevelInfo)
	logger := slog.New(h)

	logger.Info("premier")
	logger.Warn("deuxième")
	assert.Empty(t, loki.received(), "batch not full yet")

	logger.Info("troisième")
	pushes := loki.received()
	require.Len(t, pushes, 1)

	// One stream per level, in order of first appearance
	require.Len(t, pushes[0].Streams, 2)
	assert.Equal(t, "info", pushes[0].Streams[0].Stream["level"])
	assert.Len(t, pushes[0].Streams[0].Values, 2)
	assert.Equal(t, "warn", pushes[0].Streams[1].Stream["level"])
	assert.Equal(t, "deuxième", decodeLine(t, pushes[0].Streams[1].Values[0][1])["msg"])

	logger.Error("reste")
	require.NoError(t, h.Close())
	pushes = loki.received()
	require.Len(t, pushes, 2, "close flushes the remainder")
	assert.Equal(t, "error", pushes[1].Streams[0].Stream["level"])
}

func TestLokiHandler_WithAttrsAndGroup(t *testing.T) {
	loki := newFakeLoki(t)
	h := logging.NewLokiHandler(loki.URL, nil, 0, true, slog.LevelInfo)
	defer h.Close()

	logger := slog.New(h).With("operation", "civilites:delete").WithGroup("bulk")
	logger.Info("lot terminé", "succes", 2)

	pushes := loki.received()
	require.Len(t, pushes, 1)
	line := decodeLine(t, pushes[0].Streams[0].Values[0][1])
	assert.Equal(t, "civilites:delete", line["operation"])
	assert.Equal(t, float64(2), line["bulk.succes"])
}

func TestLokiHandler_LabelsAreNotShared(t *testing.T) {
	loki := newFakeLoki(t)
	labels := map[string]string{"app": "backoffice"}
	h := logging.NewLokiHandler(loki.URL, labels, 0, true, slog.LevelInfo)
	defer h.Close()

	slog.New(h).Info("x")

	assert.Equal(t, map[string]string{"app": "backoffice"}, labels, "caller map is left untouched")
}

func TestLokiHandler_LevelAndDisabled(t *testing.T) {
	h := logging.NewLokiHandler("http://127.0.0.1:1", nil, 10, true, slog.LevelWarn)
	defer h.Close()
	assert.False(t, h.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, h.Enabled(t.Context(), slog.LevelError))

	off := logging.NewLokiHandler("http://127.0.0.1:1", nil, 10, false, slog.LevelDebug)
	assert.False(t, off.Enabled(t.Context(), slog.LevelError))
	assert.NoError(t, off.Close())
}
