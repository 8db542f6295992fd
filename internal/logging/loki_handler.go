package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	lokiFlushInterval = 5 * time.Second
	lokiPushTimeout   = 5 * time.Second
	lokiPushPath      = "/loki/api/v1/push"
)

// LokiHandler is a slog.Handler that pushes JSON log lines to Loki.
// Records are buffered and sent in batches, one stream per level, so that
// "level" can be queried as a label. Derived handlers share one buffer.
// LokiHandler envoie les logs à Loki par lots, un flux par niveau
type LokiHandler struct {
	buf     *lokiBuffer
	attrs   []slog.Attr
	group   string
	enabled bool
	level   slog.Level
}

// lokiBuffer holds pending lines until the next push.
type lokiBuffer struct {
	endpoint string
	labels   map[string]string
	client   *http.Client
	size     int
	errOut   io.Writer

	mu      sync.Mutex
	pending []lokiLine
	timer   *time.Timer
}

type lokiLine struct {
	at    time.Time
	level string
	text  string
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

// NewLokiHandler creates a handler pushing to baseURL (e.g. "http://localhost:3100").
// labels are attached to every stream; batchSize 0 pushes each record immediately.
func NewLokiHandler(baseURL string, labels map[string]string, batchSize int, enabled bool, level slog.Level) *LokiHandler {
	buf := &lokiBuffer{
		endpoint: strings.TrimRight(baseURL, "/") + lokiPushPath,
		labels:   maps.Clone(labels),
		client:   &http.Client{Timeout: lokiPushTimeout},
		size:     batchSize,
		errOut:   os.Stderr,
	}
	if buf.labels == nil {
		buf.labels = map[string]string{}
	}
	if enabled && batchSize > 0 {
		buf.timer = time.AfterFunc(lokiFlushInterval, buf.tick)
	}
	return &LokiHandler{buf: buf, enabled: enabled, level: level}
}

// Enabled reports whether the handler handles records at the given level.
func (h *LokiHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled && level >= h.level
}

func (h *LokiHandler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

// Handle encodes r as one JSON line and queues it.
func (h *LokiHandler) Handle(_ context.Context, r slog.Record) error {
	if !h.enabled {
		return nil
	}

	fields := make(map[string]any, len(h.attrs)+r.NumAttrs()+3)
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[h.qualify(a.Key)] = a.Value.Resolve().Any()
		return true
	})
	fields["time"] = r.Time.Format(time.RFC3339Nano)
	fields["level"] = r.Level.String()
	fields["msg"] = r.Message

	text, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("loki: encode record: %w", err)
	}
	return h.buf.add(lokiLine{at: r.Time, level: strings.ToLower(r.Level.String()), text: string(text)})
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *LokiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(make([]slog.Attr, 0, len(h.attrs)+len(attrs)), h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, slog.Attr{Key: h.qualify(a.Key), Value: a.Value})
	}
	return &next
}

// WithGroup returns a handler that prefixes later keys with name.
func (h *LokiHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = h.qualify(name)
	return &next
}

// Close stops the periodic push and sends what is left / Arrête l'envoi périodique et vide le tampon
func (h *LokiHandler) Close() error {
	if h.buf.timer != nil {
		h.buf.timer.Stop()
	}
	return h.buf.flush()
}

func (b *lokiBuffer) add(line lokiLine) error {
	b.mu.Lock()
	b.pending = append(b.pending, line)
	full := b.size == 0 || len(b.pending) >= b.size
	b.mu.Unlock()

	if full {
		return b.flush()
	}
	return nil
}

func (b *lokiBuffer) tick() {
	_ = b.flush()
	b.timer.Reset(lokiFlushInterval)
}

// flush pushes pending lines grouped by level, in order of first appearance.
func (b *lokiBuffer) flush() error {
	b.mu.Lock()
	lines := b.pending
	b.pending = nil
	b.mu.Unlock()

	if len(lines) == 0 {
		return nil
	}

	var streams []lokiStream
	index := map[string]int{}
	for _, l := range lines {
		i, ok := index[l.level]
		if !ok {
			labels := maps.Clone(b.labels)
			labels["level"] = l.level
			streams = append(streams, lokiStream{Stream: labels})
			i = len(streams) - 1
			index[l.level] = i
		}
		// Loki expects [unix nanoseconds, line]
		streams[i].Values = append(streams[i].Values, [2]string{strconv.FormatInt(l.at.UnixNano(), 10), l.text})
	}

	return b.push(streams)
}

// push posts the streams. Loki being unreachable is reported on errOut, never to the caller.
func (b *lokiBuffer) push(streams []lokiStream) error {
	body, err := json.Marshal(map[string]any{"streams": streams})
	if err != nil {
		return fmt.Errorf("loki: encode push: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), lokiPushTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("loki: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		fmt.Fprintf(b.errOut, "loki: push failed: %v\n", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		fmt.Fprintf(b.errOut, "loki: push rejected with %d: %s\n", resp.StatusCode, msg)
	}
	return nil
}
