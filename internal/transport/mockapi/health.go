package mockapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HealthResponse represents the response structure for health check endpoints.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
}

// health always answers 200 while the process serves requests.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Checks:    map[string]string{"store": s.store.String()},
		Version:   s.opts.Version,
		Uptime:    formatUptime(time.Since(s.started)),
	})
}

// formatUptime renders the two most significant units: "1d 5h", "2h 15m", "45s".
func formatUptime(d time.Duration) string {
	units := []struct {
		value  int
		suffix string
	}{
		{int(d.Hours()) / 24, "d"},
		{int(d.Hours()) % 24, "h"},
		{int(d.Minutes()) % 60, "m"},
		{int(d.Seconds()) % 60, "s"},
	}

	var parts []string
	for _, u := range units {
		if u.value == 0 && len(parts) == 0 {
			continue
		}
		if u.value > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", u.value, u.suffix))
		}
		if len(parts) == 2 {
			break
		}
	}
	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, " ")
}
