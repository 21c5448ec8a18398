// Package service implements the demo HTTP service deployed to Cloud Run.
// It fetches an external page on each request and echoes a bounded excerpt
// together with its own runtime environment, so a verifier hitting the
// service URL can confirm both the deploy and outbound networking work.
package service

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wajahatashraf/gcp-setup/internal/constants"
)

// EnvInfo echoes the Cloud Run runtime environment.
type EnvInfo struct {
	Service  string `json:"k_service"`
	Revision string `json:"k_revision"`
	Project  string `json:"gcp_project"`
	Hostname string `json:"hostname"`
}

// StatusResponse is the JSON body returned by GET /.
type StatusResponse struct {
	ServiceEnv     EnvInfo `json:"service_env"`
	ExampleStatus  int     `json:"example_status"`
	ExampleExcerpt string  `json:"example_excerpt"`
}

// Handler serves the demo endpoints.
type Handler struct {
	targetURL string
	client    *http.Client
	log       *slog.Logger
}

// NewHandler returns a Handler that fetches targetURL on each request.
func NewHandler(targetURL string, log *slog.Logger) *Handler {
	if targetURL == "" {
		targetURL = constants.DemoTargetURL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		targetURL: targetURL,
		client:    &http.Client{Timeout: constants.UpstreamFetchTimeout},
		log:       log,
	}
}

// TargetURL returns the page the handler fetches.
func (h *Handler) TargetURL() string {
	return h.targetURL
}

// Routes builds the service router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/", h.handleRoot)
	r.Get("/healthz", h.handleHealth)
	return r
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, h.targetURL, nil)
	if err != nil {
		h.writeFetchError(w, err)
		return
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.writeFetchError(w, err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.ExcerptLimit))
	if err != nil {
		h.writeFetchError(w, err)
		return
	}

	h.log.Info("upstream fetched",
		"url", h.targetURL,
		"status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond))

	w.Header().Set("Content-Type", "application/json")
	// The upstream status is mirrored so a broken target page is visible
	// from the verifier without reading the body.
	w.WriteHeader(resp.StatusCode)
	json.NewEncoder(w).Encode(StatusResponse{
		ServiceEnv:     currentEnv(),
		ExampleStatus:  resp.StatusCode,
		ExampleExcerpt: string(body),
	})
}

// writeFetchError keeps the response shape of the success path so callers
// always get the same JSON document; the fetch failure shows up as a 500
// with the error text in the excerpt field.
func (h *Handler) writeFetchError(w http.ResponseWriter, err error) {
	h.log.Error("upstream fetch failed", "url", h.targetURL, "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(StatusResponse{
		ServiceEnv:     currentEnv(),
		ExampleStatus:  http.StatusInternalServerError,
		ExampleExcerpt: "ERROR_FETCHING: " + err.Error(),
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func currentEnv() EnvInfo {
	hostname, _ := os.Hostname()
	return EnvInfo{
		Service:  os.Getenv("K_SERVICE"),
		Revision: os.Getenv("K_REVISION"),
		Project:  os.Getenv("GCP_PROJECT"),
		Hostname: hostname,
	}
}
