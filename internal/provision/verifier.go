package provision

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/wajahatashraf/gcp-setup/internal/constants"
)

// VerificationReport records the outcome of checking a freshly deployed
// service. A failed check populates Err; it never aborts setup.
type VerificationReport struct {
	URL        string
	StatusCode int
	Excerpt    string
	Duration   time.Duration
	Err        string
}

// OK reports whether the check returned HTTP 200.
func (r *VerificationReport) OK() bool {
	return r.Err == "" && r.StatusCode == http.StatusOK
}

// Verifier issues a single GET against a deployed service URL.
type Verifier struct {
	client *http.Client
	log    *slog.Logger
}

// NewVerifier returns a Verifier with the standard check timeout.
func NewVerifier(log *slog.Logger) *Verifier {
	if log == nil {
		log = slog.Default()
	}
	return &Verifier{
		client: &http.Client{Timeout: constants.VerificationTimeout},
		log:    log,
	}
}

// Verify fetches the URL and returns a report with the status code and a
// bounded body excerpt. Network errors, timeouts, and non-200 statuses are
// all recorded in the report rather than returned.
func (v *Verifier) Verify(ctx context.Context, url string) *VerificationReport {
	report := &VerificationReport{URL: url}
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		report.Err = err.Error()
		report.Duration = time.Since(start)
		return report
	}

	resp, err := v.client.Do(req)
	report.Duration = time.Since(start)
	if err != nil {
		report.Err = err.Error()
		v.log.Warn("service verification failed", "url", url, "error", err)
		return report
	}
	defer resp.Body.Close()

	report.StatusCode = resp.StatusCode
	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.ExcerptLimit))
	if err != nil {
		report.Err = err.Error()
		return report
	}
	report.Excerpt = string(body)

	v.log.Info("service verified",
		"url", url,
		"status", resp.StatusCode,
		"duration", report.Duration.Round(time.Millisecond))
	return report
}
