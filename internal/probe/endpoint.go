// HTTP endpoint probe — issues a bounded-timeout GET against the companion
// service's health-check URL and classifies the response.
package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/watchpost/sentinel/internal/models"
)

// EndpointProbe checks a single HTTP health-check URL.
type EndpointProbe struct {
	client *http.Client
	url    string
	logger *zap.Logger
}

// NewEndpointProbe creates an endpoint probe for the given URL with a
// per-request timeout.
func NewEndpointProbe(url string, timeout time.Duration, logger *zap.Logger) *EndpointProbe {
	return &EndpointProbe{
		client: &http.Client{
			Timeout: timeout,
		},
		url:    url,
		logger: logger,
	}
}

// Check performs one health-check request. It never returns an error: all
// network failures are converted into an unhealthy EndpointStatus.
func (e *EndpointProbe) Check(ctx context.Context) models.EndpointStatus {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return models.EndpointStatus{Healthy: false, Error: err.Error()}
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Error("Endpoint health check failed",
			zap.String("url", e.url),
			zap.Error(err))
		return models.EndpointStatus{Healthy: false, Error: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	elapsed := time.Since(start)

	if resp.StatusCode == http.StatusOK {
		return models.EndpointStatus{
			Healthy:      true,
			StatusCode:   resp.StatusCode,
			ResponseTime: elapsed.Seconds(),
		}
	}

	return models.EndpointStatus{
		Healthy:      false,
		StatusCode:   resp.StatusCode,
		ResponseTime: elapsed.Seconds(),
		Error:        "non-200 response",
	}
}
