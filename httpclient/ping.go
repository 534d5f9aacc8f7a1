// httpclient/ping.go
package httpclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jbrendel/go-react/headers"
	"github.com/jbrendel/go-react/response"
	"github.com/jbrendel/go-react/status"
)

// Ping probes the server's health endpoint. The request is sent anonymously,
// so it answers "is the server reachable" without consuming or refreshing any
// stored credentials.
func (c *Client) Ping(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(c.config.HealthEndpoint), nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}

	headerHandler := headers.NewHeaderHandler(req, c.Sugar, "", c.config.HideSensitiveData)
	headerHandler.SetRequestHeaders("")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if !status.IsSuccessStatusCode(resp.StatusCode) {
		return response.HandleAPIErrorResponse(resp, c.Sugar)
	}

	c.Sugar.Debugw("Health probe succeeded", "status_code", resp.StatusCode)
	return nil
}
