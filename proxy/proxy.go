// proxy/proxy.go
package proxy

import (
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// SetupClientProxy routes the client's outbound traffic through the given
// proxy URL. Corporate networks commonly require this for any host that is
// not localhost.
func SetupClientProxy(client *http.Client, proxyURL string, sugar *zap.SugaredLogger) error {
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		sugar.Errorw("Invalid proxy URL", "proxy_url", proxyURL, "error", err)
		return fmt.Errorf("invalid proxy URL %q: %w", proxyURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" && parsed.Scheme != "socks5" {
		return fmt.Errorf("unsupported proxy scheme %q", parsed.Scheme)
	}

	transport, ok := client.Transport.(*http.Transport)
	if !ok || transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}
	transport.Proxy = http.ProxyURL(parsed)
	client.Transport = transport

	sugar.Infow("Outbound proxy configured", "proxy_url", parsed.Redacted())
	return nil
}
