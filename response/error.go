// response/error.go
package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/antchfx/xmlquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// APIError represents a failure response from the API server in a structured
// format. The server side of this project answers in JSON, but proxies, load
// balancers and framework debug modes answer in XML, HTML or plain text, so
// all four are parsed into the same shape.
type APIError struct {
	StatusCode  int                 // HTTP status code of the failure
	Method      string              // HTTP method of the original request
	URL         string              // URL of the original request
	Message     string              // Human-readable summary of the failure
	Code        string              // Machine-readable error code, e.g. "token_not_valid"
	FieldErrors map[string][]string // Per-field validation messages, passed through for display
	Raw         string              // Truncated raw body when no structured message could be extracted
}

// maxRawBodyLength caps how much of an unparseable body is retained on the error.
const maxRawBodyLength = 2048

// Error returns a string representation of the APIError, implementing the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error: %s %s: %d %s", e.Method, e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error: %s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// HandleAPIErrorResponse reads a non-2xx response and parses its body into an
// APIError. The parser is chosen from the Content-Type header: JSON bodies are
// unpacked into message/code/field errors, XML and HTML bodies are scraped for
// their human-readable message, anything else is kept as raw text.
func HandleAPIErrorResponse(resp *http.Response, sugar *zap.SugaredLogger) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
	}
	if resp.Request != nil {
		apiErr.Method = resp.Request.Method
		apiErr.URL = resp.Request.URL.String()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr.Message = "failed to read API error response body"
		sugar.Errorw("Failed to read API error response body", "error", err, "status_code", resp.StatusCode)
		return apiErr
	}

	mediaType, _ := parseHeader(resp.Header.Get("Content-Type"))
	switch {
	case strings.Contains(mediaType, "application/json"):
		parseJSONResponse(body, apiErr)
	case strings.Contains(mediaType, "xml"):
		parseXMLResponse(body, apiErr)
	case strings.Contains(mediaType, "text/html"):
		parseHTMLResponse(body, apiErr)
	default:
		parseTextResponse(body, apiErr)
	}

	sugar.Warnw("Received an API error response",
		"method", apiErr.Method,
		"url", apiErr.URL,
		"status_code", apiErr.StatusCode,
		"error_code", apiErr.Code,
		"message", apiErr.Message,
	)
	return apiErr
}

// parseJSONResponse unpacks a JSON error body. The shapes produced by the API
// server are {"detail": "...", "code": "..."} for auth failures and
// {"field": ["problem", ...], ...} for validation failures; "message" and
// "error" keys from other JSON-speaking layers are accepted as fallbacks.
func parseJSONResponse(body []byte, apiErr *APIError) {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		parseTextResponse(body, apiErr)
		return
	}

	for key, value := range payload {
		switch key {
		case "detail", "message", "error":
			if s, ok := value.(string); ok && apiErr.Message == "" {
				apiErr.Message = s
			}
		case "code":
			if s, ok := value.(string); ok {
				apiErr.Code = s
			}
		default:
			// Array-valued keys are per-field validation messages.
			items, ok := value.([]interface{})
			if !ok {
				continue
			}
			var messages []string
			for _, item := range items {
				if s, ok := item.(string); ok {
					messages = append(messages, s)
				}
			}
			if len(messages) > 0 {
				if apiErr.FieldErrors == nil {
					apiErr.FieldErrors = make(map[string][]string)
				}
				apiErr.FieldErrors[key] = messages
			}
		}
	}

	if apiErr.Message == "" && len(apiErr.FieldErrors) > 0 {
		apiErr.Message = "request validation failed"
	}
	if apiErr.Message == "" {
		parseTextResponse(body, apiErr)
	}
}

// parseXMLResponse scrapes an XML error body for a message. Reverse proxies
// and storage gateways commonly answer with <Error><Message>...</Message></Error>.
func parseXMLResponse(body []byte, apiErr *APIError) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		parseTextResponse(body, apiErr)
		return
	}

	for _, expr := range []string{"//Message", "//message", "//detail", "//Error"} {
		if node := xmlquery.FindOne(doc, expr); node != nil {
			text := strings.TrimSpace(node.InnerText())
			if text != "" {
				apiErr.Message = text
				break
			}
		}
	}
	if node := xmlquery.FindOne(doc, "//Code"); node != nil {
		apiErr.Code = strings.TrimSpace(node.InnerText())
	}
	if apiErr.Message == "" {
		parseTextResponse(body, apiErr)
	}
}

// parseHTMLResponse scrapes an HTML error page for its message. Framework
// debug pages put the exception summary in <title>; plainer error pages put
// it in the first paragraph.
func parseHTMLResponse(body []byte, apiErr *APIError) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		parseTextResponse(body, apiErr)
		return
	}

	var title, paragraph string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if title == "" {
					title = strings.TrimSpace(nodeText(n))
				}
			case "p":
				if paragraph == "" {
					paragraph = strings.TrimSpace(nodeText(n))
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	switch {
	case title != "":
		apiErr.Message = title
	case paragraph != "":
		apiErr.Message = paragraph
	default:
		parseTextResponse(body, apiErr)
	}
}

// nodeText collects the text content beneath an HTML node.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}

// parseTextResponse keeps the raw body, truncated, as the error context.
func parseTextResponse(body []byte, apiErr *APIError) {
	raw := strings.TrimSpace(string(body))
	if len(raw) > maxRawBodyLength {
		raw = raw[:maxRawBodyLength]
	}
	apiErr.Raw = raw
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(apiErr.StatusCode)
	}
}
