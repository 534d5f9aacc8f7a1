// response/success.go
package response

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// contentHandler unmarshals a response body of one media type into out.
type contentHandler func(reader io.Reader, out interface{}, sugar *zap.SugaredLogger) error

// responseUnmarshallers maps media types to the handler that decodes them.
// JSON is the native format of the API server; the rest cover other
// well-behaved services a client built on this package may talk to.
var responseUnmarshallers = map[string]contentHandler{
	"application/json": unmarshalJSONResponse,
	"application/xml":  unmarshalXMLResponse,
	"text/xml":         unmarshalXMLResponse,
	"text/plain":       unmarshalTextResponse,
}

// HandleAPISuccessResponse reads a 2xx response and decodes its body into out.
// A nil out, or a response with no content, drains the body and returns nil.
// out may be a *[]byte or io.Writer to capture the body verbatim, a *string
// for text responses, or any JSON/XML-unmarshalable value otherwise.
func HandleAPISuccessResponse(resp *http.Response, out interface{}, sugar *zap.SugaredLogger) error {
	if out == nil || resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusResetContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	// Callers wanting the raw bytes bypass content-type handling.
	switch target := out.(type) {
	case *[]byte:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}
		*target = data
		return nil
	case io.Writer:
		if _, err := io.Copy(target, resp.Body); err != nil {
			return fmt.Errorf("failed to stream response body: %w", err)
		}
		return nil
	}

	mediaType, _ := parseHeader(resp.Header.Get("Content-Type"))
	handler, ok := responseUnmarshallers[mediaType]
	if !ok {
		// An API answering 2xx with an unregistered media type is still most
		// likely JSON from a misconfigured layer; try that before giving up.
		if strings.Contains(mediaType, "json") || mediaType == "" {
			handler = unmarshalJSONResponse
		} else {
			sugar.Warnw("Unsupported response content type", "content_type", mediaType)
			return fmt.Errorf("unsupported response content type: %s", mediaType)
		}
	}
	return handler(resp.Body, out, sugar)
}

func unmarshalJSONResponse(reader io.Reader, out interface{}, sugar *zap.SugaredLogger) error {
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(out); err != nil {
		sugar.Errorw("Failed to decode JSON response", "error", err)
		return fmt.Errorf("failed to decode JSON response: %w", err)
	}
	return nil
}

func unmarshalXMLResponse(reader io.Reader, out interface{}, sugar *zap.SugaredLogger) error {
	decoder := xml.NewDecoder(reader)
	if err := decoder.Decode(out); err != nil {
		sugar.Errorw("Failed to decode XML response", "error", err)
		return fmt.Errorf("failed to decode XML response: %w", err)
	}
	return nil
}

// unmarshalTextResponse requires out to be a *string.
func unmarshalTextResponse(reader io.Reader, out interface{}, sugar *zap.SugaredLogger) error {
	target, ok := out.(*string)
	if !ok {
		return fmt.Errorf("text responses require a *string target, got %T", out)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		sugar.Errorw("Failed to read text response", "error", err)
		return fmt.Errorf("failed to read text response: %w", err)
	}
	*target = string(data)
	return nil
}
