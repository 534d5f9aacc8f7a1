// response/success_test.go
package response

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jbrendel/go-react/mocklogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSuccessResponse(statusCode int, contentType, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Header:     http.Header{"Content-Type": []string{contentType}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestHandleAPISuccessResponseJSON(t *testing.T) {
	resp := newSuccessResponse(http.StatusOK, "application/json; charset=utf-8", `{"message": "Hello World!"}`)

	var out struct {
		Message string `json:"message"`
	}
	err := HandleAPISuccessResponse(resp, &out, mocklogger.NewMockLogger().Sugar)

	require.NoError(t, err)
	assert.Equal(t, "Hello World!", out.Message)
}

func TestHandleAPISuccessResponseNilOut(t *testing.T) {
	resp := newSuccessResponse(http.StatusOK, "application/json", `{"ignored": true}`)
	err := HandleAPISuccessResponse(resp, nil, mocklogger.NewMockLogger().Sugar)
	assert.NoError(t, err)
}

func TestHandleAPISuccessResponseNoContent(t *testing.T) {
	var out struct{}
	resp := newSuccessResponse(http.StatusNoContent, "", "")
	err := HandleAPISuccessResponse(resp, &out, mocklogger.NewMockLogger().Sugar)
	assert.NoError(t, err)
}

func TestHandleAPISuccessResponseRawBytes(t *testing.T) {
	resp := newSuccessResponse(http.StatusOK, "application/octet-stream", "binary-ish payload")

	var out []byte
	err := HandleAPISuccessResponse(resp, &out, mocklogger.NewMockLogger().Sugar)

	require.NoError(t, err)
	assert.Equal(t, []byte("binary-ish payload"), out)
}

func TestHandleAPISuccessResponseWriter(t *testing.T) {
	resp := newSuccessResponse(http.StatusOK, "application/octet-stream", "streamed payload")

	var buf bytes.Buffer
	err := HandleAPISuccessResponse(resp, &buf, mocklogger.NewMockLogger().Sugar)

	require.NoError(t, err)
	assert.Equal(t, "streamed payload", buf.String())
}

func TestHandleAPISuccessResponseText(t *testing.T) {
	resp := newSuccessResponse(http.StatusOK, "text/plain", "pong")

	var out string
	err := HandleAPISuccessResponse(resp, &out, mocklogger.NewMockLogger().Sugar)

	require.NoError(t, err)
	assert.Equal(t, "pong", out)
}

func TestHandleAPISuccessResponseTextWrongTarget(t *testing.T) {
	resp := newSuccessResponse(http.StatusOK, "text/plain", "pong")

	var out struct{}
	err := HandleAPISuccessResponse(resp, &out, mocklogger.NewMockLogger().Sugar)
	assert.Error(t, err)
}

func TestHandleAPISuccessResponseXML(t *testing.T) {
	resp := newSuccessResponse(http.StatusOK, "application/xml", `<greeting><message>Hello World!</message></greeting>`)

	var out struct {
		Message string `xml:"message"`
	}
	err := HandleAPISuccessResponse(resp, &out, mocklogger.NewMockLogger().Sugar)

	require.NoError(t, err)
	assert.Equal(t, "Hello World!", out.Message)
}

func TestHandleAPISuccessResponseMissingContentTypeFallsBackToJSON(t *testing.T) {
	resp := newSuccessResponse(http.StatusOK, "", `{"message": "Hello World!"}`)

	var out map[string]string
	err := HandleAPISuccessResponse(resp, &out, mocklogger.NewMockLogger().Sugar)

	require.NoError(t, err)
	assert.Equal(t, "Hello World!", out["message"])
}

func TestHandleAPISuccessResponseUnsupportedContentType(t *testing.T) {
	resp := newSuccessResponse(http.StatusOK, "image/png", "not decodable")

	var out struct{}
	err := HandleAPISuccessResponse(resp, &out, mocklogger.NewMockLogger().Sugar)
	assert.Error(t, err)
}
