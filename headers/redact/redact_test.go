// headers/redact/redact_test.go
package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactSensitiveHeaderData(t *testing.T) {
	tests := []struct {
		name              string
		hideSensitiveData bool
		key               string
		value             string
		want              string
	}{
		{name: "authorization redacted when hiding", hideSensitiveData: true, key: "Authorization", value: "Bearer abc123", want: "REDACTED"},
		{name: "authorization kept when not hiding", hideSensitiveData: false, key: "Authorization", value: "Bearer abc123", want: "Bearer abc123"},
		{name: "cookie redacted when hiding", hideSensitiveData: true, key: "Cookie", value: "session=xyz", want: "REDACTED"},
		{name: "plain header kept when hiding", hideSensitiveData: true, key: "Content-Type", value: "application/json", want: "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RedactSensitiveHeaderData(tt.hideSensitiveData, tt.key, tt.value)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRedactToken(t *testing.T) {
	assert.Equal(t, "raw-token-value", RedactToken(false, "raw-token-value"))
	assert.Equal(t, "REDACTED", RedactToken(true, "short"))
	assert.Equal(t, "eyJhbGci...REDACTED", RedactToken(true, "eyJhbGciOiJIUzI1NiJ9.payload.sig"))
}
