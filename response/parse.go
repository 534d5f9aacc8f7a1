// response/parse.go
package response

import "strings"

// parseHeader parses a Content-Type style header into its main media type and
// a map of parameters, e.g. "application/json; charset=utf-8" yields
// "application/json" and {"charset": "utf-8"}.
func parseHeader(header string) (string, map[string]string) {
	parts := strings.Split(header, ";")
	mediaType := strings.TrimSpace(strings.ToLower(parts[0]))

	params := make(map[string]string)
	for _, part := range parts[1:] {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 {
			key := strings.TrimSpace(strings.ToLower(kv[0]))
			value := strings.Trim(strings.TrimSpace(kv[1]), `"`)
			params[key] = value
		}
	}
	return mediaType, params
}
