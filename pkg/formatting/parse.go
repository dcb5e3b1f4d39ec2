// Package formatting provides JSON parsing helpers shared by the CLI entry
// points and event intake handlers.
package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParseFailed is returned when content cannot be parsed as JSON.
var ErrParseFailed = errors.New("failed to parse content")

// Parse unmarshals content as JSON into T. EventBridge and Step Functions
// occasionally deliver the detail payload as a JSON-encoded string; if direct
// parsing fails and the content is a quoted string, the inner document is
// parsed instead. Returns ErrParseFailed if both attempts fail.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	var inner string
	if err := json.Unmarshal([]byte(content), &inner); err == nil {
		if err := json.Unmarshal([]byte(inner), &result); err == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, truncate(content, 256))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
