package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is returned when a model response cannot be decoded
// into the structure a stage expects, after fence stripping.
var ErrMalformedResponse = errors.New("malformed model response")

// stripFences removes a surrounding markdown code fence from raw model
// output. Models routinely wrap JSON in ```json blocks even when asked for
// a bare object.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseResponse decodes raw model output into v. Decode failures are
// reported as ErrMalformedResponse with the stage name for context.
func parseResponse(stage, raw string, v any) error {
	if err := json.Unmarshal([]byte(stripFences(raw)), v); err != nil {
		return fmt.Errorf("%s: %w: %v", stage, ErrMalformedResponse, err)
	}
	return nil
}
