package generation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// HealthMode selects how the service reports health. A deployment uses exactly one.
type HealthMode string

const (
	// HealthModeAbsolute: the service reports the character's total remaining health.
	HealthModeAbsolute HealthMode = "absolute"
	// HealthModeDelta: the service reports the signed change to apply.
	HealthModeDelta HealthMode = "delta"
)

// ParseHealthMode maps a mode name to a HealthMode, defaulting to absolute.
func ParseHealthMode(s string) HealthMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delta", "difference", "health_difference":
		return HealthModeDelta
	default:
		return HealthModeAbsolute
	}
}

// HealthField is the JSON key carrying health for the mode.
func (m HealthMode) HealthField() string {
	if m == HealthModeDelta {
		return "health_difference"
	}
	return "health"
}

const absoluteSchema = `{
  "type": "object",
  "properties": {
    "story": {"type": "string"},
    "health": {"type": "integer"},
    "options": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["story", "health", "options"]
}`

const deltaSchema = `{
  "type": "object",
  "properties": {
    "story": {"type": "string"},
    "health_difference": {"type": "integer"},
    "options": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["story", "health_difference", "options"]
}`

// Schema returns the JSON schema the service must answer with in mode m.
func Schema(m HealthMode) json.RawMessage {
	if m == HealthModeDelta {
		return json.RawMessage(deltaSchema)
	}
	return json.RawMessage(absoluteSchema)
}

// wireResponse uses pointers so a missing field can be told apart from a zero value.
type wireResponse struct {
	Story            *string   `json:"story"`
	Health           *int      `json:"health"`
	HealthDifference *int      `json:"health_difference"`
	Options          *[]string `json:"options"`
}

// Decode validates body against the schema for mode and returns a Result.
// It never panics: any violation comes back as a FailureSchema result.
func Decode(mode HealthMode, body []byte) Result {
	if mode != HealthModeDelta {
		mode = HealthModeAbsolute
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Failed(FailureSchema, "empty response body")
	}

	var wire wireResponse
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := dec.Decode(&wire); err != nil {
		return Failed(FailureSchema, fmt.Sprintf("invalid response JSON: %v", err))
	}
	if dec.More() {
		return Failed(FailureSchema, "unexpected data after response object")
	}

	if wire.Story == nil {
		return Failed(FailureSchema, `missing field "story"`)
	}
	if wire.Options == nil {
		return Failed(FailureSchema, `missing field "options"`)
	}

	var health *int
	switch mode {
	case HealthModeDelta:
		health = wire.HealthDifference
	default:
		health = wire.Health
	}
	if health == nil {
		return Failed(FailureSchema, fmt.Sprintf("missing field %q", mode.HealthField()))
	}

	options := make([]string, len(*wire.Options))
	copy(options, *wire.Options)

	return Success(mode, *wire.Story, *health, options)
}
