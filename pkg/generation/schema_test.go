package generation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Success(t *testing.T) {
	tests := []struct {
		name    string
		mode    HealthMode
		body    string
		story   string
		health  int
		options []string
	}{
		{
			name:    "absolute health",
			mode:    HealthModeAbsolute,
			body:    `{"story":"You wake in a desert.","health":90,"options":["Walk north","Dig"]}`,
			story:   "You wake in a desert.",
			health:  90,
			options: []string{"Walk north", "Dig"},
		},
		{
			name:    "delta health",
			mode:    HealthModeDelta,
			body:    `{"story":"A scorpion stings you.","health_difference":-15,"options":["Suck the venom","Keep walking"]}`,
			story:   "A scorpion stings you.",
			health:  -15,
			options: []string{"Suck the venom", "Keep walking"},
		},
		{
			name:    "empty options list is still valid",
			mode:    HealthModeAbsolute,
			body:    `{"story":"Silence.","health":100,"options":[]}`,
			story:   "Silence.",
			health:  100,
			options: []string{},
		},
		{
			name:    "surrounding whitespace and extra fields",
			mode:    HealthModeAbsolute,
			body:    "\n  {\"story\":\"s\",\"health\":5,\"options\":[\"a\"],\"mood\":\"grim\"}  \n",
			story:   "s",
			health:  5,
			options: []string{"a"},
		},
		{
			name:    "unknown mode falls back to absolute",
			mode:    HealthMode("weird"),
			body:    `{"story":"s","health":42,"options":["a","b"]}`,
			story:   "s",
			health:  42,
			options: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Decode(tt.mode, []byte(tt.body))
			require.True(t, result.OK(), "unexpected failure: %+v", result.Failure)
			assert.NoError(t, result.Err())
			assert.Equal(t, tt.story, result.Story)
			assert.Equal(t, tt.health, result.Health)
			assert.Equal(t, tt.options, result.Options)
		})
	}
}

func TestDecode_RoundTripFromStruct(t *testing.T) {
	in := map[string]any{
		"story":   "The dunes shift under a red sky.",
		"health":  73,
		"options": []string{"Climb the ridge", "Wait for night", "Follow the tracks"},
	}
	body, err := json.Marshal(in)
	require.NoError(t, err)

	result := Decode(HealthModeAbsolute, body)
	require.True(t, result.OK())
	assert.Equal(t, in["story"], result.Story)
	assert.Equal(t, in["health"], result.Health)
	assert.Equal(t, in["options"], result.Options)
}

func TestDecode_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		mode HealthMode
		body string
	}{
		{"empty body", HealthModeAbsolute, ""},
		{"whitespace body", HealthModeAbsolute, "   "},
		{"not json", HealthModeAbsolute, "Once upon a time"},
		{"json null", HealthModeAbsolute, "null"},
		{"json array", HealthModeAbsolute, `["story"]`},
		{"missing options", HealthModeAbsolute, `{"story":"s","health":90}`},
		{"missing story", HealthModeAbsolute, `{"health":90,"options":["a"]}`},
		{"missing health", HealthModeAbsolute, `{"story":"s","options":["a"]}`},
		{"null options", HealthModeAbsolute, `{"story":"s","health":90,"options":null}`},
		{"health is a string", HealthModeAbsolute, `{"story":"s","health":"ninety","options":["a"]}`},
		{"health is fractional", HealthModeAbsolute, `{"story":"s","health":90.5,"options":["a"]}`},
		{"options is a string", HealthModeAbsolute, `{"story":"s","health":90,"options":"a"}`},
		{"options contain numbers", HealthModeAbsolute, `{"story":"s","health":90,"options":[1,2]}`},
		{"story is an object", HealthModeAbsolute, `{"story":{},"health":90,"options":["a"]}`},
		{"truncated", HealthModeAbsolute, `{"story":"s","health":90,"opt`},
		{"trailing object", HealthModeAbsolute, `{"story":"s","health":90,"options":[]}{"story":"t"}`},
		{"delta response in absolute mode", HealthModeAbsolute, `{"story":"s","health_difference":-5,"options":["a"]}`},
		{"absolute response in delta mode", HealthModeDelta, `{"story":"s","health":80,"options":["a"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result Result
			assert.NotPanics(t, func() {
				result = Decode(tt.mode, []byte(tt.body))
			})
			require.False(t, result.OK())
			assert.Equal(t, FailureSchema, result.Failure.Kind)
			assert.NotEmpty(t, result.Failure.Reason)
			assert.True(t, errors.Is(result.Err(), ErrSchema))
		})
	}
}

func TestSchema_IsValidJSON(t *testing.T) {
	for _, mode := range []HealthMode{HealthModeAbsolute, HealthModeDelta} {
		t.Run(string(mode), func(t *testing.T) {
			var schema struct {
				Type       string                     `json:"type"`
				Properties map[string]json.RawMessage `json:"properties"`
				Required   []string                   `json:"required"`
			}
			require.NoError(t, json.Unmarshal(Schema(mode), &schema))
			assert.Equal(t, "object", schema.Type)
			assert.ElementsMatch(t, []string{"story", mode.HealthField(), "options"}, schema.Required)
			assert.Contains(t, schema.Properties, mode.HealthField())
		})
	}
}

func TestParseHealthMode(t *testing.T) {
	assert.Equal(t, HealthModeDelta, ParseHealthMode("delta"))
	assert.Equal(t, HealthModeDelta, ParseHealthMode(" Health_Difference "))
	assert.Equal(t, HealthModeAbsolute, ParseHealthMode("absolute"))
	assert.Equal(t, HealthModeAbsolute, ParseHealthMode(""))
}

func TestResult_Err(t *testing.T) {
	assert.NoError(t, Success(HealthModeAbsolute, "s", 1, nil).Err())

	err := Failed(FailureTransport, "connection refused").Err()
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Contains(t, err.Error(), "connection refused")

	tagged := Failed(FailureSchema, "bad").WithRequestID("req-1")
	assert.Equal(t, "req-1", tagged.RequestID)
	assert.True(t, errors.Is(tagged.Err(), ErrSchema))
}

func TestNewRequest(t *testing.T) {
	req := NewRequest(HealthModeDelta, "prompt text")
	assert.Equal(t, "prompt text", req.Prompt)
	assert.Equal(t, HealthModeDelta, req.Mode)
	assert.JSONEq(t, deltaSchema, string(req.Schema))
}
