package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pointSchema = `{
  "type": "object",
  "required": ["latitude", "longitude"],
  "properties": {
    "latitude":  {"type": "number", "minimum": -90, "maximum": 90},
    "longitude": {"type": "number", "minimum": -180, "maximum": 180}
  }
}`

func TestSchema_ValidateValue(t *testing.T) {
	s := MustCompile(pointSchema)

	tests := []struct {
		name      string
		doc       map[string]interface{}
		wantValid bool
		badField  string
	}{
		{"valid", map[string]interface{}{"latitude": 13.75, "longitude": 100.5}, true, ""},
		{"missing longitude", map[string]interface{}{"latitude": 13.75}, false, "(root)"},
		{"latitude out of range", map[string]interface{}{"latitude": 91.0, "longitude": 0.0}, false, "latitude"},
		{"wrong type", map[string]interface{}{"latitude": "north", "longitude": 0.0}, false, "latitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.ValidateValue(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, res.Valid)
			if !tt.wantValid {
				assert.True(t, res.HasErrors(tt.badField), res.GetErrorMessages())
			}
		})
	}
}

func TestSchema_ValidateBytes(t *testing.T) {
	s := MustCompile(pointSchema)

	res, err := s.ValidateBytes([]byte(`{"latitude": 1, "longitude": 2}`))
	require.NoError(t, err)
	assert.True(t, res.Valid)

	_, err = s.ValidateBytes([]byte(`{not json`))
	assert.Error(t, err)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}
