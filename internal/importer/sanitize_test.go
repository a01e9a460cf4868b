package importer

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeJSON(t *testing.T) {
	payload := map[string]interface{}{
		"ok":   1.5,
		"nan":  math.NaN(),
		"inf":  math.Inf(1),
		"ninf": math.Inf(-1),
		"nested": map[string]interface{}{
			"bad":  math.NaN(),
			"good": "text",
		},
		"list": []interface{}{1.0, math.NaN(), "x"},
	}

	cleaned := SanitizeJSON(payload).(map[string]interface{})

	assert.Equal(t, 1.5, cleaned["ok"])
	assert.Nil(t, cleaned["nan"])
	assert.Nil(t, cleaned["inf"])
	assert.Nil(t, cleaned["ninf"])

	nested := cleaned["nested"].(map[string]interface{})
	assert.Nil(t, nested["bad"])
	assert.Equal(t, "text", nested["good"])

	list := cleaned["list"].([]interface{})
	assert.Equal(t, 1.0, list[0])
	assert.Nil(t, list[1])

	// The cleaned payload must encode without error
	_, err := json.Marshal(cleaned)
	require.NoError(t, err)
}

func TestSanitizeJSONScalars(t *testing.T) {
	assert.Equal(t, "s", SanitizeJSON("s"))
	assert.Equal(t, 42, SanitizeJSON(42))
	assert.Nil(t, SanitizeJSON(math.NaN()))
	assert.Nil(t, SanitizeJSON(nil))
}
