package bytes

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMarshal(t *testing.T) {
	type TestStruct struct {
		B1 []byte   `json:"b1"`
		B2 HexBytes `json:"b2"`
	}

	cases := []struct {
		input    []byte
		expected string
	}{
		{[]byte(`a`), `{"b1":"YQ==","b2":"61"}`},
		{[]byte(`abc`), `{"b1":"YWJj","b2":"616263"}`},
	}

	for i, tc := range cases {
		tc := tc
		t.Run(fmt.Sprintf("Case %d", i), func(t *testing.T) {
			ts := TestStruct{B1: tc.input, B2: tc.input}

			// Test that it marshals correctly to JSON.
			jsonBytes, err := json.Marshal(ts)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(jsonBytes))

			// Test that unmarshaling works correctly.
			ts2 := TestStruct{}
			require.NoError(t, json.Unmarshal(jsonBytes, &ts2))
			assert.Equal(t, ts.B1, ts2.B1)
			assert.Equal(t, ts.B2, ts2.B2)
		})
	}
}

func TestHexBytesFormat(t *testing.T) {
	bz := HexBytes([]byte{0xde, 0xad, 0xbe, 0xef})
	assert.Equal(t, "DEADBEEF", fmt.Sprintf("%v", bz))
	assert.Equal(t, "DEADBEEF", bz.String())
}
