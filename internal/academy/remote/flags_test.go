package remote

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlagUnmarshal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"JSONTrue", `true`, true},
		{"JSONFalse", `false`, false},
		{"StringTrue", `"True"`, true},
		{"StringYes", `"Yes"`, true},
		{"StringNo", `"No"`, false},
		{"StringFalse", `"False"`, false},
		{"StringOne", `"1"`, true},
		{"Whitespace", `" yes "`, true},
		{"Empty", `""`, false},
		{"Garbage", `"maybe"`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var f Flag
			require.NoError(t, json.Unmarshal([]byte(tc.in), &f))
			require.Equal(t, tc.want, f.Bool())
		})
	}
}

func TestFlagUnmarshalRejectsNumbers(t *testing.T) {
	t.Parallel()

	var f Flag
	require.Error(t, json.Unmarshal([]byte(`42`), &f))
}
