package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	cases := []struct {
		raw   string
		value float64
		ok    bool
	}{
		{raw: "4.4%", value: 4.4, ok: true},
		{raw: "52.5 points", value: 52.5, ok: true},
		{raw: "-0.1", value: -0.1, ok: true},
		{raw: "+0.3%", value: 0.3, ok: true},
		{raw: "1,234.5", value: 1234.5, ok: true},
		{raw: "–0.5", value: -0.5, ok: true},
		{raw: "−2.1%", value: -2.1, ok: true},
		{raw: " 3 ", value: 3, ok: true},
		{raw: "", ok: false},
		{raw: "   ", ok: false},
		{raw: "n/a", ok: false},
		{raw: "pending", ok: false},
	}

	for _, test := range cases {
		value, ok := ParseValue(test.raw)
		require.Equal(t, test.ok, ok, "raw: %q", test.raw)
		if test.ok {
			require.InDelta(t, test.value, value, 1e-9, "raw: %q", test.raw)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "inflationratemom", NormalizeName("  Inflation Rate MoM\n"))
	require.Equal(t, "servicespmi", NormalizeName("Services  PMI"))
}

func TestMatchName(t *testing.T) {
	require.True(t, MatchName("Unemployment Rate", []string{"unemployment"}))
	require.False(t, MatchName("Interest Rate", []string{"unemployment"}))
}
