package bom

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
	}{
		{"4.7k", 4700},
		{"10k", 10000},
		{"100n", 100e-9},
		{"100nF", 100e-9},
		{"22p", 22e-12},
		{"10u", 10e-6},
		{"4.7µF", 4.7e-6},
		{"330m", 0.33},
		{"1M", 1e6},
		{"2G", 2e9},
		{"1T", 1e12},
		{"22", 22},
		{"1.5V", 1.5},
		{"10K", 10},
		{" 47 k ", 47000},
		{"4k7", 4000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, ParseValue(tt.in, ScaleSI), tt.want*1e-9)
		})
	}
}

func TestParseValue_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "k", "DNP", "LED", "a1", "1.2.3k", "NaN"} {
		v := ParseValue(in, ScaleSI)
		assert.True(t, IsInvalid(v), "value %q should be invalid, got %v", in, v)
	}
}

func TestParseValue_InvalidOrdersFirst(t *testing.T) {
	t.Parallel()

	bad := ParseValue("TBD", ScaleSI)
	for _, in := range []string{"-5V", "0", "1p", "1T"} {
		assert.Less(t, bad, ParseValue(in, ScaleSI), in)
	}
}

func TestParseValue_Legacy(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 47000, ParseValue("4.7k", ScaleLegacy), 1e-6)
	assert.InDelta(t, 1e7, ParseValue("1M", ScaleLegacy), 1e-3)
	assert.InDelta(t, 1e-10, ParseValue("1n", ScaleLegacy), 1e-20)
	assert.InDelta(t, 1e-4, ParseValue("1m", ScaleLegacy), 1e-12)
	assert.Equal(t, 100.0, ParseValue("100", ScaleLegacy))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	d, err := Classify("R101")
	require.NoError(t, err)
	assert.Equal(t, "R", d)

	d, err = Classify("SW12")
	require.NoError(t, err)
	assert.Equal(t, "SW", d)

	_, err = Classify("MOUNT")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnclassifiable))

	d, err = Classify("42")
	require.NoError(t, err)
	assert.Equal(t, "", d)

	_, err = Classify("")
	assert.True(t, errors.Is(err, ErrUnclassifiable))
}
