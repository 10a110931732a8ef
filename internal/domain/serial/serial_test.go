//go:build unit

package serial_test

import (
	"testing"

	"packtrack/internal/domain/serial"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCode(t *testing.T) {
	t.Run("decodes fixed-width segments", func(t *testing.T) {
		code, err := serial.ParseCode("123456789010451234567890")
		require.NoError(t, err)

		assert.Equal(t, "1234", code.GameCode())
		assert.Equal(t, "5678901", code.PackNumber())
		assert.Equal(t, "045", code.Segment().String())
	})

	t.Run("preserves leading zeros", func(t *testing.T) {
		code, err := serial.ParseCode("000100234560070000000000")
		require.NoError(t, err)

		assert.Equal(t, "0001", code.GameCode())
		assert.Equal(t, "0023456", code.PackNumber())
		assert.Equal(t, "007", code.Segment().String())
		assert.Equal(t, 7, code.Segment().Int())
	})

	t.Run("prefix round-trip", func(t *testing.T) {
		raws := []string{
			"000112345670123456789012",
			"999999999999990000000000",
			"040401234560001111111111",
		}
		for _, raw := range raws {
			code, err := serial.ParseCode(raw)
			require.NoError(t, err)
			assert.Equal(t, raw[:14], code.GameCode()+code.PackNumber()+code.Segment().String())
		}
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		cases := []struct {
			name string
			raw  string
		}{
			{"empty", ""},
			{"too short", "12345678901234567890123"},
			{"too long", "1234567890123456789012345"},
			{"non-numeric", "12345678901234567890123a"},
			{"embedded space", "123456789012 34567890123"},
			{"unicode digit lookalike", "12345678901234567890123٣"},
		}
		for _, tt := range cases {
			t.Run(tt.name, func(t *testing.T) {
				_, err := serial.ParseCode(tt.raw)
				assert.ErrorIs(t, err, serial.ErrInvalidFormat)
				assert.False(t, serial.IsValidCode(tt.raw))
			})
		}
	})
}

func TestNewSerial(t *testing.T) {
	cases := []struct {
		name  string
		value string
		errIs error
	}{
		{name: "all zeros", value: "000"},
		{name: "max", value: "999"},
		{name: "too short", value: "12", errIs: serial.ErrInvalidSerial},
		{name: "too long", value: "0123", errIs: serial.ErrInvalidSerial},
		{name: "non-numeric", value: "0a1", errIs: serial.ErrInvalidSerial},
		{name: "empty", value: "", errIs: serial.ErrInvalidSerial},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			s, err := serial.NewSerial(tt.value)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, s.String())
		})
	}
}

func TestSerialAdvance(t *testing.T) {
	s := serial.MustSerial("010")

	end, err := s.Advance(149)
	require.NoError(t, err)
	assert.Equal(t, "159", end.String())

	_, err = s.Advance(1000)
	assert.ErrorIs(t, err, serial.ErrInvalidSerial)
}

func TestTicketCount(t *testing.T) {
	cases := []struct {
		name     string
		opening  string
		closing  string
		expected int
	}{
		{name: "same serial counts one ticket", opening: "042", closing: "042", expected: 1},
		{name: "inclusive of both endpoints", opening: "000", closing: "014", expected: 15},
		{name: "inverted range clamps to zero", opening: "050", closing: "025", expected: 0},
		{name: "full pack", opening: "000", closing: "149", expected: 150},
		{name: "adjacent serials", opening: "099", closing: "100", expected: 2},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := serial.TicketCount(serial.MustSerial(tt.opening), serial.MustSerial(tt.closing))
			assert.Equal(t, tt.expected, got)
		})
	}
}
