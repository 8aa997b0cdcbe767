package storage

import "testing"

func TestFormatSerialZeroPads(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value int64
		want  string
	}{
		{1, "0001"},
		{42, "0042"},
		{999, "0999"},
		{9999, "9999"},
		{10000, "10000"},
	}
	for _, tc := range cases {
		if got := FormatSerial(tc.value); got != tc.want {
			t.Fatalf("FormatSerial(%d) = %q, want %q", tc.value, got, tc.want)
		}
	}
}
