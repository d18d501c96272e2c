package algorithm

import "testing"

func TestCipherSupported(t *testing.T) {
	cases := []struct {
		c    Cipher
		want bool
	}{
		{AES128, true},
		{AES192, true},
		{AES256, true},
		{TripleDES, true},
		{CAST5, false},
	}
	for _, tc := range cases {
		if got := tc.c.Supported(); got != tc.want {
			t.Errorf("%s.Supported() = %v, want %v", tc.c, got, tc.want)
		}
	}
}
