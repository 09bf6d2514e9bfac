package vm

import "testing"

func TestTrim(t *testing.T) {
	tests := []struct {
		x    uint64
		n    uint
		want uint64
	}{
		{0xFFFFFFFF, 32, 0xFFFFFFFF},
		{0xFFFFFFFF, 8, 0xFF},
		{0x1234, 4, 0x4},
		{0xDEADBEEF, 0, 0},
	}
	for _, tt := range tests {
		if got := Trim(tt.x, tt.n); got != tt.want {
			t.Errorf("Trim(%#x, %d) = %#x, want %#x", tt.x, tt.n, got, tt.want)
		}
	}
}

func TestSext(t *testing.T) {
	tests := []struct {
		x    uint64
		n    uint
		want uint64
	}{
		{0xFFF, 12, 0xFFFFFFFFFFFFFFFF}, // -1 in 12 bits
		{0x7FF, 12, 0x7FF},              // positive, unaffected
		{0x800, 12, 0xFFFFFFFFFFFFF800}, // -2048 in 12 bits
		{0x1, 1, 0xFFFFFFFFFFFFFFFF},    // -1 in 1 bit
	}
	for _, tt := range tests {
		if got := Sext(tt.x, tt.n); got != tt.want {
			t.Errorf("Sext(%#x, %d) = %#x, want %#x", tt.x, tt.n, got, tt.want)
		}
	}
}

func TestSextTrimRoundTrip(t *testing.T) {
	// sext(trim(x, n), n) must equal the signed reinterpretation of x mod 2^n.
	for n := uint(1); n <= 32; n++ {
		for _, x := range []uint64{0, 1, 0xFFFFFFFF, 0x80000000, 0x12345678} {
			got := Sext(Trim(x, n), n)
			want := uint64(Signed(x, n))
			if got != want {
				t.Errorf("Sext(Trim(%#x,%d),%d) = %#x, want %#x", x, n, n, got, want)
			}
		}
	}
}

func TestSigned(t *testing.T) {
	tests := []struct {
		x     uint64
		width uint
		want  int64
	}{
		{0xFFFFFFFF, 32, -1},
		{0x80000000, 32, -2147483648},
		{0x7FFFFFFF, 32, 2147483647},
		{0x0, 32, 0},
		{0xFFFFFFFF, 64, 4294967295}, // the Open Question: width must be XLEN, not hardcoded 64
	}
	for _, tt := range tests {
		if got := Signed(tt.x, tt.width); got != tt.want {
			t.Errorf("Signed(%#x, %d) = %d, want %d", tt.x, tt.width, got, tt.want)
		}
	}
}

func TestSextXLEN32IsTrimIdentity(t *testing.T) {
	for _, x := range []uint64{0, 1, 0xFFFFFFFF, 0x80000000} {
		got := SextXLEN(x, 32)
		want := Trim32(x)
		if got != uint64(want) {
			t.Errorf("SextXLEN(%#x, 32) = %#x, want %#x", x, got, want)
		}
	}
}
