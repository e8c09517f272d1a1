package cpu

import "testing"

// TestAluAdd verifies ADD carry and overflow behavior for key cases.
func TestAluAdd(t *testing.T) {
	tests := []struct {
		a, b  uint16
		want  uint16
		wantC bool
		wantV bool
	}{
		{0, 0, 0, false, false},
		{1, 1, 2, false, false},
		{0xFFFF, 1, 0, true, false},
		{0x7FFF, 1, 0x8000, false, true},  // pos + pos = neg
		{0x8000, 0x8000, 0, true, true},   // neg + neg = pos
		{0xFFFF, 0xFFFF, 0xFFFE, true, false},
	}
	for _, tc := range tests {
		var f Flags
		got := aluAdd(&f, tc.a, tc.b)
		if got != tc.want {
			t.Errorf("ADD %04X + %04X = %04X, want %04X", tc.a, tc.b, got, tc.want)
		}
		if f.C != tc.wantC {
			t.Errorf("ADD %04X + %04X: C=%v, want %v", tc.a, tc.b, f.C, tc.wantC)
		}
		if f.V != tc.wantV {
			t.Errorf("ADD %04X + %04X: V=%v, want %v", tc.a, tc.b, f.V, tc.wantV)
		}
	}
}

// TestAluSub verifies SUB borrow and overflow behavior.
func TestAluSub(t *testing.T) {
	tests := []struct {
		a, b  uint16
		want  uint16
		wantC bool
		wantV bool
	}{
		{5, 3, 2, false, false},
		{0, 1, 0xFFFF, true, false}, // borrow
		{3, 3, 0, false, false},
		{0x8000, 1, 0x7FFF, false, true}, // neg - pos = pos
		{0x7FFF, 0xFFFF, 0x8000, true, true},
	}
	for _, tc := range tests {
		var f Flags
		got := aluSub(&f, tc.a, tc.b)
		if got != tc.want {
			t.Errorf("SUB %04X - %04X = %04X, want %04X", tc.a, tc.b, got, tc.want)
		}
		if f.C != tc.wantC {
			t.Errorf("SUB %04X - %04X: C=%v, want %v", tc.a, tc.b, f.C, tc.wantC)
		}
		if f.V != tc.wantV {
			t.Errorf("SUB %04X - %04X: V=%v, want %v", tc.a, tc.b, f.V, tc.wantV)
		}
	}
}

// TestLogicClearsCV verifies the logic ops clear carry and overflow.
func TestLogicClearsCV(t *testing.T) {
	ops := []struct {
		name string
		fn   func(*Flags, uint16, uint16) uint16
		a, b uint16
		want uint16
	}{
		{"AND", aluAnd, 0xFF0F, 0x0FF0, 0x0F00},
		{"OR", aluOr, 0xF000, 0x000F, 0xF00F},
		{"XOR", aluXor, 0xFFFF, 0x0F0F, 0xF0F0},
	}
	for _, op := range ops {
		f := Flags{C: true, V: true}
		got := op.fn(&f, op.a, op.b)
		if got != op.want {
			t.Errorf("%s %04X, %04X = %04X, want %04X", op.name, op.a, op.b, got, op.want)
		}
		if f.C || f.V {
			t.Errorf("%s left C=%v V=%v, want both clear", op.name, f.C, f.V)
		}
	}

	f := Flags{C: true, V: true}
	if got := aluNot(&f, 0x00FF); got != 0xFF00 {
		t.Errorf("NOT 00FF = %04X, want FF00", got)
	}
	if f.C || f.V {
		t.Errorf("NOT left C=%v V=%v, want both clear", f.C, f.V)
	}
}

// TestAluShl verifies left-shift carry semantics, including the
// shift-by-zero carve-out that preserves C.
func TestAluShl(t *testing.T) {
	tests := []struct {
		a, amount uint16
		preC      bool
		want      uint16
		wantC     bool
	}{
		{0x0001, 1, false, 0x0002, false},
		{0x8000, 1, false, 0x0000, true},
		{0xC000, 1, false, 0x8000, true},
		{0x0001, 15, false, 0x8000, false},
		{0x0003, 15, false, 0x8000, true},
		{0x1234, 0, true, 0x1234, true},   // sh==0 preserves C
		{0x1234, 0, false, 0x1234, false}, // sh==0 preserves C
		{0x8000, 16, true, 0x8000, true},  // amount masked to 0
	}
	for _, tc := range tests {
		f := Flags{C: tc.preC}
		got := aluShl(&f, tc.a, tc.amount)
		if got != tc.want {
			t.Errorf("SHL %04X by %d = %04X, want %04X", tc.a, tc.amount, got, tc.want)
		}
		if f.C != tc.wantC {
			t.Errorf("SHL %04X by %d: C=%v, want %v", tc.a, tc.amount, f.C, tc.wantC)
		}
		if f.V {
			t.Errorf("SHL %04X by %d: V set, want clear", tc.a, tc.amount)
		}
	}
}

// TestAluShr verifies logical right-shift carry semantics.
func TestAluShr(t *testing.T) {
	tests := []struct {
		a, amount uint16
		preC      bool
		want      uint16
		wantC     bool
	}{
		{0x0002, 1, false, 0x0001, false},
		{0x0001, 1, false, 0x0000, true},
		{0x0003, 1, false, 0x0001, true},
		{0x8000, 15, false, 0x0001, false},
		{0x8001, 0, true, 0x8001, true}, // sh==0 preserves C
	}
	for _, tc := range tests {
		f := Flags{C: tc.preC}
		got := aluShr(&f, tc.a, tc.amount)
		if got != tc.want {
			t.Errorf("SHR %04X by %d = %04X, want %04X", tc.a, tc.amount, got, tc.want)
		}
		if f.C != tc.wantC {
			t.Errorf("SHR %04X by %d: C=%v, want %v", tc.a, tc.amount, f.C, tc.wantC)
		}
	}
}

// TestAluMul verifies the carry reflects a product wider than 16 bits.
func TestAluMul(t *testing.T) {
	tests := []struct {
		a, b  uint16
		want  uint16
		wantC bool
	}{
		{2, 3, 6, false},
		{0, 0xFFFF, 0, false},
		{0x8000, 2, 0, true},
		{0xFFFF, 0xFFFF, 0x0001, true},
		{0x0100, 0x0100, 0x0000, true},
	}
	for _, tc := range tests {
		var f Flags
		got := aluMul(&f, tc.a, tc.b)
		if got != tc.want {
			t.Errorf("MUL %04X * %04X = %04X, want %04X", tc.a, tc.b, got, tc.want)
		}
		if f.C != tc.wantC {
			t.Errorf("MUL %04X * %04X: C=%v, want %v", tc.a, tc.b, f.C, tc.wantC)
		}
		if f.V {
			t.Errorf("MUL %04X * %04X: V set, want clear", tc.a, tc.b)
		}
	}
}

// TestSetZN verifies Z/N recomputation from stored values.
func TestSetZN(t *testing.T) {
	tests := []struct {
		v     uint16
		wantZ bool
		wantN bool
	}{
		{0, true, false},
		{1, false, false},
		{0x8000, false, true},
		{0xFFFF, false, true},
	}
	for _, tc := range tests {
		var f Flags
		f.setZN(tc.v)
		if f.Z != tc.wantZ || f.N != tc.wantN {
			t.Errorf("setZN(%04X): Z=%v N=%v, want Z=%v N=%v", tc.v, f.Z, f.N, tc.wantZ, tc.wantN)
		}
	}
}
