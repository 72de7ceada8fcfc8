package debugger

import (
	"testing"

	"github.com/kestrel-security/machtool/pkg/machkernel"
)

func TestRegistersGetSetZeroRegister(t *testing.T) {
	var r Registers
	r.Set(31, 0xdeadbeef)
	if got := r.Get(31); got != 0 {
		t.Fatalf("expected x31 (zero register) to read 0, got %#x", got)
	}
	r.Set(0, 0x1234)
	if got := r.Get(0); got != 0x1234 {
		t.Fatalf("expected x0 = 0x1234, got %#x", got)
	}
}

func TestRegistersNameAliases(t *testing.T) {
	cases := map[int]string{0: "x0", 28: "x28", 29: "fp", 30: "lr", 31: "sp"}
	for n, want := range cases {
		if got := Name(n); got != want {
			t.Fatalf("Name(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestRegistersSingleStepBitSetClear(t *testing.T) {
	var r Registers
	r.CPSR = 0x60000000
	if r.SingleStepEnabled() {
		t.Fatalf("expected single-step disabled initially")
	}

	r.SetSingleStep(true)
	if !r.SingleStepEnabled() {
		t.Fatalf("expected single-step enabled after SetSingleStep(true)")
	}
	if r.CPSR&0x60000000 != 0x60000000 {
		t.Fatalf("expected unrelated CPSR bits preserved, got %#x", r.CPSR)
	}

	r.SetSingleStep(false)
	if r.SingleStepEnabled() {
		t.Fatalf("expected single-step disabled after SetSingleStep(false)")
	}
}

func TestKernelStateRoundTrip(t *testing.T) {
	var r Registers
	for i := range r.X {
		r.X[i] = uint64(i) * 0x1111
	}
	r.SP = 0x7000000000
	r.PC = 0x100003f40
	r.CPSR = 0x60000000

	s := toKernelState(r)
	back := fromKernelState(s)
	if back != r {
		t.Fatalf("expected round trip to preserve registers, got %+v want %+v", back, r)
	}

	words := s.ToWords()
	if len(words) != machkernel.ARM64ThreadStateCount {
		t.Fatalf("expected %d words, got %d", machkernel.ARM64ThreadStateCount, len(words))
	}
	s2 := machkernel.ThreadStateFromWords(words)
	if s2 != s {
		t.Fatalf("expected word round trip to preserve state")
	}
}
