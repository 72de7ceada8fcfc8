package debugger

import (
	"bytes"
	"testing"
)

// fakeMemory is an in-process byte-addressable memory used to exercise the
// breakpoint manager without a live kernel or task port.
type fakeMemory struct {
	bytes map[uint64][]byte
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{bytes: make(map[uint64][]byte)}
}

func (f *fakeMemory) poke(address uint64, data []byte) {
	f.bytes[address] = append([]byte(nil), data...)
}

func (f *fakeMemory) readMemory(address uint64, size uint64) ([]byte, error) {
	b, ok := f.bytes[address]
	if !ok || uint64(len(b)) < size {
		return nil, &ErrMemoryReadFailed{Address: address, Size: size}
	}
	return append([]byte(nil), b[:size]...), nil
}

func (f *fakeMemory) writeMemory(address uint64, data []byte) error {
	existing := f.bytes[address]
	if existing == nil {
		existing = make([]byte, len(data))
	}
	copy(existing, data)
	f.bytes[address] = existing
	return nil
}

func TestBreakpointSetWritesTrapAndPreservesOriginal(t *testing.T) {
	mem := newFakeMemory()
	original := []byte{0x20, 0x00, 0x02, 0x8b} // add x0,x1,x2
	mem.poke(0x100003f40, original)

	mgr := newBreakpointManager(mem)
	id, err := mgr.set(0x100003f40)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected id 1, got %d", id)
	}

	trap := trapBytes()
	got, _ := mem.readMemory(0x100003f40, 4)
	if !bytes.Equal(got, trap[:]) {
		t.Fatalf("expected trap bytes %x installed, got %x", trap, got)
	}

	bp := mgr.byID[id]
	if !bytes.Equal(bp.Original[:], original) {
		t.Fatalf("expected original bytes %x recorded, got %x", original, bp.Original)
	}
}

func TestBreakpointSetIsIdempotent(t *testing.T) {
	mem := newFakeMemory()
	mem.poke(0x1000, []byte{1, 2, 3, 4})
	mgr := newBreakpointManager(mem)

	id1, err := mgr.set(0x1000)
	if err != nil {
		t.Fatalf("first set: %v", err)
	}
	id2, err := mgr.set(0x1000)
	if err != nil {
		t.Fatalf("second set: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected idempotent set to return same id, got %d and %d", id1, id2)
	}
	if len(mgr.list()) != 1 {
		t.Fatalf("expected exactly one breakpoint, got %d", len(mgr.list()))
	}
}

func TestBreakpointRemoveRestoresOriginalBytes(t *testing.T) {
	mem := newFakeMemory()
	original := []byte{0xaa, 0xbb, 0xcc, 0xdd}
	mem.poke(0x2000, original)
	mgr := newBreakpointManager(mem)

	id, err := mgr.set(0x2000)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := mgr.remove(id); err != nil {
		t.Fatalf("remove: %v", err)
	}

	got, _ := mem.readMemory(0x2000, 4)
	if !bytes.Equal(got, original) {
		t.Fatalf("expected original bytes %x restored, got %x", original, got)
	}
	if len(mgr.list()) != 0 {
		t.Fatalf("expected breakpoint removed from list")
	}
}

func TestBreakpointHitIncrementsCounterOnlyWhenEnabled(t *testing.T) {
	mem := newFakeMemory()
	mem.poke(0x3000, []byte{0, 0, 0, 0})
	mgr := newBreakpointManager(mem)

	id, _ := mgr.set(0x3000)

	bp, ok := mgr.hit(0x3000)
	if !ok || bp.ID != id {
		t.Fatalf("expected hit to find breakpoint %d", id)
	}
	if bp.Hits != 1 {
		t.Fatalf("expected 1 hit, got %d", bp.Hits)
	}

	if err := mgr.disable(id); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if _, ok := mgr.hit(0x3000); ok {
		t.Fatalf("disabled breakpoint should not register a hit")
	}

	if err := mgr.enable(id); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if _, ok := mgr.hit(0x3000); !ok {
		t.Fatalf("re-enabled breakpoint should register a hit")
	}
}

// fakeResolver is a minimal SymbolResolver backed by a plain address map.
type fakeResolver map[uint64]string

func (f fakeResolver) ResolveAddress(addr uint64) (string, bool) {
	name, ok := f[addr]
	return name, ok
}

func TestBreakpointSetAnnotatesSymbolFromResolver(t *testing.T) {
	mem := newFakeMemory()
	mem.poke(0x4000, []byte{0, 0, 0, 0})
	mgr := newBreakpointManager(mem)
	mgr.resolver = fakeResolver{0x4000: "main"}

	id, err := mgr.set(0x4000)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	bp := mgr.byID[id]
	if bp.Symbol != "main" {
		t.Fatalf("expected breakpoint symbol %q, got %q", "main", bp.Symbol)
	}
}

// TestBreakpointSetHitRemoveCycle is the full lifecycle scenario: set a
// breakpoint, confirm the trap is in place, simulate a hit, then remove it
// and confirm the original instruction bytes are back.
func TestBreakpointSetHitRemoveCycle(t *testing.T) {
	mem := newFakeMemory()
	original := []byte{0x20, 0x00, 0x02, 0x8b}
	const addr = 0x100003f40
	mem.poke(addr, original)

	mgr := newBreakpointManager(mem)

	id, err := mgr.set(addr)
	if err != nil {
		t.Fatalf("set: %v", err)
	}

	trap := trapBytes()
	got, _ := mem.readMemory(addr, 4)
	if !bytes.Equal(got, trap[:]) {
		t.Fatalf("expected trap installed at %#x", addr)
	}

	bp, ok := mgr.hit(addr)
	if !ok || bp.Hits != 1 {
		t.Fatalf("expected breakpoint hit counter at 1")
	}

	if err := mgr.remove(id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, _ = mem.readMemory(addr, 4)
	if !bytes.Equal(got, original) {
		t.Fatalf("expected original bytes restored after remove, got %x want %x", got, original)
	}
}
