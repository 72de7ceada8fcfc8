package debugger

// brk64Trap is the 32-bit little-endian encoding of `BRK #0`, the software
// trap instruction used to implement breakpoints.
const brk64Trap uint32 = 0xd4200000

// Breakpoint is a single installed software breakpoint.
type Breakpoint struct {
	ID       int
	Address  uint64
	Original [4]byte
	Enabled  bool
	Hits     int
	Symbol   string
}

// memory is the narrow slice of Debugger a Breakpoint manager needs, kept
// as an interface so the manager can be unit tested without a live kernel.
type memory interface {
	readMemory(address uint64, size uint64) ([]byte, error)
	writeMemory(address uint64, data []byte) error
}

// SymbolResolver maps a breakpoint address to the nearest preceding defined
// symbol's name, the role macho.Binary plays for a Debugger. Kept as an
// interface at the debugger/macho boundary so the debugger package has no
// import-time dependency on macho.
type SymbolResolver interface {
	ResolveAddress(addr uint64) (name string, ok bool)
}

// breakpointManager owns the monotonic id counter and the address-indexed
// breakpoint map. set/remove/enable/disable/hit match spec.md's §4.5
// invariants: at most one enabled breakpoint per address, original bytes
// captured exactly once, repeated sets idempotent.
type breakpointManager struct {
	mem      memory
	resolver SymbolResolver
	nextID   int
	byAddr   map[uint64]*Breakpoint
	byID     map[int]*Breakpoint
	order    []int
}

func newBreakpointManager(mem memory) *breakpointManager {
	return &breakpointManager{
		mem:    mem,
		nextID: 1,
		byAddr: make(map[uint64]*Breakpoint),
		byID:   make(map[int]*Breakpoint),
	}
}

func trapBytes() [4]byte {
	trap := brk64Trap
	var b [4]byte
	b[0] = byte(trap)
	b[1] = byte(trap >> 8)
	b[2] = byte(trap >> 16)
	b[3] = byte(trap >> 24)
	return b
}

// set installs a breakpoint at address, or returns the id of the one
// already enabled there.
func (m *breakpointManager) set(address uint64) (int, error) {
	if existing, ok := m.byAddr[address]; ok && existing.Enabled {
		return existing.ID, nil
	}

	original, err := m.mem.readMemory(address, 4)
	if err != nil {
		return 0, err
	}
	var orig [4]byte
	copy(orig[:], original)

	trap := trapBytes()
	if err := m.mem.writeMemory(address, trap[:]); err != nil {
		return 0, err
	}

	id := m.nextID
	m.nextID++
	bp := &Breakpoint{ID: id, Address: address, Original: orig, Enabled: true}
	if m.resolver != nil {
		if name, ok := m.resolver.ResolveAddress(address); ok {
			bp.Symbol = name
		}
	}
	m.byAddr[address] = bp
	m.byID[id] = bp
	m.order = append(m.order, id)
	return id, nil
}

// remove writes back the original bytes and deletes the breakpoint.
func (m *breakpointManager) remove(id int) error {
	bp, ok := m.byID[id]
	if !ok {
		return nil
	}
	if bp.Enabled {
		if err := m.mem.writeMemory(bp.Address, bp.Original[:]); err != nil {
			return err
		}
	}
	delete(m.byID, id)
	delete(m.byAddr, bp.Address)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *breakpointManager) removeAt(address uint64) error {
	bp, ok := m.byAddr[address]
	if !ok {
		return nil
	}
	return m.remove(bp.ID)
}

func (m *breakpointManager) enable(id int) error {
	bp, ok := m.byID[id]
	if !ok || bp.Enabled {
		return nil
	}
	trap := trapBytes()
	if err := m.mem.writeMemory(bp.Address, trap[:]); err != nil {
		return err
	}
	bp.Enabled = true
	return nil
}

func (m *breakpointManager) disable(id int) error {
	bp, ok := m.byID[id]
	if !ok || !bp.Enabled {
		return nil
	}
	if err := m.mem.writeMemory(bp.Address, bp.Original[:]); err != nil {
		return err
	}
	bp.Enabled = false
	return nil
}

// hit increments the hit counter for the enabled breakpoint at address, if
// any, and reports whether one was found.
func (m *breakpointManager) hit(address uint64) (*Breakpoint, bool) {
	bp, ok := m.byAddr[address]
	if !ok || !bp.Enabled {
		return nil, false
	}
	bp.Hits++
	return bp, true
}

// list returns breakpoints in ascending id insertion order.
func (m *breakpointManager) list() []*Breakpoint {
	out := make([]*Breakpoint, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}
