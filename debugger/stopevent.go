package debugger

// StopEventKind distinguishes the three shapes a StopEvent can take: a
// recognized breakpoint hit, a completed single step, or some other Mach
// exception passed through unchanged.
type StopEventKind int

const (
	StopEventBreakpoint StopEventKind = iota
	StopEventSingleStep
	StopEventException
)

// StopEvent is what the exception server delivers to wait_for_stop: a
// breakpoint the manager recognized (by thread PC), the end of a single
// step, or the raw exception kind/codes for anything else (bad access,
// arithmetic trap, ...).
type StopEvent struct {
	Kind StopEventKind

	// Thread is the Mach port of the thread that stopped.
	Thread uint32

	// BreakpointID is set when Kind == StopEventBreakpoint; Address is set
	// for StopEventBreakpoint and StopEventSingleStep (the thread's PC).
	BreakpointID int
	Address      uint64

	// Exception fields, set when Kind == StopEventException.
	ExceptionType int32
	Codes         []int64
}
