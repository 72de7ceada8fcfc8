//go:build !darwin

package debugger

import (
	"errors"
	"time"

	"github.com/kestrel-security/machtool/pkg/machkernel"
)

// ErrUnsupportedPlatform is returned by every Debugger entry point on
// non-darwin builds; task-port and ptrace access are Darwin-only.
var ErrUnsupportedPlatform = errors.New("debugger: unsupported platform")

type State int

const (
	StateDetached State = iota
	StateStopped
	StateRunning
)

func (s State) String() string { return "detached" }

type Debugger struct{}

func New() (*Debugger, error) { return nil, ErrUnsupportedPlatform }

func (d *Debugger) Attach(pid int) error { return ErrUnsupportedPlatform }
func (d *Debugger) Detach() error        { return ErrUnsupportedPlatform }
func (d *Debugger) Continue() error      { return ErrUnsupportedPlatform }
func (d *Debugger) Stop() error          { return ErrUnsupportedPlatform }

func (d *Debugger) Step(thread machkernel.MachPort) error { return ErrUnsupportedPlatform }

func (d *Debugger) Threads() ([]machkernel.MachPort, error) { return nil, ErrUnsupportedPlatform }

func (d *Debugger) ReadRegisters(thread machkernel.MachPort) (Registers, error) {
	return Registers{}, ErrUnsupportedPlatform
}

func (d *Debugger) WriteRegisters(thread machkernel.MachPort, regs Registers) error {
	return ErrUnsupportedPlatform
}

func (d *Debugger) ReadMemory(address uint64, size uint64) ([]byte, error) {
	return nil, ErrUnsupportedPlatform
}

func (d *Debugger) WriteMemory(address uint64, data []byte) error { return ErrUnsupportedPlatform }

func (d *Debugger) SetSymbolResolver(resolver SymbolResolver) {}

func (d *Debugger) SetBreakpoint(address uint64) (int, error) { return 0, ErrUnsupportedPlatform }
func (d *Debugger) RemoveBreakpoint(id int) error              { return ErrUnsupportedPlatform }
func (d *Debugger) RemoveBreakpointAt(address uint64) error    { return ErrUnsupportedPlatform }
func (d *Debugger) EnableBreakpoint(id int) error              { return ErrUnsupportedPlatform }
func (d *Debugger) DisableBreakpoint(id int) error             { return ErrUnsupportedPlatform }
func (d *Debugger) Breakpoints() []*Breakpoint                 { return nil }

func (d *Debugger) WaitForStop(timeout time.Duration) (StopEvent, error) {
	return StopEvent{}, ErrUnsupportedPlatform
}
