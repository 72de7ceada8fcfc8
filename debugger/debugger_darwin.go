//go:build darwin

package debugger

import (
	"log/slog"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/kestrel-security/machtool/pkg/machkernel"
)

// State is the debugger's attachment lifecycle state.
type State int

const (
	StateDetached State = iota
	StateStopped
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	default:
		return "detached"
	}
}

// exceptionMaskBreakpoint covers EXC_BREAKPOINT only; the server only needs
// to see traps, not every exception class.
const exceptionMaskBreakpoint machkernel.ExceptionMask = 1 << 6 // EXC_MASK_BREAKPOINT

// Debugger drives a single attached process: task-port lifecycle, memory
// and register access, the breakpoint manager, and the Mach exception
// server. One instance owns one target PID; concurrent use from multiple
// goroutines requires external coordination, per spec.md's shared-resource
// policy.
type Debugger struct {
	kernel *machkernel.Kernel

	mu    sync.Mutex
	pid   int
	task  machkernel.MachPort
	state State

	excPort machkernel.MachPort
	stops   chan StopEvent
	done    chan struct{}

	// stepping tracks threads with a single-step resume in flight, so the
	// exception server can tell a step trap from a breakpoint/other
	// exception and clear PSTATE.SS once it fires.
	stepping map[machkernel.MachPort]bool

	breakpoints *breakpointManager
}

// New opens the kernel binding layer. Call Attach to actually attach to a
// target process.
func New() (*Debugger, error) {
	k, err := machkernel.Open()
	if err != nil {
		return nil, err
	}
	d := &Debugger{kernel: k, state: StateDetached, stepping: make(map[machkernel.MachPort]bool)}
	d.breakpoints = newBreakpointManager(d)
	return d, nil
}

// Attach acquires the target's task port, requests exception-based
// ptrace delivery, and starts the exception server.
func (d *Debugger) Attach(pid int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if pid <= 0 {
		return &ErrInvalidPID{PID: pid}
	}
	if d.state != StateDetached {
		return &ErrAlreadyAttached{PID: d.pid}
	}

	task, ret := d.kernel.TaskForPID(pid)
	if ret != machkernel.KernSuccess {
		if ret == machkernel.KernInvalidArgument {
			return &ErrProcessNotFound{PID: pid}
		}
		return &ErrPermissionDenied{Operation: "task-for-pid", Guidance: "grant com.apple.security.cs.debugger or run as root"}
	}

	excPort, ret := d.kernel.AllocatePort()
	if ret != machkernel.KernSuccess {
		return &ErrAttachFailed{Reason: "mach_port_allocate failed"}
	}
	if ret := d.kernel.InsertSendRight(excPort); ret != machkernel.KernSuccess {
		return &ErrAttachFailed{Reason: "mach_port_insert_right failed"}
	}
	if ret := d.kernel.SetExceptionPort(task, exceptionMaskBreakpoint, excPort); ret != machkernel.KernSuccess {
		return &ErrAttachFailed{Reason: "task_set_exception_ports failed"}
	}

	if err := ptraceRequest(unix.PT_ATTACHEXC, pid, 0, 0); err != nil {
		return &ErrAttachFailed{Reason: "PT_ATTACHEXC: " + err.Error()}
	}

	d.pid = pid
	d.task = task
	d.excPort = excPort
	d.state = StateStopped
	d.stops = make(chan StopEvent, 16)
	d.done = make(chan struct{})
	go d.runExceptionServer()

	return nil
}

// Detach resumes the task if stopped, issues PT_DETACH (best-effort), and
// clears the debugger's task port field; the send right obtained from
// task_for_pid is not deallocated. Always safe to call; aborts any
// in-progress wait.
func (d *Debugger) Detach() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == StateDetached {
		return nil
	}
	if d.state == StateStopped {
		d.kernel.Resume(d.task)
	}
	if err := unix.PtraceDetach(d.pid); err != nil {
		slog.Debug("ptrace detach failed, continuing anyway", "pid", d.pid, "err", err)
	}
	if d.done != nil {
		close(d.done)
	}
	d.state = StateDetached
	d.task = 0
	return nil
}

// Continue resumes the target task.
func (d *Debugger) Continue() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateDetached {
		return &ErrNotAttached{}
	}
	if err := ptraceRequest(unix.PT_CONTINUE, d.pid, 1, 0); err != nil {
		return &ErrThreadOperationFailed{Operation: "continue"}
	}
	d.state = StateRunning
	return nil
}

// Step single-steps thread: it reads the thread's current state, sets
// PSTATE.SS in CPSR, writes the state back, and resumes. The exception
// server clears the bit and delivers a StopEventSingleStep once the
// resulting single-step trap arrives.
func (d *Debugger) Step(thread machkernel.MachPort) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateDetached {
		return &ErrNotAttached{}
	}

	state, ret := d.kernel.GetThreadState(thread)
	if ret != machkernel.KernSuccess {
		return &ErrThreadOperationFailed{Operation: "thread_get_state"}
	}
	regs := fromKernelState(state)
	regs.SetSingleStep(true)
	if ret := d.kernel.SetThreadState(thread, toKernelState(regs)); ret != machkernel.KernSuccess {
		return &ErrThreadOperationFailed{Operation: "thread_set_state"}
	}

	d.stepping[thread] = true

	if err := ptraceRequest(unix.PT_CONTINUE, d.pid, 1, 0); err != nil {
		return &ErrThreadOperationFailed{Operation: "step"}
	}
	d.state = StateRunning
	return nil
}

// Stop suspends every thread in the task.
func (d *Debugger) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateDetached {
		return &ErrNotAttached{}
	}
	if ret := d.kernel.Suspend(d.task); ret != machkernel.KernSuccess {
		return &ErrThreadOperationFailed{Operation: "suspend"}
	}
	d.state = StateStopped
	return nil
}

// Threads returns the task's current thread ports.
func (d *Debugger) Threads() ([]machkernel.MachPort, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateDetached {
		return nil, &ErrNotAttached{}
	}
	threads, ret := d.kernel.Threads(d.task)
	if ret != machkernel.KernSuccess {
		return nil, &ErrThreadOperationFailed{Operation: "task_threads"}
	}
	return threads, nil
}

// ReadRegisters retrieves the ARM64 register snapshot for thread.
func (d *Debugger) ReadRegisters(thread machkernel.MachPort) (Registers, error) {
	state, ret := d.kernel.GetThreadState(thread)
	if ret != machkernel.KernSuccess {
		return Registers{}, &ErrThreadOperationFailed{Operation: "thread_get_state"}
	}
	return fromKernelState(state), nil
}

// WriteRegisters writes back regs for thread.
func (d *Debugger) WriteRegisters(thread machkernel.MachPort, regs Registers) error {
	if ret := d.kernel.SetThreadState(thread, toKernelState(regs)); ret != machkernel.KernSuccess {
		return &ErrThreadOperationFailed{Operation: "thread_set_state"}
	}
	return nil
}

// readMemory and writeMemory implement the `memory` interface the
// breakpoint manager uses; unexported since they assume d.task is valid.
func (d *Debugger) readMemory(address uint64, size uint64) ([]byte, error) {
	buf, ret := d.kernel.ReadMemory(d.task, address, size)
	if ret != machkernel.KernSuccess {
		return nil, &ErrMemoryReadFailed{Address: address, Size: size}
	}
	return buf, nil
}

func (d *Debugger) writeMemory(address uint64, data []byte) error {
	ret := d.kernel.Protect(d.task, address&^0xfff, uint64(len(data))+0x1000, machkernel.VMProtRead|machkernel.VMProtWrite|machkernel.VMProtExec)
	_ = ret // best-effort; some regions are already writable
	if ret := d.kernel.WriteMemory(d.task, address, data); ret != machkernel.KernSuccess {
		return &ErrMemoryWriteFailed{Address: address, Size: uint64(len(data))}
	}
	return nil
}

// ReadMemory reads size bytes at address from the attached task.
func (d *Debugger) ReadMemory(address uint64, size uint64) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateDetached {
		return nil, &ErrNotAttached{}
	}
	return d.readMemory(address, size)
}

// WriteMemory writes data at address in the attached task.
func (d *Debugger) WriteMemory(address uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateDetached {
		return &ErrNotAttached{}
	}
	return d.writeMemory(address, data)
}

// SetSymbolResolver installs resolver so future breakpoints are annotated
// with the enclosing symbol's name.
func (d *Debugger) SetSymbolResolver(resolver SymbolResolver) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.breakpoints.resolver = resolver
}

// SetBreakpoint installs a software breakpoint at address.
func (d *Debugger) SetBreakpoint(address uint64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateDetached {
		return 0, &ErrNotAttached{}
	}
	return d.breakpoints.set(address)
}

func (d *Debugger) RemoveBreakpoint(id int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.breakpoints.remove(id)
}

func (d *Debugger) RemoveBreakpointAt(address uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.breakpoints.removeAt(address)
}

func (d *Debugger) EnableBreakpoint(id int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.breakpoints.enable(id)
}

func (d *Debugger) DisableBreakpoint(id int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.breakpoints.disable(id)
}

// Breakpoints lists installed breakpoints in ascending id order.
func (d *Debugger) Breakpoints() []*Breakpoint {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.breakpoints.list()
}

// WaitForStop blocks until the next stop event, or returns ErrWaitTimedOut
// if timeout elapses first. A zero timeout waits indefinitely.
func (d *Debugger) WaitForStop(timeout time.Duration) (StopEvent, error) {
	d.mu.Lock()
	stops := d.stops
	d.mu.Unlock()
	if stops == nil {
		return StopEvent{}, &ErrNotAttached{}
	}

	if timeout <= 0 {
		ev, ok := <-stops
		if !ok {
			return StopEvent{}, &ErrNotAttached{}
		}
		return ev, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ev, ok := <-stops:
		if !ok {
			return StopEvent{}, &ErrNotAttached{}
		}
		return ev, nil
	case <-timer.C:
		return StopEvent{}, &ErrWaitTimedOut{}
	}
}

// runExceptionServer is the dedicated worker that owns the exception port
// receive right. It decodes incoming Mach exception messages, matches
// breakpoint exceptions to the installed map by the stopped thread's PC,
// and forwards everything else as a raw StopEvent.
func (d *Debugger) runExceptionServer() {
	defer close(d.stops)
	buf := make([]byte, 4096)
	for {
		select {
		case <-d.done:
			return
		default:
		}

		ret := d.kernel.ReceiveMessage(d.excPort, buf, 250)
		if ret != machkernel.KernSuccess {
			continue
		}

		thread, excType, codes := decodeExceptionMessage(buf)
		if excType == excBreakpointType {
			d.mu.Lock()
			stepped := d.stepping[thread]
			if stepped {
				delete(d.stepping, thread)
			}
			d.mu.Unlock()

			if stepped {
				if regs, err := d.ReadRegisters(thread); err == nil {
					regs.SetSingleStep(false)
					d.WriteRegisters(thread, regs)
					d.mu.Lock()
					d.state = StateStopped
					d.mu.Unlock()
					d.stops <- StopEvent{Kind: StopEventSingleStep, Thread: thread, Address: regs.PC}
					continue
				}
			}

			regs, err := d.ReadRegisters(thread)
			if err == nil {
				if bp, ok := d.breakpoints.hit(regs.PC); ok {
					d.mu.Lock()
					d.state = StateStopped
					d.mu.Unlock()
					d.stops <- StopEvent{Kind: StopEventBreakpoint, Thread: thread, BreakpointID: bp.ID, Address: bp.Address}
					continue
				}
			}
		}
		d.mu.Lock()
		d.state = StateStopped
		d.mu.Unlock()
		d.stops <- StopEvent{Kind: StopEventException, Thread: thread, ExceptionType: excType, Codes: codes}
	}
}

// excBreakpointType is EXC_BREAKPOINT's exception-type code in the
// decoded Mach exception message.
const excBreakpointType int32 = 6

// decodeExceptionMessage pulls the thread port and exception type out of a
// raw mach_msg exception message body. The code list is not decoded: codes
// is always nil, so StopEvent.Codes is empty for every exception. The full
// exception_raise request layout is kernel-internal
// and version-sensitive; this reads just the fixed-offset header fields
// common across Darwin releases.
func decodeExceptionMessage(buf []byte) (thread machkernel.MachPort, excType int32, codes []int64) {
	if len(buf) < 32 {
		return 0, 0, nil
	}
	thread = *(*machkernel.MachPort)(unsafe.Pointer(&buf[12]))
	excType = *(*int32)(unsafe.Pointer(&buf[24]))
	return thread, excType, nil
}

// ptraceRequest issues a raw BSD ptrace(2) call. golang.org/x/sys/unix only
// wraps PT_ATTACH/PT_DETACH/PT_DENY_ATTACH directly; PT_ATTACHEXC and
// PT_CONTINUE are reached through the same SYS_PTRACE trap unix exposes the
// number for.
func ptraceRequest(request int, pid int, addr uintptr, data uintptr) error {
	_, _, errno := unix.Syscall6(unix.SYS_PTRACE, uintptr(request), uintptr(pid), addr, data, 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}
