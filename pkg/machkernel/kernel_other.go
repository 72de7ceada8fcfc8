//go:build !darwin

package machkernel

import "errors"

// ErrUnsupportedPlatform is returned by Open on every non-Darwin target;
// the Mach task-port API this package binds only exists on macOS.
var ErrUnsupportedPlatform = errors.New("machkernel: unsupported on this platform")

// Kernel is an unusable stand-in on non-Darwin platforms so the debugger
// package can still compile and present a clear error at construction time.
type Kernel struct{}

func Open() (*Kernel, error) { return nil, ErrUnsupportedPlatform }

func (k *Kernel) TaskSelf() MachPort { return 0 }

func (k *Kernel) TaskForPID(pid int) (MachPort, KernReturn) { return 0, KernFailure }

func (k *Kernel) ReadMemory(task MachPort, address VMAddress, length VMSize) ([]byte, KernReturn) {
	return nil, KernFailure
}

func (k *Kernel) WriteMemory(task MachPort, address VMAddress, data []byte) KernReturn {
	return KernFailure
}

func (k *Kernel) Protect(task MachPort, address VMAddress, size VMSize, prot VMProt) KernReturn {
	return KernFailure
}

func (k *Kernel) Threads(task MachPort) ([]MachPort, KernReturn) { return nil, KernFailure }

func (k *Kernel) Suspend(task MachPort) KernReturn { return KernFailure }

func (k *Kernel) Resume(task MachPort) KernReturn { return KernFailure }

func (k *Kernel) GetThreadState(thread MachPort) (ThreadState64, KernReturn) {
	return ThreadState64{}, KernFailure
}

func (k *Kernel) SetThreadState(thread MachPort, state ThreadState64) KernReturn {
	return KernFailure
}

func (k *Kernel) AllocatePort() (MachPort, KernReturn) { return 0, KernFailure }

func (k *Kernel) InsertSendRight(port MachPort) KernReturn { return KernFailure }

func (k *Kernel) SetExceptionPort(task MachPort, mask ExceptionMask, port MachPort) KernReturn {
	return KernFailure
}

func (k *Kernel) ReceiveMessage(port MachPort, buf []byte, timeoutMillis uint32) KernReturn {
	return KernFailure
}
