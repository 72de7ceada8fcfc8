//go:build darwin

package machkernel

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

// Kernel is a thin, stateless wrapper around the libsystem_kernel.dylib
// entry points the debugger needs. It is safe for concurrent use; the
// underlying calls are plain syscalls with no hidden client-side state.
type Kernel struct{}

var (
	libOnce  sync.Once
	libErr   error

	taskForPid            func(MachPort, int32, *MachPort) KernReturn
	machVMReadOverwrite    func(MachPort, VMAddress, VMSize, VMAddress, *VMSize) KernReturn
	machVMWrite            func(MachPort, VMAddress, VMAddress, MachMsgTypeNumber) KernReturn
	machVMProtect          func(MachPort, VMAddress, VMSize, int32, VMProt) KernReturn
	taskThreads            func(MachPort, *uintptr, *MachMsgTypeNumber) KernReturn
	taskSuspend            func(MachPort) KernReturn
	taskResume             func(MachPort) KernReturn
	threadGetState         func(MachPort, ThreadStateFlavor, uintptr, *MachMsgTypeNumber) KernReturn
	threadSetState         func(MachPort, ThreadStateFlavor, uintptr, MachMsgTypeNumber) KernReturn
	machPortAllocate       func(MachPort, int32, *MachPort) KernReturn
	machPortInsertRight    func(MachPort, MachPort, MachPort, int32) KernReturn
	taskSetExceptionPorts  func(MachPort, ExceptionMask, MachPort, ExceptionBehavior, ThreadStateFlavor) KernReturn
	machMsg                func(uintptr, int32, MachMsgTypeNumber, MachMsgTypeNumber, MachPort, uint32, MachPort) KernReturn
	machTaskSelfTrap       func() MachPort
	vmDeallocate           func(MachPort, VMAddress, VMSize) KernReturn
)

func loadLibrary() error {
	libOnce.Do(func() {
		lib, err := purego.Dlopen("/usr/lib/system/libsystem_kernel.dylib", purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			libErr = fmt.Errorf("machkernel: dlopen libsystem_kernel: %w", err)
			return
		}
		purego.RegisterLibFunc(&taskForPid, lib, "task_for_pid")
		purego.RegisterLibFunc(&machVMReadOverwrite, lib, "mach_vm_read_overwrite")
		purego.RegisterLibFunc(&machVMWrite, lib, "mach_vm_write")
		purego.RegisterLibFunc(&machVMProtect, lib, "mach_vm_protect")
		purego.RegisterLibFunc(&taskThreads, lib, "task_threads")
		purego.RegisterLibFunc(&taskSuspend, lib, "task_suspend")
		purego.RegisterLibFunc(&taskResume, lib, "task_resume")
		purego.RegisterLibFunc(&threadGetState, lib, "thread_get_state")
		purego.RegisterLibFunc(&threadSetState, lib, "thread_set_state")
		purego.RegisterLibFunc(&machPortAllocate, lib, "mach_port_allocate")
		purego.RegisterLibFunc(&machPortInsertRight, lib, "mach_port_insert_right")
		purego.RegisterLibFunc(&taskSetExceptionPorts, lib, "task_set_exception_ports")
		purego.RegisterLibFunc(&machMsg, lib, "mach_msg")
		purego.RegisterLibFunc(&machTaskSelfTrap, lib, "mach_task_self")
		purego.RegisterLibFunc(&vmDeallocate, lib, "mach_vm_deallocate")
	})
	return libErr
}

// Open loads libsystem_kernel.dylib and resolves every symbol this package
// needs, failing fast rather than lazily at the first call site.
func Open() (*Kernel, error) {
	if err := loadLibrary(); err != nil {
		return nil, err
	}
	return &Kernel{}, nil
}

// TaskSelf returns the calling process's own task port.
func (k *Kernel) TaskSelf() MachPort { return machTaskSelfTrap() }

// TaskForPID requests the kernel task port for pid. Requires the
// com.apple.security.cs.debugger entitlement (or root); returns
// KernFailure/KernNoAccess otherwise.
func (k *Kernel) TaskForPID(pid int) (MachPort, KernReturn) {
	var port MachPort
	ret := taskForPid(k.TaskSelf(), int32(pid), &port)
	return port, ret
}

// ReadMemory reads length bytes from the target task's address space at
// address.
func (k *Kernel) ReadMemory(task MachPort, address VMAddress, length VMSize) ([]byte, KernReturn) {
	buf := make([]byte, length)
	var outSize VMSize
	ret := machVMReadOverwrite(task, address, length, VMAddress(uintptrOf(buf)), &outSize)
	if ret != KernSuccess {
		return nil, ret
	}
	return buf[:outSize], KernSuccess
}

// WriteMemory writes data into the target task's address space at address.
func (k *Kernel) WriteMemory(task MachPort, address VMAddress, data []byte) KernReturn {
	return machVMWrite(task, address, VMAddress(uintptrOf(data)), MachMsgTypeNumber(len(data)))
}

// Protect changes the protection of the page(s) covering [address,
// address+size).
func (k *Kernel) Protect(task MachPort, address VMAddress, size VMSize, prot VMProt) KernReturn {
	return machVMProtect(task, address, size, 0, prot)
}

// Threads returns the task's current thread ports.
func (k *Kernel) Threads(task MachPort) ([]MachPort, KernReturn) {
	var listPtr uintptr
	var count MachMsgTypeNumber
	ret := taskThreads(task, &listPtr, &count)
	if ret != KernSuccess {
		return nil, ret
	}
	threads := make([]MachPort, count)
	for i := range threads {
		threads[i] = *(*MachPort)(offsetPtr(listPtr, i*4))
	}
	vmDeallocate(k.TaskSelf(), VMAddress(listPtr), VMSize(count)*4)
	return threads, KernSuccess
}

// Suspend/Resume stop and restart every thread in the task.
func (k *Kernel) Suspend(task MachPort) KernReturn { return taskSuspend(task) }
func (k *Kernel) Resume(task MachPort) KernReturn  { return taskResume(task) }

// GetThreadState retrieves the ARM64 general register state for thread.
func (k *Kernel) GetThreadState(thread MachPort) (ThreadState64, KernReturn) {
	var words [ARM64ThreadStateCount]uint32
	count := MachMsgTypeNumber(ARM64ThreadStateCount)
	ret := threadGetState(thread, ARM64ThreadStateFlavor, uintptrOfU32(words[:]), &count)
	if ret != KernSuccess {
		return ThreadState64{}, ret
	}
	return ThreadStateFromWords(words), KernSuccess
}

// SetThreadState writes back the ARM64 general register state for thread.
func (k *Kernel) SetThreadState(thread MachPort, state ThreadState64) KernReturn {
	words := state.ToWords()
	return threadSetState(thread, ARM64ThreadStateFlavor, uintptrOfU32(words[:]), MachMsgTypeNumber(ARM64ThreadStateCount))
}

// AllocatePort allocates a receive-right port in the calling task, used to
// stand up the exception server.
func (k *Kernel) AllocatePort() (MachPort, KernReturn) {
	const machPortRightReceive = 1
	var port MachPort
	ret := machPortAllocate(k.TaskSelf(), machPortRightReceive, &port)
	return port, ret
}

// InsertSendRight inserts a send right for port into the calling task so the
// kernel can deliver exception messages to it.
func (k *Kernel) InsertSendRight(port MachPort) KernReturn {
	const machMsgTypeMakeSend = 20
	return machPortInsertRight(k.TaskSelf(), port, port, machMsgTypeMakeSend)
}

// SetExceptionPort installs port as task's exception port for the given
// exception mask, using the default behavior and 64-bit ARM thread state.
func (k *Kernel) SetExceptionPort(task MachPort, mask ExceptionMask, port MachPort) KernReturn {
	const exceptionDefault ExceptionBehavior = 1
	return taskSetExceptionPorts(task, mask, port, exceptionDefault, ARM64ThreadStateFlavor)
}

// ReceiveMessage blocks on port for an incoming Mach message, copying up to
// len(buf) bytes into it. Returns the kernel return code; callers inspect
// buf themselves to decode the exception message body.
func (k *Kernel) ReceiveMessage(port MachPort, buf []byte, timeoutMillis uint32) KernReturn {
	const mach_rcv_msg = 2
	const mach_rcv_timeout = 0x100
	options := int32(mach_rcv_msg | mach_rcv_timeout)
	return machMsg(uintptrOf(buf), options, 0, MachMsgTypeNumber(len(buf)), port, timeoutMillis, 0)
}
