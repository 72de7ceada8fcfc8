package debugger

import "fmt"

// ErrProcessNotFound is returned when task-for-pid targets a pid the kernel
// has no task for (already exited, or never existed).
type ErrProcessNotFound struct{ PID int }

func (e *ErrProcessNotFound) Error() string { return fmt.Sprintf("process %d not found", e.PID) }

type ErrInvalidPID struct{ PID int }

func (e *ErrInvalidPID) Error() string { return fmt.Sprintf("invalid pid %d", e.PID) }

type ErrAlreadyAttached struct{ PID int }

func (e *ErrAlreadyAttached) Error() string { return fmt.Sprintf("already attached to pid %d", e.PID) }

type ErrNotAttached struct{}

func (e *ErrNotAttached) Error() string { return "debugger is not attached" }

// ErrPermissionDenied reports a kernel call that failed for lack of
// capability, with a human-actionable hint attached (e.g. which
// entitlement or codesign flag is missing).
type ErrPermissionDenied struct {
	Operation string
	Guidance  string
}

func (e *ErrPermissionDenied) Error() string {
	return fmt.Sprintf("permission denied: %s (%s)", e.Operation, e.Guidance)
}

type ErrMissingDebuggerEntitlement struct{}

func (e *ErrMissingDebuggerEntitlement) Error() string {
	return "binary is missing the com.apple.security.cs.debugger entitlement"
}

type ErrDeveloperToolsNotEnabled struct{}

func (e *ErrDeveloperToolsNotEnabled) Error() string {
	return "developer tools are not enabled (run DevToolsSecurity -enable)"
}

// ErrSIPBlocking reports that System Integrity Protection denies access to
// path (typically a platform binary).
type ErrSIPBlocking struct {
	Path     string
	Guidance string
}

func (e *ErrSIPBlocking) Error() string {
	return fmt.Sprintf("System Integrity Protection blocks access to %s (%s)", e.Path, e.Guidance)
}

type ErrTargetLacksTaskAllow struct{}

func (e *ErrTargetLacksTaskAllow) Error() string {
	return "target binary's entitlements lack get-task-allow"
}

type ErrAttachFailed struct{ Reason string }

func (e *ErrAttachFailed) Error() string { return fmt.Sprintf("attach failed: %s", e.Reason) }

type ErrThreadOperationFailed struct{ Operation string }

func (e *ErrThreadOperationFailed) Error() string {
	return fmt.Sprintf("thread operation failed: %s", e.Operation)
}

type ErrMemoryReadFailed struct {
	Address uint64
	Size    uint64
}

func (e *ErrMemoryReadFailed) Error() string {
	return fmt.Sprintf("memory read failed at %#x (%d bytes)", e.Address, e.Size)
}

type ErrMemoryWriteFailed struct {
	Address uint64
	Size    uint64
}

func (e *ErrMemoryWriteFailed) Error() string {
	return fmt.Sprintf("memory write failed at %#x (%d bytes)", e.Address, e.Size)
}

type ErrBreakpointLimitExceeded struct{}

func (e *ErrBreakpointLimitExceeded) Error() string { return "breakpoint limit exceeded" }

type ErrWaitTimedOut struct{}

func (e *ErrWaitTimedOut) Error() string { return "wait for stop event timed out" }
