package core

import (
	"errors"
	"fmt"
	"strings"
)

// PassErrorScope names the command kind that was being recorded or replayed
// when a pass-level error occurred, wrapping an inner error kind. This
// mirrors the two-level error shape used elsewhere in core (see error.go):
// an inner, specific error plus an outer scope naming what command failed.
type PassErrorScope string

// Pass command kinds used as PassErrorScope values.
const (
	PassErrorScopeSetPipeline       PassErrorScope = "set_pipeline"
	PassErrorScopeSetBindGroup      PassErrorScope = "set_bind_group"
	PassErrorScopeDispatch          PassErrorScope = "dispatch"
	PassErrorScopeDispatchIndirect  PassErrorScope = "dispatch_indirect"
	PassErrorScopePushDebugGroup    PassErrorScope = "push_debug_group"
	PassErrorScopePopDebugGroup     PassErrorScope = "pop_debug_group"
	PassErrorScopeInsertDebugMarker PassErrorScope = "insert_debug_marker"
	PassErrorScopeSetPushConstant   PassErrorScope = "set_push_constant"
	PassErrorScopeWriteTimestamp    PassErrorScope = "write_timestamp"
	PassErrorScopeBeginPipelineStatisticsQuery PassErrorScope = "begin_pipeline_statistics_query"
	PassErrorScopeEndPipelineStatisticsQuery   PassErrorScope = "end_pipeline_statistics_query"
	PassErrorScopeEnd               PassErrorScope = "end"
)

// PassError pairs an inner validation error with the command scope it
// occurred in.
type PassError struct {
	Scope PassErrorScope
	Inner error
}

func (e *PassError) Error() string {
	return fmt.Sprintf("compute pass error in %s: %v", e.Scope, e.Inner)
}

func (e *PassError) Unwrap() error { return e.Inner }

// ErrNoPipelineSet is returned when Dispatch/DispatchIndirect is recorded
// before any SetPipeline call.
var ErrNoPipelineSet = errors.New("no compute pipeline set")

// ErrPassAlreadyEnded is returned when a command is recorded after End().
var ErrPassAlreadyEnded = errors.New("compute pass already ended")

// ErrUnmatchedDebugGroup is returned when PopDebugGroup is called with no
// matching PushDebugGroup.
var ErrUnmatchedDebugGroup = errors.New("PopDebugGroup with no matching PushDebugGroup")

// ErrUnclosedDebugGroup is returned when End() is reached with debug groups
// still open.
var ErrUnclosedDebugGroup = errors.New("compute pass ended with unbalanced debug groups")

// BindGroupIndexOutOfRangeError is returned when SetBindGroup targets a slot
// beyond the engine's supported bind group count.
type BindGroupIndexOutOfRangeError struct {
	Index uint32
	Max   uint32
}

func (e *BindGroupIndexOutOfRangeError) Error() string {
	return fmt.Sprintf("bind group index %d out of range (max %d)", e.Index, e.Max)
}

// BindGroupMissingError is returned when Dispatch is validated but the
// current pipeline layout requires a bind group at Index that was never
// assigned.
type BindGroupMissingError struct {
	Index uint32
}

func (e *BindGroupMissingError) Error() string {
	return fmt.Sprintf("no bind group set at index %d", e.Index)
}

// IncompatibleBindGroupError is returned when the bind group assigned at
// Index does not match the layout the current pipeline's layout expects
// there. Diff carries a short, human-readable explanation of what differs,
// mirroring wgpu-core's DispatchError::IncompatibleBindGroup{diff}, though
// this engine only tracks layout identity rather than structural entries so
// the diff is coarser than wgpu-core's.
type IncompatibleBindGroupError struct {
	Index uint32
	Diff  []string
}

func (e *IncompatibleBindGroupError) Error() string {
	if len(e.Diff) == 0 {
		return fmt.Sprintf("bind group at index %d is incompatible with the pipeline layout", e.Index)
	}
	return fmt.Sprintf("bind group at index %d is incompatible with the pipeline layout: %s", e.Index, strings.Join(e.Diff, "; "))
}

// BufferBindingSizeError is returned when a bound buffer's resolved size is
// smaller than its bind group layout entry's minimum binding size.
type BufferBindingSizeError struct {
	Binding uint32
	Size    uint64
	MinSize uint64
}

func (e *BufferBindingSizeError) Error() string {
	return fmt.Sprintf("binding %d size %d is smaller than minimum %d", e.Binding, e.Size, e.MinSize)
}

// IndirectBufferOverrunError is returned when a DispatchIndirect offset
// would read the 12-byte (3xu32) argument struct past the end of the
// buffer.
type IndirectBufferOverrunError struct {
	Offset     uint64
	BufferSize uint64
}

func (e *IndirectBufferOverrunError) Error() string {
	return fmt.Sprintf("indirect dispatch args at offset %d overrun buffer of size %d", e.Offset, e.BufferSize)
}

// InvalidGroupSizeError is returned when a Dispatch's workgroup count
// exceeds the device's max-compute-workgroups-per-dimension limit in any
// dimension. A dispatch with a zero count in any dimension is a valid no-op.
type InvalidGroupSizeError struct {
	Current [3]uint32
	Limit   uint32
}

func (e *InvalidGroupSizeError) Error() string {
	return fmt.Sprintf("each current dispatch group size dimension (%v) must be less or equal to %d", e.Current, e.Limit)
}

// InvalidParentEncoderError is returned when a compute pass is used after
// its parent command encoder has moved past the Recording state (e.g. the
// encoder errored, or Finish was called while a pass was still open).
type InvalidParentEncoderError struct{}

func (e *InvalidParentEncoderError) Error() string {
	return "compute pass's parent command encoder is not in the recording state"
}

// MissingFeatureError is returned when a command requires a device feature
// that was not enabled, such as timestamp writes inside a pass.
type MissingFeatureError struct {
	Feature string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing required feature: %s", e.Feature)
}

// MissingDownlevelFlagsError is returned when a command requires backend
// capability a downlevel device lacks, such as indirect dispatch on old GLES.
type MissingDownlevelFlagsError struct {
	Flag string
}

func (e *MissingDownlevelFlagsError) Error() string {
	return fmt.Sprintf("device is missing required downlevel capability: %s", e.Flag)
}

// PushConstantOutOfRangeError is returned when a SetPushConstant's
// [offset, offset+len(data)*4) range is not fully covered by a single
// declared push constant range visible to the compute stage.
type PushConstantOutOfRangeError struct {
	Offset uint32
	Size   uint32
}

func (e *PushConstantOutOfRangeError) Error() string {
	return fmt.Sprintf("push constant range [%d, %d) is not covered by a compute-visible push constant range", e.Offset, e.Offset+e.Size)
}

// PushConstantAlignmentError is returned when a SetPushConstant offset or
// data length is not a multiple of 4 bytes.
type PushConstantAlignmentError struct {
	Offset uint32
	Size   uint32
}

func (e *PushConstantAlignmentError) Error() string {
	return fmt.Sprintf("push constant offset %d and size %d must be 4-byte aligned", e.Offset, e.Size)
}

// QuerySetIndexOutOfRangeError is returned when WriteTimestamp or a
// pipeline-statistics query targets an index beyond its query set's count.
type QuerySetIndexOutOfRangeError struct {
	Index uint32
	Count uint32
}

func (e *QuerySetIndexOutOfRangeError) Error() string {
	return fmt.Sprintf("query index %d out of range (set has %d queries)", e.Index, e.Count)
}

// UsageConflictInPassError wraps a track.UsageConflictError with the
// command scope it was detected in.
type UsageConflictInPassError struct {
	Inner error
}

func (e *UsageConflictInPassError) Error() string {
	return fmt.Sprintf("resource usage conflict within compute pass: %v", e.Inner)
}

func (e *UsageConflictInPassError) Unwrap() error { return e.Inner }
