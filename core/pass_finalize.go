package core

import (
	"sort"

	"github.com/gogpu/computepass/core/track"
	"github.com/gogpu/computepass/hal"
	"github.com/gogpu/computepass/types"
)

// finalizeComputePass is the C6 pass driver: it replays pass's recorded
// BasePass once to validate the stream and resolve resource barriers (no
// HAL calls), then -- only if validation succeeded -- replays it a second
// time to emit the actual HAL calls, bracketed by the pre-body memory-init
// clears and buffer barriers the first pass collected.
//
// Splitting validation from emission this way means a pass that fails
// validation never touches the HAL at all, and it lets every PassError
// report the exact command scope it failed in without leaving a partially
// emitted HAL compute pass behind.
func finalizeComputePass(encoder *CoreCommandEncoder, pass *CoreComputePassEncoder) error {
	guard := encoder.device.snatchLock.Read()
	defer guard.Release()

	halEncoder := encoder.raw.Get(guard)
	if halEncoder == nil {
		return &PassError{Scope: PassErrorScopeEnd, Inner: ErrResourceDestroyed}
	}

	barriers, initActions, plan, err := validateAndCollect(encoder.device, guard, pass)
	if err != nil {
		encoder.device.reportError(ErrorFilterValidation, err.Error())
		return err
	}

	if len(initActions) > 0 {
		for _, a := range initActions {
			halBuf := a.Buffer.Raw(guard)
			if halBuf == nil {
				continue
			}
			(*halEncoder).ClearBuffer(halBuf, a.Offset, a.Size)
		}
	}
	if len(barriers) > 0 {
		(*halEncoder).TransitionBuffers(barriers)
	}

	halDesc := &hal.ComputePassDescriptor{Label: pass.base.Label}
	if pass.timestampWrites != nil {
		halDesc.TimestampWrites = pass.timestampWrites.toHAL()
	}
	rawPass := (*halEncoder).BeginComputePass(halDesc)
	emitCommands(rawPass, guard, pass, plan)
	rawPass.End()

	return nil
}

// replayPlan carries the synthetic HAL work validateAndCollect derives from
// Binder decisions -- bind-group rebinds and push-constant clears -- that
// emitCommands must splice in around the literally recorded commands at the
// same command index. Rust's single-pass compute_pass_end_impl issues these
// inline as it walks the command list and drives the Binder itself; this
// engine instead separates validation from emission (see finalizeComputePass),
// so the decisions have to be threaded across the two passes explicitly.
type replayPlan struct {
	// rebinds[i] holds the bind groups that must be reissued to the HAL
	// right after the cmdSetPipeline at command index i, because they
	// remained logically valid across the pipeline-layout change but were
	// bound under the previous pipeline layout object.
	rebinds map[int][]DirtyBindEntry
	// pushConstantClears[i] holds the non-overlapping compute-visible
	// push-constant byte ranges that must be zero-cleared right after the
	// cmdSetPipeline at command index i, because its pipeline layout
	// changed from the previous one.
	pushConstantClears map[int][]hal.Range
}

// toHAL converts pass-boundary timestamp writes to the HAL descriptor
// shape, resolving the *QuerySet to its raw handle.
func (w *ComputePassTimestampWrites) toHAL() *hal.ComputePassTimestampWrites {
	if w == nil || w.QuerySet == nil {
		return nil
	}
	return &hal.ComputePassTimestampWrites{
		QuerySet:                  w.QuerySet.Raw(),
		BeginningOfPassWriteIndex: w.BeginningOfPassWriteIndex,
		EndOfPassWriteIndex:       w.EndOfPassWriteIndex,
	}
}

// validateAndCollect walks pass's recorded commands once without touching
// the HAL. It drives the same three components a real dispatch would at
// record time in wgpu-core -- the Binder for bind-group state, a
// ComputeUsageScope per dispatch flushed into PassTrackers for barriers,
// and a MemoryInitTracker for zero-fill-before-read -- but all of it
// happens here, at finalize time, against the already-recorded command
// stream instead of interleaved with recording.
func validateAndCollect(device *Device, guard *SnatchGuard, pass *CoreComputePassEncoder) ([]hal.BufferBarrier, []MemoryInitAction, *replayPlan, error) {
	binder := NewBinder()
	trackers := NewPassTrackers()
	meminit := NewMemoryInitTracker()
	scope := NewComputeUsageScope()
	plan := &replayPlan{
		rebinds:            make(map[int][]DirtyBindEntry),
		pushConstantClears: make(map[int][]hal.Range),
	}

	var allBarriers []hal.BufferBarrier
	debugDepth := 0
	var currentLayout *PipelineLayoutBinding

	flush := func() error {
		bs := trackers.Flush(guard, scope)
		allBarriers = append(allBarriers, bs...)
		scope.Clear()
		return nil
	}

	for i := range pass.base.commands {
		cmd := &pass.base.commands[i]
		switch cmd.Kind {
		case cmdSetPipeline:
			if cmd.Pipeline == nil {
				return nil, nil, nil, &PassError{Scope: PassErrorScopeSetPipeline, Inner: ErrNoPipelineSet}
			}
			layoutChanged := cmd.Pipeline.Layout != currentLayout
			_, dirty := binder.ChangePipelineLayout(cmd.Pipeline.Layout)
			if len(dirty) > 0 {
				plan.rebinds[i] = dirty
			}
			if layoutChanged && cmd.Pipeline.Layout != nil {
				if clears := computeNonOverlappingPushConstantClears(cmd.Pipeline.Layout.PushConstantRanges); len(clears) > 0 {
					plan.pushConstantClears[i] = clears
				}
			}
			currentLayout = cmd.Pipeline.Layout

		case cmdSetBindGroup:
			offsets := pass.base.Offsets(cmd)
			if _, err := binder.AssignGroup(cmd.GroupIndex, cmd.Group, offsets); err != nil {
				return nil, nil, nil, &PassError{Scope: PassErrorScopeSetBindGroup, Inner: err}
			}
			registerBindGroupMemoryInit(meminit, cmd.Group)

		case cmdSetPushConstant:
			if err := validatePushConstant(binder, cmd); err != nil {
				return nil, nil, nil, &PassError{Scope: PassErrorScopeSetPushConstant, Inner: err}
			}

		case cmdDispatch:
			if err := binder.ValidateForDispatch(); err != nil {
				return nil, nil, nil, &PassError{Scope: PassErrorScopeDispatch, Inner: err}
			}
			if err := scopeDispatchBindGroups(scope, binder); err != nil {
				return nil, nil, nil, &PassError{Scope: PassErrorScopeDispatch, Inner: err}
			}
			if err := flush(); err != nil {
				return nil, nil, nil, err
			}
			limit := device.Limits.MaxComputeWorkgroupsPerDimension
			if cmd.X > limit || cmd.Y > limit || cmd.Z > limit {
				return nil, nil, nil, &PassError{
					Scope: PassErrorScopeDispatch,
					Inner: &InvalidGroupSizeError{Current: [3]uint32{cmd.X, cmd.Y, cmd.Z}, Limit: limit},
				}
			}

		case cmdDispatchIndirect:
			if cmd.IndirectBuffer == nil {
				return nil, nil, nil, &PassError{Scope: PassErrorScopeDispatchIndirect, Inner: ErrNoPipelineSet}
			}
			if !device.SupportsIndirectDispatch() {
				return nil, nil, nil, &PassError{
					Scope: PassErrorScopeDispatchIndirect,
					Inner: &MissingDownlevelFlagsError{Flag: "INDIRECT_EXECUTION"},
				}
			}
			if cmd.IndirectOffset+indirectArgsSize > cmd.IndirectBuffer.Size() {
				return nil, nil, nil, &PassError{
					Scope: PassErrorScopeDispatchIndirect,
					Inner: &IndirectBufferOverrunError{Offset: cmd.IndirectOffset, BufferSize: cmd.IndirectBuffer.Size()},
				}
			}
			if err := binder.ValidateForDispatch(); err != nil {
				return nil, nil, nil, &PassError{Scope: PassErrorScopeDispatchIndirect, Inner: err}
			}
			meminit.RegisterIndirectArgs(cmd.IndirectBuffer, cmd.IndirectOffset)
			if err := scopeDispatchBindGroups(scope, binder); err != nil {
				return nil, nil, nil, &PassError{Scope: PassErrorScopeDispatchIndirect, Inner: err}
			}
			if err := scope.UseBuffer(cmd.IndirectBuffer, track.BufferUsesIndirect); err != nil {
				return nil, nil, nil, &PassError{Scope: PassErrorScopeDispatchIndirect, Inner: err}
			}
			if err := flush(); err != nil {
				return nil, nil, nil, err
			}

		case cmdPushDebugGroup:
			debugDepth++

		case cmdPopDebugGroup:
			debugDepth--
			if debugDepth < 0 {
				return nil, nil, nil, &PassError{Scope: PassErrorScopePopDebugGroup, Inner: ErrUnmatchedDebugGroup}
			}

		case cmdInsertDebugMarker:
			// No validation: any label is acceptable.

		case cmdWriteTimestamp, cmdBeginPipelineStatisticsQuery:
			if cmd.Kind == cmdWriteTimestamp && !device.Features.Contains(types.FeatureTimestampQueryInsidePasses) {
				return nil, nil, nil, &PassError{
					Scope: PassErrorScopeWriteTimestamp,
					Inner: &MissingFeatureError{Feature: "TIMESTAMP_QUERY_INSIDE_PASSES"},
				}
			}
			if cmd.QuerySet == nil || !cmd.QuerySet.InRange(cmd.QueryIndex) {
				count := uint32(0)
				if cmd.QuerySet != nil {
					count = cmd.QuerySet.Count()
				}
				scopeName := PassErrorScopeWriteTimestamp
				if cmd.Kind == cmdBeginPipelineStatisticsQuery {
					scopeName = PassErrorScopeBeginPipelineStatisticsQuery
				}
				return nil, nil, nil, &PassError{Scope: scopeName, Inner: &QuerySetIndexOutOfRangeError{Index: cmd.QueryIndex, Count: count}}
			}

		case cmdEndPipelineStatisticsQuery:
			// No extra state: the HAL backend rejects an unmatched end.
		}
	}

	if debugDepth != 0 {
		return nil, nil, nil, &PassError{Scope: PassErrorScopeEnd, Inner: ErrUnclosedDebugGroup}
	}

	return allBarriers, meminit.Drain(), plan, nil
}

// computeNonOverlappingPushConstantClears merges the compute-visible
// byte ranges of ranges into a sorted, non-overlapping set, mirroring
// wgpu-core's compute_nonoverlapping_ranges. SetPipeline uses the result to
// zero-clear a new pipeline layout's push-constant storage on a layout
// change, since stale bytes from a previous layout's push constants must
// not leak into the new layout's (possibly differently laid out) ranges.
func computeNonOverlappingPushConstantClears(ranges []hal.PushConstantRange) []hal.Range {
	var bounds []uint32
	for _, r := range ranges {
		if r.Stages&shaderStagesCompute == 0 {
			continue
		}
		bounds = append(bounds, r.Range.Start, r.Range.End)
	}
	if len(bounds) == 0 {
		return nil
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i] < bounds[j] })

	var result []hal.Range
	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]
		if start == end {
			continue
		}
		covered := false
		for _, r := range ranges {
			if r.Stages&shaderStagesCompute == 0 {
				continue
			}
			if r.Range.Start <= start && end <= r.Range.End {
				covered = true
				break
			}
		}
		if !covered {
			continue
		}
		if n := len(result); n > 0 && result[n-1].End == start {
			result[n-1].End = end
		} else {
			result = append(result, hal.Range{Start: start, End: end})
		}
	}
	return result
}

// scopeDispatchBindGroups feeds every buffer binding reachable from the
// binder's currently assigned groups into scope, classified by the
// bind-group-layout entry's declared usage.
func scopeDispatchBindGroups(scope *ComputeUsageScope, binder *Binder) error {
	n := binder.RequiredGroups()
	for i := 0; i < n; i++ {
		group := binder.Group(uint32(i))
		if group == nil {
			continue
		}
		for _, e := range group.Entries {
			if e.Buffer == nil {
				continue
			}
			entry := group.Layout.EntryByBinding(e.Binding)
			if entry == nil || !entry.IsBuffer {
				continue
			}
			use := entry.BufferUse.ToBufferUses()
			if err := scope.UseBuffer(e.Buffer, use); err != nil {
				return err
			}
		}
	}
	return nil
}

// registerBindGroupMemoryInit queues zero-fill-before-read actions for every
// buffer binding in group that is read (uniform or read-only storage) and
// marks write bindings as initialized.
func registerBindGroupMemoryInit(meminit *MemoryInitTracker, group *BindGroupBinding) {
	if group == nil {
		return
	}
	for _, e := range group.Entries {
		if e.Buffer == nil {
			continue
		}
		entry := group.Layout.EntryByBinding(e.Binding)
		if entry == nil || !entry.IsBuffer {
			continue
		}
		size := e.ResolvedSize()
		if entry.BufferUse == BufferBindingUseStorageWrite {
			meminit.RegisterWrite(e.Buffer, e.Offset, size)
			continue
		}
		meminit.RegisterRead(e.Buffer, e.Offset, size)
	}
}

// validatePushConstant checks a SetPushConstant command's byte range
// against the current pipeline layout's declared push constant ranges,
// requiring compute-stage visibility and 4-byte alignment.
func validatePushConstant(binder *Binder, cmd *Command) error {
	size := uint32(cmd.PushCount * 4)
	if cmd.PushOffset%4 != 0 || size%4 != 0 {
		return &PushConstantAlignmentError{Offset: cmd.PushOffset, Size: size}
	}
	layout := binder.layout
	if layout == nil {
		return ErrNoPipelineSet
	}
	end := cmd.PushOffset + size
	for _, r := range layout.PushConstantRanges {
		if r.Stages&shaderStagesCompute == 0 {
			continue
		}
		if cmd.PushOffset >= r.Range.Start && end <= r.Range.End {
			return nil
		}
	}
	return &PushConstantOutOfRangeError{Offset: cmd.PushOffset, Size: size}
}

// emitCommands replays pass's recorded command stream a second time,
// issuing the corresponding call on rawPass for each command. This pass
// assumes validateAndCollect already succeeded, so it performs no further
// validation -- it only resolves HAL handles through guard. Around each
// cmdSetPipeline it additionally splices in the synthetic bind-group
// rebinds and push-constant clears plan recorded for that command index,
// reproducing what wgpu-core's set_pipeline emits inline.
func emitCommands(rawPass hal.ComputePassEncoder, guard *SnatchGuard, pass *CoreComputePassEncoder, plan *replayPlan) {
	for i := range pass.base.commands {
		cmd := &pass.base.commands[i]
		switch cmd.Kind {
		case cmdSetPipeline:
			if cmd.Pipeline != nil && cmd.Pipeline.Raw != nil {
				rawPass.SetPipeline(cmd.Pipeline.Raw)
			}
			for _, entry := range plan.rebinds[i] {
				if entry.Group == nil || entry.Group.Raw == nil {
					continue
				}
				rawPass.SetBindGroup(entry.Index, entry.Group.Raw, entry.Offsets)
			}
			for _, r := range plan.pushConstantClears[i] {
				rawPass.SetPushConstants(shaderStagesCompute, r.Start, make([]uint32, (r.End-r.Start)/4))
			}
		case cmdSetBindGroup:
			if cmd.Group != nil && cmd.Group.Raw != nil {
				rawPass.SetBindGroup(cmd.GroupIndex, cmd.Group.Raw, pass.base.Offsets(cmd))
			}
		case cmdSetPushConstant:
			rawPass.SetPushConstants(shaderStagesCompute, cmd.PushOffset, pass.base.PushWords(cmd))
		case cmdDispatch:
			rawPass.Dispatch(cmd.X, cmd.Y, cmd.Z)
		case cmdDispatchIndirect:
			if halBuf := cmd.IndirectBuffer.Raw(guard); halBuf != nil {
				rawPass.DispatchIndirect(halBuf, cmd.IndirectOffset)
			}
		case cmdPushDebugGroup:
			rawPass.PushDebugGroup(pass.base.Label(cmd))
		case cmdPopDebugGroup:
			rawPass.PopDebugGroup()
		case cmdInsertDebugMarker:
			rawPass.InsertDebugMarker(pass.base.Label(cmd))
		case cmdWriteTimestamp:
			rawPass.WriteTimestamp(cmd.QuerySet.Raw(), cmd.QueryIndex)
		case cmdBeginPipelineStatisticsQuery:
			rawPass.BeginPipelineStatisticsQuery(cmd.QuerySet.Raw(), cmd.QueryIndex)
		case cmdEndPipelineStatisticsQuery:
			rawPass.EndPipelineStatisticsQuery()
		}
	}
}
