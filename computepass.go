package computepass

import (
	"github.com/gogpu/computepass/core"
)

// ComputePassEncoder records compute dispatch commands.
//
// Created by CommandEncoder.BeginComputePass().
// Must be ended with End() before the CommandEncoder can be finished.
//
// Recording is append-only: every method here only appends to the pass's
// internal command record. Nothing is validated or sent to the GPU until
// End() replays and finalizes the pass.
//
// Every recording method returns an error, which is always core.ErrPassAlreadyEnded
// once End() has been called and nil otherwise -- mirroring wgpu-core's
// Result<(), ComputePassError> recording API, where commands after the pass
// ends fail with PassEnded rather than being silently dropped. The one
// exception: SetPipeline with a nil pipeline and DispatchIndirect with a nil
// buffer return nil without recording anything, whether or not End() has
// been called.
//
// NOT thread-safe.
type ComputePassEncoder struct {
	core    *core.CoreComputePassEncoder
	encoder *CommandEncoder
}

// SetPipeline sets the active compute pipeline.
func (p *ComputePassEncoder) SetPipeline(pipeline *ComputePipeline) error {
	if pipeline == nil {
		return nil
	}
	return p.core.SetPipeline(pipeline.meta)
}

// SetBindGroup sets a bind group for the given index.
func (p *ComputePassEncoder) SetBindGroup(index uint32, group *BindGroup, offsets []uint32) error {
	var meta *core.BindGroupBinding
	if group != nil {
		meta = group.meta
	}
	return p.core.SetBindGroup(index, meta, offsets)
}

// SetPushConstants uploads push constant data at the given byte offset.
// data is interpreted as a sequence of 32-bit words.
func (p *ComputePassEncoder) SetPushConstants(offset uint32, data []uint32) error {
	return p.core.SetPushConstant(offset, data)
}

// Dispatch dispatches compute work.
func (p *ComputePassEncoder) Dispatch(x, y, z uint32) error {
	return p.core.Dispatch(x, y, z)
}

// DispatchIndirect dispatches compute work with GPU-generated parameters.
func (p *ComputePassEncoder) DispatchIndirect(buffer *Buffer, offset uint64) error {
	if buffer == nil {
		return nil
	}
	return p.core.DispatchIndirect(buffer.coreBuffer(), offset)
}

// PushDebugGroup opens a labeled, nestable debug region.
func (p *ComputePassEncoder) PushDebugGroup(label string) error {
	return p.core.PushDebugGroup(label)
}

// PopDebugGroup closes the most recently opened debug region.
func (p *ComputePassEncoder) PopDebugGroup() error {
	return p.core.PopDebugGroup()
}

// InsertDebugMarker inserts an instantaneous, unnested debug marker.
func (p *ComputePassEncoder) InsertDebugMarker(label string) error {
	return p.core.InsertDebugMarker(label)
}

// WriteTimestamp writes a GPU timestamp into set at the given query index.
// Requires the device to have FeatureTimestampQueryInsidePasses enabled.
func (p *ComputePassEncoder) WriteTimestamp(set *QuerySet, index uint32) error {
	return p.core.WriteTimestamp(set.coreQuerySet(), index)
}

// BeginPipelineStatisticsQuery begins a pipeline statistics query.
func (p *ComputePassEncoder) BeginPipelineStatisticsQuery(set *QuerySet, index uint32) error {
	return p.core.BeginPipelineStatisticsQuery(set.coreQuerySet(), index)
}

// EndPipelineStatisticsQuery ends the most recently begun pipeline statistics query.
func (p *ComputePassEncoder) EndPipelineStatisticsQuery() error {
	return p.core.EndPipelineStatisticsQuery()
}

// End finalizes the compute pass: replays its recorded commands, validates
// them, computes resource barriers, and emits the corresponding HAL calls.
func (p *ComputePassEncoder) End() error {
	return p.core.End()
}
