package core

import (
	"github.com/gogpu/computepass/core/track"
	"github.com/gogpu/computepass/hal"
)

// The types in this file are the lightweight binding metadata that the
// root-level computepass package builds when it creates bind group layouts,
// pipeline layouts, bind groups and compute pipelines, and hands to the
// compute-pass engine below. They exist so the engine can resolve and
// validate bindings without the core package importing the root package
// (which would create an import cycle, since the root package imports
// core).

// BufferBindingUse classifies how a single bind group entry's buffer is
// used, derived from its BindGroupLayoutEntry at layout-creation time.
type BufferBindingUse uint8

const (
	// BufferBindingUseUniform marks a uniform-buffer binding (read-only).
	BufferBindingUseUniform BufferBindingUse = iota
	// BufferBindingUseStorageRead marks a read-only storage-buffer binding.
	BufferBindingUseStorageRead
	// BufferBindingUseStorageWrite marks a read-write storage-buffer binding.
	BufferBindingUseStorageWrite
)

// ToBufferUses converts a binding classification to the internal track.BufferUses
// flag used by the usage scope and tracker.
func (u BufferBindingUse) ToBufferUses() track.BufferUses {
	switch u {
	case BufferBindingUseStorageWrite:
		return track.BufferUsesStorageWrite
	case BufferBindingUseStorageRead:
		return track.BufferUsesStorageRead
	default:
		return track.BufferUsesUniform
	}
}

// BindGroupLayoutEntryBinding describes one entry of a bind group layout,
// as needed by bind-group validation and usage-scope computation. Only the
// buffer-entry shape is modeled; sampler/texture entries are tracked by
// presence only (no storage-texture usage tracking in this engine -- see
// DESIGN.md).
type BindGroupLayoutEntryBinding struct {
	Binding          uint32
	IsBuffer         bool
	BufferUse        BufferBindingUse
	HasDynamicOffset bool
	MinBindingSize   uint64
}

// BindGroupLayoutBinding is the metadata for a bind group layout, built by
// the root package from a BindGroupLayoutDescriptor.
type BindGroupLayoutBinding struct {
	// Entries holds the per-binding metadata of this layout. The binder's
	// prefix-compatibility check uses the *BindGroupLayoutBinding pointer
	// itself as the layout's identity: two layouts are compatible if and
	// only if the pointers are identical, and structurally equal layouts
	// are not deduplicated.
	Entries []BindGroupLayoutEntryBinding
}

// EntryByBinding finds the entry metadata for a given binding slot, or nil.
func (l *BindGroupLayoutBinding) EntryByBinding(binding uint32) *BindGroupLayoutEntryBinding {
	if l == nil {
		return nil
	}
	for i := range l.Entries {
		if l.Entries[i].Binding == binding {
			return &l.Entries[i]
		}
	}
	return nil
}

// PipelineLayoutBinding is the metadata for a pipeline layout: the ordered
// list of bind group layouts it expects at each group index.
type PipelineLayoutBinding struct {
	BindGroupLayouts []*BindGroupLayoutBinding
	// PushConstantRanges are the push constant ranges declared for this
	// layout, used to validate SetPushConstant offset/size/stage at record
	// time without reaching into the HAL descriptor.
	PushConstantRanges []hal.PushConstantRange
}

// ComputePipelineBinding is the metadata for a compute pipeline: its HAL
// handle plus the pipeline layout it was created with.
type ComputePipelineBinding struct {
	Raw    hal.ComputePipeline
	Layout *PipelineLayoutBinding
}

// BindGroupEntryBinding is one resolved resource binding within a bind
// group, as constructed by the root package from a BindGroupDescriptor.
type BindGroupEntryBinding struct {
	Binding uint32
	Buffer  *Buffer
	Offset  uint64
	Size    uint64 // resolved size; 0 means "rest of buffer from Offset"
}

// BindGroupBinding is the metadata for a bind group: its layout plus the
// resolved resource bindings, built by the root package at CreateBindGroup
// time.
type BindGroupBinding struct {
	Raw     hal.BindGroup
	Layout  *BindGroupLayoutBinding
	Entries []BindGroupEntryBinding
}

// ResolvedSize returns the binding's size, resolving a 0 ("rest of buffer")
// size against the bound buffer.
func (e BindGroupEntryBinding) ResolvedSize() uint64 {
	if e.Size != 0 {
		return e.Size
	}
	if e.Buffer == nil {
		return 0
	}
	if e.Offset >= e.Buffer.Size() {
		return 0
	}
	return e.Buffer.Size() - e.Offset
}
