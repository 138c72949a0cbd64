package core

import (
	"sync/atomic"

	"github.com/gogpu/computepass/hal"
	"github.com/gogpu/computepass/types"
)

// Adapter represents a physical GPU adapter.
type Adapter struct {
	// Info contains information about the adapter.
	Info types.AdapterInfo
	// Features contains the features supported by the adapter.
	Features types.Features
	// Limits contains the resource limits of the adapter.
	Limits types.Limits
	// Backend identifies which graphics backend this adapter uses.
	Backend types.Backend

	halAdapter      hal.Adapter
	halCapabilities *hal.Capabilities
}

// SetHAL attaches the HAL-level adapter handle and capabilities to this
// adapter. Mock adapters (no real GPU backend available) leave these unset.
func (a *Adapter) SetHAL(halAdapter hal.Adapter, caps *hal.Capabilities) {
	a.halAdapter = halAdapter
	a.halCapabilities = caps
}

// HasHAL returns true if this adapter is backed by a real HAL implementation.
func (a *Adapter) HasHAL() bool {
	return a != nil && a.halAdapter != nil
}

// HALAdapter returns the underlying HAL adapter, or nil if there is none.
func (a *Adapter) HALAdapter() hal.Adapter {
	if a == nil {
		return nil
	}
	return a.halAdapter
}

// Capabilities returns the HAL capabilities for this adapter, or nil.
func (a *Adapter) Capabilities() *hal.Capabilities {
	if a == nil {
		return nil
	}
	return a.halCapabilities
}

// Device represents a logical GPU device.
//
// Device wraps an optional hal.Device handle behind a Snatchable so that
// destruction can race safely with in-flight command recording, following
// the same pattern used by the buffer and command-encoder types.
type Device struct {
	// Adapter is the adapter this device was created from (legacy ID-based API).
	Adapter AdapterID
	// Label is a debug label for the device.
	Label string
	// Features contains the features enabled on this device.
	Features types.Features
	// Limits contains the resource limits of this device.
	Limits types.Limits
	// Downlevel describes reduced-capability backend support (GL/GLES), used
	// to gate features like indirect compute dispatch that aren't universal.
	Downlevel hal.DownlevelCapabilities
	// Queue is the device's default queue (legacy ID-based API).
	Queue QueueID

	halAdapter *Adapter
	raw        *Snatchable[hal.Device]
	snatchLock *SnatchLock
	valid      atomic.Bool

	associatedQueue *Queue

	errorScopeManager *ErrorScopeManager

	trackerAllocators *TrackerIndexAllocators
}

// NewDevice creates a HAL-integrated device wrapping halDevice.
func NewDevice(halDevice hal.Device, adapter *Adapter, features types.Features, limits types.Limits, label string) *Device {
	d := &Device{
		Label:             label,
		Features:          features,
		Limits:            limits,
		halAdapter:        adapter,
		snatchLock:        &SnatchLock{},
		trackerAllocators: NewTrackerIndexAllocators(),
	}
	d.raw = NewSnatchable(halDevice)
	d.valid.Store(true)
	return d
}

// HasHAL returns true if this device is backed by a real HAL device.
func (d *Device) HasHAL() bool {
	return d != nil && d.raw != nil
}

// IsValid returns true if the device has not been destroyed.
func (d *Device) IsValid() bool {
	if d == nil {
		return false
	}
	if !d.HasHAL() {
		return false
	}
	return d.valid.Load()
}

// checkValid returns ErrDeviceDestroyed if the device has been destroyed.
func (d *Device) checkValid() error {
	if !d.IsValid() {
		return ErrDeviceDestroyed
	}
	return nil
}

// SnatchLock returns the device's snatch lock, or nil for non-HAL devices.
func (d *Device) SnatchLock() *SnatchLock {
	if !d.HasHAL() {
		return nil
	}
	return d.snatchLock
}

// Raw returns the underlying hal.Device handle, or nil if destroyed or
// unavailable. Callers must hold a SnatchGuard from SnatchLock().
func (d *Device) Raw(guard *SnatchGuard) hal.Device {
	if !d.HasHAL() {
		return nil
	}
	v := d.raw.Get(guard)
	if v == nil {
		return nil
	}
	return *v
}

// Destroy releases the underlying HAL device. Idempotent.
func (d *Device) Destroy() {
	if !d.HasHAL() {
		return
	}
	if !d.valid.CompareAndSwap(true, false) {
		return
	}
	guard := d.snatchLock.Write()
	defer guard.Release()
	v := d.raw.Snatch(guard)
	if v != nil {
		(*v).Destroy()
	}
}

// TrackerAllocators returns the per-resource-type tracker index allocators
// used to assign dense TrackerIndex values to resources owned by this device.
func (d *Device) TrackerAllocators() *TrackerIndexAllocators {
	if d.trackerAllocators == nil {
		d.trackerAllocators = NewTrackerIndexAllocators()
	}
	return d.trackerAllocators
}

// SupportsIndirectDispatch reports whether this device's backend can execute
// DispatchIndirect. Devices constructed without downlevel capabilities (the
// common case for fully-capable native backends) are assumed capable.
func (d *Device) SupportsIndirectDispatch() bool {
	if d.Downlevel.Flags == 0 {
		return true
	}
	return d.Downlevel.Flags&hal.DownlevelFlagsIndirectExecution != 0
}

// AssociatedQueue returns the device's default queue, if one has been set.
func (d *Device) AssociatedQueue() *Queue {
	return d.associatedQueue
}

// SetAssociatedQueue assigns the device's default queue.
func (d *Device) SetAssociatedQueue(q *Queue) {
	d.associatedQueue = q
}

// Queue represents a command queue for a device.
type Queue struct {
	// Device is the device this queue belongs to (legacy ID-based API).
	Device DeviceID
	// Label is a debug label for the queue.
	Label string
}

// Texture represents a GPU texture.
type Texture struct{}

// TextureView represents a view into a texture.
type TextureView struct{}

// Sampler represents a texture sampler.
type Sampler struct{}

// BindGroupLayout represents the layout of a bind group.
type BindGroupLayout struct{}

// PipelineLayout represents the layout of a pipeline.
type PipelineLayout struct{}

// BindGroup represents a collection of resources bound together.
type BindGroup struct{}

// ShaderModule represents a compiled shader module.
type ShaderModule struct{}

// RenderPipeline represents a render pipeline.
type RenderPipeline struct{}

// ComputePipeline represents a compute pipeline.
type ComputePipeline struct{}

// CommandEncoder represents a command encoder.
type CommandEncoder struct{}

// CommandBuffer represents a recorded command buffer.
type CommandBuffer struct{}

// QuerySet represents a set of queries (timestamp or pipeline-statistics).
type QuerySet struct {
	halQuerySet hal.QuerySet
	queryType   hal.QueryType
	count       uint32
}

// NewQuerySet wraps a HAL query set handle.
func NewQuerySet(raw hal.QuerySet, queryType hal.QueryType, count uint32) *QuerySet {
	return &QuerySet{halQuerySet: raw, queryType: queryType, count: count}
}

// Raw returns the underlying HAL query set handle.
func (q *QuerySet) Raw() hal.QuerySet {
	if q == nil {
		return nil
	}
	return q.halQuerySet
}

// Type returns the kind of queries this set holds.
func (q *QuerySet) Type() hal.QueryType { return q.queryType }

// Count returns the number of query slots in the set.
func (q *QuerySet) Count() uint32 { return q.count }

// InRange reports whether index is a valid query slot in this set.
func (q *QuerySet) InRange(index uint32) bool {
	return q != nil && index < q.count
}

// Surface represents a rendering surface.
type Surface struct{}
