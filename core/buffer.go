package core

import (
	"sync/atomic"

	"github.com/gogpu/computepass/hal"
	"github.com/gogpu/computepass/types"
)

// BufferMapState describes the current CPU-mapping state of a buffer.
type BufferMapState int

const (
	// BufferMapStateIdle means the buffer is not mapped and not being mapped.
	BufferMapStateIdle BufferMapState = iota
	// BufferMapStatePending means a MapAsync request is in flight.
	BufferMapStatePending
	// BufferMapStateMapped means the buffer is currently mapped for CPU access.
	BufferMapStateMapped
)

// initTrackerChunkSize is the granularity at which buffer memory-init state
// is tracked. Matches the chunking used by wgpu-core: fine enough to avoid
// over-clearing, coarse enough to keep the bitset small.
const initTrackerChunkSize = 4096

// BufferInitTracker records, at chunk granularity, which byte ranges of a
// buffer have been written (by a copy, a mapped write, or a clear) and so no
// longer need a zero-fill-before-read memory-init action.
type BufferInitTracker struct {
	chunks []bool
	size   uint64
}

// NewBufferInitTracker creates a tracker for a buffer of the given size.
// A nil receiver and a zero-size tracker are both safe to use: every byte
// range is reported as already initialized.
func NewBufferInitTracker(size uint64) *BufferInitTracker {
	if size == 0 {
		return &BufferInitTracker{size: 0}
	}
	count := (size + initTrackerChunkSize - 1) / initTrackerChunkSize
	return &BufferInitTracker{
		chunks: make([]bool, count),
		size:   size,
	}
}

// IsInitialized reports whether every chunk touching [offset, offset+size)
// has been marked initialized.
func (t *BufferInitTracker) IsInitialized(offset, size uint64) bool {
	if t == nil || t.size == 0 {
		return true
	}
	if size == 0 {
		return true
	}
	first := offset / initTrackerChunkSize
	last := (offset + size - 1) / initTrackerChunkSize
	for i := first; i <= last && int(i) < len(t.chunks); i++ {
		if !t.chunks[i] {
			return false
		}
	}
	return true
}

// MarkInitialized marks every chunk touching [offset, offset+size) as
// initialized.
func (t *BufferInitTracker) MarkInitialized(offset, size uint64) {
	if t == nil || t.size == 0 || size == 0 {
		return
	}
	first := offset / initTrackerChunkSize
	last := (offset + size - 1) / initTrackerChunkSize
	for i := first; i <= last && int(i) < len(t.chunks); i++ {
		t.chunks[i] = true
	}
}

// UninitializedRanges returns the [offset, size) spans that still need a
// zero-fill-before-read memory-init action, merging adjacent uninitialized
// chunks into single ranges.
func (t *BufferInitTracker) UninitializedRanges() []BufferInitRange {
	if t == nil || t.size == 0 {
		return nil
	}
	var ranges []BufferInitRange
	inRange := false
	var start uint64
	for i, init := range t.chunks {
		if !init && !inRange {
			inRange = true
			start = uint64(i) * initTrackerChunkSize
		} else if init && inRange {
			inRange = false
			end := uint64(i) * initTrackerChunkSize
			ranges = append(ranges, BufferInitRange{Offset: start, Size: end - start})
		}
	}
	if inRange {
		end := t.size
		ranges = append(ranges, BufferInitRange{Offset: start, Size: end - start})
	}
	return ranges
}

// BufferInitRange is an uninitialized byte range of a buffer.
type BufferInitRange struct {
	Offset uint64
	Size   uint64
}

// Buffer is a HAL-integrated GPU buffer, wrapped in a Snatchable so it can
// be destroyed safely while a command buffer referencing it is still being
// recorded or replayed.
type Buffer struct {
	halBuffer *Snatchable[hal.Buffer]
	device    *Device
	usage     types.BufferUsage
	size      uint64
	label     string

	destroyed atomic.Bool
	mapState  atomic.Int32

	initTracker *BufferInitTracker
	tracking    *TrackingData
}

// NewBuffer wraps halBuffer as a tracked Buffer resource owned by device.
func NewBuffer(halBuffer hal.Buffer, device *Device, usage types.BufferUsage, size uint64, label string) *Buffer {
	b := &Buffer{
		halBuffer:   NewSnatchable(halBuffer),
		device:      device,
		usage:       usage,
		size:        size,
		label:       label,
		initTracker: NewBufferInitTracker(size),
	}
	if device != nil {
		b.tracking = NewTrackingData(device.TrackerAllocators().Buffers)
	}
	return b
}

// HasHAL returns true if this buffer wraps a real hal.Buffer handle.
func (b *Buffer) HasHAL() bool {
	return b != nil && b.halBuffer != nil
}

// Device returns the owning device, or nil.
func (b *Buffer) Device() *Device {
	if b == nil {
		return nil
	}
	return b.device
}

// Usage returns the buffer's declared usage flags.
func (b *Buffer) Usage() types.BufferUsage {
	if b == nil {
		return 0
	}
	return b.usage
}

// Size returns the buffer's size in bytes.
func (b *Buffer) Size() uint64 {
	if b == nil {
		return 0
	}
	return b.size
}

// Label returns the buffer's debug label.
func (b *Buffer) Label() string {
	if b == nil {
		return ""
	}
	return b.label
}

// Raw returns the underlying hal.Buffer handle, or nil if destroyed or
// unavailable. Callers must hold a SnatchGuard from the owning device's
// SnatchLock().
func (b *Buffer) Raw(guard *SnatchGuard) hal.Buffer {
	if !b.HasHAL() {
		return nil
	}
	v := b.halBuffer.Get(guard)
	if v == nil {
		return nil
	}
	return *v
}

// IsDestroyed returns true if the buffer has been destroyed, or if it was
// never backed by HAL to begin with.
func (b *Buffer) IsDestroyed() bool {
	if b == nil {
		return true
	}
	if !b.HasHAL() {
		return true
	}
	return b.destroyed.Load()
}

// Destroy releases the underlying HAL buffer. Idempotent.
func (b *Buffer) Destroy() {
	if !b.HasHAL() {
		return
	}
	if !b.destroyed.CompareAndSwap(false, true) {
		return
	}
	if b.device == nil || !b.device.HasHAL() {
		return
	}
	writeGuard := b.device.SnatchLock().Write()
	v := b.halBuffer.Snatch(writeGuard)
	writeGuard.Release()
	if v == nil {
		return
	}

	readGuard := b.device.SnatchLock().Read()
	defer readGuard.Release()
	halDev := b.device.Raw(readGuard)
	if halDev != nil {
		halDev.DestroyBuffer(*v)
	}
}

// MapState returns the buffer's current CPU-mapping state.
func (b *Buffer) MapState() BufferMapState {
	if b == nil {
		return BufferMapStateIdle
	}
	return BufferMapState(b.mapState.Load())
}

// SetMapState updates the buffer's CPU-mapping state.
func (b *Buffer) SetMapState(state BufferMapState) {
	if b == nil {
		return
	}
	b.mapState.Store(int32(state))
}

// IsInitialized reports whether [offset, offset+size) has been written.
func (b *Buffer) IsInitialized(offset, size uint64) bool {
	if b == nil {
		return true
	}
	return b.initTracker.IsInitialized(offset, size)
}

// MarkInitialized records [offset, offset+size) as written.
func (b *Buffer) MarkInitialized(offset, size uint64) {
	if b == nil {
		return
	}
	b.initTracker.MarkInitialized(offset, size)
}

// UninitializedRanges returns the buffer's remaining zero-fill-before-read
// ranges, used by the memory-init fixup pass during replay.
func (b *Buffer) UninitializedRanges() []BufferInitRange {
	if b == nil {
		return nil
	}
	return b.initTracker.UninitializedRanges()
}

// TrackingData returns the dense tracker-index holder for this buffer, used
// by usage-scope tracking during compute/render pass replay.
func (b *Buffer) TrackingData() *TrackingData {
	if b == nil || b.tracking == nil {
		return NewTrackingData(nil)
	}
	return b.tracking
}
