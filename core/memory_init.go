package core

// MemoryInitAction is a pending zero-fill-before-read fixup: the named
// buffer range must be cleared to zero before the pass body executes,
// because it is read by a binding or an indirect dispatch argument buffer
// but was never previously written.
//
// Texture memory-init (including the discard-fixup for textures left in
// the discarded state by a prior pass) is out of scope for this engine:
// core.Texture has no HAL-backed storage of its own (texture resources are
// thin HAL wrappers owned directly by the root package, see DESIGN.md), so
// there is nowhere in core to hang a per-texture init tracker. Buffer
// memory-init covers the dominant case for compute passes: storage and
// indirect-argument buffers.
type MemoryInitAction struct {
	Buffer *Buffer
	Offset uint64
	Size   uint64
}

// MemoryInitTracker accumulates MemoryInitActions discovered while replaying
// a compute pass's recorded commands, to be emitted as buffer clears in the
// command encoder's pre-body, ahead of the pass's own HAL commands.
type MemoryInitTracker struct {
	actions []MemoryInitAction
}

// NewMemoryInitTracker creates an empty tracker.
func NewMemoryInitTracker() *MemoryInitTracker {
	return &MemoryInitTracker{}
}

// RegisterRead records that [offset, offset+size) of buf is read by the
// pass, queuing zero-fill actions for any still-uninitialized sub-ranges
// and then marking the whole range initialized (the pending clear will
// initialize it before the pass body runs).
func (t *MemoryInitTracker) RegisterRead(buf *Buffer, offset, size uint64) {
	if buf == nil || size == 0 {
		return
	}
	if buf.IsInitialized(offset, size) {
		return
	}
	for _, r := range buf.UninitializedRanges() {
		start := max64(r.Offset, offset)
		end := min64(r.Offset+r.Size, offset+size)
		if start >= end {
			continue
		}
		t.actions = append(t.actions, MemoryInitAction{
			Buffer: buf,
			Offset: start,
			Size:   end - start,
		})
	}
	buf.MarkInitialized(offset, size)
}

// RegisterWrite records that [offset, offset+size) of buf is fully
// overwritten by the pass, which initializes it without needing a clear.
func (t *MemoryInitTracker) RegisterWrite(buf *Buffer, offset, size uint64) {
	if buf == nil || size == 0 {
		return
	}
	buf.MarkInitialized(offset, size)
}

// indirectArgsSize is the size in bytes of a DispatchIndirect argument
// struct: three u32 workgroup counts (x, y, z).
const indirectArgsSize = 3 * 4

// RegisterIndirectArgs records the 12-byte DispatchIndirectArgs read at
// offset in buf.
func (t *MemoryInitTracker) RegisterIndirectArgs(buf *Buffer, offset uint64) {
	t.RegisterRead(buf, offset, indirectArgsSize)
}

// Drain returns the accumulated actions and resets the tracker.
func (t *MemoryInitTracker) Drain() []MemoryInitAction {
	actions := t.actions
	t.actions = nil
	return actions
}

func max64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
