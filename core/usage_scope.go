package core

import (
	"github.com/gogpu/computepass/core/track"
	"github.com/gogpu/computepass/hal"
)

// ComputeUsageScope accumulates buffer usage for a single Dispatch /
// DispatchIndirect command. It is the innermost of the three usage
// populations the pass driver maintains: per-dispatch scope, pass-wide
// intermediate trackers, and the command buffer's persistent trackers
// (held on PassTrackers below).
type ComputeUsageScope struct {
	scope   *track.BufferUsageScope
	buffers map[track.TrackerIndex]*Buffer
}

// NewComputeUsageScope creates an empty scope, reused across dispatches by
// calling Clear() rather than reallocating.
func NewComputeUsageScope() *ComputeUsageScope {
	return &ComputeUsageScope{
		scope:   track.NewBufferUsageScope(),
		buffers: make(map[track.TrackerIndex]*Buffer),
	}
}

// Clear resets the scope for the next dispatch.
func (s *ComputeUsageScope) Clear() {
	s.scope.Clear()
	for k := range s.buffers {
		delete(s.buffers, k)
	}
}

// UseBuffer records that buf is used with the given usage flags within the
// current dispatch. Returns a UsageConflictInPassError if buf was already
// used incompatibly earlier in the same dispatch (e.g. storage-write and
// storage-read-only in the same Dispatch call).
func (s *ComputeUsageScope) UseBuffer(buf *Buffer, use track.BufferUses) error {
	if buf == nil {
		return nil
	}
	idx := buf.TrackingData().Index()
	if idx == InvalidTrackerIndex {
		// Buffer has no tracker index (e.g. built without a device); usage
		// tracking is skipped rather than treated as an error, matching
		// core/track's nil-safe stance elsewhere.
		return nil
	}
	if err := s.scope.SetUsage(idx, use); err != nil {
		return &UsageConflictInPassError{Inner: err}
	}
	s.buffers[idx] = buf
	return nil
}

// PassTrackers holds the usage populations that persist across the whole
// compute pass (and, conceptually, the whole command buffer): the
// intermediate tracker accumulates committed per-dispatch scopes and
// reports the barriers needed between them.
type PassTrackers struct {
	intermediate *track.BufferTracker
	buffers      map[track.TrackerIndex]*Buffer
}

// NewPassTrackers creates empty pass-wide trackers.
func NewPassTrackers() *PassTrackers {
	return &PassTrackers{
		intermediate: track.NewBufferTracker(),
		buffers:      make(map[track.TrackerIndex]*Buffer),
	}
}

// Flush merges a dispatch-local scope into the pass-wide intermediate
// tracker, returning the HAL buffer barriers needed to transition any
// buffers whose usage changed since they were last used in this pass.
// This is the "flush protocol" described for C4: merge into scope (already
// done via UseBuffer), detect conflicts (already done via UseBuffer),
// move to intermediate trackers computing transitions, and return them so
// the pass driver can drain them as HAL barriers emitted in the pre-body.
func (t *PassTrackers) Flush(guard *SnatchGuard, scope *ComputeUsageScope) []hal.BufferBarrier {
	transitions := t.intermediate.Merge(scope.scope)
	if len(transitions) == 0 {
		return nil
	}
	barriers := make([]hal.BufferBarrier, 0, len(transitions))
	for _, tr := range transitions {
		buf, ok := scope.buffers[tr.Index]
		if !ok {
			buf = t.buffers[tr.Index]
		}
		if buf == nil {
			continue
		}
		t.buffers[tr.Index] = buf
		halBuf := buf.Raw(guard)
		if halBuf == nil {
			continue
		}
		if !tr.Usage.NeedsBarrier() {
			continue
		}
		barriers = append(barriers, tr.IntoHAL(halBuf))
	}
	return barriers
}
