// Package core re-exports the tracker-index primitives from core/track so
// that resource types (Device, Buffer, ...) can refer to them without every
// caller importing the subpackage directly.

package core

import "github.com/gogpu/computepass/core/track"

// TrackerIndex is a dense index assigned to a resource for usage tracking.
type TrackerIndex = track.TrackerIndex

// InvalidTrackerIndex marks a resource that has no tracker index assigned.
const InvalidTrackerIndex = track.InvalidTrackerIndex

// TrackerIndexAllocator hands out dense indices for a single resource type.
type TrackerIndexAllocator = track.TrackerIndexAllocator

// SharedTrackerIndexAllocator is a thread-safe handle to a TrackerIndexAllocator.
type SharedTrackerIndexAllocator = track.SharedTrackerIndexAllocator

// NewSharedTrackerIndexAllocator creates a new shared allocator.
func NewSharedTrackerIndexAllocator() *SharedTrackerIndexAllocator {
	return track.NewSharedTrackerIndexAllocator()
}

// TrackerIndexAllocators groups the per-resource-type allocators used by a device.
type TrackerIndexAllocators = track.TrackerIndexAllocators

// NewTrackerIndexAllocators creates a new TrackerIndexAllocators.
func NewTrackerIndexAllocators() *TrackerIndexAllocators {
	return track.NewTrackerIndexAllocators()
}

// TrackingData is the per-resource tracking index holder.
type TrackingData = track.TrackingData

// NewTrackingData creates tracking data and allocates an index from allocator.
func NewTrackingData(allocator *SharedTrackerIndexAllocator) *TrackingData {
	return track.NewTrackingData(allocator)
}
