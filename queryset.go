package computepass

import (
	"fmt"

	"github.com/gogpu/computepass/core"
	"github.com/gogpu/computepass/hal"
)

// QueryType selects what a QuerySet measures.
type QueryType = hal.QueryType

const (
	// QueryTypeOcclusion counts samples passing depth/stencil tests.
	QueryTypeOcclusion = hal.QueryTypeOcclusion

	// QueryTypeTimestamp writes GPU timestamps for profiling.
	QueryTypeTimestamp = hal.QueryTypeTimestamp
)

// QuerySetDescriptor describes query set creation parameters.
type QuerySetDescriptor struct {
	Label string
	Type  QueryType
	Count uint32
}

// QuerySet is a fixed-size array of GPU queries (timestamps or
// pipeline/occlusion statistics) that compute-pass commands write into.
type QuerySet struct {
	core     *core.QuerySet
	hal      hal.QuerySet
	device   *Device
	released bool
}

// CreateQuerySet creates a query set on this device.
func (d *Device) CreateQuerySet(desc *QuerySetDescriptor) (*QuerySet, error) {
	if d.released {
		return nil, ErrReleased
	}
	if desc == nil {
		return nil, fmt.Errorf("wgpu: query set descriptor is nil")
	}

	halDevice := d.halDevice()
	if halDevice == nil {
		return nil, fmt.Errorf("wgpu: device has no HAL backend")
	}

	halSet, err := halDevice.CreateQuerySet(&hal.QuerySetDescriptor{
		Label: desc.Label,
		Type:  desc.Type,
		Count: desc.Count,
	})
	if err != nil {
		return nil, err
	}

	return &QuerySet{
		core:   core.NewQuerySet(halSet, desc.Type, desc.Count),
		hal:    halSet,
		device: d,
	}, nil
}

// Count returns the number of query slots in the set.
func (q *QuerySet) Count() uint32 {
	return q.core.Count()
}

// Type returns the kind of queries this set holds.
func (q *QuerySet) Type() QueryType {
	return q.core.Type()
}

// coreQuerySet returns the engine-level query set metadata.
func (q *QuerySet) coreQuerySet() *core.QuerySet {
	if q == nil {
		return nil
	}
	return q.core
}

// Release destroys the query set.
func (q *QuerySet) Release() {
	if q.released {
		return
	}
	q.released = true
	halDevice := q.device.halDevice()
	if halDevice != nil {
		halDevice.DestroyQuerySet(q.hal)
	}
}
