package core

// maxBindGroups bounds the number of simultaneously bound groups tracked by
// a Binder. This mirrors gputypes.DefaultLimits().MaxBindGroups and is used
// only to size the invalid_mask and slot slice; actual limit enforcement
// happens against the device's real Limits at bind-group-layout creation.
const maxBindGroups = 8

// binderSlot holds the bind group currently assigned to one group index.
type binderSlot struct {
	group   *BindGroupBinding
	offsets []uint32
	// layout is the bind group layout the currently bound pipeline layout
	// expects at this slot, captured at the most recent ChangePipelineLayout.
	layout *BindGroupLayoutBinding
}

// DirtyBindEntry names a bind-group slot whose raw HAL binding must be
// (re)issued, either because it was just assigned or because it remained
// logically valid across a pipeline-layout change but was bound under the
// old layout. This mirrors wgpu-core's Binder::assign_group and
// Binder::change_pipeline_layout, which both return the set of entries the
// caller must re-emit set_bind_group for.
type DirtyBindEntry struct {
	Index   uint32
	Group   *BindGroupBinding
	Offsets []uint32
}

// Binder tracks per-slot bind group assignment and pipeline-layout
// compatibility for a single compute pass, following wgpu-core's binder:
// an assigned group stays valid across a pipeline change as long as the
// new pipeline layout's bind group layout at that slot is identical
// (by pointer) to the group's own layout -- the "prefix
// compatibility" rule. Groups beyond the first mismatch are invalidated.
type Binder struct {
	slots       [maxBindGroups]binderSlot
	invalidMask uint32
	layout      *PipelineLayoutBinding
}

// NewBinder creates an empty Binder.
func NewBinder() *Binder {
	return &Binder{}
}

// ChangePipelineLayout updates the binder's notion of the current pipeline
// layout. A slot is compatible when it holds a group whose own layout is the
// one the new layout expects at that index; the first incompatible slot and
// every slot after it are invalidated.
//
// It returns startIndex, the lowest incompatible slot (maxBindGroups if every
// slot is compatible), and dirty, the compatible slots below it whose raw HAL
// binding must be reissued because the pipeline layout object itself
// changed. This mirrors wgpu-core's Binder::change_pipeline_layout,
// whose (start_index, entries) result the caller re-emits set_bind_group
// from when a new pipeline is bound without a matching new SetBindGroup.
func (b *Binder) ChangePipelineLayout(layout *PipelineLayoutBinding) (startIndex uint32, dirty []DirtyBindEntry) {
	prevLayout := b.layout
	b.layout = layout
	startIndex = maxBindGroups
	if layout == nil {
		b.invalidMask = ^uint32(0)
		return startIndex, nil
	}

	layoutChanged := prevLayout != layout
	diverged := false
	for i := 0; i < maxBindGroups; i++ {
		var want *BindGroupLayoutBinding
		if i < len(layout.BindGroupLayouts) {
			want = layout.BindGroupLayouts[i]
		}
		slot := &b.slots[i]
		slot.layout = want
		if diverged || want == nil || slot.group == nil || slot.group.Layout != want {
			if !diverged {
				startIndex = uint32(i)
			}
			diverged = true
			b.invalidMask |= 1 << uint(i)
			continue
		}
		// The assigned group's own layout is the one the new pipeline
		// expects here, so it remains valid, but the raw HAL binding was
		// issued under the previous pipeline layout object and must be
		// reissued under the new one.
		b.invalidMask &^= 1 << uint(i)
		if layoutChanged {
			dirty = append(dirty, DirtyBindEntry{Index: uint32(i), Group: slot.group, Offsets: slot.offsets})
		}
	}
	return startIndex, dirty
}

// AssignGroup binds group at the given index with the given dynamic
// offsets. It returns the resulting DirtyBindEntry (nil if the slot was
// cleared or remains incompatible) for the caller to re-emit set_bind_group
// for, mirroring wgpu-core's Binder::assign_group, plus an error if index is
// out of range or a bound buffer binding is too small for its layout's
// minimum binding size.
func (b *Binder) AssignGroup(index uint32, group *BindGroupBinding, offsets []uint32) (*DirtyBindEntry, error) {
	if index >= maxBindGroups {
		return nil, &BindGroupIndexOutOfRangeError{Index: index, Max: maxBindGroups}
	}
	if group != nil {
		if err := validateBindGroupSizes(group); err != nil {
			return nil, err
		}
	}

	slot := &b.slots[index]
	slot.group = group
	slot.offsets = offsets

	if b.layout != nil && index < uint32(len(b.layout.BindGroupLayouts)) {
		slot.layout = b.layout.BindGroupLayouts[index]
	}

	if group != nil && slot.layout != nil && group.Layout == slot.layout {
		b.invalidMask &^= 1 << index
		return &DirtyBindEntry{Index: index, Group: group, Offsets: offsets}, nil
	}
	// Either cleared, or assigned but not matching the pipeline's expected
	// layout at this slot -- the latter is surfaced as
	// IncompatibleBindGroupError when a dispatch is validated, not here,
	// since a pipeline change or another AssignGroup may still reconcile it.
	b.invalidMask |= 1 << index
	return nil, nil
}

// validateBindGroupSizes re-checks each buffer binding's resolved size
// against its layout's MinBindingSize. wgpu calls this "late validation":
// the layout declares a minimum but the bound buffer's live size (which can
// depend on dynamic offsets) must be re-checked at bind time.
func validateBindGroupSizes(group *BindGroupBinding) error {
	for _, e := range group.Entries {
		entry := group.Layout.EntryByBinding(e.Binding)
		if entry == nil || !entry.IsBuffer {
			continue
		}
		if entry.MinBindingSize == 0 {
			continue
		}
		if e.ResolvedSize() < entry.MinBindingSize {
			return &BufferBindingSizeError{
				Binding:  e.Binding,
				Size:     e.ResolvedSize(),
				MinSize:  entry.MinBindingSize,
			}
		}
	}
	return nil
}

// RequiredGroups returns how many bind group slots the current pipeline
// layout expects.
func (b *Binder) RequiredGroups() int {
	if b.layout == nil {
		return 0
	}
	return len(b.layout.BindGroupLayouts)
}

// ValidateForDispatch checks that every bind group slot required by the
// current pipeline layout is both assigned and compatible, returning the
// first violation found.
func (b *Binder) ValidateForDispatch() error {
	if b.layout == nil {
		return ErrNoPipelineSet
	}
	n := b.RequiredGroups()
	for i := 0; i < n; i++ {
		slot := &b.slots[i]
		if slot.group == nil {
			return &BindGroupMissingError{Index: uint32(i)}
		}
		if b.invalidMask&(1<<uint(i)) != 0 {
			diff := []string{"assigned bind group's layout does not match the pipeline layout's expected layout at this slot"}
			return &IncompatibleBindGroupError{Index: uint32(i), Diff: diff}
		}
	}
	return nil
}

// Group returns the bind group currently assigned at index, or nil.
func (b *Binder) Group(index uint32) *BindGroupBinding {
	if index >= maxBindGroups {
		return nil
	}
	return b.slots[index].group
}

// Offsets returns the dynamic offsets currently assigned at index.
func (b *Binder) Offsets(index uint32) []uint32 {
	if index >= maxBindGroups {
		return nil
	}
	return b.slots[index].offsets
}
