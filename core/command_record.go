package core

import "github.com/gogpu/gputypes"

// commandKind tags the variant held by a recorded Command. Commands are
// plain data, not closures: the replay driver in pass_finalize.go switches
// on Kind and reads only the fields that kind defines, so a recorded pass
// can be walked more than once (once to validate and collect barriers, a
// second time to emit HAL calls) without re-invoking application code.
type commandKind uint8

const (
	cmdSetPipeline commandKind = iota
	cmdSetBindGroup
	cmdSetPushConstant
	cmdDispatch
	cmdDispatchIndirect
	cmdPushDebugGroup
	cmdPopDebugGroup
	cmdInsertDebugMarker
	cmdWriteTimestamp
	cmdBeginPipelineStatisticsQuery
	cmdEndPipelineStatisticsQuery
)

// Command is one recorded compute-pass command. Only the fields relevant to
// Kind are populated; the rest are left zero. Variable-length payloads
// (dynamic offsets, push constant words, debug labels) are not stored
// inline -- they live in BasePass's side buffers, and Command holds a
// start/count pair into them, following wgpu-core's DynamicOffsetStateView
// pattern of keeping the command stream itself fixed-size and cheap to
// append.
type Command struct {
	Kind commandKind

	// cmdSetPipeline
	Pipeline *ComputePipelineBinding

	// cmdSetBindGroup
	GroupIndex   uint32
	Group        *BindGroupBinding
	OffsetsStart int
	OffsetsCount int

	// cmdSetPushConstant
	PushOffset uint32
	PushStart  int
	PushCount  int

	// cmdDispatch
	X, Y, Z uint32

	// cmdDispatchIndirect
	IndirectBuffer *Buffer
	IndirectOffset uint64

	// cmdPushDebugGroup / cmdInsertDebugMarker
	LabelStart int
	LabelLen   int

	// cmdWriteTimestamp / cmdBeginPipelineStatisticsQuery
	QuerySet   *QuerySet
	QueryIndex uint32
}

// BasePass is the append-only record of a single compute pass: the command
// stream plus the side buffers that hold each command's variable-length
// data. Recording a command never touches the HAL -- it only appends to
// these slices -- which is what makes pass recording cheap regardless of
// how the pass is eventually replayed.
type BasePass struct {
	Label string

	commands     []Command
	offsets      []uint32
	pushConstant []uint32
	labelBytes   []byte
}

// NewBasePass creates an empty record for a compute pass named label.
func NewBasePass(label string) *BasePass {
	return &BasePass{Label: label}
}

// Len reports how many commands have been recorded.
func (b *BasePass) Len() int { return len(b.commands) }

// Last returns a pointer to the most recently appended command, or nil if
// the pass is empty.
func (b *BasePass) Last() *Command {
	if len(b.commands) == 0 {
		return nil
	}
	return &b.commands[len(b.commands)-1]
}

func (b *BasePass) push(c Command) {
	b.commands = append(b.commands, c)
}

func (b *BasePass) pushOffsets(offsets []uint32) (start, count int) {
	start = len(b.offsets)
	b.offsets = append(b.offsets, offsets...)
	return start, len(offsets)
}

func (b *BasePass) pushWords(data []uint32) (start, count int) {
	start = len(b.pushConstant)
	b.pushConstant = append(b.pushConstant, data...)
	return start, len(data)
}

func (b *BasePass) pushLabel(label string) (start, length int) {
	start = len(b.labelBytes)
	b.labelBytes = append(b.labelBytes, label...)
	return start, len(label)
}

// Offsets slices out the dynamic offsets recorded for a SetBindGroup command.
func (b *BasePass) Offsets(c *Command) []uint32 {
	return b.offsets[c.OffsetsStart : c.OffsetsStart+c.OffsetsCount]
}

// PushWords slices out the push constant words recorded for a
// SetPushConstant command.
func (b *BasePass) PushWords(c *Command) []uint32 {
	return b.pushConstant[c.PushStart : c.PushStart+c.PushCount]
}

// Label slices out the debug label recorded for a debug-group/marker command.
func (b *BasePass) Label(c *Command) string {
	return string(b.labelBytes[c.LabelStart : c.LabelStart+c.LabelLen])
}

// Commands returns the recorded command stream for replay. Callers must
// treat it as read-only.
func (b *BasePass) Commands() []Command { return b.commands }

// shaderStagesCompute is used to validate push-constant visibility without
// importing the root package's re-exported alias.
const shaderStagesCompute = gputypes.ShaderStageCompute
