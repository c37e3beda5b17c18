package opcode

import "fmt"

// Command is an immutable, positioned instruction layout: an ordered list of
// fields whose widths sum to Size bits, MSB first. Position, ImmHiBit,
// ImmIsSigned and ImmAlign are all derived once by NewCommand and never
// recomputed.
type Command struct {
	name        string
	size        int
	fields      []Field
	immIsSigned *bool
	immHiBit    *int
	immAlign    int
	isImmOffset bool
}

// NewCommand lays out fields MSB-first into a command of the given bit size,
// assigning each field's Position, and derives the command's immediate
// metadata. isImmOffset marks commands whose immediate is rendered as an
// address offset, imm(xN), in assembly text (the catalog sets it for loads
// and stores only).
//
// It is an error for the field widths not to sum to size, or for immediate
// chunks to disagree on signedness.
func NewCommand(name string, size int, isImmOffset bool, fields ...Field) (*Command, error) {
	cmd := &Command{name: name, size: size, isImmOffset: isImmOffset}
	pos := size - 1
	positioned := make([]Field, len(fields))
	for i, f := range fields {
		switch v := f.(type) {
		case ConstantBits:
			v.pos = pos
			positioned[i] = v
		case ImmediateBits:
			v.pos = pos
			positioned[i] = v
			if cmd.immIsSigned == nil {
				s := v.signed
				cmd.immIsSigned = &s
			} else if *cmd.immIsSigned != v.signed {
				return nil, fmt.Errorf("opcode: command %s mixes signed and unsigned immediate chunks", name)
			}
			if cmd.immHiBit == nil || v.hi > *cmd.immHiBit {
				h := v.hi
				cmd.immHiBit = &h
			}
		case RegReference:
			v.pos = pos
			positioned[i] = v
		default:
			return nil, fmt.Errorf("opcode: command %s has unsupported field type %T", name, f)
		}
		pos -= f.Size()
	}
	total := 0
	for _, f := range positioned {
		total += f.Size()
	}
	if total != size {
		return nil, fmt.Errorf("opcode: command %s field widths sum to %d, want %d", name, total, size)
	}
	cmd.fields = positioned

	if cmd.immIsSigned != nil {
		for i := 0; i < size; i++ {
			if _, ok := cmd.FindImmediateChunk(i); !ok {
				cmd.immAlign = i + 1
				continue
			}
			break
		}
	}
	return cmd, nil
}

func (c *Command) Name() string   { return c.name }
func (c *Command) Size() int      { return c.size }
func (c *Command) IsImmOffset() bool { return c.isImmOffset }

// Fields returns the command's fields in declaration (MSB-first) order.
// Callers must not mutate the returned slice's contents' positions; the
// slice itself is a fresh copy.
func (c *Command) Fields() []Field {
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// ImmHiBit returns the highest logical immediate bit this command declares,
// or (0, false) if the command has no immediate field at all.
func (c *Command) ImmHiBit() (int, bool) {
	if c.immHiBit == nil {
		return 0, false
	}
	return *c.immHiBit, true
}

// ImmIsSigned reports whether this command's immediate is sign-extended,
// or (false, false) if the command has no immediate field.
func (c *Command) ImmIsSigned() (bool, bool) {
	if c.immIsSigned == nil {
		return false, false
	}
	return *c.immIsSigned, true
}

// ImmAlign is the count of low-order immediate bits this command leaves
// implicit (always zero) rather than encoding explicitly.
func (c *Command) ImmAlign() int { return c.immAlign }

// FindField returns the first field matching ref's role, in declaration
// order.
func (c *Command) FindField(ref FieldRef) (Field, bool) {
	for _, f := range c.fields {
		if ref.matchesField(f) {
			return f, true
		}
	}
	return nil, false
}

// FindImmediateChunk returns the immediate chunk covering logical bit b, if
// any.
func (c *Command) FindImmediateChunk(b int) (ImmediateBits, bool) {
	for _, f := range c.fields {
		ib, ok := f.(ImmediateBits)
		if !ok {
			continue
		}
		if b >= ib.lo && b <= ib.hi {
			return ib, true
		}
	}
	return ImmediateBits{}, false
}

// ConstantBitAt returns the value of the opcode bit at the given position
// (0 = LSB of the whole command), if that bit belongs to a ConstantBits
// field. ok is false if the position falls in a non-constant field.
func (c *Command) ConstantBitAt(position int) (value int, ok bool) {
	for _, f := range c.fields {
		sz := f.Size()
		lo := f.Position() - sz + 1
		if position < lo || position > f.Position() {
			continue
		}
		cb, isConst := f.(ConstantBits)
		if !isConst {
			return 0, false
		}
		bitInField := position - lo
		return int(cb.Bit(bitInField)), true
	}
	return 0, false
}

// FieldCovering returns the field that owns the opcode bit at the given
// position.
func (c *Command) FieldCovering(position int) (Field, bool) {
	for _, f := range c.fields {
		sz := f.Size()
		lo := f.Position() - sz + 1
		if position >= lo && position <= f.Position() {
			return f, true
		}
	}
	return nil, false
}
