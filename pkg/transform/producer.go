// Package transform compiles a compressed command's 16-bit-to-32-bit
// expansion into an ordered list of output producers — the pieces an HDL
// emitter or a software decoder evaluates, in order, to reconstruct the
// base command's bits from the compressed input.
package transform

import "github.com/kestrelrv/rvcgen/pkg/opcode"

// Producer emits some contiguous span of the 32-bit decompressed output,
// most-significant producer first.
type Producer interface {
	Width() int
}

// Constant emits a fixed bit pattern, independent of the input.
type Constant struct {
	Value opcode.ConstantBits
}

func (c Constant) Width() int { return c.Value.Size() }

// Copy emits bits [Hi:Lo] of the 16-bit compressed input verbatim (Hi >= Lo).
type Copy struct {
	Hi, Lo int
}

func (c Copy) Width() int { return c.Hi - c.Lo + 1 }

// Replicate emits compressed-input bit Bit, repeated Count times — the
// sign-extension idiom for widening a short immediate.
type Replicate struct {
	Bit   int
	Count int
}

func (r Replicate) Width() int { return r.Count }
