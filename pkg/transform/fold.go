package transform

import (
	"fmt"

	"github.com/kestrelrv/rvcgen/pkg/opcode"
)

// foldConstants merges runs of adjacent Constant producers into one, so the
// compiled transform and its HDL rendering don't carry more literal chunks
// than necessary.
func foldConstants(in []Producer) []Producer {
	var out []Producer
	var acc *opcode.ConstantBits

	commit := func() {
		if acc == nil {
			return
		}
		out = append(out, Constant{Value: *acc})
		acc = nil
	}

	for _, p := range in {
		c, ok := p.(Constant)
		if !ok {
			commit()
			out = append(out, p)
			continue
		}
		if acc == nil {
			v := c.Value
			acc = &v
			continue
		}
		merged, err := concatConstants(*acc, c.Value)
		if err != nil {
			commit()
			v := c.Value
			acc = &v
			continue
		}
		acc = &merged
	}
	commit()
	return out
}

func concatConstants(hi, lo opcode.ConstantBits) (opcode.ConstantBits, error) {
	width := hi.Size() + lo.Size()
	if width > 32 {
		return opcode.ConstantBits{}, fmt.Errorf("transform: folded constant width %d exceeds 32 bits", width)
	}
	value := (hi.Value() << uint(lo.Size())) | lo.Value()
	return opcode.Const(fmt.Sprintf("%0*b", width, value)), nil
}

// foldReplications merges runs of adjacent single-bit producers (a 1-bit
// Copy, or an existing Replicate) that share the same source bit into one
// Replicate — the general form of sign-extension coalescing, since a
// Replicate is just a single source bit repeated.
func foldReplications(in []Producer) []Producer {
	var out []Producer
	active := false
	var curBit, count int

	commit := func() {
		if !active {
			return
		}
		if count > 1 {
			out = append(out, Replicate{Bit: curBit, Count: count})
		} else {
			out = append(out, Copy{Hi: curBit, Lo: curBit})
		}
		active = false
		count = 0
	}

	for _, p := range in {
		bit, n, ok := singleSource(p)
		if !ok {
			commit()
			out = append(out, p)
			continue
		}
		if active && bit != curBit {
			commit()
		}
		curBit = bit
		count += n
		active = true
	}
	commit()
	return out
}

func singleSource(p Producer) (bit, count int, ok bool) {
	switch v := p.(type) {
	case Copy:
		if v.Hi == v.Lo {
			return v.Hi, 1, true
		}
	case Replicate:
		return v.Bit, v.Count, true
	}
	return 0, 0, false
}
