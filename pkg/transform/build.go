package transform

import (
	"fmt"

	"github.com/kestrelrv/rvcgen/pkg/opcode"
)

// Transform is the compiled expansion of one compressed command into its
// base command's bit layout: an ordered (MSB-first) list of Producers whose
// widths sum to the target command's size.
type Transform struct {
	SourceName string
	TargetName string
	Producers  []Producer
}

// Build compiles the expansion of src (a 16-bit compressed command) into
// target (the 32-bit base command it decompresses to), given the static
// field bindings fixed by src's decompression mapping (may be nil).
//
// It walks target's fields MSB to LSB, grounded one-to-one on the
// reference compiler's CommandTransform construction: a constant field is
// copied as-is; a register field either resolves to a literal binding or is
// located by role in src and copied bit-for-bit (with an implicit "01"
// prefix if src's register slot is the 3-bit compressed encoding); an
// immediate field either resolves to a literal binding or is built
// bit-by-bit from src's immediate chunks, via handleImmediateChunk.
func Build(src, target *opcode.Command, bindings *opcode.Bindings) (*Transform, error) {
	t := &Transform{SourceName: src.Name(), TargetName: target.Name()}

	for _, f := range target.Fields() {
		switch field := f.(type) {
		case opcode.ConstantBits:
			t.Producers = append(t.Producers, Constant{Value: field})

		case opcode.RegReference:
			if err := t.buildRegister(src, field, bindings); err != nil {
				return nil, err
			}

		case opcode.ImmediateBits:
			if err := t.buildImmediate(src, target, field, bindings); err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("transform: %s: unhandled target field type %T", target.Name(), f)
		}
	}

	t.Producers = foldConstants(t.Producers)
	t.Producers = foldReplications(t.Producers)
	return t, nil
}

func (t *Transform) buildRegister(src *opcode.Command, field opcode.RegReference, bindings *opcode.Bindings) error {
	val, found, err := bindings.Match(field)
	if err != nil {
		return fmt.Errorf("transform: %s: %w", t.SourceName, err)
	}
	if found {
		// Base command register fields are always 5 bits wide.
		cb, err := opcode.ConstFromInt(5, int64(val))
		if err != nil {
			return fmt.Errorf("transform: %s: %w", t.SourceName, err)
		}
		t.Producers = append(t.Producers, Constant{Value: cb})
		return nil
	}

	srcField, ok := src.FindField(field)
	if !ok {
		return fmt.Errorf("transform: %s: cannot find %s register in source command", t.SourceName, field.RegType())
	}
	srcReg := srcField.(opcode.RegReference)
	if srcReg.IsCompressed() {
		t.Producers = append(t.Producers,
			Constant{Value: opcode.Const("01")},
			Copy{Hi: srcReg.Position(), Lo: srcReg.Position() - 2},
		)
	} else {
		t.Producers = append(t.Producers, Copy{Hi: srcReg.Position(), Lo: srcReg.Position() - 4})
	}
	return nil
}

func (t *Transform) buildImmediate(src, target *opcode.Command, field opcode.ImmediateBits, bindings *opcode.Bindings) error {
	val, found, err := bindings.Match(field)
	if err != nil {
		return fmt.Errorf("transform: %s: %w", t.SourceName, err)
	}
	if found {
		hi, _ := target.ImmHiBit()
		full, err := opcode.ConstFromInt(hi+1, int64(val))
		if err != nil {
			return fmt.Errorf("transform: %s: %w", t.SourceName, err)
		}
		sl, err := full.Slice(field.Hi(), field.Lo())
		if err != nil {
			return fmt.Errorf("transform: %s: %w", t.SourceName, err)
		}
		t.Producers = append(t.Producers, Constant{Value: sl})
		return nil
	}
	return t.handleImmediateChunk(src, field)
}

// handleImmediateChunk builds the producers for one target immediate chunk
// that has no static binding, walking its bits from Hi down to Lo. Above
// src's declared immediate range it emits sign- or zero-extension; within
// range it copies source bits, collapsing contiguous runs (same run of
// target bits mapping to a contiguous run of source bits) into a single
// Copy, and gaps where src has no corresponding bit into a zero Constant.
func (t *Transform) handleImmediateChunk(src *opcode.Command, c opcode.ImmediateBits) error {
	srcImmHi, hasSrcImm := src.ImmHiBit()
	if !hasSrcImm {
		return fmt.Errorf("transform: %s: no immediate field in source command", t.SourceName)
	}

	var isZero *bool
	var hiBit, loBit, srcHiBit int

	commit := func() {
		if isZero == nil {
			return
		}
		if *isZero {
			cb, _ := opcode.ConstFromInt(hiBit-loBit+1, 0)
			t.Producers = append(t.Producers, Constant{Value: cb})
		} else {
			t.Producers = append(t.Producers, Copy{Hi: srcHiBit, Lo: srcHiBit - (hiBit - loBit)})
		}
		isZero = nil
	}

	copyBit := func(immBit int) {
		srcChunk, ok := src.FindImmediateChunk(immBit)
		curIsZero := !ok
		if isZero != nil && *isZero != curIsZero {
			commit()
		}
		if isZero == nil {
			z := curIsZero
			isZero = &z
			if !curIsZero {
				srcHiBit = srcChunk.Position() - (srcChunk.Hi() - immBit)
			}
			hiBit = immBit
		} else if !*isZero {
			srcBit := srcChunk.Position() - (srcChunk.Hi() - immBit)
			if srcBit != srcHiBit-(hiBit-immBit) {
				commit()
				z := false
				isZero = &z
				srcHiBit = srcChunk.Position() - (srcChunk.Hi() - immBit)
				hiBit = immBit
			}
		}
		loBit = immBit
	}

	if c.Hi() > srcImmHi {
		loSignBit := c.Lo()
		if srcImmHi+1 > loSignBit {
			loSignBit = srcImmHi + 1
		}
		if signed, _ := src.ImmIsSigned(); signed {
			srcChunk, ok := src.FindImmediateChunk(srcImmHi)
			if !ok {
				return fmt.Errorf("transform: %s: sign bit not found in source command", t.SourceName)
			}
			t.Producers = append(t.Producers, Replicate{Bit: srcChunk.Position(), Count: c.Hi() - loSignBit + 1})
		} else {
			cb, err := opcode.ConstFromInt(c.Hi()-loSignBit+1, 0)
			if err != nil {
				return fmt.Errorf("transform: %s: %w", t.SourceName, err)
			}
			t.Producers = append(t.Producers, Constant{Value: cb})
		}
		for immBit := loSignBit - 1; immBit >= c.Lo(); immBit-- {
			copyBit(immBit)
		}
	} else {
		for immBit := c.Hi(); immBit >= c.Lo(); immBit-- {
			copyBit(immBit)
		}
	}
	commit()
	return nil
}
