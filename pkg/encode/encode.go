// Package encode turns a Command plus a concrete set of Bindings into
// encoded opcode bytes or assembler text: the canonical, ground-truth
// rendering that the transform and selftest packages check their own work
// against.
package encode

import (
	"fmt"

	"github.com/kestrelrv/rvcgen/pkg/opcode"
)

// Encode packs cmd's fields MSB-first into size/8 bytes (size is 16 or 32),
// resolving each register and immediate field against bindings. It returns
// an error if a field has no binding, if a constrained register's binding
// resolves to its disallowed value, or if a negative value is bound to an
// unsigned immediate chunk.
func Encode(cmd *opcode.Command, bindings *opcode.Bindings) ([]byte, error) {
	size := cmd.Size()
	if size != 16 && size != 32 {
		return nil, fmt.Errorf("encode: %s: bad opcode length %d", cmd.Name(), size)
	}

	var acc uint64
	for _, f := range cmd.Fields() {
		chunkVal, chunkSize, err := encodeField(cmd, f, bindings)
		if err != nil {
			return nil, err
		}
		acc = (acc << uint(chunkSize)) | (chunkVal & (1<<uint(chunkSize) - 1))
	}

	out := make([]byte, size/8)
	for i := range out {
		shift := uint(size - 8*(i+1))
		out[i] = byte((acc >> shift) & 0xff)
	}
	return out, nil
}

func encodeField(cmd *opcode.Command, f opcode.Field, bindings *opcode.Bindings) (value uint64, size int, err error) {
	switch v := f.(type) {
	case opcode.ConstantBits:
		return uint64(v.Value()), v.Size(), nil

	case opcode.RegReference:
		val, found, err := bindings.Match(v)
		if err != nil {
			return 0, 0, fmt.Errorf("encode: %s: %w", cmd.Name(), err)
		}
		if !found {
			return 0, 0, fmt.Errorf("encode: %s: no binding for %s register", cmd.Name(), v.RegType())
		}
		cb, err := v.BindValue(val)
		if err != nil {
			return 0, 0, fmt.Errorf("encode: %s: %w", cmd.Name(), err)
		}
		return uint64(cb.Value()), cb.Size(), nil

	case opcode.ImmediateBits:
		val, found, err := bindings.Match(v)
		if err != nil {
			return 0, 0, fmt.Errorf("encode: %s: %w", cmd.Name(), err)
		}
		if !found {
			return 0, 0, fmt.Errorf("encode: %s: no binding for immediate", cmd.Name())
		}
		if val < 0 && !v.Signed() {
			return 0, 0, fmt.Errorf("encode: %s: negative value %d bound to unsigned immediate", cmd.Name(), val)
		}
		full, err := opcode.ConstFromInt(32, int64(val))
		if err != nil {
			return 0, 0, fmt.Errorf("encode: %s: %w", cmd.Name(), err)
		}
		sl, err := full.Slice(v.Hi(), v.Lo())
		if err != nil {
			return 0, 0, fmt.Errorf("encode: %s: %w", cmd.Name(), err)
		}
		return uint64(sl.Value()), sl.Size(), nil

	default:
		return 0, 0, fmt.Errorf("encode: %s: unsupported field type %T", cmd.Name(), f)
	}
}
