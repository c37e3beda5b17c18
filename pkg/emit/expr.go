// Package emit renders a compiled transform, and a selection tree built
// over a catalog's compressed commands, as Verilog source and as C++ test
// vectors — the decompressor generator's two output artifacts.
package emit

import (
	"fmt"
	"strings"

	"github.com/kestrelrv/rvcgen/pkg/opcode"
	"github.com/kestrelrv/rvcgen/pkg/transform"
)

// Expression renders t as a Verilog concatenation expression yielding the
// decompressed instruction's top 30 bits (every RV32 instruction's bottom
// two bits are the constant "11" length marker, elided here since the
// caller is expected to supply them separately).
func Expression(t *transform.Transform, inputVar string) (string, error) {
	if len(t.Producers) == 0 {
		return "", fmt.Errorf("emit: %s: transform has no producers", t.TargetName)
	}
	last, ok := t.Producers[len(t.Producers)-1].(transform.Constant)
	if !ok {
		return "", fmt.Errorf("emit: %s: expected constant bits as final producer, got %T", t.TargetName, t.Producers[len(t.Producers)-1])
	}
	trimmed, err := last.Value.Slice(last.Value.Size()-1, 2)
	if err != nil {
		return "", fmt.Errorf("emit: %s: %w", t.TargetName, err)
	}

	parts := make([]string, len(t.Producers))
	for i, p := range t.Producers {
		if i == len(t.Producers)-1 {
			p = transform.Constant{Value: trimmed}
		}
		s, err := renderProducer(p, inputVar)
		if err != nil {
			return "", fmt.Errorf("emit: %s: %w", t.TargetName, err)
		}
		parts[i] = s
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

func renderProducer(p transform.Producer, inputVar string) (string, error) {
	switch v := p.(type) {
	case transform.Constant:
		return fmt.Sprintf("%d'b%s", v.Value.Size(), bitString(v.Value)), nil
	case transform.Copy:
		if v.Hi == v.Lo {
			return fmt.Sprintf("%s[%d]", inputVar, v.Hi), nil
		}
		return fmt.Sprintf("%s[%d:%d]", inputVar, v.Hi, v.Lo), nil
	case transform.Replicate:
		return fmt.Sprintf("{%d{%s[%d]}}", v.Count, inputVar, v.Bit), nil
	default:
		return "", fmt.Errorf("unhandled producer type %T", p)
	}
}

func bitString(cb opcode.ConstantBits) string {
	return fmt.Sprintf("%0*b", cb.Size(), cb.Value())
}
