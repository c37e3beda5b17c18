package emit

import (
	"fmt"
	"strings"

	"github.com/kestrelrv/rvcgen/pkg/catalog"
	"github.com/kestrelrv/rvcgen/pkg/encode"
	"github.com/kestrelrv/rvcgen/pkg/opcode"
)

// TestVectors renders one TEST_CASE(...) macro invocation per canonical
// binding set of every compressed command in cat: the compressed encoding,
// the expanded base encoding, and both instructions' assembler text as the
// case's description string.
func TestVectors(cat *catalog.Catalog) (string, error) {
	var b strings.Builder
	b.WriteString("// Generated test vectors. Do not edit by hand.\n\n")

	for _, name := range cat.CompressedNames() {
		cmd, ok := cat.Compressed(name)
		if !ok {
			continue
		}
		mapping, ok := cat.MappingFor(name)
		if !ok {
			return "", fmt.Errorf("emit: %s: not a declared compressed command", name)
		}
		target, ok := cat.Base(mapping.TargetName)
		if !ok {
			return "", fmt.Errorf("emit: %s: unknown target command %s", name, mapping.TargetName)
		}

		for _, tc := range encode.CanonicalBindings(cmd) {
			compressedBytes, err := encode.Encode(cmd, tc)
			if err != nil {
				return "", fmt.Errorf("emit: %s: %w", name, err)
			}
			baseBindings := opcode.NewBindings().Extend(tc).Extend(mapping.Bindings)
			baseBytes, err := encode.Encode(target, baseBindings)
			if err != nil {
				return "", fmt.Errorf("emit: %s: %w", name, err)
			}
			compressedAsm, err := encode.Assembly(cmd, tc)
			if err != nil {
				return "", fmt.Errorf("emit: %s: %w", name, err)
			}
			baseAsm, err := encode.Assembly(target, baseBindings)
			if err != nil {
				return "", fmt.Errorf("emit: %s: %w", name, err)
			}

			fmt.Fprintf(&b, "TEST_CASE(\"%s => %s\",\n", compressedAsm, baseAsm)
			fmt.Fprintf(&b, "          (%s), (%s))\n\n", hexList(compressedBytes), hexList(baseBytes))
		}
	}
	return b.String(), nil
}

func hexList(bs []byte) string {
	parts := make([]string, len(bs))
	for i, v := range bs {
		parts[i] = fmt.Sprintf("0x%02x", v)
	}
	return strings.Join(parts, ", ")
}
