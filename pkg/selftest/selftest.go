// Package selftest cross-checks the generator's own bit-packing logic
// against an external RISC-V assembler and objdump: for every compressed
// command, it assembles both the compressed and the expanded base
// instruction and compares the resulting bytes against Encode and
// transform.Apply.
package selftest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"

	"github.com/kestrelrv/rvcgen/pkg/catalog"
	"github.com/kestrelrv/rvcgen/pkg/encode"
	"github.com/kestrelrv/rvcgen/pkg/opcode"
	"github.com/kestrelrv/rvcgen/pkg/transform"
)

// Toolchain names the external compiler and objdump binaries used to
// cross-check generated encodings.
type Toolchain struct {
	Compiler string
	Objdump  string
}

var disasmLine = regexp.MustCompile(`^\s*[0-9a-f]+:\s+((?:[0-9a-f]{2}\s)+).*$`)

// Assemble compiles one line of RISC-V assembler text and returns the
// resulting instruction bytes, most-significant byte first. compressed
// selects an rv32ec (compressed-enabled) target; otherwise rv32e.
func (tc Toolchain) Assemble(ctx context.Context, text string, compressed bool) ([]byte, error) {
	march := "rv32e"
	if compressed {
		march += "c"
	}

	obj, err := os.CreateTemp("", "rvcgen-selftest-*.o")
	if err != nil {
		return nil, fmt.Errorf("selftest: %w", err)
	}
	objPath := obj.Name()
	obj.Close()
	defer os.Remove(objPath)

	asCmd := exec.CommandContext(ctx, tc.Compiler,
		"-c", "--target=riscv32", "-march="+march,
		"-mno-relax", "-mlittle-endian", "-x", "assembler", "-o", objPath, "-")
	asCmd.Stdin = bytes.NewBufferString(".text\n" + text + "\n")
	var stderr bytes.Buffer
	asCmd.Stderr = &stderr
	if err := asCmd.Run(); err != nil {
		return nil, fmt.Errorf("selftest: assembling %q: %w: %s", text, err, stderr.String())
	}

	out, err := exec.CommandContext(ctx, tc.Objdump, "--disassemble", objPath).Output()
	if err != nil {
		return nil, fmt.Errorf("selftest: objdump: %w", err)
	}

	for _, line := range bytes.Split(out, []byte("\n")) {
		m := disasmLine.FindSubmatch(line)
		if m == nil {
			continue
		}
		hexBytes := bytes.Fields(m[1])
		raw := make([]byte, len(hexBytes))
		for i, hb := range hexBytes {
			var v int
			if _, err := fmt.Sscanf(string(hb), "%x", &v); err != nil {
				return nil, fmt.Errorf("selftest: bad byte %q in objdump output", hb)
			}
			raw[i] = byte(v)
		}
		// objdump lists bytes in memory (little-endian) order; reverse to
		// match Encode's most-significant-byte-first convention.
		out := make([]byte, len(raw))
		for i, b := range raw {
			out[len(raw)-1-i] = b
		}
		return out, nil
	}
	return nil, fmt.Errorf("selftest: failed to find compiled opcode for %q", text)
}

// Report summarizes one compressed command's cross-check.
type Report struct {
	Name string
	OK   bool
	Err  error
}

// Run cross-checks every compressed command in cat, returning one Report
// per canonical binding set of each command. A failed check, whether from
// the toolchain or from encoding or transform construction, is recorded in
// its Report; Run returns an error only when a command, its mapping or its
// target is missing from the catalog.
func Run(ctx context.Context, tc Toolchain, cat *catalog.Catalog) ([]Report, error) {
	var reports []Report
	for _, name := range cat.CompressedNames() {
		cmd, ok := cat.Compressed(name)
		if !ok {
			return nil, fmt.Errorf("selftest: %s: not declared", name)
		}
		mapping, ok := cat.MappingFor(name)
		if !ok {
			return nil, fmt.Errorf("selftest: %s: no mapping", name)
		}
		target, ok := cat.Base(mapping.TargetName)
		if !ok {
			return nil, fmt.Errorf("selftest: %s: unknown target %s", name, mapping.TargetName)
		}

		for _, tcBindings := range encode.CanonicalBindings(cmd) {
			if err := checkOne(ctx, tc, cmd, target, mapping, tcBindings); err != nil {
				reports = append(reports, Report{Name: name, OK: false, Err: err})
				continue
			}
			reports = append(reports, Report{Name: name, OK: true})
		}
	}
	return reports, nil
}

func checkOne(ctx context.Context, tc Toolchain, cmd, target *opcode.Command, mapping catalog.Mapping, bindings *opcode.Bindings) error {
	asm, err := encode.Assembly(cmd, bindings)
	if err != nil {
		return fmt.Errorf("rendering assembly: %w", err)
	}
	opc16, err := encode.Encode(cmd, bindings)
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	assembled, err := tc.Assemble(ctx, asm, true)
	if err != nil {
		return err
	}
	if !bytes.Equal(assembled, opc16) {
		return fmt.Errorf("compressed encoding mismatch for %q: assembled %x, generated %x", asm, assembled, opc16)
	}

	baseBindings := opcode.NewBindings().Extend(bindings).Extend(mapping.Bindings)
	baseAsm, err := encode.Assembly(target, baseBindings)
	if err != nil {
		return fmt.Errorf("rendering base assembly: %w", err)
	}
	assembledAsCompressed, err := tc.Assemble(ctx, baseAsm, true)
	if err != nil {
		return err
	}
	if !bytes.Equal(assembledAsCompressed, opc16) {
		return fmt.Errorf("base instruction %q did not reassemble to the original compressed encoding: got %x, want %x", baseAsm, assembledAsCompressed, opc16)
	}

	opc32, err := encode.Encode(target, baseBindings)
	if err != nil {
		return fmt.Errorf("encoding base: %w", err)
	}
	assembled32, err := tc.Assemble(ctx, baseAsm, false)
	if err != nil {
		return err
	}
	if !bytes.Equal(assembled32, opc32) {
		return fmt.Errorf("base encoding mismatch for %q: assembled %x, generated %x", baseAsm, assembled32, opc32)
	}

	t, err := transform.Build(cmd, target, mapping.Bindings)
	if err != nil {
		return fmt.Errorf("building transform: %w", err)
	}
	input := uint16(opc16[0])<<8 | uint16(opc16[1])
	decompressed, err := t.Apply(input)
	if err != nil {
		return fmt.Errorf("applying transform: %w", err)
	}
	if !bytes.Equal(decompressed, opc32) {
		return fmt.Errorf("transform.Apply(%#04x) = %x, want %x", input, decompressed, opc32)
	}
	return nil
}
