package encode

import (
	"fmt"

	"github.com/kestrelrv/rvcgen/pkg/opcode"
)

// Assembly renders cmd's canonical assembler text under the given bindings.
// It reproduces the reference toolchain's formatting quirks exactly, since
// the self-test driver compares this text's re-assembled bytes against
// Encode's output:
//
//   - LUI and C.LUI immediates are right-shifted by 12 and, if negative,
//     two's-complement-wrapped into 20 bits (the assembler expects an
//     unsigned upper-immediate operand).
//   - C.ADDI4SPN and C.ADDI16SP always render an explicit x2 operand, a
//     workaround for an assembler quirk that otherwise rejects the implicit
//     stack-pointer form.
//   - Commands with IsImmOffset render their immediate as imm(xN) rather
//     than a bare operand.
func Assembly(cmd *opcode.Command, bindings *opcode.Bindings) (string, error) {
	asm := cmd.Name()

	rdField, hasRd := cmd.FindField(opcode.Reg(opcode.Dst))
	if hasRd {
		v, found, err := bindings.Match(rdField)
		if err != nil {
			return "", err
		}
		if !found {
			return "", fmt.Errorf("encode: %s: no binding for destination register", cmd.Name())
		}
		asm += fmt.Sprintf(" x%d", v)
	}

	rs1Field, hasRs1 := cmd.FindField(opcode.Reg(opcode.Src1))
	rs2Field, hasRs2 := cmd.FindField(opcode.Reg(opcode.Src2))
	immField, hasImm := cmd.FindField(opcode.ImmKey())

	rdIsSrcDst := hasRd && rdField.(opcode.RegReference).RegType() == opcode.SrcDst

	if hasRs1 && !rdIsSrcDst && !cmd.IsImmOffset() {
		v, found, err := bindings.Match(rs1Field)
		if err != nil {
			return "", err
		}
		if !found {
			return "", fmt.Errorf("encode: %s: no binding for source register 1", cmd.Name())
		}
		if hasRd {
			asm += ", "
		} else {
			asm += " "
		}
		asm += fmt.Sprintf("x%d", v)
	}

	// Workaround for an assembler bug requiring x2 to always be spelled out
	// for these two stack-pointer-relative forms.
	if cmd.Name() == "C.ADDI4SPN" || cmd.Name() == "C.ADDI16SP" {
		if hasRd {
			asm += ", "
		} else {
			asm += " "
		}
		asm += "x2"
		hasRs1 = true
	}

	if hasRs2 {
		v, found, err := bindings.Match(rs2Field)
		if err != nil {
			return "", err
		}
		if !found {
			return "", fmt.Errorf("encode: %s: no binding for source register 2", cmd.Name())
		}
		if !hasRd && cmd.IsImmOffset() {
			asm += " "
		} else {
			asm += ", "
		}
		asm += fmt.Sprintf("x%d", v)
	}

	if hasImm {
		v, found, err := bindings.Match(immField)
		if err != nil {
			return "", err
		}
		if !found {
			return "", fmt.Errorf("encode: %s: no binding for immediate value", cmd.Name())
		}

		if cmd.Name() == "C.LUI" || cmd.Name() == "LUI" {
			v = v >> 12
			if v < 0 {
				v = 0x100000 + v
			}
		}

		if cmd.IsImmOffset() {
			var rs1Val int
			if cmd.Name() == "C.LWSP" || cmd.Name() == "C.SWSP" {
				rs1Val = 2
			} else {
				if !hasRs1 {
					return "", fmt.Errorf("encode: %s: offset immediate without source register 1", cmd.Name())
				}
				rv, found, err := bindings.Match(rs1Field)
				if err != nil {
					return "", err
				}
				if !found {
					return "", fmt.Errorf("encode: %s: no binding for source register 1", cmd.Name())
				}
				rs1Val = rv
			}
			if !hasRd && !hasRs2 {
				asm += " "
			} else {
				asm += ", "
			}
			asm += fmt.Sprintf("%d(x%d)", v, rs1Val)
		} else {
			if !hasRd && !hasRs1 {
				asm += " "
			} else {
				asm += ", "
			}
			asm += fmt.Sprintf("%d", v)
		}
	}

	return asm, nil
}
