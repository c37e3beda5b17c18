package encode

import "github.com/kestrelrv/rvcgen/pkg/opcode"

// CanonicalBindings returns the binding set(s) used to generate test
// vectors and self-test assembly for cmd: an immediate value of 10 if the
// command has no implicit low-bit alignment, else 3 shifted left by the
// alignment (chosen so every declared immediate chunk sees a distinct,
// recognizable bit pattern); registers are bound in declaration order
// starting at x10. If the command's immediate is signed, a second set with
// the negated immediate is appended, exercising the sign-extension path.
func CanonicalBindings(cmd *opcode.Command) []*opcode.Bindings {
	generate := func(positive bool) *opcode.Bindings {
		b := opcode.NewBindings()
		if _, hasImm := cmd.ImmIsSigned(); hasImm {
			v := 10
			if cmd.ImmAlign() > 0 {
				v = 3 << uint(cmd.ImmAlign())
			}
			if !positive {
				v = -v
			}
			b.Append(opcode.ImmKey(), v)
		}
		reg := 10
		for _, f := range cmd.Fields() {
			rr, ok := f.(opcode.RegReference)
			if !ok {
				continue
			}
			b.Append(opcode.Reg(rr.RegType()), reg)
			reg++
		}
		return b
	}

	sets := []*opcode.Bindings{generate(true)}
	if signed, hasImm := cmd.ImmIsSigned(); hasImm && signed {
		sets = append(sets, generate(false))
	}
	return sets
}
