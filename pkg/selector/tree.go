// Package selector builds a balanced binary decision tree over a set of
// compressed commands: each internal node tests one bit or one
// constrained-register bit-field of the 16-bit opcode, recursively
// splitting the command set until every leaf names exactly one command.
package selector

import (
	"fmt"
	"sort"

	"github.com/kestrelrv/rvcgen/pkg/opcode"
)

// Node is one internal decision: test opcode bits [HiBit:LoBit] (a single
// bit when HiBit == LoBit) and branch to First if the tested bits are
// nonzero (or, for a multi-bit field test, not equal to NotEqualValue),
// else to Second.
type Node struct {
	HiBit, LoBit  int
	NotEqualValue int
	First, Second *Subtree
}

// ConditionExpr renders the node's test as a boolean expression reading
// varName, matching the convention an HDL or software emitter needs: a
// single-bit test reads as a bit index, a field test as an inequality
// against the value every "Second"-branch command shares on those bits.
func (n *Node) ConditionExpr(varName string) string {
	if n.LoBit == n.HiBit {
		return fmt.Sprintf("%s[%d]", varName, n.HiBit)
	}
	return fmt.Sprintf("%s[%d:%d] != %d", varName, n.HiBit, n.LoBit, n.NotEqualValue)
}

// Subtree is either an internal Node or a leaf naming the one command that
// decoding has narrowed down to.
type Subtree struct {
	Inner *Node
	Leaf  *opcode.Command
}

// Generate builds a balanced decision tree identifying each of commands by
// its constant opcode bits. Commands must be pairwise distinguishable by
// some combination of constant bits and constrained-register fields, or
// Generate returns an error naming the commands it could not split.
func Generate(commands []*opcode.Command) (*Subtree, error) {
	return generateNode(commands)
}

func generateNode(commands []*opcode.Command) (*Subtree, error) {
	if len(commands) == 1 {
		return &Subtree{Leaf: commands[0]}, nil
	}

	var candidate *split

	for bit := 0; bit < 16; bit++ {
		if n := trySingleBit(commands, bit); n != nil {
			if candidate == nil || n.hasBetterBalance(candidate) {
				candidate = n
			}
			if candidate.imbalance() < 2 {
				break
			}
		}
	}

	checked := map[int]bool{}
outer:
	for _, cmd := range commands {
		for _, field := range constrainedRegisterFields(cmd) {
			pos := field.Position()
			if checked[pos] {
				continue
			}
			checked[pos] = true
			lo := pos - field.Size() + 1
			if n := tryFieldRange(commands, pos, lo); n != nil {
				if candidate == nil || n.hasBetterBalance(candidate) {
					candidate = n
				}
				if candidate.imbalance() < 2 {
					break outer
				}
			}
		}
	}

	if candidate == nil {
		return nil, fmt.Errorf("selector: cannot distinguish commands: %s", commandNames(commands))
	}

	first, err := generateNode(candidate.first)
	if err != nil {
		return nil, err
	}
	second, err := generateNode(candidate.second)
	if err != nil {
		return nil, err
	}
	return &Subtree{Inner: &Node{
		HiBit:         candidate.hiBit,
		LoBit:         candidate.loBit,
		NotEqualValue: candidate.notEqualValue,
		First:         first,
		Second:        second,
	}}, nil
}

func commandNames(commands []*opcode.Command) string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.Name()
	}
	sort.Strings(names)
	s := ""
	for i, n := range names {
		if i > 0 {
			s += ", "
		}
		s += n
	}
	return s
}

// split is a candidate binary partition of a command set on some bit range.
type split struct {
	hiBit, loBit  int
	notEqualValue int
	first, second []*opcode.Command
}

func (s *split) imbalance() int {
	return abs(len(s.first) - len(s.second))
}

// hasBetterBalance reports whether s splits more evenly than other.
func (s *split) hasBetterBalance(other *split) bool {
	return s.imbalance() < other.imbalance()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// trySingleBit partitions commands on whether opcode bit b is constant 0 or
// constant 1 in every command. Returns nil if any command's bit b is not
// constant, or if the partition would be degenerate (all on one side).
func trySingleBit(commands []*opcode.Command, b int) *split {
	var nz, z []*opcode.Command
	for _, cmd := range commands {
		v, ok := cmd.ConstantBitAt(b)
		if !ok {
			return nil
		}
		if v == 0 {
			z = append(z, cmd)
		} else {
			nz = append(nz, cmd)
		}
	}
	if len(z) == 0 || len(nz) == 0 {
		return nil
	}
	return &split{hiBit: b, loBit: b, first: nz, second: z}
}

// tryFieldRange partitions commands on bits [hi:lo]: commands whose bits
// there are entirely constant (and agree with every other constant command
// on the value) go to "second"; commands whose bits there are entirely a
// constrained register field, all sharing the same NotEqual value equal to
// the constant group's value, go to "first". Returns nil if the range mixes
// constant and variable bits within a single command, if constant commands
// disagree on the value, or if any variable command's field doesn't exactly
// cover [hi:lo] with a matching NotEqual constraint.
func tryFieldRange(commands []*opcode.Command, hi, lo int) *split {
	var nz, z []*opcode.Command
	value := map[int]int{}

	for _, cmd := range commands {
		// -1 unknown, 0 variable, 1 constant
		state := -1
		ok := true
		for b := lo; b <= hi; b++ {
			bit, isConst := cmd.ConstantBitAt(b)
			if !isConst {
				if state == -1 {
					state = 0
				} else if state == 1 {
					ok = false
					break
				}
				continue
			}
			if state == -1 {
				state = 1
			} else if state == 0 {
				ok = false
				break
			}
			if v, seen := value[b]; seen {
				if v != bit {
					ok = false
					break
				}
			} else {
				value[b] = bit
			}
		}
		if !ok {
			return nil
		}
		if state == 1 {
			z = append(z, cmd)
		} else {
			nz = append(nz, cmd)
		}
	}

	notEqualValue := 0
	for b := lo; b <= hi; b++ {
		if value[b] != 0 {
			notEqualValue |= 1 << uint(b-lo)
		}
	}

	for _, cmd := range nz {
		f, ok := cmd.FieldCovering(hi)
		if !ok {
			return nil
		}
		rr, ok := f.(opcode.RegReference)
		if !ok {
			return nil
		}
		if rr.Position() != hi || rr.Position()-rr.Size()+1 != lo {
			return nil
		}
		ne, has := rr.NotEqualValue()
		if !has || ne != notEqualValue {
			return nil
		}
	}

	if len(z) == 0 || len(nz) == 0 {
		return nil
	}
	return &split{hiBit: hi, loBit: lo, notEqualValue: notEqualValue, first: nz, second: z}
}

func constrainedRegisterFields(cmd *opcode.Command) []opcode.RegReference {
	var out []opcode.RegReference
	for _, f := range cmd.Fields() {
		rr, ok := f.(opcode.RegReference)
		if !ok {
			continue
		}
		if _, has := rr.NotEqualValue(); has {
			out = append(out, rr)
		}
	}
	return out
}
