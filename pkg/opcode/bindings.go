package opcode

import "fmt"

// binding pairs a role query (RegReference used bare, or ImmediateKey) with
// the concrete value a compressed command's mapping binds it to.
type binding struct {
	key   FieldRef
	value int
}

// Bindings is an ordered list of role->value pairs, used both as a
// compressed command's decompression mapping and as a concrete binding set
// for encoding. Lookup is role-based via Match, which returns the first
// matching pair, so when a role is bound more than once the earlier pair
// wins.
type Bindings struct {
	items []binding
}

// NewBindings returns an empty binding set.
func NewBindings() *Bindings {
	return &Bindings{}
}

// Append adds one role->value pair and returns the receiver, for chaining.
func (b *Bindings) Append(key FieldRef, value int) *Bindings {
	b.items = append(b.items, binding{key: key, value: value})
	return b
}

// Extend appends all of other's pairs to b and returns b.
func (b *Bindings) Extend(other *Bindings) *Bindings {
	if other == nil {
		return b
	}
	b.items = append(b.items, other.items...)
	return b
}

// Len reports the number of bound pairs.
func (b *Bindings) Len() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// VerifyAgainst checks that every binding in b targets a real field of cmd
// and does not bind a constrained register to its disallowed value. Called
// at declaration time for a compressed command's mapping, so a malformed
// mapping fails immediately rather than surfacing later during transform
// construction.
func (b *Bindings) VerifyAgainst(cmd *Command) error {
	if b == nil {
		return nil
	}
	for _, it := range b.items {
		f, ok := cmd.FindField(it.key)
		if !ok {
			return fmt.Errorf("opcode: binding of type %T does not match any field of %s", it.key, cmd.name)
		}
		if rf, isReg := f.(RegReference); isReg {
			if ne, has := rf.NotEqualValue(); has && it.value == ne {
				return fmt.Errorf("opcode: binding for %s of %s violates notEqual constraint", rf.regType, cmd.name)
			}
		}
	}
	return nil
}

// Match looks up the value bound to field's role. found is false when no
// binding covers this field at all (the caller falls back to whatever
// default behavior applies — e.g. leaving a register slot free). err is
// non-nil when a binding was found but violates the field's notEqual
// constraint, or when field is neither an ImmediateBits nor a RegReference.
// The notEqual check runs here, at use, against the queried field's own
// constraint, in addition to VerifyAgainst's check at declaration.
func (b *Bindings) Match(field Field) (value int, found bool, err error) {
	if b == nil {
		return 0, false, nil
	}
	switch f := field.(type) {
	case ImmediateBits:
		for _, it := range b.items {
			if _, ok := it.key.(ImmediateKey); ok {
				return it.value, true, nil
			}
		}
		return 0, false, nil
	case RegReference:
		for _, it := range b.items {
			rk, ok := it.key.(RegReference)
			if !ok || !f.regType.Matches(rk.regType) {
				continue
			}
			if ne, has := f.NotEqualValue(); has && it.value == ne {
				return 0, false, fmt.Errorf("opcode: binding for %s violates notEqual constraint (value %d)", f.regType, ne)
			}
			return it.value, true, nil
		}
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("opcode: %T is not a valid binding target", field)
	}
}
