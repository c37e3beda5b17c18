// Package catalog holds the name-indexed tables of base (32-bit) and
// compressed (16-bit) RISC-V instruction commands, and the declarations that
// populate them for the "C" extension.
package catalog

import (
	"fmt"
	"sort"

	"github.com/kestrelrv/rvcgen/pkg/opcode"
)

// Mapping records how a compressed command decompresses: the base command
// it expands to, plus whatever field bindings the compressed encoding fixes
// (e.g. C.JAL always targets return address register x1).
type Mapping struct {
	TargetName string
	Bindings   *opcode.Bindings
}

// Catalog is a write-once-then-immutable pair of command tables. Declare*
// methods populate it; Seal forbids further mutation once the RISC-V "C"
// extension has been fully declared, so later stages (transform, selector)
// can treat it as read-only.
type Catalog struct {
	base       map[string]*opcode.Command
	compressed map[string]*opcode.Command
	mappings   map[string]Mapping
	sealed     bool
}

// New returns an empty catalog ready for declarations.
func New() *Catalog {
	return &Catalog{
		base:       make(map[string]*opcode.Command),
		compressed: make(map[string]*opcode.Command),
		mappings:   make(map[string]Mapping),
	}
}

// DeclareBase registers a 32-bit base command.
func (c *Catalog) DeclareBase(name string, isImmOffset bool, fields ...opcode.Field) error {
	if c.sealed {
		return fmt.Errorf("catalog: sealed, cannot declare base command %s", name)
	}
	if _, exists := c.base[name]; exists {
		return fmt.Errorf("catalog: base command %s already defined", name)
	}
	cmd, err := opcode.NewCommand(name, 32, isImmOffset, fields...)
	if err != nil {
		return fmt.Errorf("catalog: declaring base command %s: %w", name, err)
	}
	c.base[name] = cmd
	return nil
}

// DeclareCompressed registers a 16-bit compressed command together with the
// mapping that says how it decompresses. The mapping's target must already
// be declared, and its bindings must be well-formed against the target's
// fields (right field roles, no notEqual violations) — caught here, at
// declaration time, rather than deferred to transform construction.
func (c *Catalog) DeclareCompressed(name string, mapping Mapping, isImmOffset bool, fields ...opcode.Field) error {
	if c.sealed {
		return fmt.Errorf("catalog: sealed, cannot declare compressed command %s", name)
	}
	if _, exists := c.compressed[name]; exists {
		return fmt.Errorf("catalog: compressed command %s already defined", name)
	}
	target, ok := c.base[mapping.TargetName]
	if !ok {
		return fmt.Errorf("catalog: declaring %s: target command %s not found", name, mapping.TargetName)
	}
	if err := mapping.Bindings.VerifyAgainst(target); err != nil {
		return fmt.Errorf("catalog: declaring %s: %w", name, err)
	}
	cmd, err := opcode.NewCommand(name, 16, isImmOffset, fields...)
	if err != nil {
		return fmt.Errorf("catalog: declaring compressed command %s: %w", name, err)
	}
	c.compressed[name] = cmd
	c.mappings[name] = mapping
	return nil
}

// Seal marks the catalog read-only. Subsequent Declare* calls fail.
func (c *Catalog) Seal() { c.sealed = true }

// Sealed reports whether the catalog has been sealed.
func (c *Catalog) Sealed() bool { return c.sealed }

// Base looks up a 32-bit base command by name.
func (c *Catalog) Base(name string) (*opcode.Command, bool) {
	cmd, ok := c.base[name]
	return cmd, ok
}

// Compressed looks up a 16-bit compressed command by name.
func (c *Catalog) Compressed(name string) (*opcode.Command, bool) {
	cmd, ok := c.compressed[name]
	return cmd, ok
}

// MappingFor returns the decompression mapping for a compressed command.
func (c *Catalog) MappingFor(name string) (Mapping, bool) {
	m, ok := c.mappings[name]
	return m, ok
}

// TargetOf returns the base command a compressed command decompresses to.
func (c *Catalog) TargetOf(compressedName string) (*opcode.Command, error) {
	m, ok := c.mappings[compressedName]
	if !ok {
		return nil, fmt.Errorf("catalog: %s is not a known compressed command", compressedName)
	}
	target, ok := c.base[m.TargetName]
	if !ok {
		return nil, fmt.Errorf("catalog: %s targets unknown base command %s", compressedName, m.TargetName)
	}
	return target, nil
}

// CompressedNames returns all declared compressed command names, sorted.
func (c *Catalog) CompressedNames() []string {
	names := make([]string, 0, len(c.compressed))
	for name := range c.compressed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BaseNames returns all declared base command names, sorted.
func (c *Catalog) BaseNames() []string {
	names := make([]string, 0, len(c.base))
	for name := range c.base {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
