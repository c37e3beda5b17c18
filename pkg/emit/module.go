package emit

import (
	"fmt"
	"strings"

	"github.com/kestrelrv/rvcgen/pkg/catalog"
	"github.com/kestrelrv/rvcgen/pkg/opcode"
	"github.com/kestrelrv/rvcgen/pkg/selector"
	"github.com/kestrelrv/rvcgen/pkg/transform"
)

// Module renders a full Verilog decompressor: a nested if/else chain over
// tree that assigns outVar from the matching command's transform, reading
// the compressed instruction from inVar.
func Module(cat *catalog.Catalog, tree *selector.Subtree, inVar, outVar string) (string, error) {
	var b strings.Builder
	if err := writeNode(&b, cat, tree, inVar, outVar, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeNode(b *strings.Builder, cat *catalog.Catalog, sub *selector.Subtree, inVar, outVar string, indent int) error {
	if sub.Leaf != nil {
		return writeLeaf(b, cat, sub.Leaf, inVar, outVar, indent)
	}

	ind := strings.Repeat("    ", indent)
	n := sub.Inner
	fmt.Fprintf(b, "%sif (%s) begin\n", ind, n.ConditionExpr(inVar))
	if err := writeNode(b, cat, n.First, inVar, outVar, indent+1); err != nil {
		return err
	}
	fmt.Fprintf(b, "%send else begin\n", ind)
	if err := writeNode(b, cat, n.Second, inVar, outVar, indent+1); err != nil {
		return err
	}
	fmt.Fprintf(b, "%send\n", ind)
	return nil
}

func writeLeaf(b *strings.Builder, cat *catalog.Catalog, cmd *opcode.Command, inVar, outVar string, indent int) error {
	ind := strings.Repeat("    ", indent)

	mapping, ok := cat.MappingFor(cmd.Name())
	if !ok {
		return fmt.Errorf("emit: %s: not a declared compressed command", cmd.Name())
	}
	target, ok := cat.Base(mapping.TargetName)
	if !ok {
		return fmt.Errorf("emit: %s: unknown target command %s", cmd.Name(), mapping.TargetName)
	}

	t, err := transform.Build(cmd, target, mapping.Bindings)
	if err != nil {
		return fmt.Errorf("emit: %s: %w", cmd.Name(), err)
	}
	expr, err := Expression(t, inVar)
	if err != nil {
		return fmt.Errorf("emit: %s: %w", cmd.Name(), err)
	}

	fmt.Fprintf(b, "%s// %s -> %s\n", ind, cmd.Name(), target.Name())
	fmt.Fprintf(b, "%s%s = {%s, 2'b11};\n", ind, outVar, expr)
	return nil
}
