package encode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelrv/rvcgen/pkg/opcode"
)

func TestAssemblyCADDI(t *testing.T) {
	c := mustCatalog(t)
	cmd, ok := c.Compressed("C.ADDI")
	require.True(t, ok)
	bindings := opcode.NewBindings().
		Append(opcode.Reg(opcode.SrcDst), 10).
		Append(opcode.ImmKey(), 10)
	s, err := Assembly(cmd, bindings)
	require.NoError(t, err)
	assert.Equal(t, "C.ADDI x10, 10", s)
}

func TestAssemblyCJR(t *testing.T) {
	c := mustCatalog(t)
	cmd, ok := c.Compressed("C.JR")
	require.True(t, ok)
	bindings := opcode.NewBindings().Append(opcode.Reg(opcode.Src1), 10)
	s, err := Assembly(cmd, bindings)
	require.NoError(t, err)
	assert.Equal(t, "C.JR x10", s)
}

func TestAssemblyCMV(t *testing.T) {
	c := mustCatalog(t)
	cmd, ok := c.Compressed("C.MV")
	require.True(t, ok)
	bindings := opcode.NewBindings().
		Append(opcode.Reg(opcode.Dst), 10).
		Append(opcode.Reg(opcode.Src2), 11)
	s, err := Assembly(cmd, bindings)
	require.NoError(t, err)
	assert.Equal(t, "C.MV x10, x11", s)
}

func TestAssemblyCADDI4SPNForcesX2(t *testing.T) {
	c := mustCatalog(t)
	cmd, ok := c.Compressed("C.ADDI4SPN")
	require.True(t, ok)
	bindings := opcode.NewBindings().
		Append(opcode.Reg(opcode.Dst), 8).
		Append(opcode.ImmKey(), 12)
	s, err := Assembly(cmd, bindings)
	require.NoError(t, err)
	assert.Equal(t, "C.ADDI4SPN x8, x2, 12", s)
}

func TestAssemblyLoadRendersOffsetForm(t *testing.T) {
	c := mustCatalog(t)
	cmd, ok := c.Compressed("C.LWSP")
	require.True(t, ok)
	bindings := opcode.NewBindings().
		Append(opcode.Reg(opcode.Dst), 9).
		Append(opcode.ImmKey(), 16)
	s, err := Assembly(cmd, bindings)
	require.NoError(t, err)
	assert.Equal(t, "C.LWSP x9, 16(x2)", s)
}

func TestAssemblyLUIScalesAndWrapsNegativeImmediate(t *testing.T) {
	c := mustCatalog(t)
	cmd, ok := c.Base("LUI")
	require.True(t, ok)
	bindings := opcode.NewBindings().
		Append(opcode.Reg(opcode.Dst), 5).
		Append(opcode.ImmKey(), -4096)
	s, err := Assembly(cmd, bindings)
	require.NoError(t, err)
	assert.Equal(t, "LUI x5, 1048575", s)
}
