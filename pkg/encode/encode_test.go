package encode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelrv/rvcgen/pkg/catalog"
	"github.com/kestrelrv/rvcgen/pkg/opcode"
)

func mustCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.NewRVC()
	require.NoError(t, err)
	return c
}

func TestEncodeCADDI(t *testing.T) {
	c := mustCatalog(t)
	cmd, ok := c.Compressed("C.ADDI")
	require.True(t, ok)
	bindings := opcode.NewBindings().
		Append(opcode.Reg(opcode.SrcDst), 10).
		Append(opcode.ImmKey(), 10)
	out, err := Encode(cmd, bindings)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x05, 0x29}, out)
}

func TestEncodeCJR(t *testing.T) {
	c := mustCatalog(t)
	cmd, ok := c.Compressed("C.JR")
	require.True(t, ok)
	bindings := opcode.NewBindings().Append(opcode.Reg(opcode.Src1), 10)
	out, err := Encode(cmd, bindings)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x85, 0x02}, out)
}

func TestEncodeCMV(t *testing.T) {
	c := mustCatalog(t)
	cmd, ok := c.Compressed("C.MV")
	require.True(t, ok)
	bindings := opcode.NewBindings().
		Append(opcode.Reg(opcode.Dst), 10).
		Append(opcode.Reg(opcode.Src2), 11)
	out, err := Encode(cmd, bindings)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x85, 0x2e}, out)
}

func TestEncodeCADDI4SPN(t *testing.T) {
	c := mustCatalog(t)
	cmd, ok := c.Compressed("C.ADDI4SPN")
	require.True(t, ok)
	bindings := CanonicalBindings(cmd)[0]
	out, err := Encode(cmd, bindings)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x68}, out)
}

func TestEncodeRejectsConstrainedRegisterViolation(t *testing.T) {
	c := mustCatalog(t)
	cmd, ok := c.Compressed("C.MV")
	require.True(t, ok)
	bindings := opcode.NewBindings().
		Append(opcode.Reg(opcode.Dst), 10).
		Append(opcode.Reg(opcode.Src2), 0)
	_, err := Encode(cmd, bindings)
	assert.Error(t, err)
}

func TestEncodeRejectsMissingBinding(t *testing.T) {
	c := mustCatalog(t)
	cmd, ok := c.Compressed("C.JR")
	require.True(t, ok)
	_, err := Encode(cmd, opcode.NewBindings())
	assert.Error(t, err)
}

func TestEncodeBaseADDINegativeImmediate(t *testing.T) {
	c := mustCatalog(t)
	cmd, ok := c.Base("ADDI")
	require.True(t, ok)
	bindings := opcode.NewBindings().
		Append(opcode.Reg(opcode.Dst), 5).
		Append(opcode.Reg(opcode.Src1), 6).
		Append(opcode.ImmKey(), -1)
	out, err := Encode(cmd, bindings)
	require.NoError(t, err)
	// imm=-1 -> all-ones 12-bit field.
	assert.Equal(t, byte(0xff), out[0])
}
