package encode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelrv/rvcgen/pkg/opcode"
)

func TestCanonicalBindingsAssignsRegistersFromX10(t *testing.T) {
	c := mustCatalog(t)
	cmd, ok := c.Compressed("C.MV")
	require.True(t, ok)
	sets := CanonicalBindings(cmd)
	require.Len(t, sets, 1) // no immediate on C.MV

	v, found, err := sets[0].Match(opcode.Reg(opcode.Dst))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 10, v)

	v, found, err = sets[0].Match(opcode.Reg(opcode.Src2))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 11, v)
}

func TestCanonicalBindingsSignedImmediateGetsNegativeCase(t *testing.T) {
	c := mustCatalog(t)
	cmd, ok := c.Compressed("C.ADDI")
	require.True(t, ok)
	sets := CanonicalBindings(cmd)
	require.Len(t, sets, 2)

	immField, ok := cmd.FindField(opcode.ImmKey())
	require.True(t, ok)

	v, _, _ := sets[0].Match(immField)
	assert.Equal(t, 10, v)
	v, _, _ = sets[1].Match(immField)
	assert.Equal(t, -10, v)
}

func TestCanonicalBindingsUnsignedImmediateHasOneCase(t *testing.T) {
	c := mustCatalog(t)
	cmd, ok := c.Compressed("C.SLLI")
	require.True(t, ok)
	sets := CanonicalBindings(cmd)
	assert.Len(t, sets, 1)
}

func TestCanonicalBindingsUsesAlignedImmediateMagnitude(t *testing.T) {
	c := mustCatalog(t)
	cmd, ok := c.Compressed("C.ADDI16SP")
	require.True(t, ok)
	// C.ADDI16SP's immediate chunks skip the low 4 bits.
	assert.Equal(t, 4, cmd.ImmAlign())
	sets := CanonicalBindings(cmd)
	immField, ok := cmd.FindField(opcode.ImmKey())
	require.True(t, ok)
	v, _, _ := sets[0].Match(immField)
	assert.Equal(t, 3<<4, v)
}
