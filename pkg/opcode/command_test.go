package opcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommandPositionsFieldsMSBFirst(t *testing.T) {
	cmd, err := NewCommand("ADDI", 32, false,
		Imm(11, 0),
		Reg(Src1),
		Const("000"),
		Reg(Dst),
		Const("0010011"),
	)
	require.NoError(t, err)
	assert.Equal(t, 32, cmd.Size())

	fields := cmd.Fields()
	assert.Equal(t, 31, fields[0].Position())
	assert.Equal(t, 19, fields[1].Position())
	assert.Equal(t, 14, fields[2].Position())
	assert.Equal(t, 11, fields[3].Position())
	assert.Equal(t, 6, fields[4].Position())

	hi, ok := cmd.ImmHiBit()
	require.True(t, ok)
	assert.Equal(t, 11, hi)

	signed, ok := cmd.ImmIsSigned()
	require.True(t, ok)
	assert.True(t, signed)
}

func TestNewCommandRejectsWidthMismatch(t *testing.T) {
	_, err := NewCommand("BAD", 32, false, Const("0000"))
	assert.Error(t, err)
}

func TestNewCommandRejectsMixedImmediateSignedness(t *testing.T) {
	_, err := NewCommand("BAD", 16, false,
		Imm(5, 3),
		UImm(2, 0),
		Const(strings.Repeat("0", 10)),
	)
	assert.Error(t, err)
}

func TestImmAlignCountsMissingLowBits(t *testing.T) {
	// C.ADDI16SP style layout: a 10-bit signed immediate whose low 4 bits
	// are implicit zero; here modeled minimally with a 16-bit command.
	cmd, err := NewCommand("C.EXAMPLE", 16, false,
		Const("011"),
		ImmBit(9),
		Reg(SrcDst),
		Imm(8, 7),
		ImmBit(6),
		ImmBit(4),
		ImmBit(5),
		Const("01"),
	)
	require.NoError(t, err)
	assert.Equal(t, 4, cmd.ImmAlign())
}

func TestConstantBitAt(t *testing.T) {
	cmd, err := NewCommand("X", 8, false, Const("1011"), Const("0100"))
	require.NoError(t, err)
	v, ok := cmd.ConstantBitAt(0)
	require.True(t, ok)
	assert.Equal(t, 0, v)
	v, ok = cmd.ConstantBitAt(7)
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestFindFieldRoleCollapsing(t *testing.T) {
	cmd, err := NewCommand("ADD", 32, false,
		Const("0000000"),
		Reg(Src2),
		Reg(SrcDst),
		Const("000"),
		Reg(Dst),
		Const("0110011"),
	)
	require.NoError(t, err)

	f, ok := cmd.FindField(Reg(Src1))
	require.True(t, ok)
	assert.Equal(t, SrcDst, f.(RegReference).RegType())

	f, ok = cmd.FindField(Reg(Dst))
	require.True(t, ok)
	assert.Equal(t, SrcDst, f.(RegReference).RegType())
}
