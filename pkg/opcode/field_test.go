package opcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstFromBinaryLiteral(t *testing.T) {
	c := Const("1011")
	assert.Equal(t, 4, c.Size())
	assert.Equal(t, uint32(0b1011), c.Value())
}

func TestConstFromIntWraps(t *testing.T) {
	c, err := ConstFromInt(5, -1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0b11111), c.Value())

	c, err = ConstFromInt(5, -16)
	require.NoError(t, err)
	assert.Equal(t, uint32(0b10000), c.Value())

	_, err = ConstFromInt(5, 32)
	assert.Error(t, err)
}

func TestConstSlice(t *testing.T) {
	c := Const("11010110")
	s, err := c.Slice(5, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Size())
	assert.Equal(t, uint32(0b0101), s.Value())
}

func TestRegTypeRoleCollapsing(t *testing.T) {
	assert.True(t, Src1.Matches(SrcDst))
	assert.True(t, Dst.Matches(SrcDst))
	assert.False(t, Src2.Matches(SrcDst))
	assert.True(t, Src2.Matches(Src2))
	assert.False(t, Src1.Matches(Src2))
}

func TestRegReferenceBindValue(t *testing.T) {
	r := Reg(Src1)
	v, err := r.BindValue(10)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), v.Value())
	assert.Equal(t, 5, v.Size())

	rc := Reg(Src1).Compressed()
	v, err = rc.BindValue(10)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), v.Value())
	assert.Equal(t, 3, v.Size())

	_, err = rc.BindValue(3)
	assert.Error(t, err)

	_, err = r.BindValue(16)
	assert.Error(t, err)
}

func TestRegReferenceMatchesFieldCollapsesRole(t *testing.T) {
	srcdst := Reg(SrcDst)
	assert.True(t, Reg(Src1).matchesField(srcdst))
	assert.True(t, Reg(Dst).matchesField(srcdst))
	assert.False(t, Reg(Src2).matchesField(srcdst))
}

func TestImmediateKeyMatchesOnlyImmediateFields(t *testing.T) {
	key := ImmKey()
	assert.True(t, key.matchesField(Imm(4, 0)))
	assert.False(t, key.matchesField(Reg(Src1)))
	assert.False(t, key.matchesField(Const("0")))
}
