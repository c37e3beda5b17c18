package catalog

import "github.com/kestrelrv/rvcgen/pkg/opcode"

// NewRVC returns a catalog declaring the base RV32I instructions that the
// "C" extension's compressed instructions decompress into, and the full set
// of RV32C compressed instructions (minus C.EBREAK, see DESIGN.md), sealed
// and ready for transform/selector construction.
func NewRVC() (*Catalog, error) {
	c := New()
	if err := declareBaseRV32I(c); err != nil {
		return nil, err
	}
	if err := declareCompressedRVC(c); err != nil {
		return nil, err
	}
	c.Seal()
	return c, nil
}

func declareBaseRV32I(c *Catalog) error {
	rs1 := opcode.Reg(opcode.Src1)
	rs2 := opcode.Reg(opcode.Src2)
	rd := opcode.Reg(opcode.Dst)
	imm := opcode.Imm
	immBit := opcode.ImmBit
	uimm := opcode.UImm
	b := opcode.Const

	decls := []struct {
		name        string
		isImmOffset bool
		fields      []opcode.Field
	}{
		{"LW", true, []opcode.Field{imm(11, 0), rs1, b("010"), rd, b("0000011")}},
		{"SW", true, []opcode.Field{imm(11, 5), rs2, rs1, b("010"), imm(4, 0), b("0100011")}},
		{"JAL", false, []opcode.Field{immBit(20), imm(10, 1), immBit(11), imm(19, 12), rd, b("1101111")}},
		{"JALR", false, []opcode.Field{imm(11, 0), rs1, b("000"), rd, b("1100111")}},
		{"BEQ", false, []opcode.Field{immBit(12), imm(10, 5), rs2, rs1, b("000"), imm(4, 1), immBit(11), b("1100011")}},
		{"BNE", false, []opcode.Field{immBit(12), imm(10, 5), rs2, rs1, b("001"), imm(4, 1), immBit(11), b("1100011")}},
		{"ADDI", false, []opcode.Field{imm(11, 0), rs1, b("000"), rd, b("0010011")}},
		{"LUI", false, []opcode.Field{imm(31, 12), rd, b("0110111")}},
		{"SLLI", false, []opcode.Field{b("0000000"), uimm(4, 0), rs1, b("001"), rd, b("0010011")}},
		{"SRLI", false, []opcode.Field{b("0000000"), uimm(4, 0), rs1, b("101"), rd, b("0010011")}},
		{"SRAI", false, []opcode.Field{b("0100000"), uimm(4, 0), rs1, b("101"), rd, b("0010011")}},
		{"ANDI", false, []opcode.Field{imm(11, 0), rs1, b("111"), rd, b("0010011")}},
		{"ADD", false, []opcode.Field{b("0000000"), rs2, rs1, b("000"), rd, b("0110011")}},
		{"SUB", false, []opcode.Field{b("0100000"), rs2, rs1, b("000"), rd, b("0110011")}},
		{"XOR", false, []opcode.Field{b("0000000"), rs2, rs1, b("100"), rd, b("0110011")}},
		{"OR", false, []opcode.Field{b("0000000"), rs2, rs1, b("110"), rd, b("0110011")}},
		{"AND", false, []opcode.Field{b("0000000"), rs2, rs1, b("111"), rd, b("0110011")}},
	}
	for _, d := range decls {
		if err := c.DeclareBase(d.name, d.isImmOffset, d.fields...); err != nil {
			return err
		}
	}
	return nil
}

func declareCompressedRVC(c *Catalog) error {
	rs1 := opcode.Reg(opcode.Src1)
	rs2 := opcode.Reg(opcode.Src2)
	rd := opcode.Reg(opcode.Dst)
	rsd := opcode.Reg(opcode.SrcDst)
	rs1p := opcode.Reg(opcode.Src1).Compressed()
	rs2p := opcode.Reg(opcode.Src2).Compressed()
	rdp := opcode.Reg(opcode.Dst).Compressed()
	rsdp := opcode.Reg(opcode.SrcDst).Compressed()
	imm := opcode.Imm
	immBit := opcode.ImmBit
	uimm := opcode.UImm
	uimmBit := opcode.UImmBit
	b := opcode.Const

	bind := func(pairs ...struct {
		key   opcode.FieldRef
		value int
	}) *opcode.Bindings {
		bs := opcode.NewBindings()
		for _, p := range pairs {
			bs.Append(p.key, p.value)
		}
		return bs
	}
	pair := func(key opcode.FieldRef, value int) struct {
		key   opcode.FieldRef
		value int
	} {
		return struct {
			key   opcode.FieldRef
			value int
		}{key, value}
	}

	decls := []struct {
		name        string
		mapping     Mapping
		isImmOffset bool
		fields      []opcode.Field
	}{
		{"C.ADDI4SPN", Mapping{"ADDI", bind(pair(rs1, 2))}, false,
			[]opcode.Field{b("000"), uimm(5, 4), uimm(9, 6), uimmBit(2), uimmBit(3), rdp, b("00")}},
		{"C.LW", Mapping{"LW", nil}, true,
			[]opcode.Field{b("010"), uimm(5, 3), rs1p, uimmBit(2), uimmBit(6), rdp, b("00")}},
		{"C.SW", Mapping{"SW", nil}, true,
			[]opcode.Field{b("110"), uimm(5, 3), rs1p, uimmBit(2), uimmBit(6), rs2p, b("00")}},
		{"C.ADDI", Mapping{"ADDI", nil}, false,
			[]opcode.Field{b("000"), immBit(5), rsd, imm(4, 0), b("01")}},
		{"C.JAL", Mapping{"JAL", bind(pair(rd, 1))}, false,
			[]opcode.Field{b("001"), immBit(11), immBit(4), imm(9, 8), immBit(10), immBit(6), immBit(7), imm(3, 1), immBit(5), b("01")}},
		{"C.LI", Mapping{"ADDI", bind(pair(rs1, 0))}, false,
			[]opcode.Field{b("010"), immBit(5), rd, imm(4, 0), b("01")}},
		{"C.ADDI16SP", Mapping{"ADDI", bind(pair(rs1, 2), pair(rd, 2))}, false,
			[]opcode.Field{b("011"), immBit(9), b("00010"), immBit(4), immBit(6), imm(8, 7), immBit(5), b("01")}},
		{"C.LUI", Mapping{"LUI", nil}, false,
			[]opcode.Field{b("011"), immBit(17), rd.NotEqual(2), imm(16, 12), b("01")}},
		{"C.SRLI", Mapping{"SRLI", nil}, false,
			[]opcode.Field{b("100"), b("0"), b("00"), rsdp, uimm(4, 0), b("01")}},
		{"C.SRAI", Mapping{"SRAI", nil}, false,
			[]opcode.Field{b("100"), b("0"), b("01"), rsdp, uimm(4, 0), b("01")}},
		{"C.ANDI", Mapping{"ANDI", nil}, false,
			[]opcode.Field{b("100"), immBit(5), b("10"), rsdp, imm(4, 0), b("01")}},
		{"C.SUB", Mapping{"SUB", nil}, false,
			[]opcode.Field{b("100"), b("0"), b("11"), rsdp, b("00"), rs2p, b("01")}},
		{"C.XOR", Mapping{"XOR", nil}, false,
			[]opcode.Field{b("100"), b("0"), b("11"), rsdp, b("01"), rs2p, b("01")}},
		{"C.OR", Mapping{"OR", nil}, false,
			[]opcode.Field{b("100"), b("0"), b("11"), rsdp, b("10"), rs2p, b("01")}},
		{"C.AND", Mapping{"AND", nil}, false,
			[]opcode.Field{b("100"), b("0"), b("11"), rsdp, b("11"), rs2p, b("01")}},
		{"C.J", Mapping{"JAL", bind(pair(rd, 0))}, false,
			[]opcode.Field{b("101"), immBit(11), immBit(4), imm(9, 8), immBit(10), immBit(6), immBit(7), imm(3, 1), immBit(5), b("01")}},
		{"C.BEQZ", Mapping{"BEQ", bind(pair(rs2, 0))}, false,
			[]opcode.Field{b("110"), immBit(8), imm(4, 3), rs1p, imm(7, 6), imm(2, 1), immBit(5), b("01")}},
		{"C.BNEZ", Mapping{"BNE", bind(pair(rs2, 0))}, false,
			[]opcode.Field{b("111"), immBit(8), imm(4, 3), rs1p, imm(7, 6), imm(2, 1), immBit(5), b("01")}},
		{"C.SLLI", Mapping{"SLLI", nil}, false,
			[]opcode.Field{b("000"), b("0"), rsd, uimm(4, 0), b("10")}},
		{"C.LWSP", Mapping{"LW", bind(pair(rs1, 2))}, true,
			[]opcode.Field{b("010"), uimmBit(5), rd, uimm(4, 2), uimm(7, 6), b("10")}},
		{"C.JR", Mapping{"JALR", bind(pair(rd, 0), pair(opcode.ImmKey(), 0))}, false,
			[]opcode.Field{b("100"), b("0"), rs1, b("00000"), b("10")}},
		{"C.MV", Mapping{"ADD", bind(pair(rs1, 0))}, false,
			[]opcode.Field{b("100"), b("0"), rd, rs2.NotEqual(0), b("10")}},
		// C.EBREAK is intentionally not declared; see DESIGN.md.
		{"C.JALR", Mapping{"JALR", bind(pair(rd, 1), pair(opcode.ImmKey(), 0))}, false,
			[]opcode.Field{b("100"), b("1"), rs1, b("00000"), b("10")}},
		{"C.ADD", Mapping{"ADD", nil}, false,
			[]opcode.Field{b("100"), b("1"), rsd, rs2.NotEqual(0), b("10")}},
		{"C.SWSP", Mapping{"SW", bind(pair(rs1, 2))}, true,
			[]opcode.Field{b("110"), uimm(5, 2), uimm(7, 6), rs2, b("10")}},
	}
	for _, d := range decls {
		if err := c.DeclareCompressed(d.name, d.mapping, d.isImmOffset, d.fields...); err != nil {
			return err
		}
	}
	return nil
}
