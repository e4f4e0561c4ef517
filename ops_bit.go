package m68k

func init() {
	registerBitOps()
}

// The single-bit test/modify family shares one shape across all four
// opcodes: a bit number taken either from a data register (dynamic form)
// or from an immediate extension word (static form), tested and then
// optionally flipped/cleared/set. Z reports the bit's value before any
// modification. Against Dn the bit number wraps mod 32; against memory it
// wraps mod 8, since a byte only has 8 bits to address.
//
//	Dynamic: 0000 DDD1 TT eeeeee
//	Static:  0000 1000 TT eeeeee + immediate word
//	TT = 00:BTST, 01:BCHG, 10:BCLR, 11:BSET

// bitOpSpec describes one of the four instructions: how it modifies the
// tested bit (nil for BTST's pure test) and what the register-destination
// and memory-destination forms cost.
type bitOpSpec struct {
	apply            func(v, m uint32) uint32
	dynReg, dynMem   uint64
	statReg, statMem uint64
}

func registerBitOps() {
	specs := [4]bitOpSpec{
		{nil, 6, 4, 10, 8},                                                 // BTST
		{func(v, m uint32) uint32 { return v ^ m }, 8, 8, 12, 12},          // BCHG
		{func(v, m uint32) uint32 { return v &^ m }, 10, 8, 14, 12},        // BCLR
		{func(v, m uint32) uint32 { return v | m }, 8, 8, 12, 12},          // BSET
	}

	for tt, spec := range specs {
		dyn := bitOp(spec, false)
		stat := bitOp(spec, true)

		// BTST alone reads rather than writes its operand, so its dynamic
		// form additionally accepts immediate and PC-relative sources and
		// its static form the PC-relative pair.
		dynForms, statForms := uint16(eaDataAlt), uint16(eaDataAlt)
		if tt == 0 {
			dynForms = eaDataAny
			statForms = eaDataAlt | eaPCDisp | eaPCIndexed
		}

		head := uint16(tt) << 6
		for dn := uint16(0); dn < 8; dn++ {
			eachEA(dynForms, func(mode, reg uint16) {
				opcodeTable[0x0100|dn<<9|head|mode<<3|reg] = dyn
			})
		}
		eachEA(statForms, func(mode, reg uint16) {
			opcodeTable[0x0800|head|mode<<3|reg] = stat
		})
	}
}

func bitOp(spec bitOpSpec, static bool) opFunc {
	return func(c *CPU) {
		var bitNum uint32
		if static {
			bitNum = uint32(c.nextWord() & 0xFF)
		} else {
			bitNum = c.regs.D[(c.opword>>9)&7]
		}
		mode, reg := eaField(c.opword)

		if mode == 0 {
			m := uint32(1) << (bitNum & 31)
			v := c.regs.D[reg]
			c.putFlag(flagZ, v&m == 0)
			if spec.apply != nil {
				c.regs.D[reg] = spec.apply(v, m)
			}
			if static {
				c.cycles += spec.statReg
			} else {
				c.cycles += spec.dynReg
			}
			return
		}

		m := uint32(1) << (bitNum & 7)
		dst := c.operand(mode, reg, Byte)
		v := dst.get()
		c.putFlag(flagZ, v&m == 0)
		if spec.apply != nil {
			dst.set(spec.apply(v, m))
		}
		if static {
			c.cycles += spec.statMem
		} else {
			c.cycles += spec.dynMem
		}
	}
}
