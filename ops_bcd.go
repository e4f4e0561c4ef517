package m68k

func init() {
	registerBCD()
}

// --- ABCD / SBCD / NBCD: packed decimal arithmetic. The two-operand forms
// mirror ADDX/SUBX's encoding exactly — register pairs, or -(An) pairs for
// chaining multi-byte BCD strings downward through memory — and NBCD is a
// one-operand negate sharing SBCD's core with a zero minuend ---
//
//	ABCD: 1100 XXX1 0000 RYYY    SBCD: 1000 XXX1 0000 RYYY
//	NBCD: 0100 1000 00 eeeeee

func registerBCD() {
	abcdReg, abcdMem := bcdPair(bcdAdd, false), bcdPair(bcdAdd, true)
	sbcdReg, sbcdMem := bcdPair(bcdSub, false), bcdPair(bcdSub, true)
	for rx := uint16(0); rx < 8; rx++ {
		for ry := uint16(0); ry < 8; ry++ {
			opcodeTable[0xC100|rx<<9|ry] = abcdReg
			opcodeTable[0xC108|rx<<9|ry] = abcdMem
			opcodeTable[0x8100|rx<<9|ry] = sbcdReg
			opcodeTable[0x8108|rx<<9|ry] = sbcdMem
		}
	}

	eachEA(eaDataAlt, func(mode, reg uint16) {
		opcodeTable[0x4800|mode<<3|reg] = opNBCD
	})
}

// bcdPair builds the shared two-operand shape: source folds into
// destination through the given decimal core, either Dy into Dx or
// byte-at-a-time through matched predecrements.
func bcdPair(core func(*CPU, uint32, uint32) uint32, mem bool) opFunc {
	return func(c *CPU) {
		rx := uint8(c.opword>>9) & 7
		ry := uint8(c.opword) & 7

		if !mem {
			dst := c.dataRegOperand(rx, Byte)
			dst.set(core(c, c.regs.D[ry]&0xFF, dst.get()))
			c.cycles += 6
			return
		}

		src := c.operand(4, ry, Byte) // -(Ay)
		s := src.get()
		dst := c.operand(4, rx, Byte) // -(Ax)
		dst.set(core(c, s, dst.get()))
		c.cycles += 18
	}
}

// bcdAdd computes d + s + X in packed BCD: a binary add with +6 applied to
// any nibble that overflowed 9, turning base-16 carries into base-10 ones.
// C and X report the decimal carry out of the high nibble. Z follows the
// multi-precision convention (cleared by a nonzero result, otherwise left
// alone), since a BCD string is zero only if every byte of the chain came
// out zero.
func bcdAdd(c *CPU, s, d uint32) uint32 {
	x := c.extendBit()
	binary := s + d + x

	lo := s&0x0F + d&0x0F + x
	sum := s&0xF0 + d&0xF0 + lo
	if lo > 9 {
		sum += 6
	}

	carry := sum > 0x99
	if carry {
		sum += 0x60
	}
	r := sum & 0xFF

	c.regs.SR &^= flagC | flagX | flagN | flagV
	if carry {
		c.regs.SR |= flagC | flagX
	}
	if r&0x80 != 0 {
		c.regs.SR |= flagN
	}
	// The BCD V flag is the undocumented-but-standard "decimal correction
	// flipped the sign bit on" signal.
	if binary&0x80 == 0 && r&0x80 != 0 {
		c.regs.SR |= flagV
	}
	if r != 0 {
		c.regs.SR &^= flagZ
	}
	return r
}

// bcdSub computes d - s - X with the mirror-image correction (-6 per
// borrowing nibble, -0x60 on a full borrow) and the same sticky-Z rule.
func bcdSub(c *CPU, s, d uint32) uint32 {
	x := c.extendBit()
	binary := d - s - x

	diff := binary
	if (d&0x0F-s&0x0F-x)&0x10 != 0 {
		diff -= 6
	}

	borrow := d < s+x
	if borrow {
		diff -= 0x60
	}
	r := diff & 0xFF

	c.regs.SR &^= flagC | flagX | flagN | flagV
	if borrow {
		c.regs.SR |= flagC | flagX
	}
	if r&0x80 != 0 {
		c.regs.SR |= flagN
	}
	if binary&0x80 != 0 && r&0x80 == 0 {
		c.regs.SR |= flagV
	}
	if r != 0 {
		c.regs.SR &^= flagZ
	}
	return r
}

func opNBCD(c *CPU) {
	mode, reg := eaField(c.opword)

	dst := c.operand(mode, reg, Byte)
	dst.set(bcdSub(c, dst.get(), 0))

	if mode == 0 {
		c.cycles += 6
	} else {
		c.cycles += 8 + eaOperandReadCycles(mode, reg, Byte)
	}
}
