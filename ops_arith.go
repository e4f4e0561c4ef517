package m68k

func init() {
	registerAddSub()
	registerAddaSuba()
	registerImmediateALU()
	registerQuickALU()
	registerExtended()
	registerCompare()
	registerMulDiv()
	registerUnary()
	registerEXT()
	registerCHK()
}

// commitFunc is the shared shape of the flag-unit commit helpers: fold src
// into dst at a width, land the condition codes, hand back the result.
// Passing one into a handler builder is what lets ADD and SUB (and their
// immediate/quick/extended variants) share a single body per encoding
// shape — the ALU operation is the only thing that differs.
type commitFunc func(*CPU, uint32, uint32, Size) uint32

// --- ADD / SUB: two-direction binary ALU, 1101/1001 families ---
//
//	xxxx DDD O SS eeeeee — O=0 folds <ea> into Dn, O=1 folds Dn into <ea>

func registerAddSub() {
	families := []struct {
		base  uint16
		toReg opFunc
		toEA  opFunc
	}{
		{0xD000, binaryEAToReg((*CPU).addCommit), binaryRegToEA((*CPU).addCommit)},
		{0x9000, binaryEAToReg((*CPU).subCommit), binaryRegToEA((*CPU).subCommit)},
	}
	for _, fam := range families {
		for dn := uint16(0); dn < 8; dn++ {
			for szBits := uint16(0); szBits < 3; szBits++ {
				head := fam.base | dn<<9 | szBits<<6
				srcForms := uint16(eaAny)
				if szBits == 0 {
					srcForms &^= eaAn // no byte reads of an address register
				}
				eachEA(srcForms, func(mode, reg uint16) {
					opcodeTable[head|mode<<3|reg] = fam.toReg
				})
				eachEA(eaMemAlt, func(mode, reg uint16) {
					opcodeTable[head|0x100|mode<<3|reg] = fam.toEA
				})
			}
		}
	}
}

func binaryEAToReg(commit commitFunc) opFunc {
	return func(c *CPU) {
		sz := sizeEncoding((c.opword >> 6) & 3)
		mode, reg := eaField(c.opword)
		dn := uint8(c.opword>>9) & 7

		s := c.operand(mode, reg, sz).get()
		dst := c.dataRegOperand(dn, sz)
		dst.set(commit(c, s, dst.get(), sz))

		base := uint64(4)
		if sz == Long {
			// Long folds into a register cost 8, unless the operand came
			// over the bus (not immediate), where overlap shaves it to 6.
			base = 8
			if mode >= 2 && !(mode == 7 && reg == 4) {
				base = 6
			}
		}
		c.cycles += base + eaOperandReadCycles(mode, reg, sz)
	}
}

func binaryRegToEA(commit commitFunc) opFunc {
	return func(c *CPU) {
		sz := sizeEncoding((c.opword >> 6) & 3)
		mode, reg := eaField(c.opword)
		dn := uint8(c.opword>>9) & 7

		s := c.dataRegOperand(dn, sz).get()
		dst := c.operand(mode, reg, sz)
		dst.set(commit(c, s, dst.get(), sz))

		base := uint64(8)
		if sz == Long {
			base = 12
		}
		c.cycles += base + eaOperandReadCycles(mode, reg, sz)
	}
}

// --- ADDA / SUBA: fold into an address register. Word sources sign-extend
// across the full 32 bits, and the condition codes are never touched ---

func registerAddaSuba() {
	families := []struct {
		base    uint16
		handler opFunc
	}{
		{0xD000, addrALU(func(a, v uint32) uint32 { return a + v })},
		{0x9000, addrALU(func(a, v uint32) uint32 { return a - v })},
	}
	for _, fam := range families {
		for an := uint16(0); an < 8; an++ {
			for _, opmode := range []uint16{3, 7} { // 3 = word, 7 = long
				head := fam.base | an<<9 | opmode<<6
				eachEA(eaAny, func(mode, reg uint16) {
					opcodeTable[head|mode<<3|reg] = fam.handler
				})
			}
		}
	}
}

func addrALU(apply func(a, v uint32) uint32) opFunc {
	return func(c *CPU) {
		sz := Word
		if (c.opword>>6)&7 == 7 {
			sz = Long
		}
		mode, reg := eaField(c.opword)
		an := uint8(c.opword>>9) & 7

		v := c.operand(mode, reg, sz).get()
		if sz == Word {
			v = uint32(int32(int16(v)))
		}
		c.regs.A[an] = apply(c.regs.A[an], v)

		base := uint64(8)
		if sz == Long && mode >= 2 && !(mode == 7 && reg == 4) {
			base = 6
		}
		c.cycles += base + eaOperandReadCycles(mode, reg, sz)
	}
}

// --- ADDI / SUBI / CMPI: immediate against an <ea>, 0000 family ---

func registerImmediateALU() {
	families := []struct {
		base    uint16
		handler opFunc
	}{
		{0x0600, immediateALU((*CPU).addCommit, true, 16, 8, 20, 12)},
		{0x0400, immediateALU((*CPU).subCommit, true, 16, 8, 20, 12)},
		{0x0C00, immediateALU((*CPU).cmpCommit, false, 14, 8, 12, 8)},
	}
	for _, fam := range families {
		for szBits := uint16(0); szBits < 3; szBits++ {
			head := fam.base | szBits<<6
			eachEA(eaDataAlt, func(mode, reg uint16) {
				opcodeTable[head|mode<<3|reg] = fam.handler
			})
		}
	}
}

// immediateALU builds one ADDI/SUBI/CMPI-shaped handler. The four cycle
// parameters are the register-destination and memory-destination costs at
// long and word/byte width; memory destinations additionally pay the
// operand fetch.
func immediateALU(commit commitFunc, writeBack bool, regL, regW, memL, memW uint64) opFunc {
	return func(c *CPU) {
		sz := sizeEncoding((c.opword >> 6) & 3)
		mode, reg := eaField(c.opword)

		imm := c.immVal(sz)
		dst := c.operand(mode, reg, sz)
		r := commit(c, imm, dst.get(), sz)
		if writeBack {
			dst.set(r)
		}

		if mode == 0 {
			c.cycles += pickWL(sz, regL, regW)
		} else {
			c.cycles += pickWL(sz, memL, memW) + eaOperandReadCycles(mode, reg, sz)
		}
	}
}

// pickWL selects the long-width or word/byte-width member of a cycle pair.
func pickWL(sz Size, long, word uint64) uint64 {
	if sz == Long {
		return long
	}
	return word
}

// --- ADDQ / SUBQ: 3-bit quick immediate, where a data field of 0 encodes 8.
// An An destination always takes the full 32-bit operation with no flag
// update, mirroring ADDA/SUBA ---

func registerQuickALU() {
	families := []struct {
		base    uint16
		handler opFunc
	}{
		{0x5000, quickALU((*CPU).addCommit, func(a, q uint32) uint32 { return a + q })},
		{0x5100, quickALU((*CPU).subCommit, func(a, q uint32) uint32 { return a - q })},
	}
	for _, fam := range families {
		for data := uint16(0); data < 8; data++ {
			for szBits := uint16(0); szBits < 3; szBits++ {
				head := fam.base | data<<9 | szBits<<6
				forms := uint16(eaDataAlt | eaAn)
				if szBits == 0 {
					forms &^= eaAn
				}
				eachEA(forms, func(mode, reg uint16) {
					opcodeTable[head|mode<<3|reg] = fam.handler
				})
			}
		}
	}
}

func quickALU(commit commitFunc, applyA func(a, q uint32) uint32) opFunc {
	return func(c *CPU) {
		q := uint32(c.opword>>9) & 7
		if q == 0 {
			q = 8
		}
		sz := sizeEncoding((c.opword >> 6) & 3)
		mode, reg := eaField(c.opword)

		if mode == 1 {
			c.regs.A[reg] = applyA(c.regs.A[reg], q)
			c.cycles += 8
			return
		}

		dst := c.operand(mode, reg, sz)
		dst.set(commit(c, q, dst.get(), sz))

		if mode == 0 {
			c.cycles += pickWL(sz, 8, 4)
		} else {
			c.cycles += pickWL(sz, 12, 8) + eaOperandReadCycles(mode, reg, sz)
		}
	}
}

// --- ADDX / SUBX: the multi-precision forms. Register-to-register chains
// low limbs upward through Dn pairs; the -(Ay),-(Ax) form walks two byte
// strings downward in lockstep, exactly the access pattern long decimal
// and bignum loops want ---

func registerExtended() {
	families := []struct {
		base     uint16
		reg, mem opFunc
	}{
		{0xD100, extendedReg((*CPU).addxCommit), extendedMem((*CPU).addxCommit)},
		{0x9100, extendedReg((*CPU).subxCommit), extendedMem((*CPU).subxCommit)},
	}
	for _, fam := range families {
		for rx := uint16(0); rx < 8; rx++ {
			for ry := uint16(0); ry < 8; ry++ {
				for szBits := uint16(0); szBits < 3; szBits++ {
					head := fam.base | rx<<9 | szBits<<6
					opcodeTable[head|ry] = fam.reg
					opcodeTable[head|8|ry] = fam.mem
				}
			}
		}
	}
}

func extendedReg(commit commitFunc) opFunc {
	return func(c *CPU) {
		sz := sizeEncoding((c.opword >> 6) & 3)
		src := c.dataRegOperand(uint8(c.opword)&7, sz)
		dst := c.dataRegOperand(uint8(c.opword>>9)&7, sz)

		dst.set(commit(c, src.get(), dst.get(), sz))

		c.cycles += pickWL(sz, 8, 4)
	}
}

func extendedMem(commit commitFunc) opFunc {
	return func(c *CPU) {
		sz := sizeEncoding((c.opword >> 6) & 3)
		src := c.operand(4, uint8(c.opword)&7, sz)    // -(Ay)
		dst := c.operand(4, uint8(c.opword>>9)&7, sz) // -(Ax)

		s := src.get()
		dst.set(commit(c, s, dst.get(), sz))

		c.cycles += pickWL(sz, 30, 18)
	}
}

// --- CMP / CMPA / CMPM: subtraction that keeps only the flags ---

func registerCompare() {
	for rn := uint16(0); rn < 8; rn++ {
		for szBits := uint16(0); szBits < 3; szBits++ {
			head := 0xB000 | rn<<9 | szBits<<6
			srcForms := uint16(eaAny)
			if szBits == 0 {
				srcForms &^= eaAn
			}
			eachEA(srcForms, func(mode, reg uint16) {
				opcodeTable[head|mode<<3|reg] = opCMP
			})
		}
		for _, opmode := range []uint16{3, 7} {
			head := 0xB000 | rn<<9 | opmode<<6
			eachEA(eaAny, func(mode, reg uint16) {
				opcodeTable[head|mode<<3|reg] = opCMPA
			})
		}
		for ry := uint16(0); ry < 8; ry++ {
			for szBits := uint16(0); szBits < 3; szBits++ {
				opcodeTable[0xB108|rn<<9|szBits<<6|ry] = opCMPM
			}
		}
	}
}

func opCMP(c *CPU) {
	sz := sizeEncoding((c.opword >> 6) & 3)
	mode, reg := eaField(c.opword)
	dn := uint8(c.opword>>9) & 7

	s := c.operand(mode, reg, sz).get()
	c.cmpCommit(s, c.regs.D[dn], sz)

	c.cycles += pickWL(sz, 6, 4) + eaOperandReadCycles(mode, reg, sz)
}

// opCMPA compares at full register width no matter the source size; a word
// source sign-extends first, so CMPA.W against a 32-bit address behaves
// the way address arithmetic (ADDA/SUBA) does.
func opCMPA(c *CPU) {
	sz := Word
	if (c.opword>>6)&7 == 7 {
		sz = Long
	}
	mode, reg := eaField(c.opword)
	an := uint8(c.opword>>9) & 7

	v := c.operand(mode, reg, sz).get()
	if sz == Word {
		v = uint32(int32(int16(v)))
	}
	c.cmpCommit(v, c.regs.A[an], Long)

	c.cycles += 6 + eaOperandReadCycles(mode, reg, sz)
}

func opCMPM(c *CPU) {
	sz := sizeEncoding((c.opword >> 6) & 3)
	src := c.operand(3, uint8(c.opword)&7, sz)    // (Ay)+
	dst := c.operand(3, uint8(c.opword>>9)&7, sz) // (Ax)+

	s := src.get()
	c.cmpCommit(s, dst.get(), sz)

	c.cycles += pickWL(sz, 20, 12)
}

// --- MULU / MULS / DIVU / DIVS: the 16-bit multiply/divide unit ---

func registerMulDiv() {
	entries := []struct {
		base    uint16
		handler opFunc
	}{
		{0xC0C0, opMULU},
		{0xC1C0, opMULS},
		{0x80C0, opDIVU},
		{0x81C0, opDIVS},
	}
	for _, e := range entries {
		for dn := uint16(0); dn < 8; dn++ {
			head := e.base | dn<<9
			eachEA(eaDataAny, func(mode, reg uint16) {
				opcodeTable[head|mode<<3|reg] = e.handler
			})
		}
	}
}

func opMULU(c *CPU) {
	mode, reg := eaField(c.opword)
	dn := uint8(c.opword>>9) & 7

	s := c.operand(mode, reg, Word).get()
	p := s * (c.regs.D[dn] & 0xFFFF)
	c.regs.D[dn] = p
	c.moveFlags(p, Long)

	// The real base cost scales with the operand's bit pattern (38-70);
	// charging the worst case keeps timing simple and never optimistic.
	c.cycles += 70 + eaOperandReadCycles(mode, reg, Word)
}

func opMULS(c *CPU) {
	mode, reg := eaField(c.opword)
	dn := uint8(c.opword>>9) & 7

	s := int32(int16(c.operand(mode, reg, Word).get()))
	p := uint32(s * int32(int16(c.regs.D[dn]&0xFFFF)))
	c.regs.D[dn] = p
	c.moveFlags(p, Long)

	c.cycles += 70 + eaOperandReadCycles(mode, reg, Word)
}

// opDIVU divides the full 32-bit Dn by a 16-bit operand, packing the
// 16-bit remainder above the 16-bit quotient. A zero divisor traps; a
// quotient too wide for 16 bits reports V and leaves Dn untouched.
func opDIVU(c *CPU) {
	mode, reg := eaField(c.opword)
	dn := uint8(c.opword>>9) & 7

	divisor := c.operand(mode, reg, Word).get()
	if divisor == 0 {
		c.exception(vecDivideByZero)
		return
	}

	dividend := c.regs.D[dn]
	quo := dividend / divisor
	if quo > 0xFFFF {
		c.regs.SR = c.regs.SR&^flagC | flagV
	} else {
		c.regs.D[dn] = dividend%divisor<<16 | quo
		c.moveFlags(quo, Word)
	}

	c.cycles += 140 + eaOperandReadCycles(mode, reg, Word)
}

// opDIVS is the signed counterpart; the quotient must fit -32768..32767.
func opDIVS(c *CPU) {
	mode, reg := eaField(c.opword)
	dn := uint8(c.opword>>9) & 7

	divisor := int32(int16(c.operand(mode, reg, Word).get()))
	if divisor == 0 {
		c.exception(vecDivideByZero)
		return
	}

	dividend := int32(c.regs.D[dn])
	quo := dividend / divisor
	if quo > 32767 || quo < -32768 {
		c.regs.SR = c.regs.SR&^(flagC|flagZ) | flagV | flagN
	} else {
		c.regs.D[dn] = uint32(dividend%divisor&0xFFFF)<<16 | uint32(quo)&0xFFFF
		c.moveFlags(uint32(quo), Word)
	}

	c.cycles += 158 + eaOperandReadCycles(mode, reg, Word)
}

// --- NEG / NEGX / CLR: single-operand forms of the 0100 family ---

func registerUnary() {
	entries := []struct {
		base    uint16
		handler opFunc
	}{
		{0x4400, unaryEA(func(c *CPU, d uint32, sz Size) uint32 {
			return c.subCommit(d, 0, sz)
		})},
		{0x4000, unaryEA(func(c *CPU, d uint32, sz Size) uint32 {
			return c.subxCommit(d, 0, sz)
		})},
	}
	for _, e := range entries {
		for szBits := uint16(0); szBits < 3; szBits++ {
			head := e.base | szBits<<6
			eachEA(eaDataAlt, func(mode, reg uint16) {
				opcodeTable[head|mode<<3|reg] = e.handler
			})
		}
	}
	for szBits := uint16(0); szBits < 3; szBits++ {
		head := 0x4200 | szBits<<6
		eachEA(eaDataAlt, func(mode, reg uint16) {
			opcodeTable[head|mode<<3|reg] = opCLR
		})
	}
}

// unaryEA builds a read-modify-write handler over one data-alterable
// operand; NEG and NEGX drop out of the subtract commits with a zero
// minuend.
func unaryEA(apply func(*CPU, uint32, Size) uint32) opFunc {
	return func(c *CPU) {
		sz := sizeEncoding((c.opword >> 6) & 3)
		mode, reg := eaField(c.opword)

		dst := c.operand(mode, reg, sz)
		dst.set(apply(c, dst.get(), sz))

		c.cycles += unaryCycles(mode, reg, sz)
	}
}

func unaryCycles(mode, reg uint8, sz Size) uint64 {
	if mode == 0 {
		return pickWL(sz, 6, 4)
	}
	return pickWL(sz, 12, 8) + eaOperandReadCycles(mode, reg, sz)
}

// opCLR stores zero without the read half of a read-modify-write and
// forces the flags straight to the all-zero result's state.
func opCLR(c *CPU) {
	sz := sizeEncoding((c.opword >> 6) & 3)
	mode, reg := eaField(c.opword)

	c.operand(mode, reg, sz).set(0)
	c.regs.SR = c.regs.SR&^(flagN|flagV|flagC) | flagZ

	c.cycles += unaryCycles(mode, reg, sz)
}

// --- EXT: sign-extend a Dn's low portion upward, in place ---

func registerEXT() {
	for dn := uint16(0); dn < 8; dn++ {
		opcodeTable[0x4880|dn] = opEXTW // byte -> word, opmode 010
		opcodeTable[0x48C0|dn] = opEXTL // word -> long, opmode 011
	}
}

func opEXTW(c *CPU) {
	dst := c.dataRegOperand(uint8(c.opword)&7, Word)
	v := uint32(int16(int8(dst.get())))
	dst.set(v)
	c.moveFlags(v, Word)
	c.cycles += 4
}

func opEXTL(c *CPU) {
	dn := uint8(c.opword) & 7
	v := uint32(int32(int16(c.regs.D[dn])))
	c.regs.D[dn] = v
	c.moveFlags(v, Long)
	c.cycles += 4
}

// --- CHK: array bounds check — traps if Dn is negative or exceeds the
// given upper bound, leaving Dn itself unmodified either way ---

func registerCHK() {
	// 0100 DDD 110 MMM RRR (word-only on this part)
	for dn := uint16(0); dn < 8; dn++ {
		head := 0x4180 | dn<<9
		eachEA(eaDataAny, func(mode, reg uint16) {
			opcodeTable[head|mode<<3|reg] = opCHK
		})
	}
}

func opCHK(c *CPU) {
	mode, reg := eaField(c.opword)
	dn := uint8(c.opword>>9) & 7

	bound := int16(c.operand(mode, reg, Word).get())
	v := int16(c.regs.D[dn] & 0xFFFF)

	switch {
	case v < 0:
		c.regs.SR = c.regs.SR&^(flagZ|flagV|flagC) | flagN
		c.exception(vecCHK)
	case v > bound:
		c.regs.SR &^= flagN | flagZ | flagV | flagC
		c.exception(vecCHK)
	default:
		c.cycles += 10 + eaOperandReadCycles(mode, reg, Word)
	}
}
