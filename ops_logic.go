package m68k

func init() {
	registerBitwise()
	registerBitwiseImm()
	registerNOT()
	registerTST()
	registerTAS()
	registerShifts()
}

// --- AND / OR / EOR ---
//
// AND and OR run in both directions (<ea> into Dn, Dn into <ea>); EOR only
// exists Dn-into-<ea>, its other direction's encoding space belonging to
// CMP. All three land the shared logical flag rule, so one body per
// direction parameterized by the bit operation covers the family.

func registerBitwise() {
	and := func(a, b uint32) uint32 { return a & b }
	or := func(a, b uint32) uint32 { return a | b }
	xor := func(a, b uint32) uint32 { return a ^ b }

	twoWay := []struct {
		base  uint16
		toReg opFunc
		toEA  opFunc
	}{
		{0xC000, logicEAToReg(and), logicRegToEA(and)},
		{0x8000, logicEAToReg(or), logicRegToEA(or)},
	}
	for _, fam := range twoWay {
		for dn := uint16(0); dn < 8; dn++ {
			for szBits := uint16(0); szBits < 3; szBits++ {
				head := fam.base | dn<<9 | szBits<<6
				eachEA(eaDataAny, func(mode, reg uint16) {
					opcodeTable[head|mode<<3|reg] = fam.toReg
				})
				eachEA(eaMemAlt, func(mode, reg uint16) {
					opcodeTable[head|0x100|mode<<3|reg] = fam.toEA
				})
			}
		}
	}

	eor := opEOR(xor)
	for dn := uint16(0); dn < 8; dn++ {
		for szBits := uint16(0); szBits < 3; szBits++ {
			head := 0xB100 | dn<<9 | szBits<<6
			eachEA(eaDataAlt, func(mode, reg uint16) {
				opcodeTable[head|mode<<3|reg] = eor
			})
		}
	}
}

func logicEAToReg(apply func(a, b uint32) uint32) opFunc {
	return func(c *CPU) {
		sz := sizeEncoding((c.opword >> 6) & 3)
		mode, reg := eaField(c.opword)
		dn := uint8(c.opword>>9) & 7

		s := c.operand(mode, reg, sz).get()
		dst := c.dataRegOperand(dn, sz)
		r := apply(s, dst.get())
		c.moveFlags(r, sz)
		dst.set(r)

		c.cycles += pickWL(sz, 8, 4)
	}
}

func logicRegToEA(apply func(a, b uint32) uint32) opFunc {
	return func(c *CPU) {
		sz := sizeEncoding((c.opword >> 6) & 3)
		mode, reg := eaField(c.opword)
		dn := uint8(c.opword>>9) & 7

		s := c.dataRegOperand(dn, sz).get()
		dst := c.operand(mode, reg, sz)
		r := apply(s, dst.get())
		c.moveFlags(r, sz)
		dst.set(r)

		c.cycles += pickWL(sz, 12, 8)
	}
}

// opEOR carries EOR's own cycle table: register destinations pay the
// short-form cost, memory destinations a flat surcharge.
func opEOR(apply func(a, b uint32) uint32) opFunc {
	return func(c *CPU) {
		sz := sizeEncoding((c.opword >> 6) & 3)
		mode, reg := eaField(c.opword)
		dn := uint8(c.opword>>9) & 7

		s := c.dataRegOperand(dn, sz).get()
		dst := c.operand(mode, reg, sz)
		r := apply(s, dst.get())
		c.moveFlags(r, sz)
		dst.set(r)

		c.cycles += 4
		if mode >= 2 {
			c.cycles += 4
		}
		if sz == Long && mode == 0 {
			c.cycles += 4
		}
	}
}

// --- ANDI / ORI / EORI: immediate against an <ea>, flat cycle cost ---

func registerBitwiseImm() {
	entries := []struct {
		base  uint16
		apply func(a, b uint32) uint32
	}{
		{0x0200, func(a, b uint32) uint32 { return a & b }},
		{0x0000, func(a, b uint32) uint32 { return a | b }},
		{0x0A00, func(a, b uint32) uint32 { return a ^ b }},
	}
	for _, e := range entries {
		h := logicImm(e.apply)
		for szBits := uint16(0); szBits < 3; szBits++ {
			head := e.base | szBits<<6
			eachEA(eaDataAlt, func(mode, reg uint16) {
				opcodeTable[head|mode<<3|reg] = h
			})
		}
	}
}

func logicImm(apply func(a, b uint32) uint32) opFunc {
	return func(c *CPU) {
		sz := sizeEncoding((c.opword >> 6) & 3)
		mode, reg := eaField(c.opword)

		imm := c.immVal(sz)
		dst := c.operand(mode, reg, sz)
		r := apply(imm, dst.get())
		c.moveFlags(r, sz)
		dst.set(r)

		c.cycles += pickWL(sz, 16, 8)
	}
}

// --- NOT: one's-complement an <ea> in place ---

func registerNOT() {
	for szBits := uint16(0); szBits < 3; szBits++ {
		head := 0x4600 | szBits<<6
		eachEA(eaDataAlt, func(mode, reg uint16) {
			opcodeTable[head|mode<<3|reg] = opNOT
		})
	}
}

func opNOT(c *CPU) {
	sz := sizeEncoding((c.opword >> 6) & 3)
	mode, reg := eaField(c.opword)

	dst := c.operand(mode, reg, sz)
	r := ^dst.get() & sz.Mask()
	c.moveFlags(r, sz)
	dst.set(r)

	c.cycles += 4
	if mode >= 2 {
		c.cycles += 4
	}
	if sz == Long && mode == 0 {
		c.cycles += 2
	}
}

// --- TST: read an <ea>, land N/Z, discard the value ---

func registerTST() {
	for szBits := uint16(0); szBits < 3; szBits++ {
		head := 0x4A00 | szBits<<6
		eachEA(eaDataAlt, func(mode, reg uint16) {
			opcodeTable[head|mode<<3|reg] = opTST
		})
	}
}

func opTST(c *CPU) {
	sz := sizeEncoding((c.opword >> 6) & 3)
	mode, reg := eaField(c.opword)

	c.moveFlags(c.operand(mode, reg, sz).get(), sz)
	c.cycles += 4
}

// --- TAS: test-and-set, the classic read-modify-write lock primitive — the
// read, flag update and bit-7 set happen as one indivisible bus cycle on
// real hardware so two CPUs can't both see the flag clear ---

func registerTAS() {
	// 0100 1010 11 MMM RRR
	eachEA(eaDataAlt, func(mode, reg uint16) {
		opcodeTable[0x4AC0|mode<<3|reg] = opTAS
	})
}

func opTAS(c *CPU) {
	mode, reg := eaField(c.opword)

	dst := c.operand(mode, reg, Byte)
	v := dst.get()
	c.moveFlags(v, Byte)
	dst.set(v | 0x80)

	c.cycles += 4
	if mode >= 2 {
		c.cycles += 10
	}
}

// --- Shift and rotate family: ASL/ASR, LSL/LSR, ROXL/ROXR, ROL/ROR. One
// encoding covers all eight by combining a 2-bit type field with a
// direction bit; the register form shifts Dn by an immediate or another
// Dn's count, while the single memory form always shifts a word by one ---
//
//	Register form: 1110 CCC D SS i TT RRR
//	  CCC = count/register, D = direction (0=right, 1=left)
//	  SS = size, i = 0:immediate count 1:register count
//	  TT = type (00=AS, 01=LS, 10=ROX, 11=RO)
//	  RRR = data register
//	Memory form: 1110 0TT D 11 eee eee (always word, count=1)

func registerShifts() {
	for cnt := uint16(0); cnt < 8; cnt++ {
		for dir := uint16(0); dir < 2; dir++ {
			head := 0xE000 | cnt<<9 | dir<<8
			// The low byte spans size, count-source, type and register;
			// size 11 belongs to the memory form.
			for low := uint16(0); low < 0x100; low++ {
				if low&0xC0 == 0xC0 {
					continue
				}
				opcodeTable[head|low] = opShiftReg
			}
		}
	}

	for typ := uint16(0); typ < 4; typ++ {
		for dir := uint16(0); dir < 2; dir++ {
			head := 0xE0C0 | typ<<9 | dir<<8
			eachEA(eaMemAlt, func(mode, reg uint16) {
				opcodeTable[head|mode<<3|reg] = opShiftMem
			})
		}
	}
}

func opShiftReg(c *CPU) {
	cntField := uint32(c.opword>>9) & 7
	left := c.opword&0x100 != 0
	sz := sizeEncoding((c.opword >> 6) & 3)
	typ := (c.opword >> 3) & 3
	dst := c.dataRegOperand(uint8(c.opword)&7, sz)

	var count uint32
	if c.opword&0x20 != 0 {
		count = c.regs.D[cntField] & 63
	} else if cntField == 0 {
		count = 8
	} else {
		count = cntField
	}

	dst.set(c.shiftValue(dst.get(), count, left, typ, sz))

	c.cycles += 6 + 2*uint64(count)
	if sz == Long {
		c.cycles += 2
	}
}

func opShiftMem(c *CPU) {
	left := c.opword&0x100 != 0
	typ := (c.opword >> 9) & 3
	mode, reg := eaField(c.opword)

	dst := c.operand(mode, reg, Word)
	dst.set(c.shiftValue(dst.get(), 1, left, typ, Word))

	c.cycles += 8
}

// shiftValue runs one shift/rotate variant for count steps and lands the
// flags. A count of zero still refreshes N/Z against the unchanged value
// (and, for the extend rotates, copies X into C) the way the real
// instruction does; otherwise the per-type helper owns C/X/V and N/Z come
// from the final value here.
func (c *CPU) shiftValue(val, count uint32, left bool, typ uint16, sz Size) uint32 {
	if count == 0 {
		c.moveFlags(val, sz)
		if typ == 2 {
			c.putFlag(flagC, c.regs.SR&flagX != 0)
		}
		return val
	}

	var r uint32
	switch typ {
	case 0:
		r = c.arithShift(val, count, left, sz)
	case 1:
		r = c.logicShift(val, count, left, sz)
	case 2:
		r = c.rotateExtend(val, count, left, sz)
	default:
		r = c.rotatePlain(val, count, left, sz)
	}

	c.putFlag(flagN, r&sz.SignBit() != 0)
	c.putFlag(flagZ, r&sz.Mask() == 0)
	return r
}

// arithShift: left accumulates V over every step where the sign bit
// changed; right replicates the sign bit in from the top. C and X take the
// last bit shifted out.
func (c *CPU) arithShift(val, count uint32, left bool, sz Size) uint32 {
	w := sz.BitWidth()

	if left {
		r := val
		overflow := false
		for i := uint32(0); i < count; i++ {
			next := (r << 1) & sz.Mask()
			if (next^r)&sz.SignBit() != 0 {
				overflow = true
			}
			r = next
		}
		out := (val>>(w-count))&1 != 0
		c.putFlag(flagC, out)
		c.putFlag(flagX, out)
		c.putFlag(flagV, overflow)
		return r
	}

	sign := val & sz.SignBit()
	r := val
	for i := uint32(0); i < count; i++ {
		r = r>>1 | sign
	}
	r &= sz.Mask()

	outPos := count - 1
	if count >= w {
		outPos = w - 1 // everything past the width shifts out copies of the sign
	}
	out := (val>>outPos)&1 != 0
	c.putFlag(flagC, out)
	c.putFlag(flagX, out)
	c.regs.SR &^= flagV
	return r
}

// logicShift: zero-fill in both directions, C and X from the last bit out,
// V always clear.
func (c *CPU) logicShift(val, count uint32, left bool, sz Size) uint32 {
	var r uint32
	var out bool
	if left {
		r = (val << count) & sz.Mask()
		out = (val>>(sz.BitWidth()-count))&1 != 0
	} else {
		r = (val & sz.Mask()) >> count
		out = (val>>(count-1))&1 != 0
	}

	c.putFlag(flagC, out)
	c.putFlag(flagX, out)
	c.regs.SR &^= flagV
	return r
}

// rotateExtend threads X through the rotate as a ninth/seventeenth/
// thirty-third bit, one step at a time; each step's outgoing bit becomes
// the next step's X, and C tracks it.
func (c *CPU) rotateExtend(val, count uint32, left bool, sz Size) uint32 {
	w := sz.BitWidth()
	r := val

	for ; count > 0; count-- {
		in := c.extendBit()
		var out bool
		if left {
			out = r&sz.SignBit() != 0
			r = (r<<1 | in) & sz.Mask()
		} else {
			out = r&1 != 0
			r = r>>1 | in<<(w-1)
		}
		c.putFlag(flagX, out)
		c.putFlag(flagC, out)
	}

	r &= sz.Mask()
	c.regs.SR &^= flagV
	return r
}

// rotatePlain wraps bits around modularly; X never participates, and C
// takes the bit that last crossed the boundary (the result's LSB rotating
// left, its MSB rotating right).
func (c *CPU) rotatePlain(val, count uint32, left bool, sz Size) uint32 {
	w := sz.BitWidth()
	sh := count % w

	var r uint32
	if left {
		r = (val<<sh | val>>(w-sh)) & sz.Mask()
		c.putFlag(flagC, r&1 != 0)
	} else {
		r = (val>>sh | val<<(w-sh)) & sz.Mask()
		c.putFlag(flagC, r&sz.SignBit() != 0)
	}

	c.regs.SR &^= flagV
	return r
}
