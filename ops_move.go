package m68k

import "math/bits"

func init() {
	registerMOVE()
	registerMOVEQ()
	registerMOVEP()
	registerLeaPea()
	registerMOVEM()
	registerExgSwap()
}

// moveSizeMap decodes MOVE's size field, which runs 01/11/10 for B/W/L
// rather than the 00/01/10 field every other family uses.
var moveSizeMap = [4]Size{0, Byte, Long, Word}

// --- MOVE / MOVEA: the data-movement workhorse. Any source form to any
// alterable destination at all three widths; when the destination mode
// field names An the instruction is MOVEA, which skips the flag update and
// sign-extends word sources the way all address arithmetic does ---
//
//	00SS DDDd ddss ssss
//	SS = size (MOVE's own odd encoding, see moveSizeMap)
//	DDD/ddd = destination reg/mode — reversed order from every other family
//	sss/ssssss = source mode/reg, in the usual order

func registerMOVE() {
	for _, szHead := range []uint16{0x1000, 0x2000, 0x3000} {
		moveDst := uint16(eaDataAlt)
		if szHead != 0x1000 {
			moveDst |= eaAn // byte moves can't target an address register
		}
		eachEA(moveDst, func(dstMode, dstReg uint16) {
			handler := opMOVE
			if dstMode == 1 {
				handler = opMOVEA
			}
			head := szHead | dstReg<<9 | dstMode<<6
			srcForms := uint16(eaAny)
			if szHead == 0x1000 {
				srcForms &^= eaAn
			}
			eachEA(srcForms, func(srcMode, srcReg uint16) {
				opcodeTable[head|srcMode<<3|srcReg] = handler
			})
		})
	}
}

func opMOVE(c *CPU) {
	sz := moveSizeMap[(c.opword>>12)&3]
	srcMode, srcReg := eaField(c.opword)
	dstMode := uint8(c.opword>>6) & 7
	dstReg := uint8(c.opword>>9) & 7

	v := c.operand(srcMode, srcReg, sz).get()
	c.operand(dstMode, dstReg, sz).set(v)
	c.moveFlags(v, sz)

	c.cycles += 4 + eaOperandReadCycles(srcMode, srcReg, sz) +
		eaOperandWriteCycles(dstMode, dstReg, sz)
}

func opMOVEA(c *CPU) {
	sz := moveSizeMap[(c.opword>>12)&3]
	srcMode, srcReg := eaField(c.opword)
	an := uint8(c.opword>>9) & 7

	v := c.operand(srcMode, srcReg, sz).get()
	if sz == Word {
		v = uint32(int32(int16(v)))
	}
	c.regs.A[an] = v

	c.cycles += 4 + eaOperandReadCycles(srcMode, srcReg, sz)
}

// --- MOVEQ: the cheap 8-bit-immediate-to-Dn form; the immediate always
// sign-extends across the full 32-bit register and the usual logical flags
// apply, unlike MOVEA above ---

func registerMOVEQ() {
	// 0111 DDD0 dddddddd
	for dn := uint16(0); dn < 8; dn++ {
		for data := uint16(0); data < 256; data++ {
			opcodeTable[0x7000|dn<<9|data] = opMOVEQ
		}
	}
}

func opMOVEQ(c *CPU) {
	v := uint32(int32(int8(c.opword)))
	c.regs.D[(c.opword>>9)&7] = v
	c.moveFlags(v, Long)
	c.cycles += 4
}

// --- MOVEP: data to or from alternating byte lanes of memory — built for
// 8-bit peripherals wired to only the odd or even byte of the data bus, so
// it touches every other address instead of contiguous ones ---
//
//	0000 DDD OOO 001 AAA + 16-bit displacement
//	OOO=100: MOVEP.W (An),Dn   101: MOVEP.L (An),Dn
//	OOO=110: MOVEP.W Dn,(An)   111: MOVEP.L Dn,(An)

func registerMOVEP() {
	for dn := uint16(0); dn < 8; dn++ {
		for an := uint16(0); an < 8; an++ {
			for opmode := uint16(4); opmode < 8; opmode++ {
				opcodeTable[0x0008|dn<<9|opmode<<6|an] = opMOVEP
			}
		}
	}
}

func opMOVEP(c *CPU) {
	dn := uint8(c.opword>>9) & 7
	opmode := (c.opword >> 6) & 7
	disp := int32(int16(c.nextWord()))
	addr := c.regs.A[c.opword&7] + uint32(disp)

	lanes := 2
	if opmode&1 != 0 {
		lanes = 4
	}

	if opmode >= 6 { // register to memory, high byte first
		v := c.regs.D[dn]
		for i := 0; i < lanes; i++ {
			shift := uint32(lanes-1-i) * 8
			c.writeBus(Byte, addr+uint32(2*i), v>>shift&0xFF)
		}
	} else { // memory to register
		var v uint32
		for i := 0; i < lanes; i++ {
			v = v<<8 | c.readBus(Byte, addr+uint32(2*i))
		}
		if lanes == 2 {
			c.regs.D[dn] = c.regs.D[dn]&0xFFFF0000 | v&0xFFFF
		} else {
			c.regs.D[dn] = v
		}
	}

	c.cycles += 8 + uint64(lanes)*4
}

// --- LEA / PEA: address computation without dereference. LEA lands the
// resolved address in An; PEA pushes it. Only the control modes make
// sense — there is no address "of" a register or an immediate ---

func registerLeaPea() {
	// LEA: 0100 AAA1 11 eeeeee    PEA: 0100 1000 01 eeeeee
	eachEA(eaControl, func(mode, reg uint16) {
		for an := uint16(0); an < 8; an++ {
			opcodeTable[0x41C0|an<<9|mode<<3|reg] = opLEA
		}
		opcodeTable[0x4840|mode<<3|reg] = opPEA
	})
}

// addressCalcCycles is the LEA cost ladder: plain (An) is nearly free, the
// displacement and indexed forms pay for their extension-word arithmetic.
func addressCalcCycles(mode, reg uint8) uint64 {
	switch mode {
	case 2:
		return 4
	case 5:
		return 8
	case 6:
		return 12
	case 7:
		switch reg {
		case 0, 2: // abs.W, d16(PC)
			return 8
		case 1, 3: // abs.L, d8(PC,Xn)
			return 12
		}
	}
	return 0
}

func opLEA(c *CPU) {
	mode, reg := eaField(c.opword)
	c.regs.A[(c.opword>>9)&7] = c.operand(mode, reg, Long).addr
	c.cycles += addressCalcCycles(mode, reg)
}

func opPEA(c *CPU) {
	mode, reg := eaField(c.opword)
	c.pushLong(c.operand(mode, reg, Long).addr)
	// LEA's ladder plus the two stack-write cycles.
	c.cycles += addressCalcCycles(mode, reg) + 8
}

// --- MOVEM: bulk register save/restore. A 16-bit mask names which of
// D0-D7/A0-A7 participate; the predecrement store form reads the mask in
// the opposite bit order so that registers still land at ascending
// addresses while the pointer walks down ---
//
//	0100 1D00 1S eeeeee  D=direction(0=reg-to-mem), S=size(0=W,1=L)

func registerMOVEM() {
	for szBit := uint16(0); szBit < 2; szBit++ {
		toMem := 0x4880 | szBit<<6
		eachEA(eaInd|eaPreDec|eaDisp16|eaIndexed|eaAbsW|eaAbsL, func(mode, reg uint16) {
			opcodeTable[toMem|mode<<3|reg] = opMOVEM
		})
		toReg := 0x4C80 | szBit<<6
		eachEA(eaInd|eaPostInc|eaDisp16|eaIndexed|eaAbsW|eaAbsL|eaPCDisp|eaPCIndexed, func(mode, reg uint16) {
			opcodeTable[toReg|mode<<3|reg] = opMOVEM
		})
	}
}

// movemSlot maps a transfer-order position onto the register file: D0-D7
// first, then A0-A7.
func (c *CPU) movemSlot(i int) *uint32 {
	if i < 8 {
		return &c.regs.D[i]
	}
	return &c.regs.A[i-8]
}

func opMOVEM(c *CPU) {
	toReg := c.opword&0x0400 != 0
	sz := Word
	if c.opword&0x40 != 0 {
		sz = Long
	}
	mode, reg := eaField(c.opword)
	mask := c.nextWord()

	switch {
	case mode == 4: // store, walking down; bit 0 names A7
		addr := c.regs.A[reg]
		for i := 0; i < 16; i++ {
			if mask&(1<<i) == 0 {
				continue
			}
			addr -= uint32(sz)
			c.writeBus(sz, addr, *c.movemSlot(15-i))
		}
		c.regs.A[reg] = addr

	case !toReg: // store, walking up; bit 0 names D0
		addr := c.operand(mode, reg, sz).addr
		for i := 0; i < 16; i++ {
			if mask&(1<<i) == 0 {
				continue
			}
			c.writeBus(sz, addr, *c.movemSlot(i))
			addr += uint32(sz)
		}

	default: // load; word transfers sign-extend into the full register
		addr := c.regs.A[reg]
		if mode != 3 {
			addr = c.operand(mode, reg, sz).addr
		}
		for i := 0; i < 16; i++ {
			if mask&(1<<i) == 0 {
				continue
			}
			v := c.readBus(sz, addr)
			if sz == Word {
				v = uint32(int32(int16(v)))
			}
			*c.movemSlot(i) = v
			addr += uint32(sz)
		}
		if mode == 3 {
			c.regs.A[reg] = addr
		}
	}

	c.cycles += movemBaseCycles(toReg, mode, reg) +
		uint64(bits.OnesCount16(mask))*uint64(sz)*2
}

// movemBaseCycles is the setup cost before any register moves; the load
// direction pays one extra fetch across the board for the dead cycle the
// 68000 spends after its final read.
func movemBaseCycles(toReg bool, mode, reg uint8) uint64 {
	var store = [8]uint64{0, 0, 8, 0, 8, 12, 14, 0}
	var store7 = [2]uint64{12, 16}
	var load = [8]uint64{0, 0, 12, 12, 0, 16, 18, 0}
	var load7 = [4]uint64{16, 20, 16, 18}

	if toReg {
		if mode == 7 && int(reg) < len(load7) {
			return load7[reg]
		}
		return load[mode&7]
	}
	if mode == 7 && int(reg) < len(store7) {
		return store7[reg]
	}
	return store[mode&7]
}

// --- EXG / SWAP: register exchange and intra-register word swap ---

func registerExgSwap() {
	// EXG: 1100 XXX1 MMMM MYYY — the 5-bit mode field picks the pairing.
	for rx := uint16(0); rx < 8; rx++ {
		for ry := uint16(0); ry < 8; ry++ {
			head := 0xC100 | rx<<9 | ry
			opcodeTable[head|0x40] = opEXG // data/data, mode 01000
			opcodeTable[head|0x48] = opEXG // addr/addr, mode 01001
			opcodeTable[head|0x88] = opEXG // data/addr, mode 10001
		}
	}

	// SWAP: 0100 1000 0100 0DDD
	for dn := uint16(0); dn < 8; dn++ {
		opcodeTable[0x4840|dn] = opSWAP
	}
}

func opEXG(c *CPU) {
	rx := (c.opword >> 9) & 7
	ry := c.opword & 7

	switch (c.opword >> 3) & 0x1F {
	case 0x08:
		c.regs.D[rx], c.regs.D[ry] = c.regs.D[ry], c.regs.D[rx]
	case 0x09:
		c.regs.A[rx], c.regs.A[ry] = c.regs.A[ry], c.regs.A[rx]
	case 0x11:
		c.regs.D[rx], c.regs.A[ry] = c.regs.A[ry], c.regs.D[rx]
	}

	c.cycles += 6
}

func opSWAP(c *CPU) {
	dn := c.opword & 7
	v := c.regs.D[dn]
	v = v>>16 | v<<16
	c.regs.D[dn] = v
	c.moveFlags(v, Long)
	c.cycles += 4
}
