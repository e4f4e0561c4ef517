package m68k

func init() {
	registerBranches()
	registerJumps()
	registerReturns()
	registerDBcc()
	registerScc()
}

// --- BRA / BSR / Bcc: PC-relative control transfer. The displacement is
// embedded in the opcode's low byte; a zero there means a 16-bit extension
// word carries it instead. Condition codes 0 and 1 of the 0110 family are
// BRA and BSR, the remaining fourteen test the flags ---

func registerBranches() {
	for low := uint16(0); low < 0x1000; low++ {
		op := 0x6000 | low
		switch low >> 8 {
		case 0:
			opcodeTable[op] = opBRA
		case 1:
			opcodeTable[op] = opBSR
		default:
			opcodeTable[op] = opBcc
		}
	}
}

// branchTarget resolves the displacement form shared by all three branch
// opcodes, relative to the address of the word after the opcode. The
// second return reports whether an extension word was consumed, which the
// not-taken Bcc path charges for.
func (c *CPU) branchTarget() (uint32, bool) {
	base := c.regs.PC
	disp := int32(int8(c.opword))
	if disp != 0 {
		return base + uint32(disp), false
	}
	return base + uint32(int32(int16(c.nextWord()))), true
}

func opBRA(c *CPU) {
	target, _ := c.branchTarget()
	c.regs.PC = target
	c.cycles += 10
}

func opBSR(c *CPU) {
	target, _ := c.branchTarget()
	c.pushLong(c.regs.PC)
	c.regs.PC = target
	c.cycles += 18
}

func opBcc(c *CPU) {
	target, ext := c.branchTarget()
	if c.cond((c.opword >> 8) & 0xF) {
		c.regs.PC = target
		c.cycles += 10
		return
	}
	c.cycles += 8
	if ext {
		c.cycles += 4
	}
}

// --- JMP / JSR: absolute control transfer through any control addressing
// mode — there is nothing to jump to at a register or an immediate, and
// the auto-modifying modes have no sensible meaning for a code address ---

func registerJumps() {
	eachEA(eaControl, func(mode, reg uint16) {
		opcodeTable[0x4EC0|mode<<3|reg] = opJMP
		opcodeTable[0x4E80|mode<<3|reg] = opJSR
	})
}

func opJMP(c *CPU) {
	mode, reg := eaField(c.opword)
	c.regs.PC = c.operand(mode, reg, Word).addr
	c.cycles += 8
}

func opJSR(c *CPU) {
	mode, reg := eaField(c.opword)
	target := c.operand(mode, reg, Word).addr
	c.pushLong(c.regs.PC)
	c.regs.PC = target
	c.cycles += 16
}

// --- RTS / RTE / RTR: the three return forms. RTS pops only a return
// address; RTE pops SR then PC, restoring the pre-fault privilege level,
// and is supervisor-only; RTR pops a word but applies just its CCR half,
// so user code can use it without ever gaining supervisor state ---

func registerReturns() {
	opcodeTable[0x4E75] = opRTS
	opcodeTable[0x4E73] = opRTE
	opcodeTable[0x4E77] = opRTR
}

func opRTS(c *CPU) {
	c.regs.PC = c.popLong()
	c.cycles += 16
}

func opRTE(c *CPU) {
	if !c.inSupervisorMode() {
		c.exception(vecPrivilegeViolation)
		return
	}

	sr := c.popWord()
	c.regs.PC = c.popLong()
	c.writeSR(sr)

	c.cycles += 20
}

func opRTR(c *CPU) {
	c.writeCCR(uint8(c.popWord()))
	c.regs.PC = c.popLong()
	c.cycles += 20
}

// --- DBcc: test-and-decrement loop primitive ---

func registerDBcc() {
	// 0101 CCCC 1100 1DDD
	for cc := uint16(0); cc < 16; cc++ {
		for dn := uint16(0); dn < 8; dn++ {
			opcodeTable[0x50C8|cc<<8|dn] = opDBcc
		}
	}
}

// opDBcc implements "while (!cc) { if (--Dn.w == -1) break; goto disp }":
// the condition is checked first and, if already true, the loop falls
// through without ever touching Dn — a true condition short-circuits the
// decrement entirely, it doesn't just skip the branch.
func opDBcc(c *CPU) {
	disp := int32(int16(c.nextWord()))

	if c.cond((c.opword >> 8) & 0xF) {
		c.cycles += 12
		return
	}

	dn := uint8(c.opword) & 7
	counter := int16(c.regs.D[dn]&0xFFFF) - 1
	c.regs.D[dn] = c.regs.D[dn]&0xFFFF0000 | uint32(uint16(counter))

	if counter == -1 {
		c.cycles += 14
		return
	}
	c.regs.PC += uint32(disp) - 2
	c.cycles += 10
}

// --- Scc: set a byte destination to all-ones or all-zeros by condition ---

func registerScc() {
	// 0101 CCCC 11 eeeeee
	for cc := uint16(0); cc < 16; cc++ {
		head := 0x50C0 | cc<<8
		eachEA(eaDataAlt, func(mode, reg uint16) {
			opcodeTable[head|mode<<3|reg] = opScc
		})
	}
}

func opScc(c *CPU) {
	mode, reg := eaField(c.opword)
	dst := c.operand(mode, reg, Byte)

	if c.cond((c.opword >> 8) & 0xF) {
		dst.set(0xFF)
		c.cycles += 6
	} else {
		dst.set(0x00)
		c.cycles += 4
	}
	if mode >= 2 {
		c.cycles += 4
	}
}
