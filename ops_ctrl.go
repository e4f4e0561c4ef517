package m68k

func init() {
	registerSystem()
	registerLinkUnlk()
	registerStatusMoves()
	registerStatusImmediates()
}

// --- The fixed-opcode system instructions: NOP, STOP, RESET, TRAP, TRAPV ---

func registerSystem() {
	opcodeTable[0x4E71] = opNOP
	opcodeTable[0x4E72] = opSTOP
	opcodeTable[0x4E70] = opRESET
	opcodeTable[0x4E76] = opTRAPV
	// 0100 1110 0100 VVVV, V 0-15 maps onto exception vectors 32-47.
	for v := uint16(0); v < 16; v++ {
		opcodeTable[0x4E40|v] = opTRAP
	}
}

func opNOP(c *CPU) {
	c.cycles += 4
}

// opSTOP loads SR from an immediate and parks the CPU until an interrupt
// wakes it.
func opSTOP(c *CPU) {
	if !c.inSupervisorMode() {
		c.exception(vecPrivilegeViolation)
		return
	}

	c.writeSR(c.nextWord())
	c.stopped = true
	// Hardware's prefetch unit stands still during STOP, so the PC a
	// waking interrupt stacks is the one from before the instruction
	// advanced it; rewind to keep the exception frame faithful.
	c.regs.PC = c.prevPC
	c.cycles += 4
}

// opRESET pulses the external reset line: peripherals on the bus restart,
// this CPU's own registers stay put — on real hardware RESET asserts a
// pin for the rest of the board, it is not a self-reset.
func opRESET(c *CPU) {
	if !c.inSupervisorMode() {
		c.exception(vecPrivilegeViolation)
		return
	}

	c.bus.Reset()
	c.cycles += 132
}

func opTRAP(c *CPU) {
	c.exception(vecTrap0 + int(c.opword&0xF))
}

func opTRAPV(c *CPU) {
	if c.regs.SR&flagV != 0 {
		c.exception(vecTRAPV)
		return
	}
	c.cycles += 4
}

// --- LINK / UNLK: stack-frame prologue and epilogue. LINK pushes An, makes
// it the frame pointer, and opens disp bytes of locals below it; UNLK
// collapses the frame and restores the caller's An ---

func registerLinkUnlk() {
	// 0100 1110 0101 0AAA / 0100 1110 0101 1AAA
	for an := uint16(0); an < 8; an++ {
		opcodeTable[0x4E50|an] = opLINK
		opcodeTable[0x4E58|an] = opUNLK
	}
}

func opLINK(c *CPU) {
	an := uint8(c.opword) & 7
	disp := int32(int16(c.nextWord()))

	c.pushLong(c.regs.A[an])
	c.regs.A[an] = c.regs.A[7]
	c.regs.A[7] += uint32(disp)

	c.cycles += 16
}

func opUNLK(c *CPU) {
	an := uint8(c.opword) & 7
	c.regs.A[7] = c.regs.A[an]
	c.regs.A[an] = c.popLong()

	c.cycles += 12
}

// --- The SR/CCR/USP transfer family ---

func registerStatusMoves() {
	// MOVE SR,<ea> — on a real 68000 this read is unprivileged, unlike the
	// write side below; that asymmetry is preserved here even though
	// opMOVEfromSR never checks inSupervisorMode.
	// 0100 0000 11 eeeeee
	eachEA(eaDataAlt, func(mode, reg uint16) {
		opcodeTable[0x40C0|mode<<3|reg] = opMOVEfromSR
	})

	// MOVE <ea>,CCR: 0100 0100 11 eeeeee
	// MOVE <ea>,SR:  0100 0110 11 eeeeee (privileged)
	eachEA(eaDataAny, func(mode, reg uint16) {
		opcodeTable[0x44C0|mode<<3|reg] = opMOVEtoCCR
		opcodeTable[0x46C0|mode<<3|reg] = opMOVEtoSR
	})

	// MOVE USP,An and MOVE An,USP (privileged)
	// Encoding: 0100 1110 0110 DAAA (D=0: An->USP, D=1: USP->An)
	for an := uint16(0); an < 8; an++ {
		opcodeTable[0x4E60|an] = opMOVEtoUSP
		opcodeTable[0x4E68|an] = opMOVEfromUSP
	}
}

func opMOVEfromSR(c *CPU) {
	mode, reg := eaField(c.opword)
	c.operand(mode, reg, Word).set(uint32(c.regs.SR))

	if mode == 0 {
		c.cycles += 6
	} else {
		c.cycles += 8 + eaOperandReadCycles(mode, reg, Word)
	}
}

func opMOVEtoCCR(c *CPU) {
	mode, reg := eaField(c.opword)
	c.writeCCR(uint8(c.operand(mode, reg, Word).get()))

	c.cycles += 12 + eaOperandReadCycles(mode, reg, Word)
}

func opMOVEtoSR(c *CPU) {
	if !c.inSupervisorMode() {
		c.exception(vecPrivilegeViolation)
		return
	}

	mode, reg := eaField(c.opword)
	c.writeSR(uint16(c.operand(mode, reg, Word).get()))

	c.cycles += 12 + eaOperandReadCycles(mode, reg, Word)
}

func opMOVEtoUSP(c *CPU) {
	if !c.inSupervisorMode() {
		c.exception(vecPrivilegeViolation)
		return
	}
	c.regs.USP = c.regs.A[c.opword&7]
	c.cycles += 4
}

func opMOVEfromUSP(c *CPU) {
	if !c.inSupervisorMode() {
		c.exception(vecPrivilegeViolation)
		return
	}
	c.regs.A[c.opword&7] = c.regs.USP
	c.cycles += 4
}

// --- Immediate logical ops against CCR/SR: each is a fixed single opcode,
// no addressing mode field, since the destination is always CCR or SR.
// One builder per destination, parameterized by the bit operation ---

func registerStatusImmediates() {
	and := func(a, b uint16) uint16 { return a & b }
	or := func(a, b uint16) uint16 { return a | b }
	xor := func(a, b uint16) uint16 { return a ^ b }

	opcodeTable[0x023C] = ccrImmediate(and) // ANDI to CCR
	opcodeTable[0x027C] = srImmediate(and)  // ANDI to SR
	opcodeTable[0x003C] = ccrImmediate(or)  // ORI to CCR
	opcodeTable[0x007C] = srImmediate(or)   // ORI to SR
	opcodeTable[0x0A3C] = ccrImmediate(xor) // EORI to CCR
	opcodeTable[0x0A7C] = srImmediate(xor)  // EORI to SR
}

func ccrImmediate(apply func(a, b uint16) uint16) opFunc {
	return func(c *CPU) {
		c.writeCCR(uint8(apply(c.regs.SR, c.nextWord())))
		c.cycles += 20
	}
}

func srImmediate(apply func(a, b uint16) uint16) opFunc {
	return func(c *CPU) {
		if !c.inSupervisorMode() {
			c.exception(vecPrivilegeViolation)
			return
		}
		c.writeSR(apply(c.regs.SR, c.nextWord()))
		c.cycles += 20
	}
}
