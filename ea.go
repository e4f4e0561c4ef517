package m68k

// operand is an effective address resolved into a pair of accessors. By the
// time one exists, every extension word has been consumed and any
// register side effect (postincrement, predecrement) has been applied, so
// handlers read and write through it without caring which of the twelve
// addressing forms produced it. Memory operands additionally expose the
// computed address for the instructions (LEA, PEA, JMP, JSR, MOVEM) that
// want the address itself rather than the value stored there.
type operand struct {
	get  func() uint32
	set  func(uint32)
	addr uint32
}

// dataRegOperand accesses Dn at the given width. Stores merge under the
// width mask, preserving the register's upper bits — a byte or word write
// into D0 must never clobber what sits above it.
func (c *CPU) dataRegOperand(reg uint8, sz Size) operand {
	mask := sz.Mask()
	return operand{
		get: func() uint32 { return c.regs.D[reg] & mask },
		set: func(v uint32) { c.regs.D[reg] = c.regs.D[reg]&^mask | v&mask },
	}
}

// addrRegOperand accesses An. Stores always replace the full register;
// there is no such thing as a partial-width address, and the word-sized
// instructions that target An (MOVEA.W, ADDA.W...) sign-extend before
// storing.
func (c *CPU) addrRegOperand(reg uint8, sz Size) operand {
	return operand{
		get: func() uint32 { return c.regs.A[reg] & sz.Mask() },
		set: func(v uint32) { c.regs.A[reg] = v },
	}
}

func (c *CPU) memOperand(addr uint32, sz Size) operand {
	return operand{
		addr: addr,
		get:  func() uint32 { return c.readBus(sz, addr) },
		set:  func(v uint32) { c.writeBus(sz, addr, v) },
	}
}

// immOperand captures an immediate by value. Writing through one is a
// no-op; no legal instruction encodes an immediate destination, and the
// executor stays total rather than faulting on the combination.
func immOperand(v uint32, sz Size) operand {
	return operand{
		get: func() uint32 { return v & sz.Mask() },
		set: func(uint32) {},
	}
}

// postPreStep is the distance (An)+ and -(An) move their register: the
// operand width, except that byte accesses through A7 step by two to keep
// the stack pointer word-aligned.
func postPreStep(reg uint8, sz Size) uint32 {
	if sz == Byte && reg == 7 {
		return 2
	}
	return uint32(sz)
}

// operand resolves a mode/reg field pair into an accessor, consuming
// whatever extension words the form requires and committing register side
// effects in the order real hardware does — the predecrement lands before
// the access, the postincrement after, and PC-relative forms capture PC
// before their extension word is consumed.
func (c *CPU) operand(mode, reg uint8, sz Size) operand {
	switch mode {
	case 0:
		return c.dataRegOperand(reg, sz)

	case 1:
		return c.addrRegOperand(reg, sz)

	case 2: // (An)
		return c.memOperand(c.regs.A[reg], sz)

	case 3: // (An)+
		addr := c.regs.A[reg]
		c.regs.A[reg] = addr + postPreStep(reg, sz)
		return c.memOperand(addr, sz)

	case 4: // -(An)
		c.regs.A[reg] -= postPreStep(reg, sz)
		return c.memOperand(c.regs.A[reg], sz)

	case 5: // d16(An)
		base := c.regs.A[reg]
		return c.memOperand(base+uint32(int32(int16(c.nextWord()))), sz)

	case 6: // d8(An,Xn)
		return c.memOperand(c.indexedAddr(c.regs.A[reg]), sz)

	case 7:
		switch reg {
		case 0: // (xxx).W, sign-extended
			return c.memOperand(uint32(int32(int16(c.nextWord()))), sz)

		case 1: // (xxx).L
			return c.memOperand(c.nextLong(), sz)

		case 2: // d16(PC)
			base := c.regs.PC
			return c.memOperand(base+uint32(int32(int16(c.nextWord()))), sz)

		case 3: // d8(PC,Xn)
			return c.memOperand(c.indexedAddr(c.regs.PC), sz)

		case 4: // #imm — byte immediates ride in the low half of a word
			if sz == Long {
				return immOperand(c.nextLong(), sz)
			}
			return immOperand(uint32(c.nextWord()), sz)
		}
	}

	// mode 7 regs 5-7 name no addressing form on this processor.
	c.exception(vecIllegalInstruction)
	return operand{get: func() uint32 { return 0 }, set: func(uint32) {}}
}

// indexedAddr consumes a brief extension word (D/A:1 Xn:3 W/L:1 0:3
// disp8:8) and forms base + index + disp8. The index register reads as a
// sign-extended word unless the W/L bit asks for the full 32 bits; the
// 68020 scale bits are ignored, as on a real 68000.
func (c *CPU) indexedAddr(base uint32) uint32 {
	ext := c.nextWord()

	idx := c.regs.D[(ext>>12)&7]
	if ext&0x8000 != 0 {
		idx = c.regs.A[(ext>>12)&7]
	}
	if ext&0x0800 == 0 {
		idx = uint32(int32(int16(idx)))
	}

	return base + idx + uint32(int32(int8(ext)))
}
