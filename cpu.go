// Package m68k interprets Motorola 68000 machine code instruction-by-
// instruction against a caller-supplied memory bus.
//
// It models the chip's programmer-visible state directly: eight 32-bit data
// registers, eight 32-bit address registers (A7 doubling as the active stack
// pointer), a 24-bit program counter, a 16-bit status register split into a
// system byte and condition-code register, and the dual user/supervisor
// stack pointers a mode switch swaps between.
package m68k

import "log"

// Bus is the memory this CPU executes against. Every access goes through
// Read/Write with a 24-bit address already masked by the caller; Reset lets
// the bus re-establish its own power-up state alongside the CPU's.
type Bus interface {
	Read(op Size, addr uint32) uint32
	Write(op Size, addr uint32, val uint32)
	Reset()
}

// CycleBus extends Bus for callers that care exactly when, in cycle time, an
// access happens — a bus modeling DMA contention or device wait states needs
// the cycle count an access lands on, not just its address and size.
type CycleBus interface {
	Bus
	ReadCycle(cycle uint64, op Size, addr uint32) uint32
	WriteCycle(cycle uint64, op Size, addr uint32, val uint32)
}

// Registers is a snapshot of everything software can observe or set on this
// CPU: the register file, PC, SR, both stack pointers (only one of which is
// live in A[7] at a time — see inSupervisorMode), and the instruction word
// currently latched for execution.
type Registers struct {
	D   [8]uint32
	A   [8]uint32 // A[7] mirrors whichever of SSP/USP is currently active
	PC  uint32
	SR  uint16
	USP uint32
	SSP uint32
	IR  uint16
}

// CPU owns one MC68000's full execution state: its register file, its bus,
// and the bookkeeping (stopped/halted latches, pending interrupt, cycle
// deficit) that a bare Registers snapshot doesn't capture.
type CPU struct {
	regs     Registers
	bus      Bus
	cycleBus CycleBus // populated when bus also implements CycleBus
	cycles   uint64

	opword uint16 // first word of the instruction currently executing

	stopped bool   // true between STOP and the interrupt that wakes it
	halted  bool   // true after an address error or an unusable exception vector; cleared by Reset or SetState
	prevPC  uint32 // PC of the instruction just fetched, for fault diagnostics

	pendingLevel  uint8  // highest outstanding interrupt request, 0 if none
	pendingVector *uint8 // explicit vector for that request, nil for auto-vector

	deficit int // cycles a StepCycles caller still owes from a prior overrun
}

// New wires a CPU to bus and brings it up exactly as silicon would on
// power-up: a hardware reset that loads the initial SSP and PC from the
// bottom of the vector table.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.Reset()
	return c
}

// Reset reproduces a hardware reset: SSP comes from address 0, PC from
// address 4, and the CPU lands in supervisor mode with every interrupt
// level below 7 masked off — the state every 68000 boots into.
func (c *CPU) Reset() {
	c.cycleBus, _ = c.bus.(CycleBus)
	c.regs = Registers{SR: 0x2700}
	c.stopped = false
	c.halted = false
	c.cycles = 0
	c.deficit = 0
	c.pendingLevel = 0
	c.pendingVector = nil

	ssp := c.readBus(Long, vecResetSSP*4)
	c.regs.A[7] = ssp
	c.regs.SSP = ssp
	c.regs.PC = c.readBus(Long, vecResetPC*4)
}

// Halted reports whether an address error (an odd word/long access or an
// odd PC) or an exception with no usable vector has latched the CPU into a
// terminal stopped state. Only Reset or SetState clears it.
func (c *CPU) Halted() bool {
	return c.halted
}

// Step runs exactly one instruction, or services one pending interrupt, or
// (if stopped) polls for an interrupt that would wake it, and returns the
// cycles that work cost. A halted CPU does nothing and reports zero cycles.
func (c *CPU) Step() int {
	if c.halted {
		return 0
	}

	before := c.cycles

	if c.stopped {
		c.cycles += 4
		c.checkInterrupt()
		return int(c.cycles - before)
	}

	// A serviced interrupt is this Step's whole work (serviceInterrupt
	// charges its 44 cycles); the handler's first instruction is fetched by
	// the next Step.
	c.checkInterrupt()
	if c.cycles != before {
		return int(c.cycles - before)
	}

	// The 68000 can't fetch an instruction from an odd address at all; this
	// is the address-error case, not an illegal-instruction trap.
	if c.regs.PC&1 != 0 {
		log.Printf("[m68k] address error: odd PC=%06x prevPC=%06x prevIR=%04x",
			c.regs.PC, c.prevPC, c.opword)
		c.halted = true
		return 0
	}

	c.prevPC = c.regs.PC
	c.opword = c.nextWord()
	c.regs.IR = c.opword

	handler := opcodeTable[c.opword]
	if handler == nil {
		switch c.opword >> 12 {
		case 0xA:
			c.exception(vecLineA)
		case 0xF:
			c.exception(vecLineF)
		default:
			c.exception(vecIllegalInstruction)
		}
	} else {
		handler(c)
	}

	// A branch/jump that lands on an odd address would fault as soon as
	// real hardware's prefetch unit tried to read it; since this CPU has no
	// prefetch queue to catch that mid-instruction, it checks here instead,
	// right after the instruction that computed the new PC has run.
	if !c.halted && c.regs.PC&1 != 0 {
		log.Printf("[m68k] address error: odd PC=%06x prevPC=%06x IR=%04x",
			c.regs.PC, c.prevPC, c.opword)
		c.halted = true
	}

	return int(c.cycles - before)
}

// StepCycles runs work in budget-sized slices rather than whole
// instructions, for callers (a scheduler interleaving several devices, a
// fixed-rate emulation loop) that need to stop partway through what an
// instruction costs. A prior instruction that overran its slice leaves a
// deficit here, paid down out of future budgets before any new instruction
// gets to run; a new instruction that itself overruns this call's budget
// creates the next deficit. Returns the cycles actually spent from budget.
func (c *CPU) StepCycles(budget int) int {
	if c.halted {
		return 0
	}

	// Pay down deficit from a previous instruction that exceeded its budget.
	if c.deficit > 0 {
		if budget >= c.deficit {
			n := c.deficit
			c.deficit = 0
			return n
		}
		c.deficit -= budget
		return budget
	}

	cost := c.Step()

	if cost <= budget {
		return cost
	}

	c.deficit = cost - budget
	return budget
}

// Deficit reports cycles still owed from an instruction that overran a
// previous StepCycles budget.
func (c *CPU) Deficit() int {
	return c.deficit
}

// Cycles reports the running total consumed since the last Reset or
// SetState.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// AddCycles advances the clock without running an instruction — for
// charging time a bus-mastering peripheral (DMA, a second processor holding
// the bus) spent locking the CPU out.
func (c *CPU) AddCycles(n uint64) {
	c.cycles += n
}

// Registers snapshots the current programmer-visible state.
func (c *CPU) Registers() Registers {
	return c.regs
}

// RequestInterrupt raises an interrupt request at level (1-7); a nil vector
// means auto-vectoring, a non-nil one names an explicit vector a peripheral
// would drive onto the bus. Only the single highest-priority outstanding
// request is tracked, matching real hardware's three interrupt priority
// lines — a request at or below the level already pending is dropped, not
// queued behind it.
func (c *CPU) RequestInterrupt(level uint8, vector *uint8) {
	if level > c.pendingLevel {
		c.pendingLevel = level
		c.pendingVector = vector
	}
}

// misaligned is the alignment gate in front of every bus access: the
// 68000's external bus simply cannot perform a word or long transfer at an
// odd address, so attempting one is an address error that halts the CPU
// rather than silently rounding the address.
func (c *CPU) misaligned(what string, sz Size, addr uint32) bool {
	if sz == Byte || addr&1 == 0 {
		return false
	}
	log.Printf("[m68k] address error: %s %s at odd addr=%06x PC=%06x prevPC=%06x IR=%04x",
		what, sz, addr&0xFFFFFF, c.regs.PC, c.prevPC, c.opword)
	c.halted = true
	return true
}

// readBus masks addr to 24 bits and dispatches through CycleBus when the
// underlying bus supports it.
func (c *CPU) readBus(sz Size, addr uint32) uint32 {
	if c.halted || c.misaligned("read", sz, addr) {
		return 0
	}
	addr &= 0xFFFFFF
	if c.cycleBus != nil {
		return c.cycleBus.ReadCycle(c.cycles, sz, addr)
	}
	return c.bus.Read(sz, addr)
}

// writeBus is readBus's write-side counterpart: same masking, same
// alignment gate, same CycleBus dispatch.
func (c *CPU) writeBus(sz Size, addr uint32, val uint32) {
	if c.halted || c.misaligned("write", sz, addr) {
		return
	}
	addr &= 0xFFFFFF
	val &= sz.Mask()
	if c.cycleBus != nil {
		c.cycleBus.WriteCycle(c.cycles, sz, addr, val)
		return
	}
	c.bus.Write(sz, addr, val)
}

// nextWord fetches the word at PC and advances PC past it — the one
// operation every opcode/extension-word/immediate read in this package
// funnels through, since the 68000 has no separate fetch-vs-read distinction
// once an instruction stream is being consumed.
func (c *CPU) nextWord() uint16 {
	val := c.readBus(Word, c.regs.PC)
	c.regs.PC += 2
	return uint16(val)
}

// nextLong is two nextWord calls glued into a 32-bit value, high word
// first — the order every long immediate and long extension field uses.
func (c *CPU) nextLong() uint32 {
	hi := c.nextWord()
	lo := c.nextWord()
	return uint32(hi)<<16 | uint32(lo)
}

// immVal reads the immediate operand trailing the opcode word at the given
// width; byte immediates occupy the low half of a full extension word.
func (c *CPU) immVal(sz Size) uint32 {
	if sz == Long {
		return c.nextLong()
	}
	return uint32(c.nextWord()) & sz.Mask()
}

func (c *CPU) pushWord(val uint16) {
	c.regs.A[7] -= 2
	c.writeBus(Word, c.regs.A[7], uint32(val))
}

func (c *CPU) pushLong(val uint32) {
	c.regs.A[7] -= 4
	c.writeBus(Long, c.regs.A[7], val)
}

func (c *CPU) popWord() uint16 {
	val := c.readBus(Word, c.regs.A[7])
	c.regs.A[7] += 2
	return uint16(val)
}

func (c *CPU) popLong() uint32 {
	val := c.readBus(Long, c.regs.A[7])
	c.regs.A[7] += 4
	return val
}

func (c *CPU) inSupervisorMode() bool {
	return c.regs.SR&flagS != 0
}

// writeSR installs a full 16-bit SR value. The 68000 keeps only one stack
// pointer live in the register file at a time, so whenever the S bit
// changes state the outgoing stack parks in its shadow slot and the
// incoming one takes over A7, in the same step that commits the new SR.
func (c *CPU) writeSR(sr uint16) {
	if (c.regs.SR^sr)&flagS != 0 {
		if sr&flagS != 0 {
			c.regs.USP = c.regs.A[7]
			c.regs.A[7] = c.regs.SSP
		} else {
			c.regs.SSP = c.regs.A[7]
			c.regs.A[7] = c.regs.USP
		}
	}

	// Unimplemented SR bits read back as zero: T _ S _ _ III _ _ _ XNZVC.
	c.regs.SR = sr & 0xA71F
}

// writeCCR replaces only the condition-code byte (XNZVC), leaving the system
// byte — and therefore the active stack pointer — untouched. Used by
// instructions that are only supposed to affect flags, never supervisor
// state.
func (c *CPU) writeCCR(ccr uint8) {
	c.regs.SR = c.regs.SR&0xFF00 | uint16(ccr&0x1F)
}

// SetState loads a full register snapshot directly, bypassing Reset's vector
// fetch — the entry point test harnesses use to establish an exact starting
// state before single-stepping an instruction under test. A7 is derived
// from the snapshot's USP/SSP pair according to the S bit rather than taken
// from the snapshot's A array.
func (c *CPU) SetState(regs Registers) {
	c.cycleBus, _ = c.bus.(CycleBus)
	c.regs.D = regs.D
	copy(c.regs.A[:7], regs.A[:7])
	c.regs.PC = regs.PC
	c.regs.SR = regs.SR
	c.regs.USP = regs.USP
	c.regs.SSP = regs.SSP

	c.regs.A[7] = regs.USP
	if regs.SR&flagS != 0 {
		c.regs.A[7] = regs.SSP
	}

	c.stopped = false
	c.halted = false
	c.cycles = 0
	c.deficit = 0
	c.pendingLevel = 0
	c.pendingVector = nil
}
