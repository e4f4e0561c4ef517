package m68k

import "log"

// Vector table indices, in longwords from address 0. vecResetSSP/vecResetPC
// are only ever consumed by Reset(); everything from vecBusError up is
// dispatched through exception().
const (
	vecResetSSP           = 0
	vecResetPC            = 1
	vecBusError           = 2
	vecAddressError       = 3
	vecIllegalInstruction = 4
	vecDivideByZero       = 5
	vecCHK                = 6
	vecTRAPV              = 7
	vecPrivilegeViolation = 8
	vecTrace              = 9
	vecLineA              = 10
	vecLineF              = 11
	vecUninitialized      = 15
	vecSpuriousInterrupt  = 24
	vecAutoVector1        = 25
	vecTrap0              = 32 // TRAP #0 through TRAP #15 = vectors 32-47
)

// enterSupervisor performs the stacking half of every exception and
// interrupt: save the outgoing SR, switch onto the supervisor stack if the
// CPU wasn't already there, force S on and T off, then push the return
// address and the saved SR in the order RTE pops them back.
func (c *CPU) enterSupervisor(retPC uint32) {
	sr := c.regs.SR
	if sr&flagS == 0 {
		c.regs.USP = c.regs.A[7]
		c.regs.A[7] = c.regs.SSP
	}
	c.regs.SR = (sr | flagS) &^ flagT

	c.pushLong(retPC)
	c.pushWord(sr)
}

// vectoredPC reads the handler address for a vector, falling back to the
// uninitialized-vector slot when the table entry is empty. A zero fallback
// means there is nowhere to transfer control at all.
func (c *CPU) vectoredPC(vector int) (uint32, bool) {
	pc := c.readBus(Long, uint32(vector)*4)
	if pc == 0 {
		pc = c.readBus(Long, vecUninitialized*4)
	}
	return pc, pc != 0
}

// exception dispatches a vectored fault or trap. Group-1 faults (illegal
// opcode, privilege violation, line-A/line-F) stack the address of the
// offending instruction so a handler could retry it; every other vector
// stacks the already-advanced PC, since nothing remains to re-execute.
func (c *CPU) exception(vector int) {
	// Faults get a diagnostic line; TRAP/TRAPV/CHK and interrupts are
	// routine control flow, not failures.
	if vector >= vecBusError && vector <= vecLineF && vector != vecCHK && vector != vecTRAPV {
		log.Printf("[m68k] exception %d at PC=%06x SR=%04x", vector, c.regs.PC, c.regs.SR)
	}

	retPC := c.regs.PC
	switch vector {
	case vecIllegalInstruction, vecPrivilegeViolation, vecLineA, vecLineF:
		retPC = c.prevPC
	}

	c.enterSupervisor(retPC)

	handler, ok := c.vectoredPC(vector)
	if !ok {
		c.halted = true
		return
	}
	c.regs.PC = handler
	c.cycles += 34
}
