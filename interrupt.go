package m68k

// checkInterrupt arbitrates the single outstanding interrupt request against
// the current priority mask. Called once at the top of every Step, whether
// or not the CPU is stopped. A request wins once its level exceeds the
// mask; level 7 models the non-maskable line and always wins.
func (c *CPU) checkInterrupt() {
	level := c.pendingLevel
	if level == 0 {
		return
	}
	if level != 7 && level <= uint8((c.regs.SR>>8)&7) {
		return
	}
	c.serviceInterrupt()
}

// serviceInterrupt runs the accepted request: stack the return frame via
// the shared exception-entry path, resolve the vector (explicit if the
// requester supplied one, otherwise auto-vectored from the level), and
// redirect PC to the handler. The interrupt mask bits of SR are
// deliberately left at their pre-service value — only S is forced on and T
// off — and a STOP-parked CPU resumes once this returns.
func (c *CPU) serviceInterrupt() {
	vector := int(vecSpuriousInterrupt) + int(c.pendingLevel)
	if c.pendingVector != nil {
		vector = int(*c.pendingVector)
	}
	c.pendingLevel = 0
	c.pendingVector = nil

	c.enterSupervisor(c.regs.PC)

	handler := c.readBus(Long, uint32(vector)*4)
	if handler == 0 {
		// An unpopulated interrupt vector falls back to the spurious-
		// interrupt handler rather than faulting outright.
		handler = c.readBus(Long, vecSpuriousInterrupt*4)
	}
	c.regs.PC = handler

	c.stopped = false
	c.cycles += 44
}
