package m68k

import (
	"encoding/binary"
	"errors"
)

// cpuSerializeVersion guards against loading a snapshot written by a build
// with a different binary layout; bump it alongside any field change below.
const cpuSerializeVersion = 1

// SerializeSize is the exact byte length Serialize produces and Deserialize
// expects: a version byte, sixteen 32-bit registers, PC, SR, both stack
// pointers, IR, the cycle counter, the latched opcode word, the two run
// latches, prevPC, and the pending-interrupt triple, then the deficit.
const SerializeSize = 104

// snapCursor walks a snapshot buffer in field order; the same cursor type
// serves both directions so the write and read sequences below stay
// visibly parallel.
type snapCursor struct {
	buf []byte
	off int
}

func (p *snapCursor) u8(v uint8) {
	p.buf[p.off] = v
	p.off++
}

func (p *snapCursor) u16(v uint16) {
	binary.BigEndian.PutUint16(p.buf[p.off:], v)
	p.off += 2
}

func (p *snapCursor) u32(v uint32) {
	binary.BigEndian.PutUint32(p.buf[p.off:], v)
	p.off += 4
}

func (p *snapCursor) u64(v uint64) {
	binary.BigEndian.PutUint64(p.buf[p.off:], v)
	p.off += 8
}

func (p *snapCursor) rd8() uint8 {
	v := p.buf[p.off]
	p.off++
	return v
}

func (p *snapCursor) rd16() uint16 {
	v := binary.BigEndian.Uint16(p.buf[p.off:])
	p.off += 2
	return v
}

func (p *snapCursor) rd32() uint32 {
	v := binary.BigEndian.Uint32(p.buf[p.off:])
	p.off += 4
	return v
}

func (p *snapCursor) rd64() uint64 {
	v := binary.BigEndian.Uint64(p.buf[p.off:])
	p.off += 8
	return v
}

func flagByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Serialize snapshots everything needed to resume execution later — all
// registers, the in-flight opcode word, pending-interrupt state, and the
// cycle counter — into buf. The bus itself is never part of the snapshot;
// callers reattach whatever Bus/CycleBus they want on restore.
func (c *CPU) Serialize(buf []byte) error {
	if len(buf) < SerializeSize {
		return errors.New("m68k: serialize buffer too small")
	}

	w := snapCursor{buf: buf}
	w.u8(cpuSerializeVersion)

	for _, d := range c.regs.D {
		w.u32(d)
	}
	for _, a := range c.regs.A {
		w.u32(a)
	}

	w.u32(c.regs.PC)
	w.u16(c.regs.SR)
	w.u32(c.regs.USP)
	w.u32(c.regs.SSP)
	w.u16(c.regs.IR)

	w.u64(c.cycles)
	w.u16(c.opword)

	w.u8(flagByte(c.stopped))
	w.u8(flagByte(c.halted))
	w.u32(c.prevPC)

	w.u8(c.pendingLevel)
	if c.pendingVector != nil {
		w.u8(1)
		w.u8(*c.pendingVector)
	} else {
		w.u8(0)
		w.u8(0)
	}

	w.u32(uint32(int32(c.deficit)))
	return nil
}

// Deserialize is Serialize's inverse: it restores every field a snapshot
// captured, rejecting the buffer if it's short or was written by an
// incompatible version. Whatever bus c already holds is left untouched.
func (c *CPU) Deserialize(buf []byte) error {
	if len(buf) < SerializeSize {
		return errors.New("m68k: deserialize buffer too small")
	}

	r := snapCursor{buf: buf}
	if r.rd8() != cpuSerializeVersion {
		return errors.New("m68k: unsupported serialize version")
	}

	for i := range c.regs.D {
		c.regs.D[i] = r.rd32()
	}
	for i := range c.regs.A {
		c.regs.A[i] = r.rd32()
	}

	c.regs.PC = r.rd32()
	c.regs.SR = r.rd16()
	c.regs.USP = r.rd32()
	c.regs.SSP = r.rd32()
	c.regs.IR = r.rd16()

	c.cycles = r.rd64()
	c.opword = r.rd16()

	c.stopped = r.rd8() != 0
	c.halted = r.rd8() != 0
	c.prevPC = r.rd32()

	c.pendingLevel = r.rd8()
	if r.rd8() != 0 {
		v := r.rd8()
		c.pendingVector = &v
	} else {
		r.rd8()
		c.pendingVector = nil
	}

	c.deficit = int(int32(r.rd32()))
	return nil
}
