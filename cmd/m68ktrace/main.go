// Command m68ktrace single-steps a Motorola 68000 program loaded from a
// flat binary image and prints an instruction trace.
package main

import (
	"fmt"
	"os"

	m68k "github.com/user-none/go-m68k-genesis"

	"github.com/spf13/cobra"
)

// ramBus is a flat read/write memory image sized to the full 24-bit
// address space, with the loaded file placed at address 0.
type ramBus struct {
	mem [16 * 1024 * 1024]byte
}

func (b *ramBus) Read(sz m68k.Size, addr uint32) uint32 {
	addr &= 0xFFFFFF
	switch sz {
	case m68k.Byte:
		return uint32(b.mem[addr])
	case m68k.Word:
		return uint32(b.mem[addr])<<8 | uint32(b.mem[addr+1])
	case m68k.Long:
		return uint32(b.mem[addr])<<24 | uint32(b.mem[addr+1])<<16 |
			uint32(b.mem[addr+2])<<8 | uint32(b.mem[addr+3])
	}
	return 0
}

func (b *ramBus) Write(sz m68k.Size, addr uint32, val uint32) {
	addr &= 0xFFFFFF
	switch sz {
	case m68k.Byte:
		b.mem[addr] = byte(val)
	case m68k.Word:
		b.mem[addr] = byte(val >> 8)
		b.mem[addr+1] = byte(val)
	case m68k.Long:
		b.mem[addr] = byte(val >> 24)
		b.mem[addr+1] = byte(val >> 16)
		b.mem[addr+2] = byte(val >> 8)
		b.mem[addr+3] = byte(val)
	}
}

func (b *ramBus) Reset() {}

func main() {
	rootCmd := &cobra.Command{
		Use:   "m68ktrace",
		Short: "Run flat Motorola 68000 binary images and print instruction traces",
	}

	var steps int
	var showRegs bool

	runCmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Single-step a flat binary image and print a trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			bus := &ramBus{}
			copy(bus.mem[:], data)

			cpu := m68k.New(bus)

			for i := 0; i < steps; i++ {
				if cpu.Halted() {
					fmt.Println("CPU halted (address error or double bus fault)")
					break
				}

				preview, in := m68k.DecodeNextStep(cpu, bus)
				reg := cpu.Registers()

				switch preview {
				case m68k.PreviewAutoVector:
					fmt.Printf("%06X  <autovector interrupt>\n", reg.PC)
				case m68k.PreviewStop:
					// This CLI never injects interrupts, so a stopped CPU
					// can never wake up; stop tracing rather than spin.
					fmt.Printf("%06X  <stopped, no pending interrupt>\n", reg.PC)
					cpu.Step()
					return nil
				case m68k.PreviewInst:
					fmt.Printf("%06X  %s\n", reg.PC, in)
				}

				cycles := cpu.Step()

				if showRegs {
					r := cpu.Registers()
					fmt.Printf("    D=%08X %08X %08X %08X %08X %08X %08X %08X\n",
						r.D[0], r.D[1], r.D[2], r.D[3], r.D[4], r.D[5], r.D[6], r.D[7])
					fmt.Printf("    A=%08X %08X %08X %08X %08X %08X %08X %08X  SR=%04X  cycles=%d\n",
						r.A[0], r.A[1], r.A[2], r.A[3], r.A[4], r.A[5], r.A[6], r.A[7], r.SR, cycles)
				}
			}
			return nil
		},
	}
	runCmd.Flags().IntVar(&steps, "steps", 20, "number of instructions to execute")
	runCmd.Flags().BoolVar(&showRegs, "regs", false, "print full register state after each step")

	rootCmd.AddCommand(runCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
