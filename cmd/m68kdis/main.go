// Command m68kdis disassembles a flat Motorola 68000 binary image.
package main

import (
	"fmt"
	"os"

	m68k "github.com/user-none/go-m68k-genesis"

	"github.com/spf13/cobra"
)

// romBus is a read-only flat-memory Bus over a loaded image, padded with
// zeros past the end of the file so a trailing partial instruction still
// decodes instead of panicking.
type romBus struct {
	mem []byte
}

func (b *romBus) Read(sz m68k.Size, addr uint32) uint32 {
	switch sz {
	case m68k.Byte:
		return uint32(b.byteAt(addr))
	case m68k.Word:
		return uint32(b.byteAt(addr))<<8 | uint32(b.byteAt(addr+1))
	case m68k.Long:
		return uint32(b.byteAt(addr))<<24 | uint32(b.byteAt(addr+1))<<16 |
			uint32(b.byteAt(addr+2))<<8 | uint32(b.byteAt(addr+3))
	}
	return 0
}

func (b *romBus) byteAt(addr uint32) byte {
	if int(addr) >= len(b.mem) {
		return 0
	}
	return b.mem[addr]
}

func (b *romBus) Write(sz m68k.Size, addr uint32, val uint32) {}
func (b *romBus) Reset()                                      {}

func main() {
	rootCmd := &cobra.Command{
		Use:   "m68kdis",
		Short: "Inspection tools for flat Motorola 68000 binary images",
	}

	var base uint32
	var count int

	disasmCmd := &cobra.Command{
		Use:   "disasm <file>",
		Short: "Linearly disassemble a flat binary image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			bus := &romBus{mem: data}

			addr := base
			for i := 0; (count <= 0 || i < count) && int(addr) < len(data); i++ {
				in, next := m68k.Decode(bus, addr)
				fmt.Printf("%06X  %-16s  %s\n", in.Addr, hexBytes(in.Bytes), in)
				addr = next
			}
			return nil
		},
	}
	disasmCmd.Flags().Uint32Var(&base, "base", 0, "start address within the image")
	disasmCmd.Flags().IntVar(&count, "count", 0, "number of instructions to decode (0 = to EOF)")

	rootCmd.AddCommand(disasmCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func hexBytes(b []byte) string {
	s := ""
	for _, v := range b {
		s += fmt.Sprintf("%02X", v)
	}
	return s
}
