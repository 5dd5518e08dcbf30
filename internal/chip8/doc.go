// Package chip8 implements the CHIP-8 virtual machine core.
//
// # Machine State
//
// The machine consists of:
//   - Memory: 4KB, the hexadecimal font is stored at 0x000-0x04F and
//     programs are loaded at ProgramStart (0x200)
//   - Registers: V0-VF, the address register I, program counter and a
//     16 entry call stack
//   - Timers: delay and sound timer, decremented by an external 60Hz cadence
//   - Keyboard: 16 key bit mask
//   - Display: 64x32 monochrome framebuffer with toroidal coordinates
//
// # Concurrency
//
// The CPU serializes all access to registers and memory, a Step is atomic
// to callers of Snapshot and ReadMemory. Display, Timers and Keyboard are
// shared with the timer and display loops and are safe for concurrent use.
//
// # Usage Example
//
//	memory := chip8.NewMemory(chip8.Font)
//	display := &chip8.Display{}
//	cpu := chip8.NewCPU(memory, display, &chip8.Timers{}, &chip8.Keyboard{}, chip8.Options{})
//	if err := cpu.Load(program); err != nil {
//		return fmt.Errorf("loading program: %w", err)
//	}
//	step, err := cpu.Step()
package chip8
