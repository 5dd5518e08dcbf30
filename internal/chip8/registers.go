package chip8

import "fmt"

const (
	// RegisterCount is the number of general purpose registers V0-VF.
	RegisterCount = 16
	// FlagRegister is the index of VF, which receives carry, borrow,
	// shifted out bits and the draw collision flag.
	FlagRegister = 0xF
	// StackSize is the number of return addresses the call stack can hold.
	StackSize = 16
)

// Registers contains the CPU register file.
type Registers struct {
	V     [RegisterCount]uint8 // general purpose registers
	I     uint16               // address register, usually only 12 bits are used
	PC    uint16               // program counter
	SP    uint8                // number of used stack entries
	Stack [StackSize]uint16    // return addresses
}

// NewRegisters returns zeroed registers with the program counter set to
// the program start.
func NewRegisters() Registers {
	return Registers{PC: ProgramStart}
}

// Register returns the value of the register with the given index.
func (r *Registers) Register(index int) (uint8, error) {
	if index < 0 || index >= RegisterCount {
		return 0, fmt.Errorf("%w: V%d", ErrRegisterOutOfRange, index)
	}
	return r.V[index], nil
}

// SetRegister sets the value of the register with the given index.
func (r *Registers) SetRegister(index int, value uint8) error {
	if index < 0 || index >= RegisterCount {
		return fmt.Errorf("%w: V%d", ErrRegisterOutOfRange, index)
	}
	r.V[index] = value
	return nil
}

// push stores a return address on the stack.
func (r *Registers) push(address uint16) error {
	if int(r.SP) >= StackSize {
		return fmt.Errorf("%w: calling from $%03X", ErrStackOverflow, r.PC)
	}
	r.Stack[r.SP] = address
	r.SP++
	return nil
}

// pop removes and returns the last stored return address.
func (r *Registers) pop() (uint16, error) {
	if r.SP == 0 {
		return 0, fmt.Errorf("%w: returning from $%03X", ErrStackUnderflow, r.PC)
	}
	r.SP--
	return r.Stack[r.SP], nil
}
