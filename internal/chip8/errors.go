package chip8

import (
	"errors"
	"fmt"
)

var (
	// ErrProgramTooLarge is returned when a program does not fit into the
	// memory between ProgramStart and the end of memory.
	ErrProgramTooLarge = errors.New("program exceeds available memory")
	// ErrAddressOutOfRange is returned when a computed memory address is
	// outside of the 4KB address space.
	ErrAddressOutOfRange = errors.New("memory address out of range")
	// ErrRegisterOutOfRange is returned for a register index above VF.
	ErrRegisterOutOfRange = errors.New("register index out of range")
	// ErrStackOverflow is returned by a call when all stack entries are in use.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned by a return with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrUnknownOpcode is returned for an instruction word that does not
	// decode to any CHIP-8 operation.
	ErrUnknownOpcode = errors.New("unknown opcode")
)

// OpcodeError describes an instruction word that could not be decoded.
type OpcodeError struct {
	Address uint16
	Opcode  uint16
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode %04X at address %03X", e.Opcode, e.Address)
}

// Unwrap allows errors.Is(err, ErrUnknownOpcode).
func (e *OpcodeError) Unwrap() error {
	return ErrUnknownOpcode
}
