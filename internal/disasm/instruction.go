// Package disasm converts CHIP-8 instruction words into assembly mnemonics
// and writes listings of complete programs.
package disasm

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// lookup returns the instruction definition matching the instruction word.
func lookup(opcode uint16) (*chip8.Instruction, bool) {
	firstNibble := (opcode & 0xF000) >> 12
	for _, op := range chip8.Opcodes[int(firstNibble)] {
		if op.Info.Mask&opcode == op.Info.Value {
			return op.Instruction, op.Instruction != nil
		}
	}
	return nil, false
}

// Mnemonic returns the assembly form of an instruction word, for example
// "ld V0, $05". Words that are not valid instructions are returned as a
// data word directive.
func Mnemonic(opcode uint16) string {
	ins, ok := lookup(opcode)
	if !ok {
		return dataWord(opcode)
	}
	if params := formatInstruction(ins.Name, opcode); params != "" {
		return fmt.Sprintf("%s %s", ins.Name, params)
	}
	return ins.Name
}

// IsBranch returns whether the instruction word transfers control to the
// address in its lowest 12 bits, which is the case for JP addr and CALL.
func IsBranch(opcode uint16) bool {
	ins, ok := lookup(opcode)
	if !ok {
		return false
	}
	switch ins {
	case chip8.CallInst:
		return true
	case chip8.JpInst:
		return opcode&0xF000 == 0x1000
	default:
		return false
	}
}

// IsSkip returns whether the instruction word conditionally skips the next
// instruction.
func IsSkip(opcode uint16) bool {
	ins, ok := lookup(opcode)
	if !ok {
		return false
	}
	return chip8.SkipInstructions.Contains(ins.Name)
}

func dataWord(opcode uint16) string {
	return fmt.Sprintf(".word $%04X", opcode)
}

// formatInstruction returns the formatted parameters of an instruction.
func formatInstruction(name string, opcode uint16) string {
	switch name {
	case chip8.ClsInst.Name, chip8.RetInst.Name:
		return ""
	case chip8.JpInst.Name:
		return formatJumpInstruction(opcode)
	case chip8.CallInst.Name:
		return fmt.Sprintf("$%03X", opcode&0x0FFF)
	case chip8.SeInst.Name, chip8.SneInst.Name:
		return formatCompareInstruction(opcode)
	case chip8.LdInst.Name:
		return formatLoadInstruction(opcode)
	case chip8.AddInst.Name:
		return formatAddInstruction(opcode)
	case chip8.OrInst.Name, chip8.AndInst.Name, chip8.XorInst.Name, chip8.SubInst.Name, chip8.SubnInst.Name:
		return fmt.Sprintf("V%X, V%X", registerX(opcode), registerY(opcode))
	case chip8.ShrInst.Name, chip8.ShlInst.Name, chip8.SkpInst.Name, chip8.SknpInst.Name:
		return fmt.Sprintf("V%X", registerX(opcode))
	case chip8.RndInst.Name:
		return fmt.Sprintf("V%X, $%02X", registerX(opcode), opcode&0x00FF)
	case chip8.DrwInst.Name:
		return fmt.Sprintf("V%X, V%X, $%X", registerX(opcode), registerY(opcode), opcode&0x000F)
	}
	return ""
}

// formatJumpInstruction formats JP addr and JP V0, addr.
func formatJumpInstruction(opcode uint16) string {
	switch opcode & 0xF000 {
	case 0x1000:
		return fmt.Sprintf("$%03X", opcode&0x0FFF)
	case 0xB000:
		return fmt.Sprintf("V0, $%03X", opcode&0x0FFF)
	}
	return ""
}

// formatCompareInstruction formats SE and SNE with a byte or register operand.
func formatCompareInstruction(opcode uint16) string {
	x := registerX(opcode)
	switch opcode & 0xF000 {
	case 0x3000, 0x4000:
		return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
	case 0x5000, 0x9000:
		return fmt.Sprintf("V%X, V%X", x, registerY(opcode))
	}
	return ""
}

// formatLoadInstruction formats all LD variants.
func formatLoadInstruction(opcode uint16) string {
	x := registerX(opcode)
	switch opcode & 0xF000 {
	case 0x6000:
		return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, registerY(opcode))
	case 0xA000:
		return fmt.Sprintf("I, $%03X", opcode&0x0FFF)
	case 0xF000:
		return formatLoadMisc(opcode, x)
	}
	return ""
}

func formatLoadMisc(opcode, x uint16) string {
	switch opcode & 0x00FF {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0A:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	}
	return ""
}

// formatAddInstruction formats ADD Vx, byte, ADD Vx, Vy and ADD I, Vx.
func formatAddInstruction(opcode uint16) string {
	x := registerX(opcode)
	switch opcode & 0xF000 {
	case 0x7000:
		return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, registerY(opcode))
	case 0xF000:
		return fmt.Sprintf("I, V%X", x)
	}
	return ""
}

// registerX extracts the X register nibble from an instruction word.
func registerX(opcode uint16) uint16 {
	return (opcode & 0x0F00) >> 8
}

// registerY extracts the Y register nibble from an instruction word.
func registerY(opcode uint16) uint16 {
	return (opcode & 0x00F0) >> 4
}
