package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/set"
)

const instructionSize = 2

// Options defines options to control the listing output.
type Options struct {
	HexComments    bool // append the instruction bytes as comment
	OffsetComments bool // append the memory address as comment
}

// DefaultOptions returns the default listing options.
func DefaultOptions() Options {
	return Options{
		HexComments:    true,
		OffsetComments: true,
	}
}

// Line is a single decoded line of a program listing.
type Line struct {
	Address uint16
	Label   string // set if the address is the target of a jump or call
	Code    string // assembly code, empty for data
	Data    []byte // raw bytes of the line
}

// Disassemble decodes a program that is loaded at the program start address
// into listing lines. Each instruction word becomes a line. Words that are not
// valid instructions and a trailing odd byte become data lines.
func Disassemble(program []byte) ([]Line, error) {
	if len(program) > chip8.MaxProgramSize {
		return nil, fmt.Errorf("%w: %d bytes", chip8.ErrProgramTooLarge, len(program))
	}

	targets := branchTargets(program)
	lines := make([]Line, 0, (len(program)+1)/instructionSize)

	for i := 0; i < len(program); i += instructionSize {
		address := uint16(chip8.ProgramStart + i)
		line := Line{
			Address: address,
		}
		if targets.Contains(address) {
			line.Label = labelName(address)
		}

		if i+1 >= len(program) {
			line.Data = []byte{program[i]}
			lines = append(lines, line)
			break
		}

		line.Data = []byte{program[i], program[i+1]}
		opcode := uint16(program[i])<<8 | uint16(program[i+1])
		if _, ok := lookup(opcode); ok {
			line.Code = instructionCode(opcode, targets)
		}
		lines = append(lines, line)
	}

	return lines, nil
}

// Write writes an assembly listing of the program to the writer.
func Write(w io.Writer, program []byte, opts Options) error {
	lines, err := Disassemble(program)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "; CHIP-8 ROM Disassembly\n"); err != nil {
		return fmt.Errorf("writing header comment: %w", err)
	}
	if _, err := fmt.Fprintf(w, ".org $%03X\n\n", chip8.ProgramStart); err != nil {
		return fmt.Errorf("writing org directive: %w", err)
	}

	for _, line := range lines {
		if err := writeLine(w, line, opts); err != nil {
			return fmt.Errorf("writing line at $%03X: %w", line.Address, err)
		}
	}
	return nil
}

func writeLine(w io.Writer, line Line, opts Options) error {
	if line.Label != "" {
		if _, err := fmt.Fprintf(w, "%s:\n", line.Label); err != nil {
			return fmt.Errorf("writing label %s: %w", line.Label, err)
		}
	}

	code := "    " + line.Code
	if line.Code == "" {
		code = "    " + dataBytes(line.Data)
	}

	comment := lineComment(line, opts)
	if comment == "" {
		_, err := fmt.Fprintf(w, "%s\n", code)
		return err
	}
	_, err := fmt.Fprintf(w, "%-32s ; %s\n", code, comment)
	return err
}

func lineComment(line Line, opts Options) string {
	var parts []string
	if opts.OffsetComments {
		parts = append(parts, fmt.Sprintf("$%03X", line.Address))
	}
	if opts.HexComments {
		hex := make([]string, len(line.Data))
		for i, b := range line.Data {
			hex[i] = fmt.Sprintf("%02X", b)
		}
		parts = append(parts, strings.Join(hex, " "))
	}
	return strings.Join(parts, ": ")
}

func dataBytes(data []byte) string {
	var buf strings.Builder
	buf.WriteString(".byte ")
	for i, b := range data {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "$%02X", b)
	}
	return buf.String()
}

// branchTargets returns all instruction aligned addresses inside the program
// that are referenced by a jump or call.
func branchTargets(program []byte) set.Set[uint16] {
	targets := set.New[uint16]()
	end := chip8.ProgramStart + len(program)

	for i := 0; i+1 < len(program); i += instructionSize {
		opcode := uint16(program[i])<<8 | uint16(program[i+1])
		if !IsBranch(opcode) {
			continue
		}
		target := int(opcode & 0x0FFF)
		if target < chip8.ProgramStart || target >= end || (target-chip8.ProgramStart)%instructionSize != 0 {
			continue
		}
		targets.Add(uint16(target))
	}
	return targets
}

// instructionCode returns the assembly code of an instruction, referencing
// branch targets by label.
func instructionCode(opcode uint16, targets set.Set[uint16]) string {
	if !IsBranch(opcode) {
		return Mnemonic(opcode)
	}

	target := opcode & 0x0FFF
	if !targets.Contains(target) {
		return Mnemonic(opcode)
	}

	ins, _ := lookup(opcode)
	return fmt.Sprintf("%s %s", ins.Name, labelName(target))
}

func labelName(address uint16) string {
	return fmt.Sprintf("L%03X", address)
}
