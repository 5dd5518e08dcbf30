package chip8

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// SubPolicy selects how SUB Vx, Vy treats the destination register when
// the subtraction borrows.
type SubPolicy uint8

const (
	// SubAlwaysWrite always stores the wrapped difference in Vx.
	SubAlwaysWrite SubPolicy = iota
	// SubWriteOnNoBorrow only stores the difference when no borrow occurs,
	// Vx keeps its value otherwise. VF is set in both cases.
	SubWriteOnNoBorrow
)

// Options configures the instruction execution.
type Options struct {
	SubPolicy SubPolicy
	// Random returns the random byte used by RND, defaults to math/rand/v2.
	Random func() uint8
}

// Step describes an executed instruction.
type Step struct {
	Address   uint16 // program counter the instruction was fetched from
	Fetched   bool   // an instruction word was read, Operation is valid
	Operation Operation
}

// CPU is the instruction execution engine. It owns the registers and the
// memory: every access to them is serialized by the CPU, which makes each
// instruction atomic to observers. Display, timers and keyboard are shared
// with other loops and synchronize themselves.
type CPU struct {
	mu     sync.Mutex
	regs   Registers
	memory *Memory

	display  *Display
	timers   *Timers
	keyboard *Keyboard

	subPolicy SubPolicy
	random    func() uint8
}

// NewCPU returns a CPU with reset registers that executes from the given
// memory and peripherals.
func NewCPU(memory *Memory, display *Display, timers *Timers, keyboard *Keyboard, opts Options) *CPU {
	random := opts.Random
	if random == nil {
		random = func() uint8 {
			return uint8(rand.UintN(256))
		}
	}

	return &CPU{
		regs:      NewRegisters(),
		memory:    memory,
		display:   display,
		timers:    timers,
		keyboard:  keyboard,
		subPolicy: opts.SubPolicy,
		random:    random,
	}
}

// Load copies the program into memory at ProgramStart.
func (c *CPU) Load(program []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memory.Load(program)
}

// Snapshot returns a copy of the registers between two instructions.
func (c *CPU) Snapshot() Registers {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs
}

// ReadMemory returns a copy of a memory range between two instructions.
func (c *CPU) ReadMemory(address uint16, length int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memory.Slice(address, length)
}

// Register returns the value of the register with the given index between
// two instructions.
func (c *CPU) Register(index int) (uint8, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs.Register(index)
}

// SetRegister changes a register between two instructions.
func (c *CPU) SetRegister(index int, value uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs.SetRegister(index, value)
}

// Step fetches, decodes and executes a single instruction.
//
// On an addressing fault or stack error no state is modified and the
// program counter keeps pointing at the faulting instruction. An unknown
// instruction word advances the program counter past it and returns an
// *OpcodeError, so that the caller can decide whether to continue.
func (c *CPU) Step() (Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	step := Step{Address: c.regs.PC}
	word, err := c.memory.ReadWord(c.regs.PC)
	if err != nil {
		return step, fmt.Errorf("fetching instruction: %w", err)
	}
	step.Fetched = true

	op, ok := Decode(word)
	step.Operation = op
	if !ok {
		c.regs.PC += 2
		return step, &OpcodeError{Address: step.Address, Opcode: word}
	}

	regs := c.regs
	if err := c.execute(&regs, op); err != nil {
		return step, fmt.Errorf("executing %s at $%03X: %w", op.Kind, step.Address, err)
	}
	c.regs = regs
	return step, nil
}

// execute applies the operation to the passed registers. The program
// counter still points at the instruction, execute moves it to the next
// instruction or the branch target.
func (c *CPU) execute(r *Registers, op Operation) error {
	next := r.PC + 2
	vx, vy := r.V[op.X], r.V[op.Y]

	switch op.Kind {
	case OpSys:
		// calls into host machine code are ignored

	case OpCls:
		c.display.Clear()

	case OpRet:
		address, err := r.pop()
		if err != nil {
			return err
		}
		next = address

	case OpJp:
		next = op.NNN

	case OpCall:
		if err := r.push(next); err != nil {
			return err
		}
		next = op.NNN

	case OpSeByte:
		next = skipIf(next, vx == op.KK)
	case OpSneByte:
		next = skipIf(next, vx != op.KK)
	case OpSeReg:
		next = skipIf(next, vx == vy)
	case OpSneReg:
		next = skipIf(next, vx != vy)

	case OpLdByte:
		r.V[op.X] = op.KK
	case OpAddByte:
		r.V[op.X] = vx + op.KK

	case OpLdReg, OpOr, OpAnd, OpXor, OpAddReg, OpSub, OpShr, OpSubn, OpShl:
		c.executeALU(r, op, vx, vy)

	case OpLdI:
		r.I = op.NNN

	case OpJpV0:
		target := uint16(r.V[0]) + op.NNN
		if target > MaxAddress {
			return fmt.Errorf("%w: jump target $%04X", ErrAddressOutOfRange, target)
		}
		next = target

	case OpRnd:
		r.V[op.X] = c.random() & op.KK

	case OpDrw:
		sprite, err := c.memory.Slice(r.I, int(op.N))
		if err != nil {
			return fmt.Errorf("reading sprite: %w", err)
		}
		r.V[FlagRegister] = boolToFlag(c.display.Draw(int(vx), int(vy), sprite))

	case OpSkp:
		next = skipIf(next, c.keyboard.IsPressed(vx))
	case OpSknp:
		next = skipIf(next, !c.keyboard.IsPressed(vx))

	case OpLdVxDT:
		r.V[op.X] = c.timers.Delay()

	case OpLdVxK:
		key, pressed := c.keyboard.FirstPressed()
		if !pressed {
			next = r.PC // execute again until a key is down
			break
		}
		r.V[op.X] = key

	case OpLdDTVx:
		c.timers.SetDelay(vx)
	case OpLdSTVx:
		c.timers.SetSound(vx)

	case OpAddI:
		r.I += uint16(vx)

	case OpLdF:
		r.I = FontAddress + uint16(vx&0x0F)*FontGlyphSize

	case OpLdB:
		digits := []byte{vx / 100, vx / 10 % 10, vx % 10}
		if err := c.memory.WriteSlice(r.I, digits); err != nil {
			return fmt.Errorf("storing BCD: %w", err)
		}

	case OpLdIVx:
		if err := c.memory.WriteSlice(r.I, r.V[:op.X+1]); err != nil {
			return fmt.Errorf("storing registers: %w", err)
		}

	case OpLdVxI:
		data, err := c.memory.Slice(r.I, int(op.X)+1)
		if err != nil {
			return fmt.Errorf("loading registers: %w", err)
		}
		copy(r.V[:], data)

	default:
		return &OpcodeError{Address: r.PC, Opcode: op.Opcode}
	}

	r.PC = next
	return nil
}

// executeALU executes the register to register operations of the 8xyN
// family. The flag is written after the result, so VF used as Vx ends up
// holding the flag.
func (c *CPU) executeALU(r *Registers, op Operation, vx, vy uint8) {
	switch op.Kind {
	case OpLdReg:
		r.V[op.X] = vy
	case OpOr:
		r.V[op.X] = vx | vy
	case OpAnd:
		r.V[op.X] = vx & vy
	case OpXor:
		r.V[op.X] = vx ^ vy

	case OpAddReg:
		sum := uint16(vx) + uint16(vy)
		r.V[op.X] = uint8(sum)
		r.V[FlagRegister] = boolToFlag(sum > 0xFF)

	case OpSub:
		noBorrow := vx >= vy
		if noBorrow || c.subPolicy == SubAlwaysWrite {
			r.V[op.X] = vx - vy
		}
		r.V[FlagRegister] = boolToFlag(noBorrow)

	case OpSubn:
		r.V[op.X] = vy - vx
		r.V[FlagRegister] = boolToFlag(vy >= vx)

	case OpShr:
		r.V[op.X] = vx >> 1
		r.V[FlagRegister] = vx & 0x01

	case OpShl:
		r.V[op.X] = vx << 1
		r.V[FlagRegister] = vx >> 7
	}
}

func skipIf(next uint16, condition bool) uint16 {
	if condition {
		return next + 2
	}
	return next
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
