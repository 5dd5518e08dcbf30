package chip8

// Kind identifies a decoded CHIP-8 operation.
type Kind uint8

// All documented CHIP-8 operations. The comment lists the encoding.
const (
	OpUnknown   Kind = iota
	OpSys            // 0nnn
	OpCls            // 00E0
	OpRet            // 00EE
	OpJp             // 1nnn
	OpCall           // 2nnn
	OpSeByte         // 3xkk
	OpSneByte        // 4xkk
	OpSeReg          // 5xy0
	OpLdByte         // 6xkk
	OpAddByte        // 7xkk
	OpLdReg          // 8xy0
	OpOr             // 8xy1
	OpAnd            // 8xy2
	OpXor            // 8xy3
	OpAddReg         // 8xy4
	OpSub            // 8xy5
	OpShr            // 8xy6
	OpSubn           // 8xy7
	OpShl            // 8xyE
	OpSneReg         // 9xy0
	OpLdI            // Annn
	OpJpV0           // Bnnn
	OpRnd            // Cxkk
	OpDrw            // Dxyn
	OpSkp            // Ex9E
	OpSknp           // ExA1
	OpLdVxDT         // Fx07
	OpLdVxK          // Fx0A
	OpLdDTVx         // Fx15
	OpLdSTVx         // Fx18
	OpAddI           // Fx1E
	OpLdF            // Fx29
	OpLdB            // Fx33
	OpLdIVx          // Fx55
	OpLdVxI          // Fx65
)

var kindNames = [...]string{
	OpUnknown: "???",
	OpSys:     "SYS",
	OpCls:     "CLS",
	OpRet:     "RET",
	OpJp:      "JP",
	OpCall:    "CALL",
	OpSeByte:  "SE",
	OpSneByte: "SNE",
	OpSeReg:   "SE",
	OpLdByte:  "LD",
	OpAddByte: "ADD",
	OpLdReg:   "LD",
	OpOr:      "OR",
	OpAnd:     "AND",
	OpXor:     "XOR",
	OpAddReg:  "ADD",
	OpSub:     "SUB",
	OpShr:     "SHR",
	OpSubn:    "SUBN",
	OpShl:     "SHL",
	OpSneReg:  "SNE",
	OpLdI:     "LD",
	OpJpV0:    "JP",
	OpRnd:     "RND",
	OpDrw:     "DRW",
	OpSkp:     "SKP",
	OpSknp:    "SKNP",
	OpLdVxDT:  "LD",
	OpLdVxK:   "LD",
	OpLdDTVx:  "LD",
	OpLdSTVx:  "LD",
	OpAddI:    "ADD",
	OpLdF:     "LD",
	OpLdB:     "LD",
	OpLdIVx:   "LD",
	OpLdVxI:   "LD",
}

// String returns the instruction mnemonic of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[OpUnknown]
}

// Operation is a decoded instruction word with its operand fields extracted.
// Fields that are not used by the operation kind are still filled from the
// corresponding nibbles of the opcode.
type Operation struct {
	Kind   Kind
	Opcode uint16 // raw instruction word
	X      uint8  // register index in bits 8-11
	Y      uint8  // register index in bits 4-7
	N      uint8  // lowest nibble
	KK     uint8  // lowest byte
	NNN    uint16 // lowest 12 bits
}

// Decode decodes an instruction word. Words that do not match any documented
// encoding decode to an operation of kind OpUnknown and ok set to false.
func Decode(opcode uint16) (op Operation, ok bool) {
	op = Operation{
		Opcode: opcode,
		X:      uint8(opcode>>8) & 0x0F,
		Y:      uint8(opcode>>4) & 0x0F,
		N:      uint8(opcode) & 0x0F,
		KK:     uint8(opcode),
		NNN:    opcode & 0x0FFF,
	}
	op.Kind = decodeKind(op)
	return op, op.Kind != OpUnknown
}

func decodeKind(op Operation) Kind {
	switch op.Opcode >> 12 {
	case 0x0:
		switch op.Opcode {
		case 0x00E0:
			return OpCls
		case 0x00EE:
			return OpRet
		}
		return OpSys
	case 0x1:
		return OpJp
	case 0x2:
		return OpCall
	case 0x3:
		return OpSeByte
	case 0x4:
		return OpSneByte
	case 0x5:
		if op.N == 0 {
			return OpSeReg
		}
	case 0x6:
		return OpLdByte
	case 0x7:
		return OpAddByte
	case 0x8:
		return decodeALU(op.N)
	case 0x9:
		if op.N == 0 {
			return OpSneReg
		}
	case 0xA:
		return OpLdI
	case 0xB:
		return OpJpV0
	case 0xC:
		return OpRnd
	case 0xD:
		return OpDrw
	case 0xE:
		switch op.KK {
		case 0x9E:
			return OpSkp
		case 0xA1:
			return OpSknp
		}
	case 0xF:
		return decodeMisc(op.KK)
	}
	return OpUnknown
}

func decodeALU(n uint8) Kind {
	switch n {
	case 0x0:
		return OpLdReg
	case 0x1:
		return OpOr
	case 0x2:
		return OpAnd
	case 0x3:
		return OpXor
	case 0x4:
		return OpAddReg
	case 0x5:
		return OpSub
	case 0x6:
		return OpShr
	case 0x7:
		return OpSubn
	case 0xE:
		return OpShl
	default:
		return OpUnknown
	}
}

func decodeMisc(kk uint8) Kind {
	switch kk {
	case 0x07:
		return OpLdVxDT
	case 0x0A:
		return OpLdVxK
	case 0x15:
		return OpLdDTVx
	case 0x18:
		return OpLdSTVx
	case 0x1E:
		return OpAddI
	case 0x29:
		return OpLdF
	case 0x33:
		return OpLdB
	case 0x55:
		return OpLdIVx
	case 0x65:
		return OpLdVxI
	default:
		return OpUnknown
	}
}
