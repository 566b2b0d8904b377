package echo

import "fmt"

// InstructionType is the borsh enum discriminant selecting the program code
// path. It is always the first byte of instruction data.
type InstructionType uint8

const (
	InstructionTypeEcho InstructionType = iota
	InstructionTypeInitializeAuthorizedEcho
	InstructionTypeAuthorizedEcho
	InstructionTypeInitializeVendingEcho
	InstructionTypeVendingEcho
)

func (t InstructionType) IsValid() bool {
	return t <= InstructionTypeVendingEcho
}

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeEcho:
		return "echo"
	case InstructionTypeInitializeAuthorizedEcho:
		return "initialize_authorized_echo"
	case InstructionTypeAuthorizedEcho:
		return "authorized_echo"
	case InstructionTypeInitializeVendingEcho:
		return "initialize_vending_echo"
	case InstructionTypeVendingEcho:
		return "vending_echo"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

func putInstructionType(dst []byte, v InstructionType, offset *int) {
	dst[*offset] = uint8(v)
	*offset += 1
}
func getInstructionType(src []byte, dst *InstructionType, offset *int) {
	*dst = InstructionType(src[*offset])
	*offset += 1
}
