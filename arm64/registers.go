package arm64

import "fmt"

// gpReg renders a 5-bit general-purpose register field. sf selects 64-bit
// (x) vs 32-bit (w) width; allowSP treats encoding 31 as the stack pointer
// rather than the zero register (the Rn/Rd-as-SP convention used by most
// data-processing and load/store base registers).
func gpReg(n uint32, sf bool, allowSP bool) string {
	if n == 31 {
		if allowSP {
			if sf {
				return "sp"
			}
			return "wsp"
		}
		if sf {
			return "xzr"
		}
		return "wzr"
	}
	if sf {
		return fmt.Sprintf("x%d", n)
	}
	return fmt.Sprintf("w%d", n)
}

// GPRegAliased applies the spec-mandated x29=fp/x30=lr rendering used by
// debugger.Registers but not by the decoder's operand text (the decoder
// always emits xN/wN; aliasing is a debugger/display-layer concern). Kept
// here, exported, since both packages need the same numbering rules.
func GPRegAliased(n uint32, sf bool) string {
	switch n {
	case 29:
		if sf {
			return "fp"
		}
	case 30:
		if sf {
			return "lr"
		}
	}
	return gpReg(n, sf, false)
}

func fpReg(n uint32, size uint32) string {
	switch size {
	case 0:
		return fmt.Sprintf("b%d", n)
	case 1:
		return fmt.Sprintf("h%d", n)
	case 2:
		return fmt.Sprintf("s%d", n)
	case 3:
		return fmt.Sprintf("d%d", n)
	default:
		return fmt.Sprintf("q%d", n)
	}
}

var conditionNames = [16]string{
	"eq", "ne", "cs", "cc", "mi", "pl", "vs", "vc",
	"hi", "ls", "ge", "lt", "gt", "le", "al", "nv",
}

func conditionName(cond uint32) string { return conditionNames[cond&0xf] }

// invertCondition flips the low bit per the AArch64 condition-code
// convention (cond[0] toggled), used to build CSET/CSETM/CINC aliases from
// CSINC/CSINV/CSNEG with an inverted condition.
func invertCondition(cond uint32) uint32 { return cond ^ 1 }
