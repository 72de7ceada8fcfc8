package macho

import (
	"sort"
	"sync"

	"github.com/kestrel-security/machtool/boundsreader"
	"github.com/kestrel-security/machtool/types"
)

// Symbol is one resolved nlist_64 entry.
type Symbol struct {
	Name    string
	Type    types.SymbolType
	Section uint8
	Desc    uint16
	Value   uint64

	// External is n_type's N_EXT bit: the symbol is visible outside this
	// image. PrivateExternal is N_PEXT, set on symbols that will become
	// non-external once the image is statically linked. Defined is false
	// only for SymUndefined; every other SymbolType resolves to an
	// address within this image (or, for SymPrebound, a dylib's).
	External        bool
	PrivateExternal bool
	Defined         bool
}

// symtabCmd holds the raw LC_SYMTAB fields needed to lazily materialize the
// symbol table on first access, mirroring the teacher's deferred-Symtab
// pattern: the command is cheap to record at parse time, the string and
// nlist arrays are only read when a caller actually asks for symbols.
type symtabCmd struct {
	raw     []byte
	symOff  uint32
	nSyms   uint32
	strOff  uint32
	strSize uint32

	r *boundsreader.BoundsReader

	once    sync.Once
	symbols []Symbol
	err     error

	sortOnce sync.Once
	byAddr   []Symbol // defined symbols, sorted by Value, for nearest-preceding lookup
}

func (s *symtabCmd) Command() types.LoadCmd { return types.LCSymtab }
func (s *symtabCmd) Raw() []byte            { return s.raw }

const nlist64Size = 16

func (s *symtabCmd) parse() {
	s.once.Do(func() {
		syms := make([]Symbol, 0, s.nSyms)
		for i := uint32(0); i < s.nSyms; i++ {
			base := int64(s.symOff) + int64(i)*nlist64Size
			strx, err := s.r.ReadU32(base)
			if err != nil {
				s.err = err
				return
			}
			nType, err := s.r.ReadU8(base + 4)
			if err != nil {
				s.err = err
				return
			}
			nSect, err := s.r.ReadU8(base + 5)
			if err != nil {
				s.err = err
				return
			}
			desc, err := s.r.ReadU16(base + 6)
			if err != nil {
				s.err = err
				return
			}
			value, err := s.r.ReadU64(base + 8)
			if err != nil {
				s.err = err
				return
			}

			name := ""
			if strx != 0 {
				name, err = s.r.ReadFixedString(int64(s.strOff)+int64(strx), int64(s.strSize)-int64(strx))
				if err != nil {
					name = ""
				}
			}

			symType := types.ClassifyNType(nType)
			syms = append(syms, Symbol{
				Name:            name,
				Type:            symType,
				Section:         nSect,
				Desc:            desc,
				Value:           value,
				External:        types.NlistType(nType)&types.NTypeExt != 0,
				PrivateExternal: types.NlistType(nType)&types.NTypePext != 0,
				Defined:         symType != types.SymUndefined,
			})
		}
		s.symbols = syms
	})
}

// Symbols returns every symbol-table entry, parsing it on first call.
func (s *symtabCmd) Symbols() ([]Symbol, error) {
	s.parse()
	return s.symbols, s.err
}

// resolveAddress returns the defined symbol with the greatest Value <= addr
// (the nearest preceding symbol), building and caching the address-sorted
// view of the symbol table on first use.
func (s *symtabCmd) resolveAddress(addr uint64) (*Symbol, bool) {
	s.parse()
	if s.err != nil {
		return nil, false
	}
	s.sortOnce.Do(func() {
		for _, sym := range s.symbols {
			if sym.Defined {
				s.byAddr = append(s.byAddr, sym)
			}
		}
		sort.Slice(s.byAddr, func(i, j int) bool { return s.byAddr[i].Value < s.byAddr[j].Value })
	})
	if len(s.byAddr) == 0 {
		return nil, false
	}
	i := sort.Search(len(s.byAddr), func(i int) bool { return s.byAddr[i].Value > addr })
	if i == 0 {
		return nil, false
	}
	return &s.byAddr[i-1], true
}

func parseSymtab(r *boundsreader.BoundsReader, cmdOffset int64, cmdSize uint32, image *boundsreader.BoundsReader) (*symtabCmd, error) {
	raw, err := r.ReadBytes(cmdOffset, int64(cmdSize))
	if err != nil {
		return nil, err
	}
	symOff, err := r.ReadU32(cmdOffset + 8)
	if err != nil {
		return nil, err
	}
	nSyms, err := r.ReadU32(cmdOffset + 12)
	if err != nil {
		return nil, err
	}
	strOff, err := r.ReadU32(cmdOffset + 16)
	if err != nil {
		return nil, err
	}
	strSize, err := r.ReadU32(cmdOffset + 20)
	if err != nil {
		return nil, err
	}
	return &symtabCmd{
		raw:     raw,
		symOff:  symOff,
		nSyms:   nSyms,
		strOff:  strOff,
		strSize: strSize,
		r:       image,
	}, nil
}

// dysymtabCmd holds the LC_DYSYMTAB fields describing the partition of the
// symbol table into local/external/undefined runs.
type dysymtabCmd struct {
	raw                                        []byte
	ILocalSym, NLocalSym                       uint32
	IExtDefSym, NExtDefSym                     uint32
	IUndefSym, NUndefSym                       uint32
	TOCOff, NTOC                               uint32
	ModTabOff, NModTab                         uint32
	ExtRefSymOff, NExtRefSyms                  uint32
	IndirectSymOff, NIndirectSyms              uint32
	ExtRelOff, NExtRel                         uint32
	LocRelOff, NLocRel                         uint32
}

func (d *dysymtabCmd) Command() types.LoadCmd { return types.LCDysymtab }
func (d *dysymtabCmd) Raw() []byte            { return d.raw }

func parseDysymtab(r *boundsreader.BoundsReader, cmdOffset int64, cmdSize uint32) (*dysymtabCmd, error) {
	raw, err := r.ReadBytes(cmdOffset, int64(cmdSize))
	if err != nil {
		return nil, err
	}
	fields := make([]uint32, 18)
	for i := range fields {
		v, err := r.ReadU32(cmdOffset + 8 + int64(i)*4)
		if err != nil {
			return nil, err
		}
		fields[i] = v
	}
	return &dysymtabCmd{
		raw:            raw,
		ILocalSym:      fields[0],
		NLocalSym:      fields[1],
		IExtDefSym:     fields[2],
		NExtDefSym:     fields[3],
		IUndefSym:      fields[4],
		NUndefSym:      fields[5],
		TOCOff:         fields[6],
		NTOC:           fields[7],
		ModTabOff:      fields[8],
		NModTab:        fields[9],
		ExtRefSymOff:   fields[10],
		NExtRefSyms:    fields[11],
		IndirectSymOff: fields[12],
		NIndirectSyms:  fields[13],
		ExtRelOff:      fields[14],
		NExtRel:        fields[15],
		LocRelOff:      fields[16],
		NLocRel:        fields[17],
	}, nil
}
