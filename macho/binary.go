// Package macho parses Mach-O and fat (universal) binaries into an
// in-memory Binary, reading lazily through a boundsreader.BoundsReader so
// that opening a large binary never materializes more of it than a caller
// actually touches.
package macho

import (
	"log/slog"

	"github.com/kestrel-security/machtool/boundsreader"
	"github.com/kestrel-security/machtool/types"
)

// config holds the resolved effect of every ParseOption.
type config struct {
	cpu        types.CPU
	loadFilter func(types.LoadCmd) bool
	logger     *slog.Logger
}

// ParseOption customizes Open/Parse, mirroring the teacher's functional
// FileConfig pattern.
type ParseOption func(*config)

// WithCPU selects which slice of a fat binary to parse. Ignored for a
// single-architecture file.
func WithCPU(cpu types.CPU) ParseOption {
	return func(c *config) { c.cpu = cpu }
}

// WithLoadFilter restricts which load commands are fully parsed; commands
// rejected by filter are still enumerated but kept as LoadCmdUnknown. A nil
// filter (the default) parses every recognized command.
func WithLoadFilter(filter func(types.LoadCmd) bool) ParseOption {
	return func(c *config) { c.loadFilter = filter }
}

// WithLogger overrides the slog.Logger used for non-fatal parse warnings
// (unrecognized load commands). Defaults to slog.Default().
func WithLogger(l *slog.Logger) ParseOption {
	return func(c *config) { c.logger = l }
}

// Binary is a fully parsed Mach-O image: one architecture slice of a
// possibly-fat file, with its header, load commands, segments and symbol
// table resolved.
type Binary struct {
	Header types.Header
	CPU    types.CPU

	Loads []Load

	segments      []*Segment
	dylibs        []*Dylib
	symtab        *symtabCmd
	dysymtab      *dysymtabCmd
	uuid          *UUID
	buildVersion  *BuildVersion
	sourceVersion *SourceVersion
	entryPoint    *EntryPoint
	codeSignature *CodeSignature

	// FatArchitectures is non-empty when the source file was a universal
	// binary; it lists every slice the fat header advertised, regardless
	// of which one was selected for this Binary.
	FatArchitectures []FatArchitecture

	r *boundsreader.BoundsReader
}

// Open reads path and parses it as a Mach-O or fat binary.
func Open(path string, opts ...ParseOption) (*Binary, error) {
	opened, err := boundsreader.Open(path)
	if err != nil {
		return nil, &ErrFileNotFound{Path: path, Err: err}
	}
	b, err := parse(opened.BoundsReader, opts...)
	if err != nil {
		opened.Close()
		return nil, err
	}
	return b, nil
}

// Parse parses an in-memory image as a Mach-O or fat binary.
func Parse(data []byte, opts ...ParseOption) (*Binary, error) {
	return parse(boundsreader.New(data), opts...)
}

func parse(r *boundsreader.BoundsReader, opts ...ParseOption) (*Binary, error) {
	cfg := &config{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	magic, err := r.ReadU32BE(0)
	if err != nil {
		return nil, &ErrTruncatedHeader{Err: err}
	}

	sliceReader := r
	var fatArches []FatArchitecture

	switch types.Magic(magic) {
	case types.MagicFat, types.MagicFat64:
		arches, _, err := readFatArches(r)
		if err != nil {
			return nil, err
		}
		for _, a := range arches {
			fatArches = append(fatArches, FatArchitecture{CPU: a.CPU, SubCPU: a.SubCPU, Offset: a.Offset, Size: a.Size})
		}
		chosen, err := selectArch(arches, cfg.cpu)
		if err != nil {
			return nil, err
		}
		sliceReader, err = r.Slice(int64(chosen.Offset), int64(chosen.Size))
		if err != nil {
			return nil, err
		}
	}

	leMagic, err := sliceReader.ReadU32(0)
	if err != nil {
		return nil, &ErrTruncatedHeader{Err: err}
	}
	switch types.Magic(leMagic) {
	case types.Magic64:
		// supported
	case types.Magic32, types.Magic32Swap:
		return nil, &ErrUnsupportedCPUType{Magic: leMagic}
	default:
		return nil, &ErrInvalidMagic{Found: leMagic, At: 0}
	}

	header, err := parseHeader(sliceReader)
	if err != nil {
		return nil, err
	}

	b := &Binary{
		Header:           header,
		CPU:              header.CPU,
		FatArchitectures: fatArches,
		r:                sliceReader,
	}

	if err := b.parseLoadCommands(sliceReader, cfg); err != nil {
		return nil, err
	}

	return b, nil
}

const headerSize64 = 32

func (b *Binary) parseLoadCommands(r *boundsreader.BoundsReader, cfg *config) error {
	offset := int64(headerSize64)
	var consumed uint32

	for i := uint32(0); i < b.Header.NCommands; i++ {
		if offset+8 > r.Size() {
			return &ErrLoadCommandSizeMismatch{Computed: consumed, Declared: b.Header.SizeCommands}
		}
		cmdVal, err := r.ReadU32(offset)
		if err != nil {
			return err
		}
		cmdSize, err := r.ReadU32(offset + 4)
		if err != nil {
			return err
		}
		if cmdSize < 8 || cmdSize%8 != 0 {
			return &ErrInvalidLoadCommandSize{Offset: offset, Size: cmdSize}
		}

		cmd := types.LoadCmd(cmdVal)
		load, err := b.dispatchLoadCommand(r, cmd, offset, cmdSize, cfg)
		if err != nil {
			return err
		}
		b.Loads = append(b.Loads, load)

		consumed += cmdSize
		offset += int64(cmdSize)
	}

	if consumed != b.Header.SizeCommands {
		return &ErrLoadCommandSizeMismatch{Computed: consumed, Declared: b.Header.SizeCommands}
	}
	return nil
}

func (b *Binary) dispatchLoadCommand(r *boundsreader.BoundsReader, cmd types.LoadCmd, offset int64, cmdSize uint32, cfg *config) (Load, error) {
	if cfg.loadFilter != nil && !cfg.loadFilter(cmd) {
		raw, err := r.ReadBytes(offset, int64(cmdSize))
		if err != nil {
			return nil, err
		}
		return &LoadCmdUnknown{Type: cmd, Raw_: raw}, nil
	}

	switch cmd {
	case types.LCSegment64:
		seg, err := parseSegment64(r, offset, cmdSize, b.r)
		if err != nil {
			return nil, err
		}
		b.segments = append(b.segments, seg)
		return seg, nil

	case types.LCSymtab:
		st, err := parseSymtab(r, offset, cmdSize, b.r)
		if err != nil {
			return nil, err
		}
		b.symtab = st
		return st, nil

	case types.LCDysymtab:
		dt, err := parseDysymtab(r, offset, cmdSize)
		if err != nil {
			return nil, err
		}
		b.dysymtab = dt
		return dt, nil

	case types.LCLoadDylib, types.LCIDDylib, types.LCLoadWeakDylib, types.LCReexportDylib, types.LCLoadUpwardDylib:
		dl, err := parseDylib(r, cmd, offset, cmdSize)
		if err != nil {
			return nil, err
		}
		b.dylibs = append(b.dylibs, dl)
		return dl, nil

	case types.LCUUID:
		u, err := parseUUID(r, offset, cmdSize)
		if err != nil {
			return nil, err
		}
		b.uuid = u
		return u, nil

	case types.LCBuildVersion:
		bv, err := parseBuildVersion(r, offset, cmdSize)
		if err != nil {
			return nil, err
		}
		b.buildVersion = bv
		return bv, nil

	case types.LCSourceVersion:
		sv, err := parseSourceVersion(r, offset, cmdSize)
		if err != nil {
			return nil, err
		}
		b.sourceVersion = sv
		return sv, nil

	case types.LCMain:
		ep, err := parseEntryPoint(r, offset, cmdSize)
		if err != nil {
			return nil, err
		}
		b.entryPoint = ep
		return ep, nil

	case types.LCCodeSignature:
		cs, err := parseCodeSignatureCmd(r, offset, cmdSize)
		if err != nil {
			return nil, err
		}
		b.codeSignature = cs
		return cs, nil

	case types.LCFunctionStarts, types.LCDataInCode, types.LCSegmentSplitInfo,
		types.LCDylibCodeSignDRs, types.LCLinkerOptimizeHint,
		types.LCDyldExportsTrie, types.LCDyldChainedFixups:
		return parseLinkEditData(r, cmd, offset, cmdSize)

	case types.LCEncryptionInfo64:
		return parseEncryptionInfo64(r, offset, cmdSize)

	case types.LCLinkerOption:
		return parseLinkerOption(r, offset, cmdSize)

	case types.LCDyldInfo, types.LCDyldInfoOnly:
		return parseDyldInfo(r, cmd, offset, cmdSize)

	default:
		raw, err := r.ReadBytes(offset, int64(cmdSize))
		if err != nil {
			return nil, err
		}
		cfg.logger.Warn("unrecognized load command", "cmd", cmd.String(), "size", cmdSize)
		return &LoadCmdUnknown{Type: cmd, Raw_: raw}, nil
	}
}

// Segments returns every parsed LC_SEGMENT_64 command, in file order.
func (b *Binary) Segments() []*Segment { return b.segments }

// Segment looks up a segment by name, or nil if absent.
func (b *Binary) Segment(name string) *Segment {
	for _, s := range b.segments {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Symbol looks up the first symbol with the given name.
func (b *Binary) Symbol(name string) (*Symbol, error) {
	if b.symtab == nil {
		return nil, &ErrSymbolNotFound{Query: name}
	}
	syms, err := b.symtab.Symbols()
	if err != nil {
		return nil, err
	}
	for i := range syms {
		if syms[i].Name == name {
			return &syms[i], nil
		}
	}
	return nil, &ErrSymbolNotFound{Query: name}
}

// Symbols returns the full, lazily-parsed symbol table, or nil if the
// binary carries no LC_SYMTAB.
func (b *Binary) Symbols() ([]Symbol, error) {
	if b.symtab == nil {
		return nil, nil
	}
	return b.symtab.Symbols()
}

// ResolveAddress implements debugger.SymbolResolver: it returns the name of
// the nearest preceding defined symbol to addr (the L2 resolution law —
// symbols are consulted sorted by address, never by table order), or false
// if the binary carries no symbol covering addr.
func (b *Binary) ResolveAddress(addr uint64) (string, bool) {
	if b.symtab == nil {
		return "", false
	}
	sym, ok := b.symtab.resolveAddress(addr)
	if !ok {
		return "", false
	}
	return sym.Name, true
}

// Dylibs returns every shared library dependency, in load-command order,
// including LC_ID_DYLIB for the binary's own identity if present.
func (b *Binary) Dylibs() []*Dylib { return b.dylibs }

// UUID returns the build UUID recorded by LC_UUID, or the zero value and
// false if the binary carries none.
func (b *Binary) UUID() ([16]byte, bool) {
	if b.uuid == nil {
		return [16]byte{}, false
	}
	return b.uuid.ID, true
}

// SourceVersion returns the packed A.B.C.D.E version from LC_SOURCE_VERSION.
func (b *Binary) SourceVersion() (uint64, bool) {
	if b.sourceVersion == nil {
		return 0, false
	}
	return b.sourceVersion.Version, true
}

// BuildVersionInfo returns the parsed LC_BUILD_VERSION command, if present.
func (b *Binary) BuildVersionInfo() (*BuildVersion, bool) {
	return b.buildVersion, b.buildVersion != nil
}

// EntryPoint returns the parsed LC_MAIN command, if present.
func (b *Binary) EntryPoint() (*EntryPoint, bool) {
	return b.entryPoint, b.entryPoint != nil
}

// CodeSignatureRange returns the file offset and length of the embedded
// code-signature SuperBlob, if the binary carries an LC_CODE_SIGNATURE.
func (b *Binary) CodeSignatureRange() (offset, size uint32, ok bool) {
	if b.codeSignature == nil {
		return 0, 0, false
	}
	return b.codeSignature.Offset, b.codeSignature.Size, true
}

// CodeSignatureBytes reads the raw SuperBlob bytes referenced by
// LC_CODE_SIGNATURE, ready to hand to pkg/codesign.ParseSuperBlob.
func (b *Binary) CodeSignatureBytes() ([]byte, error) {
	if b.codeSignature == nil {
		return nil, nil
	}
	return b.r.ReadBytes(int64(b.codeSignature.Offset), int64(b.codeSignature.Size))
}
