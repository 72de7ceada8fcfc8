package macho

import "encoding/binary"

// machoBuilder assembles a minimal, well-formed 64-bit Mach-O image byte by
// byte, used by the package's own tests in place of a fixture binary.
type machoBuilder struct {
	buf       []byte
	ncmds     uint32
	cmdsStart int

	pendingSymbols map[string]uint64
	pendingStrTab  []byte
	pendingOffsets map[string]uint32
	symOffPatch    int
	strOffPatch    int
}

func newMachoBuilder(cpu, subCPU, fileType, flags uint32) *machoBuilder {
	b := &machoBuilder{}
	b.putU32(0xfeedfacf) // magic
	b.putU32(cpu)
	b.putU32(subCPU)
	b.putU32(fileType)
	b.putU32(0) // ncmds placeholder
	b.putU32(0) // sizeofcmds placeholder
	b.putU32(flags)
	b.putU32(0) // reserved
	b.cmdsStart = len(b.buf)
	return b
}

func (b *machoBuilder) putU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *machoBuilder) putU64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *machoBuilder) putFixed(s string, length int) {
	raw := make([]byte, length)
	copy(raw, s)
	b.buf = append(b.buf, raw...)
}

func (b *machoBuilder) putBytes(p []byte) { b.buf = append(b.buf, p...) }

// addSegment64 appends an LC_SEGMENT_64 command with no nested sections.
func (b *machoBuilder) addSegment64(name string, vmaddr, vmsize, fileoff, filesize uint64, maxprot, initprot int32) {
	start := len(b.buf)
	b.putU32(0x19) // LC_SEGMENT_64
	b.putU32(72)   // cmdsize, no sections
	b.putFixed(name, 16)
	b.putU64(vmaddr)
	b.putU64(vmsize)
	b.putU64(fileoff)
	b.putU64(filesize)
	b.putU32(uint32(maxprot))
	b.putU32(uint32(initprot))
	b.putU32(0) // nsects
	b.putU32(0) // flags
	b.ncmds++
	_ = start
}

// addSymtab appends LC_SYMTAB plus its nlist_64/string-table payload,
// placed immediately after the current buffer contents.
func (b *machoBuilder) addSymtab(symbols map[string]uint64) {
	// string table: leading NUL, then each name NUL-terminated
	strTab := []byte{0}
	offsets := map[string]uint32{}
	for name := range symbols {
		offsets[name] = uint32(len(strTab))
		strTab = append(strTab, append([]byte(name), 0)...)
	}

	cmdStart := len(b.buf)
	b.putU32(0x2) // LC_SYMTAB
	b.putU32(24)  // cmdsize
	symOffPos := len(b.buf)
	b.putU32(0) // symoff placeholder
	b.putU32(uint32(len(symbols)))
	strOffPos := len(b.buf)
	b.putU32(0) // stroff placeholder
	b.putU32(uint32(len(strTab)))
	b.ncmds++
	_ = cmdStart

	// payload goes after all load commands; caller calls finishWithPayload.
	b.pendingSymbols = symbols
	b.pendingStrTab = strTab
	b.pendingOffsets = offsets
	b.symOffPatch = symOffPos
	b.strOffPatch = strOffPos
}

// finish writes ncmds/sizeofcmds into the header and appends the deferred
// symtab payload (nlist array + string table) right after the load
// commands, patching symoff/stroff to point at it.
func (b *machoBuilder) finish() []byte {
	sizeCmds := uint32(len(b.buf) - b.cmdsStart)
	binary.LittleEndian.PutUint32(b.buf[16:20], b.ncmds)
	binary.LittleEndian.PutUint32(b.buf[20:24], sizeCmds)

	if b.pendingSymbols != nil {
		symOff := uint32(len(b.buf))
		binary.LittleEndian.PutUint32(b.buf[b.symOffPatch:b.symOffPatch+4], symOff)

		names := make([]string, 0, len(b.pendingSymbols))
		for name := range b.pendingSymbols {
			names = append(names, name)
		}
		for _, name := range names {
			b.putU32(b.pendingOffsets[name]) // n_strx
			b.buf = append(b.buf, 0x0f)      // n_type = N_SECT | N_EXT (0x0e | 0x01)
			b.buf = append(b.buf, 1)         // n_sect
			b.putU16(0)                      // n_desc
			b.putU64(b.pendingSymbols[name])
		}

		strOff := uint32(len(b.buf))
		binary.LittleEndian.PutUint32(b.buf[b.strOffPatch:b.strOffPatch+4], strOff)
		b.buf = append(b.buf, b.pendingStrTab...)
	}

	return b.buf
}

func (b *machoBuilder) putU16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}
