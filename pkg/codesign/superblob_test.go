package codesign

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildCodeDirectoryBlob assembles a minimal, well-formed CodeDirectory blob
// body (including its own magic/length header) for identifier, with a
// single zeroed code-slot hash.
func buildCodeDirectoryBlob(identifier string) []byte {
	const hashSize = 32
	nCodeSlots := uint32(1)

	identOffset := uint32(44) // fixed CD header length of the base version (magic through spare2)
	identBytes := append([]byte(identifier), 0)
	hashOffset := identOffset + uint32(len(identBytes))
	hashOffset = align4(hashOffset)

	cd := make([]byte, hashOffset+nCodeSlots*hashSize)
	putU32BE(cd, 0, 0xfade0c02)
	putU32BE(cd, 8, 0x20001) // base version: no scatter/teamID/execseg fields
	putU32BE(cd, 12, 0x00000002) // CSFlagAdhoc
	putU32BE(cd, 16, hashOffset)
	putU32BE(cd, 20, identOffset)
	putU32BE(cd, 24, 0) // nSpecialSlots
	putU32BE(cd, 28, nCodeSlots)
	putU32BE(cd, 32, 0x1000)
	cd[36] = hashSize
	cd[37] = 2 // CSHashSHA256
	cd[38] = 0
	cd[39] = 12
	copy(cd[identOffset:], identBytes)
	putU32BE(cd, 4, uint32(len(cd)))
	return cd
}

// superBlobSlot is one (slot type, blob bytes) pair handed to buildSuperBlob;
// blob already carries its own 8-byte magic/length header.
type superBlobSlot struct {
	slotType uint32
	blob     []byte
}

// buildSuperBlob assembles a complete SuperBlob (header + index + packed
// blobs, in slots order) around an arbitrary set of member blobs.
func buildSuperBlob(slots []superBlobSlot) []byte {
	headerAndIndexSize := 12 + 8*len(slots)

	out := make([]byte, headerAndIndexSize)
	binary.BigEndian.PutUint32(out[0:4], 0xfade0cc0)
	binary.BigEndian.PutUint32(out[8:12], uint32(len(slots)))

	offset := uint32(headerAndIndexSize)
	for i, s := range slots {
		entryOff := 12 + i*8
		binary.BigEndian.PutUint32(out[entryOff:entryOff+4], s.slotType)
		binary.BigEndian.PutUint32(out[entryOff+4:entryOff+8], offset)
		out = append(out, s.blob...)
		offset += uint32(len(s.blob))
	}

	binary.BigEndian.PutUint32(out[4:8], uint32(len(out)))
	return out
}

// buildAdhocSuperBlob assembles a minimal SuperBlob containing only a
// CodeDirectory blob, mirroring the shape produced by an ad-hoc `codesign -s -`
// signature on a tiny binary.
func buildAdhocSuperBlob(identifier string) []byte {
	cd := buildCodeDirectoryBlob(identifier)
	return buildSuperBlob([]superBlobSlot{{slotType: 0, blob: cd}}) // CSSlotCodeDirectory
}

// buildEntitlementsBlob wraps an XML plist body with its CSMagic_Entitlement
// blob header.
func buildEntitlementsBlob(xml string) []byte {
	body := []byte(xml)
	blob := make([]byte, 8+len(body))
	putU32BE(blob, 0, 0xfade7171)
	putU32BE(blob, 4, uint32(len(blob)))
	copy(blob[8:], body)
	return blob
}

func putU32BE(buf []byte, off int, v uint32) { binary.BigEndian.PutUint32(buf[off:off+4], v) }

func align4(v uint32) uint32 {
	if v%4 == 0 {
		return v
	}
	return v + (4 - v%4)
}

func TestParseSuperBlobCodeDirectory(t *testing.T) {
	data := buildAdhocSuperBlob("com.example.tool")

	sig, err := ParseSuperBlob(data)
	require.NoError(t, err)
	require.NotNil(t, sig.CodeDirectory)
	require.Equal(t, "com.example.tool", sig.CodeDirectory.Identifier)
	require.True(t, sig.Flags.IsAdhoc())
	require.Len(t, sig.CodeDirectory.CodeSlotHashes, 1)
	require.Len(t, sig.CDHash(), 32)
}

// buildSuperBlobWithEntitlements assembles a two-slot SuperBlob (a
// CodeDirectory plus a CSSlotEntitlements XML plist) from scratch.
func buildSuperBlobWithEntitlements(identifier, entitlementsXML string) []byte {
	return buildSuperBlob([]superBlobSlot{
		{slotType: 0, blob: buildCodeDirectoryBlob(identifier)}, // CSSlotCodeDirectory
		{slotType: 5, blob: buildEntitlementsBlob(entitlementsXML)}, // CSSlotEntitlements
	})
}

func TestParseSuperBlobStoresTypedEntitlementsPlist(t *testing.T) {
	xml := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>com.apple.security.cs.debugger</key>
	<true/>
</dict>
</plist>`
	data := buildSuperBlobWithEntitlements("com.example.tool", xml)

	sig, err := ParseSuperBlob(data)
	require.NoError(t, err)
	require.NotNil(t, sig.EntitlementsPlist)
	require.Equal(t, true, sig.EntitlementsPlist["com.apple.security.cs.debugger"])
	require.Contains(t, sig.Entitlements, "com.apple.security.cs.debugger")
}

func TestParseSuperBlobRejectsBadMagic(t *testing.T) {
	_, err := ParseSuperBlob([]byte{0, 0, 0, 0, 0, 0, 0, 12, 0, 0, 0, 0})
	require.Error(t, err)
	var bad *ErrInvalidSuperBlobMagic
	require.ErrorAs(t, err, &bad)
}
