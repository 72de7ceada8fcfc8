// Package codesign decodes an embedded Mach-O code-signature SuperBlob: the
// CodeDirectory, entitlements (XML and DER), and the raw CMS signature blob,
// following the same big-endian wire format the kernel's own AMFI verifier
// reads.
package codesign

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"

	"github.com/kestrel-security/machtool/boundsreader"
	"github.com/kestrel-security/machtool/pkg/codesign/der"
	"github.com/kestrel-security/machtool/types"

	"howett.net/plist"
)

// Signature is the decoded contents of one code-signature SuperBlob.
type Signature struct {
	CodeDirectory     *CodeDirectory
	Requirements      []byte
	Entitlements      string
	EntitlementsPlist map[string]any
	EntitlementsDER   map[string]any
	CMSSignature      []byte
	Flags             types.CSFlags
}

// ParseSuperBlob decodes raw SuperBlob bytes, as read from the file range
// an LC_CODE_SIGNATURE command points at.
func ParseSuperBlob(data []byte) (*Signature, error) {
	r := boundsreader.New(data)

	magic, err := r.ReadU32BE(0)
	if err != nil {
		return nil, err
	}
	switch types.CSMagic(magic) {
	case types.CSMagicEmbeddedSignature, types.CSMagicDetachedSignature:
	default:
		return nil, &ErrInvalidSuperBlobMagic{Found: magic}
	}

	length, err := r.ReadU32BE(4)
	if err != nil {
		return nil, err
	}
	if int64(length) > r.Size() {
		return nil, &ErrInvalidBlobLength{Magic: magic, Declared: length, Available: int(r.Size())}
	}

	count, err := r.ReadU32BE(8)
	if err != nil {
		return nil, err
	}

	sig := &Signature{}

	const indexEntrySize = 8
	for i := uint32(0); i < count; i++ {
		entryOff := int64(12 + i*indexEntrySize)
		slotType, err := r.ReadU32BE(entryOff)
		if err != nil {
			return nil, err
		}
		blobOff, err := r.ReadU32BE(entryOff + 4)
		if err != nil {
			return nil, err
		}

		blobMagic, err := r.ReadU32BE(int64(blobOff))
		if err != nil {
			return nil, err
		}
		blobLen, err := r.ReadU32BE(int64(blobOff) + 4)
		if err != nil {
			return nil, err
		}
		blobBytes, err := r.ReadBytes(int64(blobOff), int64(blobLen))
		if err != nil {
			return nil, &ErrInvalidBlobLength{Magic: blobMagic, Declared: blobLen, Available: int(r.Size() - int64(blobOff))}
		}

		if err := sig.absorb(types.CSSlotType(slotType), types.CSMagic(blobMagic), blobBytes); err != nil {
			return nil, err
		}
	}

	if sig.CodeDirectory == nil {
		return nil, &ErrNoCodeDirectory{}
	}
	sig.Flags = sig.CodeDirectory.Flags
	return sig, nil
}

func (s *Signature) absorb(slot types.CSSlotType, magic types.CSMagic, blob []byte) error {
	switch slot {
	case types.CSSlotCodeDirectory:
		cd, err := parseCodeDirectory(blob)
		if err != nil {
			return err
		}
		s.CodeDirectory = cd

	case types.CSSlotRequirements:
		s.Requirements = blob

	case types.CSSlotEntitlements:
		var root map[string]any
		if err := plist.Unmarshal(blob[8:], &root); err != nil {
			return &ErrInvalidEntitlementsFormat{Magic: uint32(magic), Err: err}
		}
		s.Entitlements = string(blob[8:])
		s.EntitlementsPlist = root

	case types.CSSlotEntitlementsDER:
		entitlements, err := der.DecodeEntitlements(blob[8:])
		if err != nil {
			return &ErrInvalidEntitlementsFormat{Magic: uint32(magic), Err: err}
		}
		s.EntitlementsDER = entitlements

	case types.CSSlotCMSSignature:
		s.CMSSignature = blob
	}
	return nil
}

// CDHash computes the code directory hash: the digest of the CodeDirectory
// blob's raw bytes under its own declared hash algorithm, truncated to 20
// bytes for the legacy SHA-1 and SHA-256-truncated algorithms.
func (s *Signature) CDHash() []byte {
	if s.CodeDirectory == nil {
		return nil
	}
	raw := s.CodeDirectory.raw
	switch s.CodeDirectory.HashType {
	case types.CSHashSHA1:
		sum := sha1.Sum(raw)
		return sum[:]
	case types.CSHashSHA256:
		sum := sha256.Sum256(raw)
		return sum[:]
	case types.CSHashSHA256Truncated:
		sum := sha256.Sum256(raw)
		return sum[:20]
	case types.CSHashSHA384:
		sum := sha512.Sum384(raw)
		return sum[:]
	default:
		sum := sha256.Sum256(raw)
		return sum[:]
	}
}
