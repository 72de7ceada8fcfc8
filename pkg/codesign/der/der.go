// Package der decodes the DER-encoded entitlements blob Apple's linker
// embeds under CSMagicEmbeddedEntitlementsDER: a SET OF (key, value) pairs,
// where each value is itself a small ASN.1 tagged union (boolean, UTF8
// string, integer, or a nested SET OF for arrays).
package der

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// DecodeEntitlements parses the DER payload (with the blob's magic/length
// preamble already stripped) into a plain Go map mirroring the equivalent
// XML plist's structure.
func DecodeEntitlements(data []byte) (map[string]any, error) {
	input := cryptobyte.String(data)

	var outer cryptobyte.String
	if !input.ReadASN1(&outer, asn1.SET) {
		return nil, fmt.Errorf("entitlements: expected outer SET")
	}

	result := make(map[string]any)
	for !outer.Empty() {
		var pair cryptobyte.String
		if !outer.ReadASN1(&pair, asn1.SEQUENCE) {
			return nil, fmt.Errorf("entitlements: expected (key, value) SEQUENCE")
		}
		var keyBytes []byte
		if !pair.ReadASN1Bytes(&keyBytes, asn1.UTF8String) {
			return nil, fmt.Errorf("entitlements: expected UTF8String key")
		}
		value, err := decodeValue(&pair)
		if err != nil {
			return nil, fmt.Errorf("entitlements: key %q: %w", keyBytes, err)
		}
		result[string(keyBytes)] = value
	}
	return result, nil
}

func decodeValue(s *cryptobyte.String) (any, error) {
	if s.Empty() {
		return nil, nil
	}

	switch {
	case peekTag(*s) == asn1.BOOLEAN:
		var b bool
		if !s.ReadASN1Boolean(&b) {
			return nil, fmt.Errorf("malformed boolean")
		}
		return b, nil

	case peekTag(*s) == asn1.INTEGER:
		var n int64
		if !s.ReadASN1Integer(&n) {
			return nil, fmt.Errorf("malformed integer")
		}
		return n, nil

	case peekTag(*s) == asn1.UTF8String:
		var str []byte
		if !s.ReadASN1Bytes(&str, asn1.UTF8String) {
			return nil, fmt.Errorf("malformed string")
		}
		return string(str), nil

	case peekTag(*s) == asn1.SET:
		var inner cryptobyte.String
		if !s.ReadASN1(&inner, asn1.SET) {
			return nil, fmt.Errorf("malformed array")
		}
		var items []any
		for !inner.Empty() {
			v, err := decodeValue(&inner)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil

	default:
		return nil, fmt.Errorf("unsupported entitlement value tag %#x", peekTag(*s))
	}
}

// peekTag reports the tag byte of the next ASN.1 element without consuming
// it from s; cryptobyte has no direct peek, so this reads the leading tag
// byte out of the backing bytes.
func peekTag(s cryptobyte.String) asn1.Tag {
	if len(s) == 0 {
		return 0
	}
	return asn1.Tag(s[0])
}
