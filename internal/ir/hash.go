package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainContent prefixes every content hash. The version suffix allows a
// future algorithm migration without colliding with existing addresses.
const DomainContent = "nucleus/content/v" + IRVersion

// Address identifies content by its own hash.
type Address string

// String implements fmt.Stringer.
func (a Address) String() string {
	return string(a)
}

// IsZero reports whether the address is empty (e.g. the genesis link).
func (a Address) IsZero() bool {
	return a == ""
}

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentAddress returns the address of raw content bytes.
// Content-addressable storage keys every blob by this value.
func ContentAddress(data []byte) Address {
	return Address(hashWithDomain(DomainContent, data))
}

// Encode returns the canonical bytes of v. These bytes are what a CAS stores
// and what ContentAddress hashes.
func Encode(v Canonicaler) ([]byte, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return data, nil
}

// AddressOf computes the content address of a canonicalizable value.
func AddressOf(v Canonicaler) (Address, error) {
	data, err := Encode(v)
	if err != nil {
		return "", err
	}
	return ContentAddress(data), nil
}

// MustAddressOf is like AddressOf but panics on error.
// Use only in tests or when the value is known to be canonicalizable.
func MustAddressOf(v Canonicaler) Address {
	addr, err := AddressOf(v)
	if err != nil {
		panic(err)
	}
	return addr
}
