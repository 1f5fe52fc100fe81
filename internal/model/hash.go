package model

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"
)

// Domain prefixes for content-addressed identity. The version suffix
// enables future algorithm migration without colliding with old keys.
const (
	domainAtom = "groundwork/atom/v1"
	domainRule = "groundwork/rule/v1"
)

// hashWithDomain computes SHA-256 over the parts with domain separation.
// Format: SHA256(domain + 0x00 + part1 + 0x00 + part2 + 0x00 + ...).
// The null byte separator prevents boundary ambiguity between parts.
func hashWithDomain(domain string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(domain))
	for _, p := range parts {
		h.Write([]byte{0x00})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// AtomIdentity computes the content-addressed identity of a ground atom:
// the predicate id followed by the stable encodings of the argument tuple.
func AtomIdentity(pred PredicateID, args []Constant) string {
	parts := make([]string, 0, len(args)+1)

	var idBuf [4]byte
	binary.BigEndian.PutUint32(idBuf[:], uint32(pred))
	parts = append(parts, hex.EncodeToString(idBuf[:]))

	for _, c := range args {
		// The kind tag keeps Int(1) and String("1") distinct.
		parts = append(parts, c.Kind().String(), c.Encode())
	}
	return hashWithDomain(domainAtom, parts...)
}

// RuleIdentity computes the identity of a ground rule: the unordered
// multiset of signed ground atom identities. Two ground rules with the same
// multiset hash to the same key regardless of literal order.
func RuleIdentity(pos, neg []*GroundAtom) string {
	signed := make([]string, 0, len(pos)+len(neg))
	for _, a := range pos {
		signed = append(signed, "+"+a.Key())
	}
	for _, a := range neg {
		signed = append(signed, "-"+a.Key())
	}
	sort.Strings(signed)
	return hashWithDomain(domainRule, signed...)
}
