package model

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// ArgKind identifies the constant kind accepted at a predicate argument
// position.
type ArgKind int

const (
	// ArgInt accepts integer id constants.
	ArgInt ArgKind = iota + 1
	// ArgString accepts string constants.
	ArgString
	// ArgUniqueID accepts unique identifier constants.
	ArgUniqueID
	// ArgDouble accepts double constants.
	ArgDouble
)

// kindNames maps ArgKind to its stable name, used in persisted predicate
// metadata and in model definition files.
var kindNames = map[ArgKind]string{
	ArgInt:      "int",
	ArgString:   "string",
	ArgUniqueID: "uid",
	ArgDouble:   "double",
}

// String returns the stable name of the kind.
func (k ArgKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ArgKind(%d)", int(k))
}

// ParseArgKind resolves a stable kind name back to an ArgKind.
func ParseArgKind(name string) (ArgKind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown argument kind %q", name)
}

// Constant is a sealed interface over the supported ground term kinds.
// Only IntConstant, StringConstant, UniqueIDConstant, and DoubleConstant
// implement it. Constants are comparable with == and compared by value.
type Constant interface {
	Term
	constantNode() // Marker method - seals interface to this package

	// Kind reports the constant's argument kind.
	Kind() ArgKind

	// Encode returns the stable text encoding of the constant. The encoding
	// is what storage columns hold and what identity hashing consumes.
	Encode() string
}

// IntConstant is an integer id constant.
type IntConstant int64

func (IntConstant) termNode()     {}
func (IntConstant) constantNode() {}

// Kind reports ArgInt.
func (IntConstant) Kind() ArgKind { return ArgInt }

// Encode returns the decimal encoding.
func (c IntConstant) Encode() string { return strconv.FormatInt(int64(c), 10) }

// StringConstant is a string constant. The value is NFC-normalized at
// construction so that equal-looking strings share one identity.
type StringConstant string

func (StringConstant) termNode()     {}
func (StringConstant) constantNode() {}

// Kind reports ArgString.
func (StringConstant) Kind() ArgKind { return ArgString }

// Encode returns the string value.
func (c StringConstant) Encode() string { return string(c) }

// UniqueIDConstant is a unique identifier constant (RFC 4122 UUID).
type UniqueIDConstant uuid.UUID

func (UniqueIDConstant) termNode()     {}
func (UniqueIDConstant) constantNode() {}

// Kind reports ArgUniqueID.
func (UniqueIDConstant) Kind() ArgKind { return ArgUniqueID }

// Encode returns the hyphenated UUID form.
func (c UniqueIDConstant) Encode() string { return uuid.UUID(c).String() }

// DoubleConstant is a double constant.
type DoubleConstant float64

func (DoubleConstant) termNode()     {}
func (DoubleConstant) constantNode() {}

// Kind reports ArgDouble.
func (DoubleConstant) Kind() ArgKind { return ArgDouble }

// Encode returns the shortest round-trippable decimal encoding.
func (c DoubleConstant) Encode() string {
	return strconv.FormatFloat(float64(c), 'g', -1, 64)
}

// Int constructs an integer id constant.
func Int(n int64) IntConstant { return IntConstant(n) }

// String constructs a string constant, normalizing to NFC.
func String(s string) StringConstant { return StringConstant(norm.NFC.String(s)) }

// Double constructs a double constant.
func Double(f float64) DoubleConstant { return DoubleConstant(f) }

// NewUniqueID generates a fresh time-sortable unique identifier constant.
// UUIDv7 embeds a timestamp in the most significant bits, which keeps ids
// sortable by creation time in traces.
func NewUniqueID() UniqueIDConstant {
	return UniqueIDConstant(uuid.Must(uuid.NewV7()))
}

// ParseUniqueID parses a hyphenated UUID string into a unique identifier
// constant.
func ParseUniqueID(s string) (UniqueIDConstant, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UniqueIDConstant{}, fmt.Errorf("parse unique id: %w", err)
	}
	return UniqueIDConstant(id), nil
}

// DecodeConstant parses the stable text encoding of a constant of the given
// kind. It is the inverse of Constant.Encode.
func DecodeConstant(kind ArgKind, s string) (Constant, error) {
	switch kind {
	case ArgInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode int constant %q: %w", s, err)
		}
		return IntConstant(n), nil
	case ArgString:
		return StringConstant(norm.NFC.String(s)), nil
	case ArgUniqueID:
		return ParseUniqueID(s)
	case ArgDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("decode double constant %q: %w", s, err)
		}
		return DoubleConstant(f), nil
	default:
		return nil, fmt.Errorf("unknown argument kind %d", int(kind))
	}
}
