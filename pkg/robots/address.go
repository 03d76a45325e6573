package robots

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"math/bits"
	"net/netip"
	"strings"
)

// Address is an IP address normalized to a 128-bit unsigned integer.
// IPv4 addresses live in the IPv4-mapped IPv6 space (::ffff:a.b.c.d),
// so both families compare on a single axis.
type Address struct {
	hi, lo uint64
}

// MaxAddress is the largest representable address.
var MaxAddress = Address{hi: ^uint64(0), lo: ^uint64(0)}

// ParseAddress parses and normalizes an IPv4 or IPv6 address string.
// Zones are ignored. Returns ErrInvalidAddress for malformed input.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Address{}, errors.Join(ErrInvalidAddress, errors.New("empty address"))
	}
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return Address{}, errors.Join(ErrInvalidAddress, err)
	}
	return AddressFrom(ip), nil
}

// AddressFrom converts a netip.Addr into its normalized integer form.
func AddressFrom(ip netip.Addr) Address {
	b := ip.WithZone("").As16()
	return Address{
		hi: binary.BigEndian.Uint64(b[:8]),
		lo: binary.BigEndian.Uint64(b[8:]),
	}
}

// AddressFromUint64 builds an address from a plain integer, mostly useful for lengths.
func AddressFromUint64(v uint64) Address {
	return Address{lo: v}
}

// Addr converts the address back to netip form. IPv4-mapped values are unmapped.
func (a Address) Addr() netip.Addr {
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], a.hi)
	binary.BigEndian.PutUint64(b[8:], a.lo)
	return netip.AddrFrom16(b).Unmap()
}

func (a Address) String() string {
	return a.Addr().String()
}

// Compare returns -1, 0 or +1.
func (a Address) Compare(b Address) int {
	switch {
	case a.hi < b.hi:
		return -1
	case a.hi > b.hi:
		return 1
	case a.lo < b.lo:
		return -1
	case a.lo > b.lo:
		return 1
	}
	return 0
}

// Less reports whether a sorts before b.
func (a Address) Less(b Address) bool {
	return a.Compare(b) < 0
}

// Add returns a+b, saturating at MaxAddress.
func (a Address) Add(b Address) Address {
	sum, overflow := a.add(b)
	if overflow {
		return MaxAddress
	}
	return sum
}

func (a Address) add(b Address) (Address, bool) {
	lo, carry := bits.Add64(a.lo, b.lo, 0)
	hi, carry := bits.Add64(a.hi, b.hi, carry)
	return Address{hi: hi, lo: lo}, carry != 0
}

var maxLength = new(big.Int).Lsh(big.NewInt(1), 128)

// parseLength parses a decimal range length. Values up to 2^128 are accepted;
// full reports a length of exactly 2^128, which does not fit an Address.
func parseLength(s string) (length Address, full bool, err error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || n.Sign() < 0 || n.Cmp(maxLength) > 0 {
		return Address{}, false, fmt.Errorf("%w: invalid range length %q", ErrInvalidAddress, s)
	}
	if n.Cmp(maxLength) == 0 {
		return MaxAddress, true, nil
	}
	var b [16]byte
	n.FillBytes(b[:])
	return Address{
		hi: binary.BigEndian.Uint64(b[:8]),
		lo: binary.BigEndian.Uint64(b[8:]),
	}, false, nil
}

// Range is a half-open address interval [First, Last). A range whose end lies
// past MaxAddress runs to the top of the address space and contains
// MaxAddress; its Last is MaxAddress.
type Range struct {
	First Address
	Last  Address

	top bool // end is 2^128
}

// NewRange returns the range starting at first and spanning length addresses.
func NewRange(first, length Address) Range {
	last, overflow := first.add(length)
	if overflow {
		return rangeToTop(first)
	}
	return Range{First: first, Last: last}
}

func rangeToTop(first Address) Range {
	return Range{First: first, Last: MaxAddress, top: true}
}

// Contains reports whether p lies in the range.
func (r Range) Contains(p Address) bool {
	return r.First.Compare(p) <= 0 && r.endsAfter(p)
}

// Empty reports whether the range contains no address.
func (r Range) Empty() bool {
	return !r.top && r.First.Compare(r.Last) >= 0
}

// endsAfter reports whether the range end lies beyond p.
func (r Range) endsAfter(p Address) bool {
	return r.top || p.Less(r.Last)
}

// compareEnd orders ranges by their end.
func (r Range) compareEnd(o Range) int {
	switch {
	case r.top && o.top:
		return 0
	case r.top:
		return 1
	case o.top:
		return -1
	}
	return r.Last.Compare(o.Last)
}
