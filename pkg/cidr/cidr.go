// Package cidr provides the IPv4 subnet arithmetic used by the fabric
// allocator: sizing a block for a host count, enumerating host addresses,
// and carving child subnets.
package cidr

import (
	"errors"
	"fmt"
	"math/bits"
	"net/netip"
)

// ErrPrefixTooSmall is returned when a parent prefix cannot fit a block
// sized for the requested address count.
var ErrPrefixTooSmall = errors.New("prefix too small for requested block")

// HostBits returns the number of host bits needed to address count
// addresses. A count of zero or one still occupies one bit so that the
// resulting block is a valid subnet.
func HostBits(count int) int {
	if count <= 2 {
		return 1
	}
	return bits.Len(uint(count - 1))
}

// Block carves a block sized for count addresses out of parent, anchored at
// the parent's network address. The block's prefix length is always at least
// as long as the parent's; otherwise the parent cannot fit the block.
func Block(parent netip.Prefix, count int) (netip.Prefix, error) {
	if !parent.Addr().Is4() {
		return netip.Prefix{}, fmt.Errorf("not an IPv4 prefix: %s", parent)
	}
	length := 32 - HostBits(count)
	if length < parent.Bits() {
		return netip.Prefix{}, fmt.Errorf("%w: %d addresses need a /%d, parent is %s",
			ErrPrefixTooSmall, count, length, parent)
	}
	return netip.PrefixFrom(parent.Masked().Addr(), length), nil
}

// Subnets enumerates the child subnets of p with the given prefix length in
// ascending order.
func Subnets(p netip.Prefix, length int) ([]netip.Prefix, error) {
	if length < p.Bits() || length > 32 {
		return nil, fmt.Errorf("invalid child prefix length /%d for %s", length, p)
	}
	count := 1 << (length - p.Bits())
	subnets := make([]netip.Prefix, 0, count)
	base := addrValue(p.Masked().Addr())
	step := uint32(1) << (32 - length)
	for i := 0; i < count; i++ {
		subnets = append(subnets, netip.PrefixFrom(valueAddr(base+uint32(i)*step), length))
	}
	return subnets, nil
}

// Addrs returns every address of p in ascending order, network and
// broadcast included. This is the enumeration used for point-to-point /31
// subnets, where both addresses are assignable.
func Addrs(p netip.Prefix) []netip.Addr {
	size := 1 << (32 - p.Bits())
	addrs := make([]netip.Addr, 0, size)
	base := addrValue(p.Masked().Addr())
	for i := 0; i < size; i++ {
		addrs = append(addrs, valueAddr(base+uint32(i)))
	}
	return addrs
}

// Hosts returns the usable host addresses of p in ascending order. For
// prefixes of /30 and wider the network and broadcast addresses are
// excluded; /31 and /32 have no such reservation.
func Hosts(p netip.Prefix) []netip.Addr {
	addrs := Addrs(p)
	if p.Bits() >= 31 {
		return addrs
	}
	return addrs[1 : len(addrs)-1]
}

// First returns the first usable host address of p.
func First(p netip.Prefix) netip.Addr {
	hosts := Hosts(p)
	return hosts[0]
}

func addrValue(a netip.Addr) uint32 {
	b := a.As4()
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func valueAddr(v uint32) netip.Addr {
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}
