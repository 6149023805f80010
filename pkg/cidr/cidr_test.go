package cidr

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostBits(t *testing.T) {
	tests := []struct {
		count int
		bits  int
	}{
		{0, 1},
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 2},
		{6, 3},
		{8, 3},
		{256, 8},
		{512, 9},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.bits, HostBits(tt.count), "count=%d", tt.count)
	}
}

func TestBlock(t *testing.T) {
	parent := netip.MustParsePrefix("10.0.0.0/24")

	// 4 devices + 2 reserved -> 3 host bits -> /29
	block, err := Block(parent, 6)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/29", block.String())

	// Block is anchored at the parent's network address
	block, err = Block(netip.MustParsePrefix("172.16.0.5/16"), 512)
	require.NoError(t, err)
	assert.Equal(t, "172.16.0.0/23", block.String())
}

func TestBlockTooSmall(t *testing.T) {
	parent := netip.MustParsePrefix("10.0.0.0/29")

	// 50 devices + 2 reserved need a /26, which a /29 cannot hold
	_, err := Block(parent, 52)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPrefixTooSmall)
}

func TestSubnets(t *testing.T) {
	block := netip.MustParsePrefix("192.168.0.0/29")

	subnets, err := Subnets(block, 31)
	require.NoError(t, err)
	require.Len(t, subnets, 4)
	assert.Equal(t, "192.168.0.0/31", subnets[0].String())
	assert.Equal(t, "192.168.0.2/31", subnets[1].String())
	assert.Equal(t, "192.168.0.4/31", subnets[2].String())
	assert.Equal(t, "192.168.0.6/31", subnets[3].String())
}

func TestHosts(t *testing.T) {
	hosts := Hosts(netip.MustParsePrefix("10.0.0.0/29"))
	require.Len(t, hosts, 6)
	assert.Equal(t, "10.0.0.1", hosts[0].String())
	assert.Equal(t, "10.0.0.6", hosts[5].String())

	// /31 has no network/broadcast reservation
	p2p := Hosts(netip.MustParsePrefix("192.168.0.4/31"))
	require.Len(t, p2p, 2)
	assert.Equal(t, "192.168.0.4", p2p[0].String())
	assert.Equal(t, "192.168.0.5", p2p[1].String())
}

func TestFirst(t *testing.T) {
	assert.Equal(t, "172.16.0.1", First(netip.MustParsePrefix("172.16.0.0/24")).String())
}
