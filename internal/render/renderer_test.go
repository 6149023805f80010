package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servak/fabric-manager/internal/clos"
	"github.com/servak/fabric-manager/internal/domain/fabric"
)

func leafView() *clos.DeviceView {
	pod := &fabric.Pod{
		Name:                   "dc1-pod1",
		AllocatedLoopbackBlock: "10.0.0.0/29",
		AllocatedIrbBlock:      "172.16.0.0/23",
	}
	spine := fabric.Device{Name: "spine-01", Role: fabric.RoleSpine, ASN: 65000}
	leaf := fabric.Device{Name: "leaf-01", Role: fabric.RoleLeaf, ASN: 65100, MgmtIP: "172.32.30.11/24"}

	irb := fabric.LogicalInterface{Name: "irb.1", IPAddress: "172.16.0.1/24"}
	return &clos.DeviceView{
		Pod:      pod,
		Device:   leaf,
		Loopback: fabric.LogicalInterface{Name: "lo0.0", IPAddress: "10.0.0.3/32"},
		Irb:      &irb,
		Peered: []clos.PeeredPortView{
			{
				Port:       fabric.PhysicalInterface{Name: "et-0/0/48", Direction: fabric.DirectionUplink},
				Unit:       fabric.LogicalInterface{Name: "et-0/0/48.0", IPAddress: "192.168.0.1/31"},
				PeerDevice: spine,
				PeerPort:   fabric.PhysicalInterface{Name: "et-0/0/0", Direction: fabric.DirectionDownlink},
				PeerUnit:   fabric.LogicalInterface{Name: "et-0/0/0.0", IPAddress: "192.168.0.0/31"},
			},
		},
	}
}

func TestRenderLeafDevice(t *testing.T) {
	renderer, err := New()
	require.NoError(t, err)

	out, err := renderer.RenderDevice(leafView())
	require.NoError(t, err)
	config := string(out)

	assert.Contains(t, config, "host-name leaf-01;")
	assert.Contains(t, config, "address 172.32.30.11/24;")
	assert.Contains(t, config, "address 10.0.0.3/32;")
	assert.Contains(t, config, "address 172.16.0.1/24;")
	assert.Contains(t, config, "router-id 10.0.0.3;")
	assert.Contains(t, config, "autonomous-system 65100;")
	assert.Contains(t, config, "neighbor 192.168.0.0 {")
	assert.Contains(t, config, "peer-as 65000;")
	assert.Contains(t, config, `description "facing_spine-01";`)
	assert.Contains(t, config, "vlan-id 1;")
	assert.Contains(t, config, "l3-interface irb.1;")

	// The unit name splits into physical interface and unit number
	assert.Contains(t, config, "et-0/0/48 {")
	assert.Contains(t, config, "unit 0 {")
}

func TestRenderSpineDeviceHasNoIrb(t *testing.T) {
	renderer, err := New()
	require.NoError(t, err)

	view := leafView()
	view.Device = fabric.Device{Name: "spine-01", Role: fabric.RoleSpine, ASN: 65000, MgmtIP: "172.32.30.1/24"}
	view.Irb = nil

	out, err := renderer.RenderDevice(view)
	require.NoError(t, err)
	config := string(out)

	assert.Contains(t, config, "host-name spine-01;")
	assert.NotContains(t, config, "vlans")
	assert.NotContains(t, config, "l3-interface")
	// Spines advertise the whole IRB block instead of a leaf subnet
	assert.Contains(t, config, "route-filter 172.16.0.0/23 orlonger;")
}

func TestRenderIsDeterministic(t *testing.T) {
	renderer, err := New()
	require.NoError(t, err)

	first, err := renderer.RenderDevice(leafView())
	require.NoError(t, err)
	second, err := renderer.RenderDevice(leafView())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderCabling(t *testing.T) {
	renderer, err := New()
	require.NoError(t, err)

	view := &clos.PodView{
		Pod: &fabric.Pod{Name: "dc1-pod1"},
		Devices: []*clos.DeviceView{
			{Device: fabric.Device{Name: "spine-01", Role: fabric.RoleSpine, ASN: 65000}},
			{Device: fabric.Device{Name: "leaf-01", Role: fabric.RoleLeaf, ASN: 65100}},
		},
		Links: []clos.CablingLink{
			{SpineDevice: "spine-01", SpinePort: "et-0/0/0", LeafDevice: "leaf-01", LeafPort: "et-0/0/48"},
		},
	}

	out, err := renderer.RenderCabling(view)
	require.NoError(t, err)
	dot := string(out)

	assert.Contains(t, dot, `label="dc1-pod1";`)
	assert.Contains(t, dot, `"spine-01" [label="spine-01|spine|AS 65000"];`)
	assert.Contains(t, dot, `"spine-01" -- "leaf-01" [taillabel="et-0/0/0", headlabel="et-0/0/48"];`)
}
