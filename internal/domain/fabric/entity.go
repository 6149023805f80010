package fabric

import (
	"fmt"
	"net/netip"
	"time"
)

// DeviceRole distinguishes the two tiers of a Clos fabric.
type DeviceRole string

const (
	RoleSpine DeviceRole = "spine"
	RoleLeaf  DeviceRole = "leaf"
)

// PortDirection marks which tier a physical port faces.
type PortDirection string

const (
	DirectionUplink   PortDirection = "uplink"
	DirectionDownlink PortDirection = "downlink"
)

// Pod is one administratively contained fabric instance. The structural
// attributes (device types, prefixes, AS ranges) key every allocated
// address and AS number; changing any of them requires recreating the
// fabric from scratch.
type Pod struct {
	ID                 string    `json:"id" db:"id"`
	Name               string    `json:"name" db:"name"`
	SpineDeviceType    string    `json:"spine_device_type" db:"spine_device_type"`
	LeafDeviceType     string    `json:"leaf_device_type" db:"leaf_device_type"`
	InterConnectPrefix string    `json:"inter_connect_prefix" db:"inter_connect_prefix"`
	VlanPrefix         string    `json:"vlan_prefix" db:"vlan_prefix"`
	LoopbackPrefix     string    `json:"loopback_prefix" db:"loopback_prefix"`
	SpineAS            uint32    `json:"spine_as" db:"spine_as"`
	LeafAS             uint32    `json:"leaf_as" db:"leaf_as"`
	Topology           string    `json:"topology" db:"topology"`
	SpineCount         int       `json:"spine_count" db:"spine_count"`
	LeafCount          int       `json:"leaf_count" db:"leaf_count"`
	AllocatedLoopbackBlock string `json:"allocated_loopback_block" db:"allocated_loopback_block"`
	AllocatedIrbBlock      string `json:"allocated_irb_block" db:"allocated_irb_block"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks the pod's structural attributes before any persistence.
func (p *Pod) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("pod name is required")
	}
	if p.SpineDeviceType == "" {
		return fmt.Errorf("pod %s: spine device type is required", p.Name)
	}
	if p.LeafDeviceType == "" {
		return fmt.Errorf("pod %s: leaf device type is required", p.Name)
	}
	for field, prefix := range map[string]string{
		"interConnectPrefix": p.InterConnectPrefix,
		"vlanPrefix":         p.VlanPrefix,
		"loopbackPrefix":     p.LoopbackPrefix,
	} {
		parsed, err := netip.ParsePrefix(prefix)
		if err != nil {
			return fmt.Errorf("pod %s: %s %q is not a valid CIDR: %w", p.Name, field, prefix, err)
		}
		if !parsed.Addr().Is4() {
			return fmt.Errorf("pod %s: %s %q must be IPv4", p.Name, field, prefix)
		}
	}
	if p.SpineAS == 0 {
		return fmt.Errorf("pod %s: spineAS must be a positive integer", p.Name)
	}
	if p.LeafAS == 0 {
		return fmt.Errorf("pod %s: leafAS must be a positive integer", p.Name)
	}
	return nil
}

// RequiresRecreate reports whether the difference between p and other
// re-keys allocated addresses or AS numbers, forcing a full fabric rebuild.
func (p *Pod) RequiresRecreate(other *Pod) bool {
	return p.SpineDeviceType != other.SpineDeviceType ||
		p.LeafDeviceType != other.LeafDeviceType ||
		p.InterConnectPrefix != other.InterConnectPrefix ||
		p.VlanPrefix != other.VlanPrefix ||
		p.LoopbackPrefix != other.LoopbackPrefix ||
		p.SpineAS != other.SpineAS ||
		p.LeafAS != other.LeafAS
}

// Device is a single switch of a pod, spine or leaf. Ordinal preserves the
// order the device appeared in the topology document; allocation iterates
// devices in that order so repeated runs assign identical resources.
type Device struct {
	ID        string     `json:"id" db:"id"`
	PodID     string     `json:"pod_id" db:"pod_id"`
	Ordinal   int        `json:"ordinal" db:"ordinal"`
	Name      string     `json:"name" db:"name"`
	Family    string     `json:"family" db:"family"`
	Role      DeviceRole `json:"role" db:"role"`
	MgmtIP    string     `json:"mgmt_ip" db:"mgmt_ip"`
	Username  string     `json:"username" db:"username"`
	Password  string     `json:"password" db:"password"`
	ASN       uint32     `json:"asn" db:"asn"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// PhysicalInterface is a port (IFD) on a device. PeerID links a spine port
// to its leaf counterpart; the relation is kept symmetric on every
// mutation, each port has at most one peer.
type PhysicalInterface struct {
	ID        string        `json:"id" db:"id"`
	DeviceID  string        `json:"device_id" db:"device_id"`
	Name      string        `json:"name" db:"name"`
	Direction PortDirection `json:"direction" db:"direction"`
	PeerID    *string       `json:"peer_id" db:"peer_id"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// LogicalInterface is a unit (IFL) carrying an IP address, layered above a
// physical interface or standing alone (loopback, IRB).
type LogicalInterface struct {
	ID           string    `json:"id" db:"id"`
	DeviceID     string    `json:"device_id" db:"device_id"`
	Name         string    `json:"name" db:"name"`
	LayerAboveID *string   `json:"layer_above_id" db:"layer_above_id"`
	IPAddress    string    `json:"ip_address" db:"ip_address"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// SplitByRole partitions devices into spines and leaves, preserving order.
func SplitByRole(devices []Device) (spines, leaves []Device) {
	for _, d := range devices {
		switch d.Role {
		case RoleSpine:
			spines = append(spines, d)
		case RoleLeaf:
			leaves = append(leaves, d)
		}
	}
	return spines, leaves
}
