package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SQLite-specific migrations for the fabric model.
// Deleting a pod cascades to its devices; deleting a device cascades to its
// physical and logical interfaces. peer_id intentionally carries no foreign
// key: peered ports live on different devices of the same pod and are only
// ever removed together by the pod cascade.

const createPodsTable = `
CREATE TABLE IF NOT EXISTS pods (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    spine_device_type TEXT NOT NULL,
    leaf_device_type TEXT NOT NULL,
    inter_connect_prefix TEXT NOT NULL,
    vlan_prefix TEXT NOT NULL,
    loopback_prefix TEXT NOT NULL,
    spine_as INTEGER NOT NULL,
    leaf_as INTEGER NOT NULL,
    topology TEXT,
    spine_count INTEGER DEFAULT 0,
    leaf_count INTEGER DEFAULT 0,
    allocated_loopback_block TEXT DEFAULT '',
    allocated_irb_block TEXT DEFAULT '',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

    CHECK (spine_as > 0),
    CHECK (leaf_as > 0)
);`

const createPodsNameIndex = `
CREATE INDEX IF NOT EXISTS idx_pods_name ON pods(name);`

const createDevicesTable = `
CREATE TABLE IF NOT EXISTS devices (
    id TEXT PRIMARY KEY,
    pod_id TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    name TEXT NOT NULL,
    family TEXT NOT NULL,
    role TEXT NOT NULL,
    mgmt_ip TEXT,
    username TEXT,
    password TEXT,
    asn INTEGER DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

    FOREIGN KEY (pod_id) REFERENCES pods(id) ON DELETE CASCADE,

    CHECK (role IN ('spine', 'leaf')),
    UNIQUE(pod_id, name)
);`

const createDevicesPodIndex = `
CREATE INDEX IF NOT EXISTS idx_devices_pod_ordinal ON devices(pod_id, ordinal);`

const createPhysicalInterfacesTable = `
CREATE TABLE IF NOT EXISTS physical_interfaces (
    id TEXT PRIMARY KEY,
    device_id TEXT NOT NULL,
    name TEXT NOT NULL,
    direction TEXT NOT NULL,
    peer_id TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

    FOREIGN KEY (device_id) REFERENCES devices(id) ON DELETE CASCADE,

    CHECK (direction IN ('uplink', 'downlink')),
    UNIQUE(device_id, name)
);`

const createPhysicalInterfacesPeerIndex = `
CREATE INDEX IF NOT EXISTS idx_physical_interfaces_peer ON physical_interfaces(device_id, peer_id);`

const createLogicalInterfacesTable = `
CREATE TABLE IF NOT EXISTS logical_interfaces (
    id TEXT PRIMARY KEY,
    device_id TEXT NOT NULL,
    name TEXT NOT NULL,
    layer_above_id TEXT,
    ip_address TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

    FOREIGN KEY (device_id) REFERENCES devices(id) ON DELETE CASCADE,

    UNIQUE(device_id, name)
);`

const createLogicalInterfacesLayerIndex = `
CREATE INDEX IF NOT EXISTS idx_logical_interfaces_layer_above ON logical_interfaces(layer_above_id);`

// RunMigrations creates the fabric schema
func RunMigrations(db *sqlx.DB) error {
	migrations := []struct {
		name string
		stmt string
	}{
		{"pods table", createPodsTable},
		{"pods name index", createPodsNameIndex},
		{"devices table", createDevicesTable},
		{"devices pod index", createDevicesPodIndex},
		{"physical interfaces table", createPhysicalInterfacesTable},
		{"physical interfaces peer index", createPhysicalInterfacesPeerIndex},
		{"logical interfaces table", createLogicalInterfacesTable},
		{"logical interfaces layer index", createLogicalInterfacesLayerIndex},
	}

	for _, m := range migrations {
		if _, err := db.Exec(m.stmt); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
	}

	return nil
}
