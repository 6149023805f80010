package postgres

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PostgreSQL migrations for the fabric model. Mirrors the SQLite schema with
// PostgreSQL types; the delete cascade runs pod -> devices -> interfaces.

const createPodsTable = `
CREATE TABLE IF NOT EXISTS pods (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    spine_device_type TEXT NOT NULL,
    leaf_device_type TEXT NOT NULL,
    inter_connect_prefix TEXT NOT NULL,
    vlan_prefix TEXT NOT NULL,
    loopback_prefix TEXT NOT NULL,
    spine_as BIGINT NOT NULL CHECK (spine_as > 0),
    leaf_as BIGINT NOT NULL CHECK (leaf_as > 0),
    topology TEXT,
    spine_count INTEGER DEFAULT 0,
    leaf_count INTEGER DEFAULT 0,
    allocated_loopback_block TEXT DEFAULT '',
    allocated_irb_block TEXT DEFAULT '',
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW()
);`

const createPodsNameIndex = `
CREATE INDEX IF NOT EXISTS idx_pods_name ON pods(name);`

const createDevicesTable = `
CREATE TABLE IF NOT EXISTS devices (
    id TEXT PRIMARY KEY,
    pod_id TEXT NOT NULL REFERENCES pods(id) ON DELETE CASCADE,
    ordinal INTEGER NOT NULL,
    name TEXT NOT NULL,
    family TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('spine', 'leaf')),
    mgmt_ip TEXT,
    username TEXT,
    password TEXT,
    asn BIGINT DEFAULT 0,
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW(),

    UNIQUE(pod_id, name)
);`

const createDevicesPodIndex = `
CREATE INDEX IF NOT EXISTS idx_devices_pod_ordinal ON devices(pod_id, ordinal);`

const createPhysicalInterfacesTable = `
CREATE TABLE IF NOT EXISTS physical_interfaces (
    id TEXT PRIMARY KEY,
    device_id TEXT NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    direction TEXT NOT NULL CHECK (direction IN ('uplink', 'downlink')),
    peer_id TEXT,
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW(),

    UNIQUE(device_id, name)
);`

const createPhysicalInterfacesPeerIndex = `
CREATE INDEX IF NOT EXISTS idx_physical_interfaces_peer ON physical_interfaces(device_id, peer_id);`

const createLogicalInterfacesTable = `
CREATE TABLE IF NOT EXISTS logical_interfaces (
    id TEXT PRIMARY KEY,
    device_id TEXT NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    layer_above_id TEXT,
    ip_address TEXT NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW(),

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
