package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/servak/fabric-manager/internal/domain/fabric"
)

// Fabric repository methods. Positional queries are written with ? and
// rebound to $N placeholders; named queries bind through sqlx directly.

const podColumns = `id, name, spine_device_type, leaf_device_type, inter_connect_prefix,
	vlan_prefix, loopback_prefix, spine_as, leaf_as, topology, spine_count, leaf_count,
	allocated_loopback_block, allocated_irb_block, created_at, updated_at`

func (r *postgresRepository) GetPodByName(ctx context.Context, name string) (*fabric.Pod, error) {
	query := r.db.Rebind(`SELECT ` + podColumns + ` FROM pods WHERE name = ? LIMIT 2`)

	var pods []fabric.Pod
	if err := r.db.SelectContext(ctx, &pods, query, name); err != nil {
		return nil, fmt.Errorf("failed to get pod by name: %w", err)
	}

	switch len(pods) {
	case 0:
		return nil, fmt.Errorf("%w: %s", fabric.ErrPodNotFound, name)
	case 1:
		return &pods[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", fabric.ErrAmbiguousPod, name)
	}
}

func (r *postgresRepository) ListPods(ctx context.Context) ([]fabric.Pod, error) {
	query := `SELECT ` + podColumns + ` FROM pods ORDER BY name`

	var pods []fabric.Pod
	if err := r.db.SelectContext(ctx, &pods, query); err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}
	return pods, nil
}

func (r *postgresRepository) CreatePod(ctx context.Context, pod *fabric.Pod) error {
	now := time.Now().UTC()
	pod.CreatedAt = now
	pod.UpdatedAt = now

	query := `
		INSERT INTO pods (` + podColumns + `)
		VALUES (:id, :name, :spine_device_type, :leaf_device_type, :inter_connect_prefix,
			:vlan_prefix, :loopback_prefix, :spine_as, :leaf_as, :topology, :spine_count,
			:leaf_count, :allocated_loopback_block, :allocated_irb_block, :created_at, :updated_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, pod); err != nil {
		return fmt.Errorf("failed to create pod: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdatePod(ctx context.Context, pod *fabric.Pod) error {
	pod.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE pods SET
			spine_device_type = :spine_device_type,
			leaf_device_type = :leaf_device_type,
			inter_connect_prefix = :inter_connect_prefix,
			vlan_prefix = :vlan_prefix,
			loopback_prefix = :loopback_prefix,
			spine_as = :spine_as,
			leaf_as = :leaf_as,
			topology = :topology,
			spine_count = :spine_count,
			leaf_count = :leaf_count,
			allocated_loopback_block = :allocated_loopback_block,
			allocated_irb_block = :allocated_irb_block,
			updated_at = :updated_at
		WHERE id = :id
	`

	if _, err := r.db.NamedExecContext(ctx, query, pod); err != nil {
		return fmt.Errorf("failed to update pod: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeletePod(ctx context.Context, podID string) error {
	query := r.db.Rebind(`DELETE FROM pods WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, podID); err != nil {
		return fmt.Errorf("failed to delete pod: %w", err)
	}
	return nil
}

const deviceColumns = `id, pod_id, ordinal, name, family, role, mgmt_ip, username, password,
	asn, created_at, updated_at`

func (r *postgresRepository) CreateDevices(ctx context.Context, devices []fabric.Device) error {
	if len(devices) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO devices (` + deviceColumns + `)
		VALUES (:id, :pod_id, :ordinal, :name, :family, :role, :mgmt_ip, :username,
			:password, :asn, :created_at, :updated_at)
	`

	now := time.Now().UTC()
	for i := range devices {
		devices[i].CreatedAt = now
		devices[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, &devices[i]); err != nil {
			return fmt.Errorf("failed to create device %s: %w", devices[i].Name, err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) UpdateDevices(ctx context.Context, devices []fabric.Device) error {
	if len(devices) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE devices SET
			name = :name, family = :family, role = :role, mgmt_ip = :mgmt_ip,
			username = :username, password = :password, asn = :asn, updated_at = :updated_at
		WHERE id = :id
	`

	now := time.Now().UTC()
	for i := range devices {
		devices[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, &devices[i]); err != nil {
			return fmt.Errorf("failed to update device %s: %w", devices[i].Name, err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) GetPodDevices(ctx context.Context, podID string) ([]fabric.Device, error) {
	query := r.db.Rebind(`SELECT ` + deviceColumns + ` FROM devices WHERE pod_id = ? ORDER BY ordinal`)

	var devices []fabric.Device
	if err := r.db.SelectContext(ctx, &devices, query, podID); err != nil {
		return nil, fmt.Errorf("failed to get pod devices: %w", err)
	}
	return devices, nil
}

const ifdColumns = `id, device_id, name, direction, peer_id, created_at, updated_at`

func (r *postgresRepository) CreatePhysicalInterfaces(ctx context.Context, ifds []fabric.PhysicalInterface) error {
	if len(ifds) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO physical_interfaces (` + ifdColumns + `)
		VALUES (:id, :device_id, :name, :direction, :peer_id, :created_at, :updated_at)
	`

	now := time.Now().UTC()
	for i := range ifds {
		ifds[i].CreatedAt = now
		ifds[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, &ifds[i]); err != nil {
			return fmt.Errorf("failed to create physical interface %s: %w", ifds[i].Name, err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) UpdatePhysicalInterfaces(ctx context.Context, ifds []fabric.PhysicalInterface) error {
	if len(ifds) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE physical_interfaces SET
			name = :name, direction = :direction, peer_id = :peer_id, updated_at = :updated_at
		WHERE id = :id
	`

	now := time.Now().UTC()
	for i := range ifds {
		ifds[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, &ifds[i]); err != nil {
			return fmt.Errorf("failed to update physical interface %s: %w", ifds[i].Name, err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) GetDevicePorts(ctx context.Context, deviceID string) ([]fabric.PhysicalInterface, error) {
	query := r.db.Rebind(`SELECT ` + ifdColumns + ` FROM physical_interfaces WHERE device_id = ? ORDER BY name`)

	var ifds []fabric.PhysicalInterface
	if err := r.db.SelectContext(ctx, &ifds, query, deviceID); err != nil {
		return nil, fmt.Errorf("failed to get device ports: %w", err)
	}
	return ifds, nil
}

func (r *postgresRepository) GetPeeredPorts(ctx context.Context, deviceID string) ([]fabric.PhysicalInterface, error) {
	query := r.db.Rebind(`SELECT ` + ifdColumns + ` FROM physical_interfaces
		WHERE device_id = ? AND peer_id IS NOT NULL ORDER BY name`)

	var ifds []fabric.PhysicalInterface
	if err := r.db.SelectContext(ctx, &ifds, query, deviceID); err != nil {
		return nil, fmt.Errorf("failed to get peered ports: %w", err)
	}
	return ifds, nil
}

func (r *postgresRepository) GetPhysicalInterface(ctx context.Context, id string) (*fabric.PhysicalInterface, error) {
	query := r.db.Rebind(`SELECT ` + ifdColumns + ` FROM physical_interfaces WHERE id = ?`)

	var ifd fabric.PhysicalInterface
	if err := r.db.GetContext(ctx, &ifd, query, id); err != nil {
		return nil, fmt.Errorf("failed to get physical interface: %w", err)
	}
	return &ifd, nil
}

const iflColumns = `id, device_id, name, layer_above_id, ip_address, created_at, updated_at`

func (r *postgresRepository) CreateLogicalInterfaces(ctx context.Context, ifls []fabric.LogicalInterface) error {
	if len(ifls) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO logical_interfaces (` + iflColumns + `)
		VALUES (:id, :device_id, :name, :layer_above_id, :ip_address, :created_at, :updated_at)
	`

	now := time.Now().UTC()
	for i := range ifls {
		ifls[i].CreatedAt = now
		ifls[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, &ifls[i]); err != nil {
			return fmt.Errorf("failed to create logical interface %s: %w", ifls[i].Name, err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) GetLogicalInterface(ctx context.Context, deviceID, name string) (*fabric.LogicalInterface, error) {
	query := r.db.Rebind(`SELECT ` + iflColumns + ` FROM logical_interfaces WHERE device_id = ? AND name = ?`)

	var ifl fabric.LogicalInterface
	if err := r.db.GetContext(ctx, &ifl, query, deviceID, name); err != nil {
		return nil, fmt.Errorf("failed to get logical interface %s: %w", name, err)
	}
	return &ifl, nil
}

func (r *postgresRepository) GetPortLogicalInterfaces(ctx context.Context, portID string) ([]fabric.LogicalInterface, error) {
	query := r.db.Rebind(`SELECT ` + iflColumns + ` FROM logical_interfaces WHERE layer_above_id = ? ORDER BY name`)

	var ifls []fabric.LogicalInterface
	if err := r.db.SelectContext(ctx, &ifls, query, portID); err != nil {
		return nil, fmt.Errorf("failed to get port logical interfaces: %w", err)
	}
	return ifls, nil
}
