package sqlite

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servak/fabric-manager/internal/domain/fabric"
)

func newRepo(t *testing.T) *sqliteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.Migrate())
	return repo
}

func testPod(name string) *fabric.Pod {
	return &fabric.Pod{
		ID:                 uuid.NewString(),
		Name:               name,
		SpineDeviceType:    "qfx5100-24q",
		LeafDeviceType:     "qfx5100-48s",
		InterConnectPrefix: "192.168.0.0/24",
		VlanPrefix:         "172.16.0.0/16",
		LoopbackPrefix:     "10.0.0.0/24",
		SpineAS:            65000,
		LeafAS:             65100,
		Topology:           "topology.json",
	}
}

func TestSQLiteRepository(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	t.Run("Health Check", func(t *testing.T) {
		assert.NoError(t, repo.Health(ctx))
	})

	t.Run("Create and Get Pod", func(t *testing.T) {
		pod := testPod("dc1-pod1")
		require.NoError(t, repo.CreatePod(ctx, pod))

		retrieved, err := repo.GetPodByName(ctx, "dc1-pod1")
		require.NoError(t, err)
		assert.Equal(t, pod.ID, retrieved.ID)
		assert.Equal(t, pod.SpineDeviceType, retrieved.SpineDeviceType)
		assert.Equal(t, pod.LoopbackPrefix, retrieved.LoopbackPrefix)
		assert.Equal(t, pod.SpineAS, retrieved.SpineAS)
	})

	t.Run("Pod Not Found", func(t *testing.T) {
		_, err := repo.GetPodByName(ctx, "missing")
		assert.ErrorIs(t, err, fabric.ErrPodNotFound)
	})

	t.Run("Ambiguous Pod", func(t *testing.T) {
		require.NoError(t, repo.CreatePod(ctx, testPod("twin")))
		require.NoError(t, repo.CreatePod(ctx, testPod("twin")))

		_, err := repo.GetPodByName(ctx, "twin")
		assert.ErrorIs(t, err, fabric.ErrAmbiguousPod)
	})

	t.Run("Update Pod", func(t *testing.T) {
		pod := testPod("dc1-pod2")
		require.NoError(t, repo.CreatePod(ctx, pod))

		pod.AllocatedLoopbackBlock = "10.0.0.0/29"
		pod.AllocatedIrbBlock = "172.16.0.0/23"
		require.NoError(t, repo.UpdatePod(ctx, pod))

		retrieved, err := repo.GetPodByName(ctx, "dc1-pod2")
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.0/29", retrieved.AllocatedLoopbackBlock)
		assert.Equal(t, "172.16.0.0/23", retrieved.AllocatedIrbBlock)
	})

	t.Run("List Pods", func(t *testing.T) {
		pods, err := repo.ListPods(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(pods), 2)
	})
}

func TestSQLiteDevicesAndInterfaces(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	pod := testPod("dc1-pod1")
	require.NoError(t, repo.CreatePod(ctx, pod))

	devices := []fabric.Device{
		{ID: uuid.NewString(), PodID: pod.ID, Ordinal: 0, Name: "spine-01", Family: "qfx5100-24q", Role: fabric.RoleSpine},
		{ID: uuid.NewString(), PodID: pod.ID, Ordinal: 1, Name: "leaf-01", Family: "qfx5100-48s", Role: fabric.RoleLeaf},
	}
	require.NoError(t, repo.CreateDevices(ctx, devices))

	t.Run("Devices Keep Ordinal Order", func(t *testing.T) {
		stored, err := repo.GetPodDevices(ctx, pod.ID)
		require.NoError(t, err)
		require.Len(t, stored, 2)
		assert.Equal(t, "spine-01", stored[0].Name)
		assert.Equal(t, "leaf-01", stored[1].Name)
	})

	t.Run("Update Devices", func(t *testing.T) {
		devices[0].ASN = 65000
		devices[1].ASN = 65100
		require.NoError(t, repo.UpdateDevices(ctx, devices))

		stored, err := repo.GetPodDevices(ctx, pod.ID)
		require.NoError(t, err)
		assert.Equal(t, uint32(65000), stored[0].ASN)
		assert.Equal(t, uint32(65100), stored[1].ASN)
	})

	spinePort := fabric.PhysicalInterface{
		ID: uuid.NewString(), DeviceID: devices[0].ID, Name: "et-0/0/1", Direction: fabric.DirectionDownlink,
	}
	spinePort2 := fabric.PhysicalInterface{
		ID: uuid.NewString(), DeviceID: devices[0].ID, Name: "et-0/0/0", Direction: fabric.DirectionDownlink,
	}
	leafPort := fabric.PhysicalInterface{
		ID: uuid.NewString(), DeviceID: devices[1].ID, Name: "et-0/0/48", Direction: fabric.DirectionUplink,
	}
	require.NoError(t, repo.CreatePhysicalInterfaces(ctx, []fabric.PhysicalInterface{spinePort, spinePort2, leafPort}))

	t.Run("Peered Ports Sorted By Name", func(t *testing.T) {
		spinePort.PeerID = &leafPort.ID
		spinePort2.PeerID = &leafPort.ID
		require.NoError(t, repo.UpdatePhysicalInterfaces(ctx, []fabric.PhysicalInterface{spinePort, spinePort2}))

		peered, err := repo.GetPeeredPorts(ctx, devices[0].ID)
		require.NoError(t, err)
		require.Len(t, peered, 2)
		assert.Equal(t, "et-0/0/0", peered[0].Name)
		assert.Equal(t, "et-0/0/1", peered[1].Name)

		unpeered, err := repo.GetPeeredPorts(ctx, devices[1].ID)
		require.NoError(t, err)
		assert.Empty(t, unpeered)
	})

	t.Run("Logical Interfaces", func(t *testing.T) {
		lo := fabric.LogicalInterface{
			ID: uuid.NewString(), DeviceID: devices[0].ID, Name: "lo0.0", IPAddress: "10.0.0.1/32",
		}
		unit := fabric.LogicalInterface{
			ID: uuid.NewString(), DeviceID: devices[0].ID, Name: "et-0/0/1.0",
			LayerAboveID: &spinePort.ID, IPAddress: "192.168.0.0/31",
		}
		require.NoError(t, repo.CreateLogicalInterfaces(ctx, []fabric.LogicalInterface{lo, unit}))

		retrieved, err := repo.GetLogicalInterface(ctx, devices[0].ID, "lo0.0")
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.1/32", retrieved.IPAddress)
		assert.Nil(t, retrieved.LayerAboveID)

		units, err := repo.GetPortLogicalInterfaces(ctx, spinePort.ID)
		require.NoError(t, err)
		require.Len(t, units, 1)
		assert.Equal(t, "et-0/0/1.0", units[0].Name)
	})

	t.Run("Delete Pod Cascades", func(t *testing.T) {
		require.NoError(t, repo.DeletePod(ctx, pod.ID))

		stored, err := repo.GetPodDevices(ctx, pod.ID)
		require.NoError(t, err)
		assert.Empty(t, stored)

		ports, err := repo.GetDevicePorts(ctx, devices[0].ID)
		require.NoError(t, err)
		assert.Empty(t, ports)

		_, err = repo.GetLogicalInterface(ctx, devices[0].ID, "lo0.0")
		assert.Error(t, err)
	})
}
