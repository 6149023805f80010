package clos

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/servak/fabric-manager/internal/domain/fabric"
	"github.com/servak/fabric-manager/internal/repository/inmemory"
	"github.com/servak/fabric-manager/internal/testutil"
	"github.com/servak/fabric-manager/pkg/logger"
)

// minimalTopology is the smallest real fabric: 2 spines, 2 leaves, full mesh
func minimalTopology() *Topology {
	return &Topology{
		Spines: []TopologyDevice{
			{Name: "spine-01", User: "root", Password: "secret", MgmtIP: "172.32.30.1/24"},
			{Name: "spine-02", User: "root", Password: "secret", MgmtIP: "172.32.30.2/24"},
		},
		Leafs: []TopologyDevice{
			{Name: "leaf-01", User: "root", Password: "secret", MgmtIP: "172.32.30.11/24"},
			{Name: "leaf-02", User: "root", Password: "secret", MgmtIP: "172.32.30.12/24"},
		},
		Links: []TopologyLink{
			{SpineName: "spine-01", SpinePort: "et-0/0/0", LeafName: "leaf-01", LeafPort: "et-0/0/48"},
			{SpineName: "spine-01", SpinePort: "et-0/0/1", LeafName: "leaf-02", LeafPort: "et-0/0/48"},
			{SpineName: "spine-02", SpinePort: "et-0/0/0", LeafName: "leaf-01", LeafPort: "et-0/0/49"},
			{SpineName: "spine-02", SpinePort: "et-0/0/1", LeafName: "leaf-02", LeafPort: "et-0/0/49"},
		},
	}
}

// writeTopology writes a topology document into dir and returns its file name
func writeTopology(t *testing.T, dir string, topo *Topology) string {
	t.Helper()
	data, err := json.Marshal(topo)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "topology.json"), data, 0o644))
	return "topology.json"
}

func testDefinition(topology string) PodDefinition {
	return PodDefinition{
		SpineDeviceType:    "qfx5100-24q",
		LeafDeviceType:     "qfx5100-48s",
		InterConnectPrefix: "192.168.0.0/24",
		VlanPrefix:         "172.16.0.0/16",
		LoopbackPrefix:     "10.0.0.0/24",
		SpineAS:            65000,
		LeafAS:             65100,
		SpineCount:         2,
		LeafCount:          2,
		Topology:           topology,
	}
}

// materializeMinimal persists the minimal fabric and returns its parts
func materializeMinimal(t *testing.T, repo fabric.Repository) (*fabric.Pod, []fabric.Device) {
	t.Helper()

	pod := testutil.CreateTestPod("test-pod")
	require.NoError(t, repo.CreatePod(t.Context(), pod))
	m := NewMaterializer(repo, testutil.TestConfig().DeviceFamilies, logger.New("error"))
	topo := minimalTopology()
	require.NoError(t, m.Validate(pod, topo))
	devices, err := m.Materialize(t.Context(), pod, topo)
	require.NoError(t, err)
	return pod, devices
}

func newTestRepo() *inmemory.FabricRepository {
	return inmemory.NewFabricRepository()
}
