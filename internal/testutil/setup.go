package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/servak/fabric-manager/internal/config"
	"github.com/servak/fabric-manager/internal/domain/fabric"
	"github.com/servak/fabric-manager/internal/repository"
	"github.com/servak/fabric-manager/pkg/logger"
)

// TestSetup contains all necessary components for testing
type TestSetup struct {
	Repo   fabric.Repository
	Logger *logger.Logger
}

// NewTestSetup creates a new test setup with in-memory SQLite
func NewTestSetup(t *testing.T) *TestSetup {
	repo, err := repository.NewTestRepository()
	require.NoError(t, err)

	return &TestSetup{
		Repo:   repo,
		Logger: logger.New("debug"),
	}
}

// Cleanup cleans up test resources
func (ts *TestSetup) Cleanup() {
	if ts.Repo != nil {
		ts.Repo.Close()
	}
}

// TestConfig returns an app config with the test device families
func TestConfig() *config.Config {
	cfg := config.Default()
	cfg.DeviceFamilies = map[string]config.PortCatalog{
		"qfx5100-24q": {
			Ports: []string{"et-0/0/0", "et-0/0/1", "et-0/0/2", "et-0/0/3"},
		},
		"qfx5100-48s": {
			UplinkPorts:   []string{"et-0/0/48", "et-0/0/49", "et-0/0/50", "et-0/0/51"},
			DownlinkPorts: []string{"xe-0/0/0", "xe-0/0/1"},
		},
	}
	return cfg
}

// CreateTestPod creates a pod with valid defaults
func CreateTestPod(name string) *fabric.Pod {
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
		SpineCount:         2,
		LeafCount:          2,
		Topology:           "topology.json",
	}
}

// CreateTestDevice creates a device of the given pod
func CreateTestDevice(podID, name string, ordinal int, role fabric.DeviceRole) fabric.Device {
	family := "qfx5100-24q"
	if role == fabric.RoleLeaf {
		family = "qfx5100-48s"
	}
	return fabric.Device{
		ID:       uuid.NewString(),
		PodID:    podID,
		Ordinal:  ordinal,
		Name:     name,
		Family:   family,
		Role:     role,
		MgmtIP:   "172.32.30.1/24",
		Username: "root",
		Password: "test",
	}
}
