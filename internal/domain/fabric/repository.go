package fabric

import (
	"context"
)

// Repository is the object store for the fabric model. Each call is atomic;
// no transactional guarantees span multiple calls, so callers batch related
// mutations. DeletePod cascades to the pod's devices and interfaces.
type Repository interface {
	// Pod operations
	GetPodByName(ctx context.Context, name string) (*Pod, error)
	ListPods(ctx context.Context) ([]Pod, error)
	CreatePod(ctx context.Context, pod *Pod) error
	UpdatePod(ctx context.Context, pod *Pod) error
	DeletePod(ctx context.Context, podID string) error

	// Device operations. GetPodDevices returns devices in ordinal order,
	// i.e. the order they appeared in the topology document.
	CreateDevices(ctx context.Context, devices []Device) error
	UpdateDevices(ctx context.Context, devices []Device) error
	GetPodDevices(ctx context.Context, podID string) ([]Device, error)

	// Physical interface operations. GetPeeredPorts returns the device's
	// ports that have a peer, in ascending name order — the iteration
	// order that interconnect allocation depends on.
	CreatePhysicalInterfaces(ctx context.Context, ifds []PhysicalInterface) error
	UpdatePhysicalInterfaces(ctx context.Context, ifds []PhysicalInterface) error
	GetDevicePorts(ctx context.Context, deviceID string) ([]PhysicalInterface, error)
	GetPeeredPorts(ctx context.Context, deviceID string) ([]PhysicalInterface, error)
	GetPhysicalInterface(ctx context.Context, id string) (*PhysicalInterface, error)

	// Logical interface operations
	CreateLogicalInterfaces(ctx context.Context, ifls []LogicalInterface) error
	GetLogicalInterface(ctx context.Context, deviceID, name string) (*LogicalInterface, error)
	GetPortLogicalInterfaces(ctx context.Context, portID string) ([]LogicalInterface, error)

	// Management operations
	Migrate() error
	Clear() error
	Close() error
	Health(ctx context.Context) error
}
