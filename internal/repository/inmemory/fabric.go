package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/servak/fabric-manager/internal/domain/fabric"
)

// FabricRepository provides an in-memory implementation for testing
type FabricRepository struct {
	mu   sync.RWMutex
	pods map[string]fabric.Pod
	devs map[string]fabric.Device
	ifds map[string]fabric.PhysicalInterface
	ifls map[string]fabric.LogicalInterface
}

func NewFabricRepository() *FabricRepository {
	return &FabricRepository{
		pods: make(map[string]fabric.Pod),
		devs: make(map[string]fabric.Device),
		ifds: make(map[string]fabric.PhysicalInterface),
		ifls: make(map[string]fabric.LogicalInterface),
	}
}

func (r *FabricRepository) GetPodByName(ctx context.Context, name string) (*fabric.Pod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found []fabric.Pod
	for _, p := range r.pods {
		if p.Name == name {
			found = append(found, p)
		}
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", fabric.ErrPodNotFound, name)
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", fabric.ErrAmbiguousPod, name)
	}
}

func (r *FabricRepository) ListPods(ctx context.Context) ([]fabric.Pod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pods := make([]fabric.Pod, 0, len(r.pods))
	for _, p := range r.pods {
		pods = append(pods, p)
	}
	sort.Slice(pods, func(i, j int) bool { return pods[i].Name < pods[j].Name })
	return pods, nil
}

func (r *FabricRepository) CreatePod(ctx context.Context, pod *fabric.Pod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pods[pod.ID] = *pod
	return nil
}

func (r *FabricRepository) UpdatePod(ctx context.Context, pod *fabric.Pod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pods[pod.ID]; !ok {
		return fmt.Errorf("pod not found: %s", pod.ID)
	}
	r.pods[pod.ID] = *pod
	return nil
}

func (r *FabricRepository) DeletePod(ctx context.Context, podID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pods, podID)
	for id, d := range r.devs {
		if d.PodID != podID {
			continue
		}
		delete(r.devs, id)
		for ifdID, ifd := range r.ifds {
			if ifd.DeviceID == id {
				delete(r.ifds, ifdID)
			}
		}
		for iflID, ifl := range r.ifls {
			if ifl.DeviceID == id {
				delete(r.ifls, iflID)
			}
		}
	}
	return nil
}

func (r *FabricRepository) CreateDevices(ctx context.Context, devices []fabric.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range devices {
		r.devs[d.ID] = d
	}
	return nil
}

func (r *FabricRepository) UpdateDevices(ctx context.Context, devices []fabric.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range devices {
		if _, ok := r.devs[d.ID]; !ok {
			return fmt.Errorf("device not found: %s", d.Name)
		}
		r.devs[d.ID] = d
	}
	return nil
}

func (r *FabricRepository) GetPodDevices(ctx context.Context, podID string) ([]fabric.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var devices []fabric.Device
	for _, d := range r.devs {
		if d.PodID == podID {
			devices = append(devices, d)
		}
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Ordinal < devices[j].Ordinal })
	return devices, nil
}

func (r *FabricRepository) CreatePhysicalInterfaces(ctx context.Context, ifds []fabric.PhysicalInterface) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ifd := range ifds {
		r.ifds[ifd.ID] = ifd
	}
	return nil
}

func (r *FabricRepository) UpdatePhysicalInterfaces(ctx context.Context, ifds []fabric.PhysicalInterface) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ifd := range ifds {
		if _, ok := r.ifds[ifd.ID]; !ok {
			return fmt.Errorf("physical interface not found: %s", ifd.Name)
		}
		r.ifds[ifd.ID] = ifd
	}
	return nil
}

func (r *FabricRepository) GetDevicePorts(ctx context.Context, deviceID string) ([]fabric.PhysicalInterface, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ports []fabric.PhysicalInterface
	for _, ifd := range r.ifds {
		if ifd.DeviceID == deviceID {
			ports = append(ports, ifd)
		}
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })
	return ports, nil
}

func (r *FabricRepository) GetPeeredPorts(ctx context.Context, deviceID string) ([]fabric.PhysicalInterface, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ports []fabric.PhysicalInterface
	for _, ifd := range r.ifds {
		if ifd.DeviceID == deviceID && ifd.PeerID != nil {
			ports = append(ports, ifd)
		}
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })
	return ports, nil
}

func (r *FabricRepository) GetPhysicalInterface(ctx context.Context, id string) (*fabric.PhysicalInterface, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ifd, ok := r.ifds[id]
	if !ok {
		return nil, fmt.Errorf("physical interface not found: %s", id)
	}
	return &ifd, nil
}

func (r *FabricRepository) CreateLogicalInterfaces(ctx context.Context, ifls []fabric.LogicalInterface) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ifl := range ifls {
		r.ifls[ifl.ID] = ifl
	}
	return nil
}

func (r *FabricRepository) GetLogicalInterface(ctx context.Context, deviceID, name string) (*fabric.LogicalInterface, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ifl := range r.ifls {
		if ifl.DeviceID == deviceID && ifl.Name == name {
			return &ifl, nil
		}
	}
	return nil, fmt.Errorf("logical interface not found: %s", name)
}

func (r *FabricRepository) GetPortLogicalInterfaces(ctx context.Context, portID string) ([]fabric.LogicalInterface, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ifls []fabric.LogicalInterface
	for _, ifl := range r.ifls {
		if ifl.LayerAboveID != nil && *ifl.LayerAboveID == portID {
			ifls = append(ifls, ifl)
		}
	}
	sort.Slice(ifls, func(i, j int) bool { return ifls[i].Name < ifls[j].Name })
	return ifls, nil
}

func (r *FabricRepository) Migrate() error { return nil }

func (r *FabricRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pods = make(map[string]fabric.Pod)
	r.devs = make(map[string]fabric.Device)
	r.ifds = make(map[string]fabric.PhysicalInterface)
	r.ifls = make(map[string]fabric.LogicalInterface)
	return nil
}

func (r *FabricRepository) Close() error { return nil }

func (r *FabricRepository) Health(ctx context.Context) error { return nil }
