package clos

import (
	"context"
	"fmt"

	"github.com/servak/fabric-manager/internal/domain/fabric"
)

// The renderer and output sinks are external collaborators: the core hands
// them a fully resolved view of the allocated pod and never exposes the
// repository to them.

// PodView is the renderer's input for one pod
type PodView struct {
	Pod     *fabric.Pod
	Devices []*DeviceView
	Links   []CablingLink
}

// DeviceView is the renderer's input for one device
type DeviceView struct {
	Pod      *fabric.Pod
	Device   fabric.Device
	Loopback fabric.LogicalInterface
	// Irb is set on leaves only
	Irb *fabric.LogicalInterface
	// Peered lists the device's peered ports in ascending name order
	Peered []PeeredPortView
}

// PeeredPortView is one peered port with its unit and the far end
type PeeredPortView struct {
	Port       fabric.PhysicalInterface
	Unit       fabric.LogicalInterface
	PeerDevice fabric.Device
	PeerPort   fabric.PhysicalInterface
	PeerUnit   fabric.LogicalInterface
}

// CablingLink is one peered spine/leaf port pair
type CablingLink struct {
	SpineDevice string
	SpinePort   string
	LeafDevice  string
	LeafPort    string
}

// Renderer produces the per-device configuration text and the pod cabling
// diagram. Implementations are pure over their input.
type Renderer interface {
	RenderDevice(view *DeviceView) ([]byte, error)
	RenderCabling(view *PodView) ([]byte, error)
}

// OutputSink receives rendered artifacts
type OutputSink interface {
	WriteDeviceConfig(podName, deviceName string, config []byte) error
	WriteCabling(podName string, dot []byte) error
}

// PodView assembles the full render view of an allocated pod
func (b *Builder) PodView(ctx context.Context, pod *fabric.Pod) (*PodView, error) {
	devices, err := b.repo.GetPodDevices(ctx, pod.ID)
	if err != nil {
		return nil, fmt.Errorf("loading devices: %w", err)
	}

	deviceByID := make(map[string]fabric.Device, len(devices))
	for _, d := range devices {
		deviceByID[d.ID] = d
	}

	view := &PodView{Pod: pod}
	for _, device := range devices {
		dv, err := b.deviceView(ctx, pod, device, deviceByID)
		if err != nil {
			return nil, err
		}
		view.Devices = append(view.Devices, dv)

		if device.Role == fabric.RoleSpine {
			for _, p := range dv.Peered {
				view.Links = append(view.Links, CablingLink{
					SpineDevice: device.Name,
					SpinePort:   p.Port.Name,
					LeafDevice:  p.PeerDevice.Name,
					LeafPort:    p.PeerPort.Name,
				})
			}
		}
	}

	return view, nil
}

func (b *Builder) deviceView(ctx context.Context, pod *fabric.Pod, device fabric.Device, deviceByID map[string]fabric.Device) (*DeviceView, error) {
	loopback, err := b.repo.GetLogicalInterface(ctx, device.ID, b.cfg.Allocation.LoopbackUnit)
	if err != nil {
		return nil, fmt.Errorf("device %s: %w", device.Name, err)
	}

	dv := &DeviceView{
		Pod:      pod,
		Device:   device,
		Loopback: *loopback,
	}

	if device.Role == fabric.RoleLeaf {
		irb, err := b.repo.GetLogicalInterface(ctx, device.ID, b.cfg.Allocation.IrbUnit)
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", device.Name, err)
		}
		dv.Irb = irb
	}

	peered, err := b.repo.GetPeeredPorts(ctx, device.ID)
	if err != nil {
		return nil, fmt.Errorf("device %s: %w", device.Name, err)
	}

	for _, port := range peered {
		unit, err := b.portUnit(ctx, device.Name, port.ID)
		if err != nil {
			return nil, err
		}
		peerPort, err := b.repo.GetPhysicalInterface(ctx, *port.PeerID)
		if err != nil {
			return nil, fmt.Errorf("device %s port %s: %w", device.Name, port.Name, err)
		}
		peerUnit, err := b.portUnit(ctx, device.Name, peerPort.ID)
		if err != nil {
			return nil, err
		}
		peerDevice, ok := deviceByID[peerPort.DeviceID]
		if !ok {
			return nil, fmt.Errorf("port %s peers outside pod %s", port.Name, pod.Name)
		}

		dv.Peered = append(dv.Peered, PeeredPortView{
			Port:       port,
			Unit:       *unit,
			PeerDevice: peerDevice,
			PeerPort:   *peerPort,
			PeerUnit:   *peerUnit,
		})
	}

	return dv, nil
}

func (b *Builder) portUnit(ctx context.Context, deviceName, portID string) (*fabric.LogicalInterface, error) {
	units, err := b.repo.GetPortLogicalInterfaces(ctx, portID)
	if err != nil {
		return nil, fmt.Errorf("device %s: %w", deviceName, err)
	}
	if len(units) != 1 {
		return nil, fmt.Errorf("device %s: port %s carries %d units, want 1", deviceName, portID, len(units))
	}
	return &units[0], nil
}
