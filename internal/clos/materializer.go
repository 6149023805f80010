package clos

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/servak/fabric-manager/internal/config"
	"github.com/servak/fabric-manager/internal/domain/fabric"
	"github.com/servak/fabric-manager/pkg/logger"
)

// Materializer turns a topology document into persisted devices, ports and
// peer links for one pod.
type Materializer struct {
	repo     fabric.Repository
	families map[string]config.PortCatalog
	log      *logger.Logger
}

func NewMaterializer(repo fabric.Repository, families map[string]config.PortCatalog, log *logger.Logger) *Materializer {
	return &Materializer{
		repo:     repo,
		families: families,
		log:      log.WithComponent("materializer"),
	}
}

// Validate checks a topology document against the pod and the port catalog
// before anything is written to the store. Every link endpoint must name a
// listed device and a cataloged port; device names must be unique.
func (m *Materializer) Validate(pod *fabric.Pod, topo *Topology) error {
	spineCatalog, ok := m.families[pod.SpineDeviceType]
	if !ok {
		return fmt.Errorf("%w: %s", fabric.ErrUnknownDeviceFamily, pod.SpineDeviceType)
	}
	leafCatalog, ok := m.families[pod.LeafDeviceType]
	if !ok {
		return fmt.Errorf("%w: %s", fabric.ErrUnknownDeviceFamily, pod.LeafDeviceType)
	}

	seen := make(map[string]bool)
	spines := make(map[string]bool)
	leafs := make(map[string]bool)
	for _, s := range topo.Spines {
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate device name %s", fabric.ErrTopologyInvalid, s.Name)
		}
		seen[s.Name] = true
		spines[s.Name] = true
	}
	for _, l := range topo.Leafs {
		if seen[l.Name] {
			return fmt.Errorf("%w: duplicate device name %s", fabric.ErrTopologyInvalid, l.Name)
		}
		seen[l.Name] = true
		leafs[l.Name] = true
	}

	spinePorts := portSet(spineCatalog.Ports)
	leafPorts := portSet(append(append([]string{}, leafCatalog.UplinkPorts...), leafCatalog.DownlinkPorts...))
	for _, link := range topo.Links {
		if !spines[link.SpineName] {
			return fmt.Errorf("%w: link references unknown spine %s", fabric.ErrTopologyInvalid, link.SpineName)
		}
		if !leafs[link.LeafName] {
			return fmt.Errorf("%w: link references unknown leaf %s", fabric.ErrTopologyInvalid, link.LeafName)
		}
		if !spinePorts[link.SpinePort] {
			return fmt.Errorf("%w: spine %s has no port %s in family %s",
				fabric.ErrTopologyInvalid, link.SpineName, link.SpinePort, pod.SpineDeviceType)
		}
		if !leafPorts[link.LeafPort] {
			return fmt.Errorf("%w: leaf %s has no port %s in family %s",
				fabric.ErrTopologyInvalid, link.LeafName, link.LeafPort, pod.LeafDeviceType)
		}
	}

	return nil
}

// Materialize creates the pod's devices, their ports and the peer links.
// Devices keep the order of the topology document, spines first; allocation
// iterates them in that order. Validate must have passed.
func (m *Materializer) Materialize(ctx context.Context, pod *fabric.Pod, topo *Topology) ([]fabric.Device, error) {
	spineCatalog := m.families[pod.SpineDeviceType]
	leafCatalog := m.families[pod.LeafDeviceType]

	// (deviceName, portName) -> interface, for link peering below
	portIndex := make(map[string]*fabric.PhysicalInterface)

	ordinal := 0
	spines, spinePorts := m.buildDevices(pod, topo.Spines, fabric.RoleSpine, pod.SpineDeviceType, &ordinal, portIndex,
		func(d *fabric.Device) []fabric.PhysicalInterface {
			return buildPorts(d, spineCatalog.Ports, fabric.DirectionDownlink)
		})
	leafs, leafPorts := m.buildDevices(pod, topo.Leafs, fabric.RoleLeaf, pod.LeafDeviceType, &ordinal, portIndex,
		func(d *fabric.Device) []fabric.PhysicalInterface {
			ports := buildPorts(d, leafCatalog.UplinkPorts, fabric.DirectionUplink)
			return append(ports, buildPorts(d, leafCatalog.DownlinkPorts, fabric.DirectionDownlink)...)
		})

	if err := m.repo.CreateDevices(ctx, spines); err != nil {
		return nil, fmt.Errorf("creating spine devices: %w", err)
	}
	if err := m.repo.CreatePhysicalInterfaces(ctx, spinePorts); err != nil {
		return nil, fmt.Errorf("creating spine ports: %w", err)
	}
	if err := m.repo.CreateDevices(ctx, leafs); err != nil {
		return nil, fmt.Errorf("creating leaf devices: %w", err)
	}
	if err := m.repo.CreatePhysicalInterfaces(ctx, leafPorts); err != nil {
		return nil, fmt.Errorf("creating leaf ports: %w", err)
	}

	m.log.Debug("materialized devices", "spines", len(spines), "leafs", len(leafs))

	if err := m.peerLinks(ctx, topo.Links, portIndex); err != nil {
		return nil, err
	}

	return append(spines, leafs...), nil
}

// buildDevices constructs devices and their ports in topology order,
// registering each port in portIndex.
func (m *Materializer) buildDevices(pod *fabric.Pod, entries []TopologyDevice, role fabric.DeviceRole,
	family string, ordinal *int, portIndex map[string]*fabric.PhysicalInterface,
	ports func(*fabric.Device) []fabric.PhysicalInterface) ([]fabric.Device, []fabric.PhysicalInterface) {

	var devices []fabric.Device
	var ifds []fabric.PhysicalInterface
	for _, entry := range entries {
		device := fabric.Device{
			ID:       uuid.NewString(),
			PodID:    pod.ID,
			Ordinal:  *ordinal,
			Name:     entry.Name,
			Family:   family,
			Role:     role,
			MgmtIP:   entry.MgmtIP,
			Username: entry.User,
			Password: entry.Password,
		}
		*ordinal++
		devices = append(devices, device)

		for _, ifd := range ports(&device) {
			ifds = append(ifds, ifd)
			registered := ifd
			portIndex[portKey(device.Name, ifd.Name)] = &registered
		}
	}
	return devices, ifds
}

func buildPorts(device *fabric.Device, names []string, direction fabric.PortDirection) []fabric.PhysicalInterface {
	ports := make([]fabric.PhysicalInterface, 0, len(names))
	for _, name := range names {
		ports = append(ports, fabric.PhysicalInterface{
			ID:        uuid.NewString(),
			DeviceID:  device.ID,
			Name:      name,
			Direction: direction,
		})
	}
	return ports
}

// peerLinks sets the symmetric peer relation for every cabling entry
func (m *Materializer) peerLinks(ctx context.Context, links []TopologyLink, portIndex map[string]*fabric.PhysicalInterface) error {
	modified := make([]fabric.PhysicalInterface, 0, 2*len(links))
	for _, link := range links {
		spineIfd, ok := portIndex[portKey(link.SpineName, link.SpinePort)]
		if !ok {
			return fmt.Errorf("%w: no interface %s on %s", fabric.ErrTopologyInvalid, link.SpinePort, link.SpineName)
		}
		leafIfd, ok := portIndex[portKey(link.LeafName, link.LeafPort)]
		if !ok {
			return fmt.Errorf("%w: no interface %s on %s", fabric.ErrTopologyInvalid, link.LeafPort, link.LeafName)
		}

		// The relation is one-way per row; set both sides
		spineIfd.PeerID = &leafIfd.ID
		leafIfd.PeerID = &spineIfd.ID
		modified = append(modified, *spineIfd, *leafIfd)
	}

	if err := m.repo.UpdatePhysicalInterfaces(ctx, modified); err != nil {
		return fmt.Errorf("peering links: %w", err)
	}
	return nil
}

func portKey(deviceName, portName string) string {
	return deviceName + "..." + portName
}

func portSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
