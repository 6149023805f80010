package clos

import (
	"context"
	"errors"
	"fmt"
	"net/netip"

	"github.com/google/uuid"

	"github.com/servak/fabric-manager/internal/config"
	"github.com/servak/fabric-manager/internal/domain/fabric"
	"github.com/servak/fabric-manager/pkg/cidr"
	"github.com/servak/fabric-manager/pkg/logger"
)

// Allocator assigns loopback, IRB and interconnect addresses plus BGP AS
// numbers to a materialized pod. Substeps run in a fixed order and are
// deterministic for a given device and port order.
type Allocator struct {
	repo fabric.Repository
	cfg  config.AllocationConfig
	log  *logger.Logger
}

func NewAllocator(repo fabric.Repository, cfg config.AllocationConfig, log *logger.Logger) *Allocator {
	return &Allocator{
		repo: repo,
		cfg:  cfg,
		log:  log.WithComponent("allocator"),
	}
}

// Allocate runs loopback, IRB, interconnect and AS assignment, then
// persists the pod's derived blocks. Devices must be in topology order.
func (a *Allocator) Allocate(ctx context.Context, pod *fabric.Pod, devices []fabric.Device) error {
	spines, leaves := fabric.SplitByRole(devices)

	if err := a.allocateLoopbacks(ctx, pod, devices); err != nil {
		return err
	}
	if err := a.allocateIrb(ctx, pod, leaves); err != nil {
		return err
	}
	if err := a.allocateInterconnect(ctx, pod, spines, len(leaves)); err != nil {
		return err
	}
	if err := a.allocateASNumbers(ctx, pod, spines, leaves); err != nil {
		return err
	}

	if err := a.repo.UpdatePod(ctx, pod); err != nil {
		return fmt.Errorf("persisting allocated blocks: %w", err)
	}
	return nil
}

// allocateLoopbacks assigns one /32 per device from a block carved out of
// the pod's loopback prefix, in device order. The block reserves network
// and broadcast addresses for uniformity even though /32s do not need them.
func (a *Allocator) allocateLoopbacks(ctx context.Context, pod *fabric.Pod, devices []fabric.Device) error {
	if len(devices) == 0 {
		return nil
	}

	parent, err := netip.ParsePrefix(pod.LoopbackPrefix)
	if err != nil {
		return fmt.Errorf("parsing loopback prefix: %w", err)
	}

	block, err := cidr.Block(parent, len(devices)+2)
	if err != nil {
		return wrapExhausted(err, "loopback")
	}
	hosts := cidr.Hosts(block)

	ifls := make([]fabric.LogicalInterface, 0, len(devices))
	for i, device := range devices {
		ifls = append(ifls, fabric.LogicalInterface{
			ID:        uuid.NewString(),
			DeviceID:  device.ID,
			Name:      a.cfg.LoopbackUnit,
			IPAddress: hosts[i].String() + "/32",
		})
	}

	if err := a.repo.CreateLogicalInterfaces(ctx, ifls); err != nil {
		return fmt.Errorf("creating loopback interfaces: %w", err)
	}

	pod.AllocatedLoopbackBlock = block.String()
	a.log.Debug("allocated loopbacks", "block", block.String(), "devices", len(devices))
	return nil
}

// allocateIrb carves one subnet per leaf out of the pod's VLAN prefix and
// assigns each leaf's IRB unit the subnet's first host address.
func (a *Allocator) allocateIrb(ctx context.Context, pod *fabric.Pod, leaves []fabric.Device) error {
	if len(leaves) == 0 {
		return nil
	}

	parent, err := netip.ParsePrefix(pod.VlanPrefix)
	if err != nil {
		return fmt.Errorf("parsing vlan prefix: %w", err)
	}

	// +2 for network and broadcast
	hostsPerLeaf := a.cfg.IrbHostsPerLeaf + 2
	subnetLength := 32 - cidr.HostBits(hostsPerLeaf)

	block, err := cidr.Block(parent, len(leaves)*hostsPerLeaf)
	if err != nil {
		return wrapExhausted(err, "irb")
	}
	subnets, err := cidr.Subnets(block, subnetLength)
	if err != nil {
		return fmt.Errorf("carving irb subnets: %w", err)
	}

	ifls := make([]fabric.LogicalInterface, 0, len(leaves))
	for i, leaf := range leaves {
		ifls = append(ifls, fabric.LogicalInterface{
			ID:        uuid.NewString(),
			DeviceID:  leaf.ID,
			Name:      a.cfg.IrbUnit,
			IPAddress: fmt.Sprintf("%s/%d", cidr.First(subnets[i]), subnetLength),
		})
	}

	if err := a.repo.CreateLogicalInterfaces(ctx, ifls); err != nil {
		return fmt.Errorf("creating irb interfaces: %w", err)
	}

	pod.AllocatedIrbBlock = block.String()
	a.log.Debug("allocated irb subnets", "block", block.String(), "leaves", len(leaves))
	return nil
}

// allocateInterconnect assigns each peered spine port and its leaf peer a
// point-to-point subnet: spine end gets the first address, leaf end the
// second. Spines are walked in device order, ports in ascending name order.
func (a *Allocator) allocateInterconnect(ctx context.Context, pod *fabric.Pod, spines []fabric.Device, leafCount int) error {
	subnetCount := len(spines) * leafCount
	if subnetCount == 0 {
		return nil
	}

	parent, err := netip.ParsePrefix(pod.InterConnectPrefix)
	if err != nil {
		return fmt.Errorf("parsing interconnect prefix: %w", err)
	}

	addrsPerSubnet := 1 << (32 - a.cfg.InterconnectLength)
	block, err := cidr.Block(parent, subnetCount*addrsPerSubnet)
	if err != nil {
		return wrapExhausted(err, "interconnect")
	}
	subnets, err := cidr.Subnets(block, a.cfg.InterconnectLength)
	if err != nil {
		return fmt.Errorf("carving interconnect subnets: %w", err)
	}

	var ifls []fabric.LogicalInterface
	next := 0
	for _, spine := range spines {
		peered, err := a.repo.GetPeeredPorts(ctx, spine.ID)
		if err != nil {
			return fmt.Errorf("loading peered ports of %s: %w", spine.Name, err)
		}

		for _, spineIfd := range peered {
			if next >= len(subnets) {
				return fmt.Errorf("%w: interconnect block %s has no subnet left for %s %s",
					fabric.ErrAddressSpaceExhausted, block, spine.Name, spineIfd.Name)
			}
			hosts := cidr.Hosts(subnets[next])
			next++

			spineID := spineIfd.ID
			ifls = append(ifls, fabric.LogicalInterface{
				ID:           uuid.NewString(),
				DeviceID:     spine.ID,
				Name:         spineIfd.Name + ".0",
				LayerAboveID: &spineID,
				IPAddress:    fmt.Sprintf("%s/%d", hosts[0], a.cfg.InterconnectLength),
			})

			leafIfd, err := a.repo.GetPhysicalInterface(ctx, *spineIfd.PeerID)
			if err != nil {
				return fmt.Errorf("loading peer of %s %s: %w", spine.Name, spineIfd.Name, err)
			}
			leafID := leafIfd.ID
			ifls = append(ifls, fabric.LogicalInterface{
				ID:           uuid.NewString(),
				DeviceID:     leafIfd.DeviceID,
				Name:         leafIfd.Name + ".0",
				LayerAboveID: &leafID,
				IPAddress:    fmt.Sprintf("%s/%d", hosts[1], a.cfg.InterconnectLength),
			})
		}
	}

	if err := a.repo.CreateLogicalInterfaces(ctx, ifls); err != nil {
		return fmt.Errorf("creating interconnect interfaces: %w", err)
	}

	a.log.Debug("allocated interconnects", "block", block.String(), "subnets", next)
	return nil
}

// allocateASNumbers hands out consecutive AS numbers per role in device
// order: spines from pod.SpineAS, leaves from pod.LeafAS.
func (a *Allocator) allocateASNumbers(ctx context.Context, pod *fabric.Pod, spines, leaves []fabric.Device) error {
	devices := make([]fabric.Device, 0, len(spines)+len(leaves))
	for i := range spines {
		spines[i].ASN = pod.SpineAS + uint32(i)
		devices = append(devices, spines[i])
	}
	for i := range leaves {
		leaves[i].ASN = pod.LeafAS + uint32(i)
		devices = append(devices, leaves[i])
	}

	if err := a.repo.UpdateDevices(ctx, devices); err != nil {
		return fmt.Errorf("persisting AS numbers: %w", err)
	}
	return nil
}

func wrapExhausted(err error, pool string) error {
	if errors.Is(err, cidr.ErrPrefixTooSmall) {
		return fmt.Errorf("%w: %s pool: %v", fabric.ErrAddressSpaceExhausted, pool, err)
	}
	return fmt.Errorf("%s allocation: %w", pool, err)
}
