package clos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/servak/fabric-manager/internal/config"
	"github.com/servak/fabric-manager/internal/domain/fabric"
	"github.com/servak/fabric-manager/pkg/logger"
)

// Builder orchestrates pod generation: it decides between create, recreate
// and in-place update, and on the create path runs topology
// materialization, resource allocation and rendering.
type Builder struct {
	repo      fabric.Repository
	cfg       *config.Config
	configDir string
	renderer  Renderer
	sink      OutputSink
	log       *logger.Logger
}

// NewBuilder creates a fabric builder. configDir anchors relative topology
// document paths. renderer and sink may be nil to skip artifact output.
func NewBuilder(repo fabric.Repository, cfg *config.Config, configDir string, renderer Renderer, sink OutputSink, log *logger.Logger) *Builder {
	return &Builder{
		repo:      repo,
		cfg:       cfg,
		configDir: configDir,
		renderer:  renderer,
		sink:      sink,
		log:       log.WithComponent("builder"),
	}
}

// ProcessFabric creates, recreates or updates the named pod.
//
// A new name creates the pod and runs the full generation. An existing pod
// with recreate set is deleted (cascading) and rebuilt. An existing pod
// whose structural attributes changed without the recreate flag fails with
// ErrRecreateRequired rather than silently re-keying every allocation.
// Otherwise only the pod record is updated; devices and interfaces are
// untouched.
func (b *Builder) ProcessFabric(ctx context.Context, name string, def PodDefinition, recreate bool) (*fabric.Pod, error) {
	log := b.log.WithPod(name)

	existing, err := b.repo.GetPodByName(ctx, name)
	if err != nil {
		if !errors.Is(err, fabric.ErrPodNotFound) {
			return nil, err
		}
		log.Info("creating pod")
		return b.createFabric(ctx, name, def)
	}

	if recreate {
		if err := b.repo.DeletePod(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("deleting pod %s: %w", name, err)
		}
		log.Info("recreating pod")
		return b.createFabric(ctx, name, def)
	}

	candidate := def.Pod(name)
	if existing.RequiresRecreate(candidate) {
		return nil, fmt.Errorf("%w: pod %s", fabric.ErrRecreateRequired, name)
	}

	// Non-structural change: update the pod record in place
	existing.Topology = def.Topology
	existing.SpineCount = def.SpineCount
	existing.LeafCount = def.LeafCount
	if err := existing.Validate(); err != nil {
		return nil, err
	}
	if err := b.repo.UpdatePod(ctx, existing); err != nil {
		return nil, err
	}
	log.Info("updated pod in place")
	return existing, nil
}

// createFabric runs the full generation for a pod that does not exist yet.
// The topology is validated before the first store write so an invalid
// document leaves no partial pod behind.
func (b *Builder) createFabric(ctx context.Context, name string, def PodDefinition) (*fabric.Pod, error) {
	pod := def.Pod(name)
	pod.ID = uuid.NewString()
	if err := pod.Validate(); err != nil {
		return nil, err
	}

	topo, err := LoadTopology(b.configDir, def.Topology)
	if err != nil {
		return nil, err
	}

	materializer := NewMaterializer(b.repo, b.cfg.DeviceFamilies, b.log)
	if err := materializer.Validate(pod, topo); err != nil {
		return nil, err
	}

	if err := b.repo.CreatePod(ctx, pod); err != nil {
		return nil, err
	}

	devices, err := materializer.Materialize(ctx, pod, topo)
	if err != nil {
		return nil, err
	}

	allocator := NewAllocator(b.repo, b.cfg.Allocation, b.log)
	if err := allocator.Allocate(ctx, pod, devices); err != nil {
		return nil, err
	}

	if err := b.renderPod(ctx, pod); err != nil {
		return nil, err
	}

	return pod, nil
}

// renderPod emits per-device configuration files and the cabling diagram
func (b *Builder) renderPod(ctx context.Context, pod *fabric.Pod) error {
	if b.renderer == nil || b.sink == nil {
		return nil
	}

	view, err := b.PodView(ctx, pod)
	if err != nil {
		return err
	}

	for _, dv := range view.Devices {
		out, err := b.renderer.RenderDevice(dv)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", dv.Device.Name, err)
		}
		if err := b.sink.WriteDeviceConfig(pod.Name, dv.Device.Name, out); err != nil {
			return fmt.Errorf("writing config for %s: %w", dv.Device.Name, err)
		}
	}

	dot, err := b.renderer.RenderCabling(view)
	if err != nil {
		return fmt.Errorf("rendering cabling diagram: %w", err)
	}
	if err := b.sink.WriteCabling(pod.Name, dot); err != nil {
		return fmt.Errorf("writing cabling diagram: %w", err)
	}

	b.log.WithPod(pod.Name).Info("generated configuration", "devices", len(view.Devices))
	return nil
}
