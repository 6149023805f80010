package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/servak/fabric-manager/internal/clos"
	"github.com/servak/fabric-manager/internal/config"
	"github.com/servak/fabric-manager/internal/render"
	"github.com/servak/fabric-manager/internal/repository"
	"github.com/servak/fabric-manager/internal/repository/neo4j"
	"github.com/servak/fabric-manager/pkg/logger"
)

var (
	podsPath    string
	podName     string
	recreate    bool
	exportGraph bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate fabric configuration from pod definitions",
	Long: `Generate device configurations for the pods defined in the pod
definition file. Existing pods are updated in place unless --recreate is
given or a structural attribute changed (which requires --recreate).`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&podsPath, "pods", "p", "config/pods.yaml", "pod definition file")
	generateCmd.Flags().StringVar(&podName, "pod", "", "generate only the named pod")
	generateCmd.Flags().BoolVar(&recreate, "recreate", false, "delete and rebuild existing pods")
	generateCmd.Flags().BoolVar(&exportGraph, "graph", false, "mirror generated pods into Neo4j")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	log := logger.New(cfg.Log.Level)

	repo, err := repository.NewRepository(cfg.Database)
	if err != nil {
		return fmt.Errorf("creating repository: %w", err)
	}
	defer repo.Close()

	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("migrating store: %w", err)
	}

	definitions, err := clos.LoadPodDefinitions(podsPath)
	if err != nil {
		return err
	}
	if podName != "" {
		def, ok := definitions[podName]
		if !ok {
			return fmt.Errorf("pod %s not found in %s", podName, podsPath)
		}
		definitions = map[string]clos.PodDefinition{podName: def}
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}
	sink := render.NewFileWriter(cfg.Output.Directory, log)
	builder := clos.NewBuilder(repo, cfg, filepath.Dir(podsPath), renderer, sink, log)

	var exporter *neo4j.GraphExporter
	if exportGraph {
		if cfg.Graph == nil {
			return fmt.Errorf("--graph requires a graph section in the config")
		}
		exporter, err = neo4j.NewGraphExporter(cfg.Graph)
		if err != nil {
			return err
		}
		defer exporter.Close()
	}

	// Stable pod order so multi-pod runs log and fail deterministically
	names := make([]string, 0, len(definitions))
	for name := range definitions {
		names = append(names, name)
	}
	sort.Strings(names)

	ctx := context.Background()
	for _, name := range names {
		pod, err := builder.ProcessFabric(ctx, name, definitions[name], recreate)
		if err != nil {
			return fmt.Errorf("pod %s: %w", name, err)
		}
		log.Info("processed pod", "pod", name,
			"loopback_block", pod.AllocatedLoopbackBlock,
			"irb_block", pod.AllocatedIrbBlock)

		if exporter != nil {
			view, err := builder.PodView(ctx, pod)
			if err != nil {
				return fmt.Errorf("pod %s: %w", name, err)
			}
			links := make([]neo4j.CablingLink, 0, len(view.Links))
			for _, l := range view.Links {
				links = append(links, neo4j.CablingLink{
					SpineDevice: l.SpineDevice,
					SpinePort:   l.SpinePort,
					LeafDevice:  l.LeafDevice,
					LeafPort:    l.LeafPort,
				})
			}
			podDevices, err := repo.GetPodDevices(ctx, pod.ID)
			if err != nil {
				return fmt.Errorf("pod %s: %w", name, err)
			}
			if err := exporter.ExportPod(ctx, pod, podDevices, links); err != nil {
				return fmt.Errorf("pod %s: %w", name, err)
			}
			log.Info("exported pod graph", "pod", name, "links", len(links))
		}
	}

	return nil
}
