package clos

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/servak/fabric-manager/internal/domain/fabric"
)

// PodDefinition is one pod entry of the pod definition YAML
type PodDefinition struct {
	SpineDeviceType    string `yaml:"spineDeviceType"`
	LeafDeviceType     string `yaml:"leafDeviceType"`
	InterConnectPrefix string `yaml:"interConnectPrefix"`
	VlanPrefix         string `yaml:"vlanPrefix"`
	LoopbackPrefix     string `yaml:"loopbackPrefix"`
	SpineAS            uint32 `yaml:"spineAS"`
	LeafAS             uint32 `yaml:"leafAS"`
	SpineCount         int    `yaml:"spineCount"`
	LeafCount          int    `yaml:"leafCount"`
	Topology           string `yaml:"topology"`
}

// Pod converts the definition to a domain pod with the given name. The
// caller assigns identity and persists.
func (d PodDefinition) Pod(name string) *fabric.Pod {
	return &fabric.Pod{
		Name:               name,
		SpineDeviceType:    d.SpineDeviceType,
		LeafDeviceType:     d.LeafDeviceType,
		InterConnectPrefix: d.InterConnectPrefix,
		VlanPrefix:         d.VlanPrefix,
		LoopbackPrefix:     d.LoopbackPrefix,
		SpineAS:            d.SpineAS,
		LeafAS:             d.LeafAS,
		SpineCount:         d.SpineCount,
		LeafCount:          d.LeafCount,
		Topology:           d.Topology,
	}
}

type podDefinitionFile struct {
	Pods map[string]PodDefinition `yaml:"pods"`
}

// LoadPodDefinitions reads the pod definition YAML (top-level key "pods")
func LoadPodDefinitions(path string) (map[string]PodDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pod definitions: %w", err)
	}

	var file podDefinitionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse pod definitions: %w", err)
	}
	if len(file.Pods) == 0 {
		return nil, fmt.Errorf("no pods defined in %s", path)
	}

	return file.Pods, nil
}

// TopologyDevice is one spine or leaf entry of a topology document
type TopologyDevice struct {
	Name     string `json:"name"`
	User     string `json:"user"`
	Password string `json:"password"`
	MgmtIP   string `json:"mgmt_ip"`
}

// TopologyLink is one cabling entry connecting a spine port to a leaf port
type TopologyLink struct {
	SpineName string `json:"s_name"`
	SpinePort string `json:"s_port"`
	LeafName  string `json:"l_name"`
	LeafPort  string `json:"l_port"`
}

// Topology is the cabling document of one pod
type Topology struct {
	Spines []TopologyDevice `json:"spines"`
	Leafs  []TopologyDevice `json:"leafs"`
	Links  []TopologyLink   `json:"links"`
}

// LoadTopology reads a topology JSON document. A relative path is resolved
// against baseDir, the directory the pod definitions came from.
func LoadTopology(baseDir, path string) (*Topology, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: pod has no topology document", fabric.ErrTopologyInvalid)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topology: %w", err)
	}

	var topo Topology
	if err := json.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("failed to parse topology: %w", err)
	}

	return &topo, nil
}
