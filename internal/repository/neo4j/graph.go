// Package neo4j mirrors a pod's cabling topology into a Neo4j graph so the
// fabric can be explored with graph queries. The mirror is a projection of
// the relational store, rebuilt per export; it never participates in fabric
// generation.
package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/servak/fabric-manager/internal/domain/fabric"
)

// GraphExporter writes pods, devices and cabling links to Neo4j
type GraphExporter struct {
	driver neo4j.DriverWithContext
	config *Config
}

// NewGraphExporter creates a new Neo4j graph exporter
func NewGraphExporter(config *Config) (*GraphExporter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Neo4j configuration: %w", err)
	}

	driver, err := neo4j.NewDriverWithContext(
		config.URI,
		neo4j.BasicAuth(config.Username, config.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to Neo4j: %w", err)
	}

	return &GraphExporter{
		driver: driver,
		config: config,
	}, nil
}

// Close closes the Neo4j driver connection
func (e *GraphExporter) Close() error {
	return e.driver.Close(context.Background())
}

// ExportPod mirrors a pod's devices and peered links into the graph. The
// pod's previous projection is removed first so repeated exports converge.
func (e *GraphExporter) ExportPod(ctx context.Context, pod *fabric.Pod, devices []fabric.Device, links []CablingLink) error {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: e.config.Database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		clear := `
			MATCH (d:Device {pod: $pod})
			DETACH DELETE d
		`
		if _, err := tx.Run(ctx, clear, map[string]interface{}{"pod": pod.Name}); err != nil {
			return nil, err
		}

		createDevice := `
			CREATE (d:Device {
				id: $id,
				pod: $pod,
				name: $name,
				family: $family,
				role: $role,
				asn: $asn,
				mgmt_ip: $mgmt_ip
			})
		`
		for _, d := range devices {
			if _, err := tx.Run(ctx, createDevice, map[string]interface{}{
				"id":      d.ID,
				"pod":     pod.Name,
				"name":    d.Name,
				"family":  d.Family,
				"role":    string(d.Role),
				"asn":     int64(d.ASN),
				"mgmt_ip": d.MgmtIP,
			}); err != nil {
				return nil, err
			}
		}

		createLink := `
			MATCH (s:Device {pod: $pod, name: $spine}), (l:Device {pod: $pod, name: $leaf})
			CREATE (s)-[:CONNECTS_TO {spine_port: $spine_port, leaf_port: $leaf_port}]->(l)
		`
		for _, link := range links {
			if _, err := tx.Run(ctx, createLink, map[string]interface{}{
				"pod":        pod.Name,
				"spine":      link.SpineDevice,
				"leaf":       link.LeafDevice,
				"spine_port": link.SpinePort,
				"leaf_port":  link.LeafPort,
			}); err != nil {
				return nil, err
			}
		}

		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to export pod %s to Neo4j: %w", pod.Name, err)
	}

	return nil
}

// CablingLink is one peered spine/leaf port pair of the exported pod
type CablingLink struct {
	SpineDevice string
	SpinePort   string
	LeafDevice  string
	LeafPort    string
}
