package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "fabric-manager",
	Short: "Layer-3 Clos fabric configuration generator",
	Long: `A configuration generator for Layer-3 Clos (leaf-spine) data center
fabrics. It materializes a persisted model from a pod definition and a
cabling topology, allocates loopback, IRB and interconnect addresses plus
BGP AS numbers, and renders one configuration file per device.`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fabric-manager version %s\n", rootCmd.Version)
	},
}
