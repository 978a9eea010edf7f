package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/config"
	"github.com/aretw0/espalier/internal/presentation/graph"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize the manifest contents",
	Long:  `Prints the layout ids, presets, capability domains and palette structure declared in the manifest. With --graph, emits the layout structure as a Mermaid flowchart.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runInspect(cmd); err != nil {
			fmt.Printf("Inspect failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("json", false, "Emit the summary as JSON")
	inspectCmd.Flags().Bool("graph", false, "Emit the layout structure as a Mermaid flowchart")
}

type manifestSummary struct {
	Layouts      []string          `json:"layouts"`
	Templates    []string          `json:"templates"`
	Presets      []string          `json:"presets"`
	Capabilities map[string]string `json:"capabilities"`
	Rules        int               `json:"rules"`
}

func runInspect(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("manifest")
	asJSON, _ := cmd.Flags().GetBool("json")

	asGraph, _ := cmd.Flags().GetBool("graph")

	manifest, err := config.Load(path)
	if err != nil {
		return err
	}

	if asGraph {
		cat, err := manifest.Catalog()
		if err != nil {
			return err
		}
		fmt.Println(graph.GenerateMermaid(cat, nil))
		return nil
	}

	summary := manifestSummary{
		Layouts:      sortedKeys(manifest.Layouts.Pages),
		Templates:    sortedKeys(manifest.Layouts.Templates),
		Presets:      sortedKeys(manifest.Presets),
		Capabilities: manifest.Capabilities.Levels,
		Rules:        len(manifest.Capabilities.Rules),
	}
	if summary.Capabilities == nil {
		summary.Capabilities = map[string]string{}
	}

	if asJSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Manifest: %s\n", path)
	fmt.Printf("  Layouts:   %d (%v)\n", len(summary.Layouts), summary.Layouts)
	fmt.Printf("  Templates: %d (%v)\n", len(summary.Templates), summary.Templates)
	fmt.Printf("  Presets:   %d (%v)\n", len(summary.Presets), summary.Presets)
	fmt.Printf("  Capability domains: %d, rules: %d\n", len(summary.Capabilities), summary.Rules)
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
