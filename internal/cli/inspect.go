package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"seppy/internal/adapter/analyzer"
	"seppy/internal/adapter/syntax"
	"seppy/internal/adapter/synth"
	"seppy/internal/domain"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the units of a Python file as JSON",
	Long: `Parse a Python file and print what split would extract from it:
every top-level unit with its record, the module it would become, and the
imports, globals and sibling modules it uses. Nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

type inspectedUnit struct {
	Module       string            `json:"module"`
	Record       domain.UnitRecord `json:"record"`
	Imports      []string          `json:"imports"`
	Globals      []string          `json:"globals"`
	Dependencies []string          `json:"dependencies"`
}

type inspection struct {
	File            string          `json:"file"`
	ModuleDocstring string          `json:"module_docstring,omitempty"`
	Imports         []string        `json:"imports"`
	Globals         []string        `json:"globals"`
	Units           []inspectedUnit `json:"units"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	cfg := GetConfig()
	file, err := syntax.NewParser().Parse(cmd.Context(), path, src)
	if err != nil {
		return err
	}
	ext, err := analyzer.Extract(file, analyzer.ExtractOptions{IgnorePatterns: cfg.Split.IgnorePatterns})
	if err != nil {
		return err
	}

	taken := make(map[string]bool)
	builder := analyzer.NewDependencyBuilder()
	modules := make([]string, len(ext.Units))
	for i, u := range ext.Units {
		modules[i] = synth.ModuleName(u.Record.Name, taken)
		builder.Register(u.Record.Name, modules[i])
	}

	out := inspection{
		File:            path,
		ModuleDocstring: analyzer.Unquote(ext.ModuleDocstring),
		Imports:         statements(ext.Imports),
		Globals:         append([]string{}, ext.Globals...),
		Units:           make([]inspectedUnit, 0, len(ext.Units)),
	}
	for i, u := range ext.Units {
		usage := ext.Resolve(u.Node)
		out.Units = append(out.Units, inspectedUnit{
			Module:       modules[i],
			Record:       u.Record,
			Imports:      statements(usage.Imports),
			Globals:      append([]string{}, usage.Globals...),
			Dependencies: builder.Build(usage.References),
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func statements(imports []domain.Import) []string {
	out := make([]string, 0, len(imports))
	for _, imp := range imports {
		out = append(out, imp.Statement())
	}
	return out
}
