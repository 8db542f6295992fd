package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/batch"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/validation"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// render writes v in the selected output format / Écrit v dans le format choisi
func (c *cli) render(cmd *cobra.Command, v any) error {
	return writeOutput(cmd.OutOrStdout(), c.output, v)
}

func writeOutput(w io.Writer, format string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	if !strings.EqualFold(format, "yaml") {
		var out strings.Builder
		enc := json.NewEncoder(&out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(json.RawMessage(raw)); err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		_, err = io.WriteString(w, out.String())
		return err
	}

	// JSON is valid YAML: parsing it keeps the json tag names and field order
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	blockStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}

// blockStyle drops the flow and quoting styles inherited from JSON.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}

// renderReport prints the report, then fails when any item failed.
func (c *cli) renderReport(cmd *cobra.Command, report *batch.Report) error {
	if err := c.render(cmd, report); err != nil {
		return err
	}
	return report.Err()
}

// renderValidation prints the result and fails when it carries blocking errors.
func (c *cli) renderValidation(cmd *cobra.Command, res *validation.Result) error {
	if err := c.render(cmd, res); err != nil {
		return err
	}
	if !res.IsValid {
		return &validation.ValidationError{Errors: res.Errors}
	}
	return nil
}
