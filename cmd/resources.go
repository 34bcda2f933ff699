package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/resource"
	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/table"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Inspect the canonical resource vocabulary",
}

var resourcesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report unmapped resource codes in a raw extract",
	Long: `Scans every resource_type column of a raw extract against the canonical
vocabulary and lists the codes that would abort a normalize run, so new
vendor vocabulary can be triaged before the pipeline runs.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		input, _ := cmd.Flags().GetString("input")
		sheet, _ := cmd.Flags().GetString("sheet")
		skipRows, _ := cmd.Flags().GetInt("skip-rows")

		raw, err := readExtract(input, sheet, skipRows)
		if err != nil {
			return err
		}

		h, err := resource.Load()
		if err != nil {
			return err
		}

		unmapped := make(map[string]int)
		scanned := 0
		for _, col := range raw.Columns {
			if !strings.HasPrefix(strings.ToLower(col), "resource_type") {
				continue
			}
			vals, err := raw.Column(col)
			if err != nil {
				return err
			}
			for _, v := range vals {
				if table.IsNull(v) {
					continue
				}
				scanned++
				if _, ok := h.Lookup(v); !ok {
					unmapped[strings.TrimSpace(v)]++
				}
			}
		}
		if scanned == 0 {
			return eris.Errorf("resources validate: no resource_type columns in %s", input)
		}

		if len(unmapped) == 0 {
			fmt.Printf("all %d resource codes map to the canonical vocabulary\n", scanned)
			return nil
		}

		codes := make([]string, 0, len(unmapped))
		for c := range unmapped {
			codes = append(codes, c)
		}
		sort.Strings(codes)

		fmt.Printf("%d unmapped code(s):\n", len(codes))
		for _, c := range codes {
			fmt.Printf("  %-40q x%d\n", c, unmapped[c])
		}
		return eris.Errorf("resources validate: %d unmapped code(s)", len(codes))
	},
}

func init() {
	resourcesValidateCmd.Flags().String("input", "", "raw extract path (.csv or .xlsx)")
	resourcesValidateCmd.Flags().String("sheet", "", "XLSX sheet name (default: first sheet)")
	resourcesValidateCmd.Flags().Int("skip-rows", 0, "XLSX rows to skip before the header")
	_ = resourcesValidateCmd.MarkFlagRequired("input")
	resourcesCmd.AddCommand(resourcesValidateCmd)
	rootCmd.AddCommand(resourcesCmd)
}
