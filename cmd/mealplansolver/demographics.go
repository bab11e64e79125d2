package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nutriplan/mealsolver/internal/reference"
)

var demographicsCmd = &cobra.Command{
	Use:   "demographics",
	Short: "List the demographics known to the Upper Limits reference table",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := reference.NewULLoader(settings.ULReferencePath)
		names, err := loader.AvailableDemographics()
		if err != nil {
			return fmt.Errorf("loading upper limits reference: %w", err)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}
