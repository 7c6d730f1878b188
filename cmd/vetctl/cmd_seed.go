package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jwalitptl/vet-admin-api/internal/repository/seed"
)

var seedRaw bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Inspect the demo data set",
}

// seedPrintCmd prints the embedded fixture
var seedPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the demo fixture with relative dates resolved",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedRaw {
			_, err := cmd.OutOrStdout().Write(seed.Raw())
			return err
		}

		f, err := seed.Parse(seed.Raw(), time.Now())
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(f)
		if err != nil {
			return fmt.Errorf("failed to encode fixture: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	seedPrintCmd.Flags().BoolVar(&seedRaw, "raw", false, "Print the fixture as stored, without resolving today±N")

	seedCmd.AddCommand(seedPrintCmd)
}
