package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/vet-admin-api/internal/model"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Inspect clinic inventory",
}

var inventoryAlertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List low-stock and expiring items",
	Args:  cobra.NoArgs,
	RunE:  runInventoryAlerts,
}

func init() {
	inventoryCmd.AddCommand(inventoryAlertsCmd)
}

func runInventoryAlerts(cmd *cobra.Command, args []string) error {
	ctx, cancel, cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	infra, svcs, err := openServices(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	low, expiring, err := svcs.Inventory.Alerts(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ALERT\tSKU\tNAME\tQUANTITY\tMIN\tEXPIRY")
	list := func(alert string, items []*model.InventoryItemView) {
		for _, v := range items {
			expiry := "-"
			if v.ExpiryLabel != "" {
				expiry = v.ExpiryLabel
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d %s\t%d\t%s\n", alert, v.SKU, v.Name, v.Quantity, v.Unit, v.MinStock, expiry)
		}
	}
	list("low stock", low)
	list("expiring", expiring)
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d low stock, %d expiring\n", len(low), len(expiring))
	return nil
}
