package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/service"
)

func newBalancesCmd(cfg func() *config.Config) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "balances <group-code>",
		Short: "Print a group's balances and suggested settlements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cfg())
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer store.Close()

			groups := service.NewGroupService(store, nil, "")
			group, err := groups.GetGroup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			balances, err := groups.GetBalances(cmd.Context(), group.ID)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(toBalancesOutput(group, balances))
			}
			return printBalances(cmd.OutOrStdout(), group, balances)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

type settlementOutput struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

type balancesOutput struct {
	Group       string             `json:"group"`
	Balances    map[string]float64 `json:"balances"`
	Settlements []settlementOutput `json:"settlements"`
	TotalAmount float64            `json:"total_amount"`
}

func toBalancesOutput(group *models.Group, b *models.Balances) balancesOutput {
	out := balancesOutput{
		Group:       group.Code,
		Balances:    b.Balances,
		Settlements: make([]settlementOutput, len(b.Settlements)),
		TotalAmount: b.TotalAmount,
	}
	if out.Balances == nil {
		out.Balances = map[string]float64{}
	}
	for i, s := range b.Settlements {
		out.Settlements[i] = settlementOutput{From: s.From, To: s.To, Amount: s.Amount}
	}
	return out
}

// printBalances renders balances as aligned text tables.
func printBalances(out io.Writer, group *models.Group, b *models.Balances) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s\t%s\n", group.Code, group.Name)
	fmt.Fprintf(w, "Total spent:\t%.2f\n\n", b.TotalAmount)

	fmt.Fprintln(w, "PARTICIPANT\tBALANCE")
	for _, name := range slices.Sorted(maps.Keys(b.Balances)) {
		fmt.Fprintf(w, "%s\t%.2f\n", name, b.Balances[name])
	}

	fmt.Fprintln(w)
	if len(b.Settlements) == 0 {
		fmt.Fprintln(w, "All settled up.")
		return w.Flush()
	}
	fmt.Fprintln(w, "FROM\tTO\tAMOUNT")
	for _, s := range b.Settlements {
		fmt.Fprintf(w, "%s\t%s\t%.2f\n", s.From, s.To, s.Amount)
	}
	return w.Flush()
}
