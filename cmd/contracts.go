package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnolang/toracle/internal/contract"
	"github.com/gnolang/toracle/oracle"
)

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "List the contracts that can be checked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := oracle.LoadConfigOrDefault(cfgFile)
		if err != nil {
			return err
		}
		return listContracts(cmd.OutOrStdout(), config.Contracts)
	},
}

// listContracts prints every registered contract with its arity and input
// types. Contracts in enabled are marked with an asterisk.
func listContracts(w io.Writer, enabled []string) error {
	for _, name := range contract.Names() {
		c, err := contract.Lookup(name)
		if err != nil {
			return err
		}
		mark := " "
		if slices.Contains(enabled, name) {
			mark = "*"
		}
		inputs := make([]string, 0, c.Arity())
		for _, t := range c.InputTypes() {
			inputs = append(inputs, t.Name())
		}
		fmt.Fprintf(w, "%s %-22s %d  (%s)\n", mark, name, c.Arity(), strings.Join(inputs, ", "))
	}
	return nil
}
