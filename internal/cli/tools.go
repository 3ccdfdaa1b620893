package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentshop/order"
	"github.com/hupe1980/agentshop/shoptools"
)

func newToolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool definitions sent to the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := shoptools.NewRegistry(order.NewStore())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(reg.Definitions())
		},
	}
}
