package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"homesearch/internal/tools"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the get_listings tool descriptor sent to the model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		d := tools.BuildToolDescriptor(tools.FieldSet(cfg.Agent.Fields), cfg.Agent.StrictSchema)
		return printJSON(cmd, d)
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}
