package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func rosterCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Load the configured roster and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			loader, err := buildLoader(cfg)
			if err != nil {
				return err
			}
			ros, err := loader.Load(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"version":    ros.Version(),
					"attributes": ros.Schema().Attributes,
					"characters": ros.Characters(),
				})
			}

			keys := ros.Schema().Keys()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprint(tw, "ID\tNAME")
			for _, k := range keys {
				fmt.Fprintf(tw, "\t%s", k)
			}
			fmt.Fprintln(tw)
			for _, c := range ros.Characters() {
				fmt.Fprintf(tw, "%s\t%s", c.ID, c.DisplayName())
				for _, k := range keys {
					fmt.Fprintf(tw, "\t%s", c.Attr(k))
				}
				fmt.Fprintln(tw)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			cmd.Printf("%d characters, version %s\n", ros.Len(), ros.Version())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the roster as JSON")
	return cmd
}
