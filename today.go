package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func todayCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Print the answer of the day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			picker, err := buildPicker(cfg)
			if err != nil {
				return err
			}

			at := time.Now()
			if date != "" {
				at, err = time.ParseInLocation("2006-01-02", date, cfg.Location())
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
			}

			loader, err := buildLoader(cfg)
			if err != nil {
				return err
			}
			ros, err := loader.Load(cmd.Context())
			if err != nil {
				return err
			}
			c, idx, err := picker.Pick(ros, at)
			if err != nil {
				return err
			}
			cmd.Printf("%s  #%d  %s (%s)\n", picker.DateKey(at), idx, c.DisplayName(), c.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "calendar date as YYYY-MM-DD (default today)")
	return cmd
}
