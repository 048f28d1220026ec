package main

import "github.com/spf13/cobra"

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [document]",
		Short: "Check the descriptions of an existing document without scanning",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			document := a.viper.GetString("output")
			if len(args) == 1 {
				document = args[0]
			}
			return a.validate(document)
		},
	}
}
