package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() (*cobra.Command, *commandContext) {
	var configFlag string
	var jsonFlag bool

	cc := newCommandContext(&configFlag, &jsonFlag)

	rootCmd := &cobra.Command{
		Use:           "catalog",
		Short:         "Browse the car catalog served by the Storyblok content API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Print JSON instead of tables")

	rootCmd.AddCommand(newBrandsCommand(cc))
	rootCmd.AddCommand(newModelsCommand(cc))
	rootCmd.AddCommand(newModelCommand(cc))
	rootCmd.AddCommand(newTagsCommand(cc))
	rootCmd.AddCommand(newCategoriesCommand(cc))
	rootCmd.AddCommand(newWatchCommand(cc))

	return rootCmd, cc
}
