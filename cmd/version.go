package cmd

import (
	"fmt"

	"treecat/pkg/version"

	"github.com/spf13/cobra"
)

// versionCmd displays the current version of treecat. The --short flag
// prints a concise version string.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the version of treecat",
	Long:  `Display the current version information of the treecat CLI tool.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		short, err := cmd.Flags().GetBool("short")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}

		v := version.Get()
		if short {
			fmt.Fprintln(cmd.OutOrStdout(), v.Version)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), v.String())
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolP("short", "s", false, "Print the version number only")
	RootCmd.AddCommand(versionCmd)
}
