package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wajahatashraf/gcp-setup/internal/constants"
	"github.com/wajahatashraf/gcp-setup/internal/output"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	Run: func(_ *cobra.Command, _ []string) {
		output.Printf("%s %s\n", constants.ProjectName, *constants.GetVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
