package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version cobra command
func NewVersionCmd(ctx context.Context, gitsha string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pngctl %s\n", gitsha)
		},
	}
}
