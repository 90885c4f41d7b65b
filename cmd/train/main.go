package main

import (
	"context"
	"fmt"
	"github.com/spf13/cobra"
	"os"
	"strings"
)

func newCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "train",
		Short:         "Train logistic regression on CSV files of a directory",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	v := bindConfig(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := readConfig(v)
		if err != nil {
			return err
		}
		_, err = Run(cmd.Context(), cfg)
		return err
	}
	return cmd
}

func frame() {
	fmt.Println(strings.Repeat("*", 60))
}

func main() {
	fmt.Print("\n\n\n")
	frame()
	err := newCommand().ExecuteContext(context.Background())
	frame()
	fmt.Print("\n\n\n")
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
