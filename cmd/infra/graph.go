package main

import (
	"fmt"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	"github.com/spf13/cobra"
)

var graphConfig struct {
	format string
}

func newGraphCmd() *cobra.Command {
	graphCommand := &cobra.Command{
		Use:   "graph",
		Short: "Print the resource graph of the stack",
		Args:  cobra.NoArgs,
		RunE:  printGraph,
	}
	graphCommand.Flags().StringVarP(&graphConfig.format, "format", "f", "yaml", "Output format (yaml, dot or text)")
	return graphCommand
}

func printGraph(cmd *cobra.Command, args []string) error {
	d, err := declare(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch graphConfig.format {
	case "yaml":
		return construct.GraphToYAML(d.stack.Graph, out)
	case "dot":
		return construct.GraphToDOT(d.stack.Graph, out)
	case "text":
		s, err := construct.String(d.stack.Graph)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, s)
		return err
	default:
		return fmt.Errorf("unknown graph format %q", graphConfig.format)
	}
}
