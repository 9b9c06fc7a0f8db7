package main

import (
	"io"
	"path/filepath"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	kio "github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/io"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/logging"
	"github.com/spf13/cobra"
)

var synthConfig struct {
	query string
}

func newSynthCmd() *cobra.Command {
	synthCommand := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize the CloudFormation template of the stack",
		Args:  cobra.NoArgs,
		RunE:  synth,
	}
	synthCommand.Flags().StringVarP(&synthConfig.query, "query", "q", "", "Print the parts of the template matching a YAML path (such as $.Outputs) instead of writing files")
	return synthCommand
}

func synth(cmd *cobra.Command, args []string) error {
	d, err := declare(cmd)
	if err != nil {
		return err
	}
	if synthConfig.query != "" {
		return d.template.WriteQuery(cmd.OutOrStdout(), synthConfig.query)
	}
	files := synthFiles(d)
	if err := kio.OutputTo(files, commonCfg.outDir); err != nil {
		return err
	}
	logging.GetLogger(cmd.Context()).Sugar().Infof("wrote %v to %s", logging.FileNames(files), commonCfg.outDir)
	return nil
}

func synthFiles(d *declaration) []kio.File {
	name := d.stack.Name
	return []kio.File{
		&kio.RenderedFile{FPath: name + ".template.json", Render: func(w io.Writer) error { return d.template.WriteJSON(w) }},
		&kio.RenderedFile{FPath: name + ".template.yaml", Render: func(w io.Writer) error { return d.template.WriteYAML(w) }},
		&kio.RenderedFile{FPath: filepath.Join("graph", name+".yaml"), Render: func(w io.Writer) error {
			return construct.GraphToYAML(d.stack.Graph, w)
		}},
		&kio.RenderedFile{FPath: filepath.Join("graph", name+".dot"), Render: func(w io.Writer) error {
			return construct.GraphToDOT(d.stack.Graph, w)
		}},
	}
}
