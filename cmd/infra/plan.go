package main

import (
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/logging"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/state"
	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the changes between the last applied template and the declared stack",
		Args:  cobra.NoArgs,
		RunE:  plan,
	}
}

func plan(cmd *cobra.Command, args []string) error {
	d, err := declare(cmd)
	if err != nil {
		return err
	}
	sm := state.NewStateManager(state.StateFile(commonCfg.outDir, d.stack.Name))
	if !sm.CheckStateFileExists() {
		logging.GetLogger(cmd.Context()).Sugar().Infof("no state for %s in %s, planning against an empty stack", d.stack.Name, commonCfg.outDir)
	}
	if err := sm.LoadState(); err != nil {
		return err
	}
	p, err := state.Plan(sm.AppliedTemplate(), d.template)
	if err != nil {
		return err
	}
	return p.Render(cmd.OutOrStdout())
}
