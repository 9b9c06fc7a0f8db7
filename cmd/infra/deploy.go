package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/collectionutil"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/deploy"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/logging"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/state"
	"github.com/spf13/cobra"
)

var deployConfig struct {
	profile string
	yes     bool
}

func newDeployCmd() *cobra.Command {
	deployCommand := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the declared stack through a CloudFormation change set",
		Args:  cobra.NoArgs,
		RunE:  deployStack,
	}
	flags := deployCommand.Flags()
	flags.StringVar(&deployConfig.profile, "profile", "", "AWS shared config profile")
	flags.BoolVarP(&deployConfig.yes, "yes", "y", false, "Deploy without showing the plan and asking for confirmation")
	return deployCommand
}

func deployStack(cmd *cobra.Command, args []string) error {
	d, err := declare(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	log := logging.GetLogger(ctx).Sugar()

	sm := state.NewStateManager(state.StateFile(commonCfg.outDir, d.stack.Name))
	if err := sm.LoadState(); err != nil {
		return err
	}
	if !deployConfig.yes {
		p, err := state.Plan(sm.AppliedTemplate(), d.template)
		if err != nil {
			return err
		}
		if err := p.Render(cmd.OutOrStdout()); err != nil {
			return err
		}
		if p.HasChanges() {
			ok, err := confirm(cmd, "Deploy these changes? [y/N] ")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Deploy cancelled.")
				return nil
			}
		}
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            aws.Config{Region: aws.String(d.env.Region)},
		Profile:           deployConfig.profile,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return fmt.Errorf("could not create aws session: %w", err)
	}
	deployer := deploy.NewDeployer(sess)
	deployer.Tags = map[string]string{
		"project":     d.env.ProjectName,
		"environment": d.env.EnvName,
	}

	outputs, err := deployer.Deploy(ctx, d.stack.Name, d.template)
	switch {
	case errors.Is(err, deploy.ErrNoChanges):
		log.Infof("stack %s is up to date", d.stack.Name)
		if outputs, err = deployer.Outputs(ctx, d.stack.Name); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	sm.RecordApplied(d.stack.Name, d.env.EnvName, d.env.Region, d.template, outputs)
	if err := sm.SaveState(); err != nil {
		return err
	}

	for _, name := range collectionutil.SortedKeys(outputs) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", name, outputs[name])
	}
	return nil
}

// confirm asks `question` and reads the answer from the command input. Anything but y or yes declines.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	fmt.Fprint(cmd.OutOrStdout(), question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false, fmt.Errorf("could not read confirmation (use --yes to skip it): %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
