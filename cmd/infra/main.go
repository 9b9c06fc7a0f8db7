package main

import (
	"fmt"
	"os"

	clicommon "github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/cli_common"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/config"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/constructs"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/infra/cloudformation"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var commonCfg struct {
	clicommon.CommonConfig
	envFile string
	sets    []string
	outDir  string
}

func cli() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:           "infra",
		Short:         "Declare, plan and deploy the application infrastructure stack",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	clicommon.SetupRoot(rootCmd, &commonCfg.CommonConfig)
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&commonCfg.envFile, "env", "e", "config/dev.yaml", "Environment values file (yaml, json or toml)")
	flags.StringArrayVar(&commonCfg.sets, "set", nil, "Override an environment value (key=value, repeatable)")
	flags.StringVarP(&commonCfg.outDir, "out", "o", "cdk.out", "Output directory for templates and state")

	rootCmd.AddCommand(newSynthCmd())
	rootCmd.AddCommand(newGraphCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newDeployCmd())
	return rootCmd
}

func main() {
	if err := cli().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// declaration is the stack declared for the selected environment along with its template.
type declaration struct {
	env      config.EnvValues
	stack    *constructs.InfraStack
	template *cloudformation.Template
}

func declare(cmd *cobra.Command) (*declaration, error) {
	env, err := config.Load(commonCfg.envFile, commonCfg.sets)
	if err != nil {
		return nil, fmt.Errorf("could not load environment %s: %w", commonCfg.envFile, err)
	}

	ctx := logging.WithLogger(cmd.Context(), zap.L().With(zap.String("env", env.EnvName)))
	cmd.SetContext(ctx)

	stack, err := constructs.NewInfraStack(constructs.InfraStackProps{
		ProjectName: env.ProjectName,
		NamePrefix:  env.NamePrefix,
		EnvValues:   env,
	})
	if err != nil {
		return nil, fmt.Errorf("could not declare stack: %w", err)
	}
	template, err := cloudformation.Synthesize(stack.Stack)
	if err != nil {
		return nil, fmt.Errorf("could not synthesize %s: %w", stack.Name, err)
	}
	return &declaration{env: env, stack: stack, template: template}, nil
}
