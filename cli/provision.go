package main

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ostler-dev/ostler/cli/flags"
	"github.com/ostler-dev/ostler/cli/log"
	"github.com/ostler-dev/ostler/cli/ui"
	"github.com/ostler-dev/ostler/namegen"
	"github.com/ostler-dev/ostler/orchestrator"
	"github.com/ostler-dev/ostler/probe"
	"github.com/ostler-dev/ostler/recipes"
	"github.com/ostler-dev/ostler/remote"
	"github.com/ostler-dev/ostler/resolver"
)

var provisionCmd = &cobra.Command{
	Use:   "provision [ADDRESS...]",
	Short: "Runs the per-role provisioning pipelines against the target hosts",
	Long: `Runs the per-role provisioning pipelines against the target hosts.

With no arguments, hosts are resolved from the --inventory file if given,
otherwise from OpenStack servers tagged with the ostler-role metadata key.
With arguments, exactly one address per role is expected, bound positionally:
` + strings.Join(lo.Map(recipes.Roles(), func(role orchestrator.Role, _ int) string { return string(role) }), ", ") + `.

The exit code reflects provisioning only: validation probe failures are
reported but never change it.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		roles := recipes.Roles()
		runName := namegen.Get()

		signer, err := remote.LoadCredential(viper.GetString(flags.SSHKey))
		if err != nil {
			return err
		}

		var hosts []*orchestrator.Host
		switch {
		case len(args) > 0:
			hosts, err = resolver.Explicit(roles, args)
		case viper.GetString(flags.Inventory) != "":
			hosts, err = resolver.FromInventory(viper.GetString(flags.Inventory), roles)
		default:
			var provider *resolver.OpenStack
			if provider, err = resolver.NewOpenStack(viper.GetString(flags.OpenstackNamePrefix)); err == nil {
				hosts, err = resolver.FromProvider(ctx, provider, roles)
			}
		}
		if err != nil {
			return err
		}

		log.Info("Starting provisioning run", "run", runName, "hosts", len(hosts))
		for _, host := range hosts {
			log.Info("Target host", "host", host.Address, "role", host.Role)
		}

		dialer, err := remote.NewDialer(remote.DialerConfig{
			User:           viper.GetString(flags.SSHUser),
			Signer:         signer,
			Port:           viper.GetInt(flags.SSHPort),
			ConnectTimeout: viper.GetDuration(flags.ConnectTimeout),
			Logger:         log.Base.With("component", "remote"),
		})
		if err != nil {
			return err
		}

		orch, err := orchestrator.New(orchestrator.Config{
			Dialer:        dialer,
			Logger:        log.Base.With("component", "orchestrator"),
			ReadyAttempts: viper.GetInt(flags.ReadyAttempts),
			ReadyInterval: viper.GetDuration(flags.ReadyInterval),
			StepTimeout:   viper.GetDuration(flags.StepTimeout),
		})
		if err != nil {
			return err
		}

		spinner := ui.NewSpinner(fmt.Sprintf("Provisioning %d hosts", len(hosts)))
		result, err := orch.Run(ctx, hosts, recipes.Pipelines(hosts))
		if err != nil {
			spinner.Fail()
			return err
		}
		defer result.Close()

		if result.Success() {
			spinner.Success(fmt.Sprintf("Provisioned %d hosts", len(hosts)))
		} else {
			spinner.Fail(fmt.Sprintf("Provisioned %d of %d hosts", len(hosts)-len(result.Failed()), len(hosts)))
		}

		var probeResults []probe.Result
		if !viper.GetBool(flags.SkipValidate) {
			prober := probe.NewProber(viper.GetDuration(flags.ProbeTimeout), log.Base.With("component", "probe"))
			for _, pipeline := range result.Pipelines {
				if tunnel, ok := pipeline.Channel.(probe.Tunneler); ok {
					prober.Tunnels[pipeline.Host.Address] = tunnel
				}
			}
			probeResults = prober.Validate(ctx, recipes.Probes(hosts))
		}

		ui.RenderReport(cmd.OutOrStdout(), runName, result, probeResults)

		if failed := result.Failed(); len(failed) > 0 {
			reasons := lo.Map(failed, func(pipeline *orchestrator.PipelineResult, _ int) string {
				return pipeline.Failure.Error()
			})
			return fmt.Errorf("%d of %d hosts failed provisioning:\n%s", len(failed), len(hosts), strings.Join(reasons, "\n"))
		}
		return nil
	},
}
