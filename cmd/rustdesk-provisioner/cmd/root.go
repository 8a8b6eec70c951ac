package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deskops/rustdesk-provisioner/internal/logger"
	"github.com/deskops/rustdesk-provisioner/internal/service/provisioner"
	"github.com/deskops/rustdesk-provisioner/internal/version"
)

var (
	// settingsPath is the optional deployment-settings YAML file.
	settingsPath string

	// logLevel controls console verbosity.
	logLevel string

	// opts carries all provisioning parameters; flags fill it in.
	opts provisioner.Options

	// rootCmd represents the base command that provisions the client.
	rootCmd = &cobra.Command{
		Use:   "rustdesk-provisioner",
		Short: "Install the RustDesk client and point it at a self-hosted relay",
		Long: "Downloads the requested RustDesk release, runs the installer unattended, " +
			"appends relay/API/key directives to the client configuration file " +
			"(preserving prior content in a backup), and optionally starts the client.",
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			opts.SettingsPath = settingsPath

			return provisioner.Run(ctx, &opts)
		},
	}
)

// Execute runs the provisioner CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&opts.VersionToken, "version-token", "v", provisioner.LatestVersionToken,
		"release to install: \"latest\" or an explicit tag")
	flags.StringVarP(&opts.RelayServer, "relay-server", "r", "",
		"self-hosted relay endpoint written to the client configuration")
	flags.StringVarP(&opts.APIServer, "api-server", "a", "",
		"self-hosted API endpoint written to the client configuration")
	flags.StringVarP(&opts.Key, "key", "k", "",
		"relay public key written to the client configuration")
	flags.BoolVar(&opts.InstallService, "install-service", true,
		"register the client as a system service")
	flags.BoolVar(&opts.StartAfterInstall, "start-after-install", true,
		"start the client once installation finishes")
	flags.StringVarP(&settingsPath, "config", "c", "",
		"path to deployment settings file")
	flags.StringVar(&logLevel, "log-level", "info",
		"log level: debug, info, warn, error")
}
