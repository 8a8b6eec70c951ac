package provisioner

import (
	"context"
	"net/http"

	"github.com/deskops/rustdesk-provisioner/internal/config"
	"github.com/deskops/rustdesk-provisioner/internal/logger"
)

// Options are inputs accepted by the provisioner entry point.
// They are read once at the start of a run and never mutated.
type Options struct {
	// VersionToken is "latest" or an explicit release tag. Empty means latest.
	VersionToken string
	// RelayServer is the self-hosted relay endpoint, empty to leave the
	// client on the vendor's public relay.
	RelayServer string
	// APIServer is the self-hosted API endpoint.
	APIServer string
	// Key is the relay's public key.
	Key string
	// InstallService asks the installer to register the client as a service.
	InstallService bool
	// StartAfterInstall starts the installed client at the end of the run.
	StartAfterInstall bool
	// SettingsPath is an optional deployment-settings YAML file whose
	// values act as defaults for the fields above.
	SettingsPath string
}

// runner holds the resolved endpoints and effective parameters for a single
// run. It is intentionally unexported; call Run(ctx, Options) from callers.
type runner struct {
	opts *Options

	metadataURL      string
	downloadBase     string
	configFilePath   string // empty means resolve the platform default lazily
	launchCandidates []string
	httpClient       *http.Client

	// Topology parameters after merging options over settings-file defaults.
	relayServer string
	apiServer   string
	key         string
}

// Run executes the provisioning lifecycle and is the public entry point for
// the CLI. The returned error is non-nil only for run-fatal stages
// (resolution, download, installer failure); configuration and launch
// problems are surfaced as warnings.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "rustdesk-provisioner")

	r, err := newRunner(ctx, opts)
	if err != nil {
		return err
	}

	if err = r.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Provisioning failed", "error", err)
		return err
	}

	logger.Info(ctx, "Provisioning completed")

	return nil
}

// newRunner merges deployment settings (when provided) under the explicit
// options and fills in the public endpoints as defaults.
func newRunner(ctx context.Context, opts *Options) (*runner, error) {
	r := &runner{
		opts:             opts,
		metadataURL:      DefaultMetadataURL,
		downloadBase:     DefaultDownloadBase,
		launchCandidates: defaultLaunchCandidates(),
		httpClient:       http.DefaultClient,
		relayServer:      opts.RelayServer,
		apiServer:        opts.APIServer,
		key:              opts.Key,
	}

	if opts.SettingsPath == "" {
		return r, nil
	}

	settings, err := config.Load(opts.SettingsPath)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Loaded deployment settings", "path", opts.SettingsPath)

	if settings.MetadataURL != "" {
		r.metadataURL = settings.MetadataURL
	}

	if settings.DownloadBase != "" {
		r.downloadBase = settings.DownloadBase
	}

	if settings.ConfigFile != "" {
		r.configFilePath = settings.ConfigFile
	}

	// Flags win over the settings file.
	if r.relayServer == "" {
		r.relayServer = settings.RelayServer
	}

	if r.apiServer == "" {
		r.apiServer = settings.APIServer
	}

	if r.key == "" {
		r.key = settings.Key
	}

	return r, nil
}

// Run executes the stages in order:
// 1) Resolve the version token to a release.
// 2) Download the installer artifact.
// 3) Run the installer unattended.
// 4) Append topology directives to the client configuration.
// 5) Start the installed client.
// Stages 1-3 are fail-fast; 4 and 5 never change the run's outcome.
func (r *runner) Run(ctx context.Context) error {
	release, err := r.resolveRelease(ctx)
	if err != nil {
		return err
	}

	artifact, err := r.downloadArtifact(ctx, release)
	if err != nil {
		return err
	}

	// The artifact is scoped to the install stage: release it whatever
	// the installer did.
	outcome, installErr := r.installClient(ctx, artifact)
	artifact.Remove(ctx)

	if installErr != nil {
		return installErr
	}

	logger.InfoKV(ctx, "Installer finished", "outcome", outcome.String())

	if outcome == InstallSucceededRebootRequired {
		logger.Warn(ctx, "The installer requested a reboot; restart this machine to finish the installation")
	}

	r.injectConfig(ctx)

	if r.opts.StartAfterInstall {
		if err = r.launchClient(ctx); err != nil {
			logger.WarnKV(ctx, "Unable to start the client; start it manually", "error", err)
		}
	}

	return nil
}

// injectConfig writes the relay/API/key directives. Installation already
// succeeded by the time this runs, so every failure here is a warning with
// a manual-configuration hint, never a run failure.
func (r *runner) injectConfig(ctx context.Context) {
	fragment := NewFragment(r.relayServer, r.apiServer, r.key)
	if fragment.Empty() {
		logger.Debug(ctx, "No topology parameters supplied, leaving client configuration untouched")
		return
	}

	path := r.configFilePath
	if path == "" {
		resolved, err := DefaultConfigFilePath()
		if err != nil {
			logger.WarnKV(ctx,
				"Unable to locate the client configuration file; configure the client manually",
				"error", err)

			return
		}

		path = resolved
	}

	injector := &Injector{Path: path}
	if err := injector.Apply(ctx, fragment); err != nil {
		logger.WarnKV(ctx,
			"Unable to write client configuration; configure the client manually",
			"path", path, "error", err)
	}
}
