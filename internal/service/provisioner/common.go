package provisioner

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// LatestVersionToken is the sentinel resolved via the metadata endpoint.
	LatestVersionToken = "latest"

	// DefaultMetadataURL is the public release-metadata endpoint.
	DefaultMetadataURL = "https://api.github.com/repos/rustdesk/rustdesk/releases/latest"

	// DefaultDownloadBase is the public release download channel.
	DefaultDownloadBase = "https://github.com/rustdesk/rustdesk/releases/download"

	// ClientConfigFilename is the client's persistent configuration file.
	ClientConfigFilename = "RustDesk2.toml"

	// BackupSuffix is appended to the configuration path for the
	// single-generation pre-write backup.
	BackupSuffix = ".bak"

	// installerFilenameTemplate is the fixed artifact filename; the
	// architecture is pinned to the 64-bit variant.
	installerFilenameTemplate = "rustdesk-%s-x86_64.exe"

	// silentInstallFlag suppresses all installer prompts.
	silentInstallFlag = "--silent-install"

	// serviceInstallFlag registers the client as a system service.
	serviceInstallFlag = "--install-service"

	// rebootRequiredExitCode is the Windows installer convention for
	// "succeeded, reboot pending".
	rebootRequiredExitCode = 3010

	// baseClientExecutable is the client binary name without extension.
	baseClientExecutable = "rustdesk"

	// artifactFileMode makes the downloaded installer runnable.
	artifactFileMode os.FileMode = 0o755

	// configFileMode is used when the configuration file is first created.
	configFileMode os.FileMode = 0o600
)

// DefaultConfigFilePath returns the platform-specific location of the
// client configuration file.
func DefaultConfigFilePath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}

	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return filepath.Join(base, "RustDesk", "config", ClientConfigFilename), nil
	}

	return filepath.Join(base, baseClientExecutable, ClientConfigFilename), nil
}

// defaultLaunchCandidates returns the ordered list of plausible install
// locations probed when starting the client after install.
func defaultLaunchCandidates() []string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return []string{
			`C:\Program Files\RustDesk\rustdesk.exe`,
			`C:\Program Files (x86)\RustDesk\rustdesk.exe`,
		}
	}

	return []string{
		"/usr/bin/rustdesk",
		"/usr/local/bin/rustdesk",
	}
}

// clientExecutable returns the client process name for this platform.
func clientExecutable() string {
	return baseClientExecutable + getExecutableExtension()
}

// getExecutableExtension returns ".exe" on Windows and "" elsewhere.
func getExecutableExtension() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return ".exe"
	}

	return ""
}
