package provisioner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deskops/rustdesk-provisioner/internal/logger"
)

// Entry is one key/value directive of a configuration fragment.
type Entry struct {
	Key   string
	Value string
}

// Fragment is the ordered set of directives appended to the client
// configuration file. Values are interpolated as opaque strings between
// single quotes with no escaping; a value containing a single-quote
// character corrupts its line, which is a precondition violation of the
// caller, not a handled case.
type Fragment struct {
	entries []Entry
}

// NewFragment builds a fragment from the caller's topology parameters,
// keeping the fixed relay/API/key order and skipping empty fields.
func NewFragment(relayServer, apiServer, key string) Fragment {
	var f Fragment

	f.add("relay-server", relayServer)
	f.add("api-server", apiServer)
	f.add("key", key)

	return f
}

func (f *Fragment) add(key, value string) {
	if value == "" {
		return
	}

	f.entries = append(f.entries, Entry{Key: key, Value: value})
}

// Empty reports whether the fragment carries no directives.
func (f Fragment) Empty() bool {
	return len(f.entries) == 0
}

// Entries returns the directives in serialization order.
func (f Fragment) Entries() []Entry {
	return f.entries
}

// Render serializes the fragment as `key = 'value'` lines, one per
// directive, each terminated by a newline.
func (f Fragment) Render() string {
	var b strings.Builder
	for _, e := range f.entries {
		fmt.Fprintf(&b, "%s = '%s'\n", e.Key, e.Value)
	}

	return b.String()
}

// Injector appends a configuration fragment to the client's persistent
// configuration file, preserving prior content byte-for-byte in a
// single-generation backup.
//
// The file belongs to the user and the installed client, not to this tool:
// the injector never truncates, parses or rewrites it. Repeated runs
// accumulate duplicate directives; whichever occurrence the client treats
// as authoritative is a consumer-side concern.
type Injector struct {
	// Path is the configuration file location.
	Path string
	// BackupSuffix overrides the default backup suffix when non-empty.
	BackupSuffix string
}

// Apply merges the fragment into the configuration file.
// An empty fragment is a complete no-op: no file, directory or backup is
// created or touched.
func (in *Injector) Apply(ctx context.Context, fragment Fragment) error {
	if fragment.Empty() {
		return nil
	}

	path := filepath.Clean(in.Path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := in.backupExisting(ctx, path); err != nil {
		return err
	}

	if err := appendToFile(path, fragment.Render()); err != nil {
		return fmt.Errorf("append config fragment: %w", err)
	}

	logger.InfoKV(ctx, "Wrote client configuration",
		"path", path, "directives", len(fragment.Entries()))

	return nil
}

// backupExisting copies the current file verbatim to the backup path,
// overwriting any backup from an earlier run. A missing file means a fresh
// install; nothing to preserve.
func (in *Injector) backupExisting(ctx context.Context, path string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("read existing config: %w", err)
	}

	suffix := in.BackupSuffix
	if suffix == "" {
		suffix = BackupSuffix
	}

	backupPath := path + suffix
	if err = os.WriteFile(backupPath, contents, configFileMode); err != nil {
		return fmt.Errorf("back up existing config: %w", err)
	}

	logger.InfoKV(ctx, "Backed up existing client configuration", "path", backupPath)

	return nil
}

// appendToFile appends data to the file, creating it if absent.
func appendToFile(path, data string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, configFileMode)
	if err != nil {
		return err
	}

	_, err = file.WriteString(data)
	if closeErr := file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}
