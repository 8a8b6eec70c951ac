// Package config defines deployment settings used by the provisioner and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds endpoint overrides for release metadata and artifact
// downloads plus fleet-wide relay/API/key defaults; command-line flags take
// precedence over anything loaded from the file.
package config
