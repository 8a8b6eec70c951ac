// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a sane console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, WarnKV, etc.).
//
// Every stage of the provisioner accepts a context and extracts the logger
// from it, so warnings and advisories carry the component name that
// produced them.
package logger
