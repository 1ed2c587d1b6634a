// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration driven by the --quiet and --log-level switches,
//   - convenience functions (Infof, WarnKV, etc.).
//
// Every provisioning step takes a context and extracts the logger from it, so
// step names travel with the messages they produce.
package logger
