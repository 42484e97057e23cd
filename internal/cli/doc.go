// Package cli implements the gpumon command-line interface.
//
// The root command opens the dashboard. Every command resolves its
// settings the same way: the config file (see internal/config), then
// GPUMON_* environment variables, then the global flags the user set.
//
//	gpumon               - Live dashboard (same as 'gpumon monitor')
//	gpumon watch         - Headless polling with optional /metrics server
//	gpumon query         - One poll, printed as text, summary, JSON or YAML
//	gpumon doctor        - Check the config and the query tool
//	gpumon init          - Create .gpumon.yaml
//	gpumon config set    - Edit one config value
//	gpumon version       - Build information
//
// # Output
//
// Machine-readable output uses JSONEnvelope so callers can branch on
// "success" and read a stable error code. Commands that already reported
// a failure in their output return errors.ExitError to set the exit
// status without printing a second message.
//
// # Dashboard vs. headless
//
// When stdout is not a terminal the root command behaves like 'watch',
// logging to stderr. The dashboard logs to the configured log file so
// output never corrupts the alternate screen.
package cli
