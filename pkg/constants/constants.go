package constants

// CLIName is the command name used in user-facing output
const CLIName = "yamlls"

// DiagnosticSource names the producer of diagnostics in editor output
const DiagnosticSource = "yaml"
