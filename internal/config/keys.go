package config

// Setting keys recognized by the companion and forwarded to the analysis
// server. Keys are dot-separated paths into the settings JSON document.
const (
	// KeyDiagnosticMode selects how much of the workspace the analysis
	// server diagnoses. Valid values: DiagnosticModeOpenFiles,
	// DiagnosticModeWorkspace.
	KeyDiagnosticMode = "robotcode.analysis.diagnosticMode"

	// KeyRobocopEnabled toggles Robocop linting.
	KeyRobocopEnabled = "robotcode.robocop.enabled"

	// KeyProfiles is the list of active configuration profile names.
	KeyProfiles = "robotcode.profiles"

	// KeyExtraArgs is the list of extra log-verbosity arguments passed to
	// the language server.
	KeyExtraArgs = "robotcode.languageServer.extraArgs"

	// KeyPythonPath pins the Python interpreter used for the folder.
	KeyPythonPath = "robotcode.python.path"
)

// Diagnostic mode values.
const (
	DiagnosticModeOpenFiles = "openFilesOnly"
	DiagnosticModeWorkspace = "workspace"
)

// Defaults applied when a key is absent at every scope.
var defaults = map[string]any{
	KeyDiagnosticMode: DiagnosticModeOpenFiles,
	KeyRobocopEnabled: true,
}
