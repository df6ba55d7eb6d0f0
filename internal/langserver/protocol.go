package langserver

// Wire types for the slice of the analysis-server protocol this client uses.
// The server speaks the LSP base protocol; the robot/* methods are
// server-specific extensions.

// Methods sent to the server.
const (
	MethodInitialize  = "initialize"
	MethodInitialized = "initialized"
	MethodShutdown    = "shutdown"
	MethodExit        = "exit"

	// MethodEnvironmentInfo asks for the resolved tool environment of a
	// workspace folder.
	MethodEnvironmentInfo = "robot/environment/info"

	// MethodClearCache asks the server to drop its analysis caches.
	MethodClearCache = "robot/cache/clear"

	// MethodSetLogLevel adjusts server-side log verbosity.
	MethodSetLogLevel = "robot/log/setLevel"

	// MethodDidChangeConfiguration notifies the server of settings changes.
	MethodDidChangeConfiguration = "workspace/didChangeConfiguration"
)

// Notifications received from the server.
const (
	MethodWindowLogMessage = "window/logMessage"
	MethodCancelRequest    = "$/cancelRequest"
)

// WorkspaceFolder is sent during initialize.
type WorkspaceFolder struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// ClientInfo identifies this client to the server.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// InitializeParams is the payload of the initialize request.
type InitializeParams struct {
	ProcessID             int               `json:"processId"`
	ClientInfo            *ClientInfo       `json:"clientInfo,omitempty"`
	RootURI               string            `json:"rootUri,omitempty"`
	WorkspaceFolders      []WorkspaceFolder `json:"workspaceFolders,omitempty"`
	InitializationOptions any               `json:"initializationOptions,omitempty"`
}

// InitializeResult is the payload of the initialize response.
type InitializeResult struct {
	Capabilities map[string]any  `json:"capabilities"`
	ServerInfo   *ServerInfoData `json:"serverInfo,omitempty"`
}

// ServerInfoData identifies the server implementation.
type ServerInfoData struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// InitializationOptions carries folder-scoped settings to the server.
type InitializationOptions struct {
	Profiles       []string `json:"profiles,omitempty"`
	DiagnosticMode string   `json:"diagnosticMode,omitempty"`
	RobocopEnabled bool     `json:"robocopEnabled"`
	ExtraArgs      []string `json:"extraArgs,omitempty"`
}

// EnvironmentInfoParams scopes an environment query to one folder.
type EnvironmentInfoParams struct {
	FolderURI string `json:"folderUri"`
}

// EnvironmentInfo is the server's view of the tool environment for a folder.
// Fields are empty when the corresponding tool is not installed.
type EnvironmentInfo struct {
	PythonVersion  string `json:"pythonVersion,omitempty"`
	PythonPath     string `json:"pythonPath,omitempty"`
	RobotVersion   string `json:"robotVersion,omitempty"`
	RobocopVersion string `json:"robocopVersion,omitempty"`
	TidyVersion    string `json:"tidyVersion,omitempty"`
}

// SetLogLevelParams adjusts server log verbosity.
type SetLogLevelParams struct {
	Level     string   `json:"level"`
	ExtraArgs []string `json:"extraArgs,omitempty"`
}

// DidChangeConfigurationParams carries updated settings.
type DidChangeConfigurationParams struct {
	Settings any `json:"settings"`
}

// LogMessageParams is the window/logMessage payload.
type LogMessageParams struct {
	Type    int    `json:"type"` // 1=error 2=warning 3=info 4=log
	Message string `json:"message"`
}

// CancelParams is the $/cancelRequest payload.
type CancelParams struct {
	ID int64 `json:"id"`
}
