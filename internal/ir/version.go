package ir

// Version constants for the wire/data model and the engine.
const (
	// IRVersion is the data model version. Bump when canonical encodings change.
	IRVersion = "1"

	// EngineVersion is the nucleus engine version.
	EngineVersion = "0.1.0"
)
