package ir

// Version constants for serialized records.
const (
	// BundleVersion is the rule bundle schema version.
	BundleVersion = "1"

	// CompilerVersion is the twolc compiler version.
	CompilerVersion = "0.1.0"
)
