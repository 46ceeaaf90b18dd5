package config

// Set at build time with -ldflags "-X ..."
var (
	CompiledInVersion = "dev"
	CompiledInBuild   = "unknown"
)
