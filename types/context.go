package types

// DefaultVersion is the fallback version when AppContext is nil
const DefaultVersion = "dev"

// AppContext holds application-wide context information passed to commands
type AppContext struct {
	Version    string
	ConfigPath string // optional TOML config, empty for defaults
}

// VersionOrDefault returns the version, tolerating a nil context
func (a *AppContext) VersionOrDefault() string {
	if a == nil || a.Version == "" {
		return DefaultVersion
	}
	return a.Version
}

// ConfigPathOrEmpty returns the config path, tolerating a nil context
func (a *AppContext) ConfigPathOrEmpty() string {
	if a == nil {
		return ""
	}
	return a.ConfigPath
}
