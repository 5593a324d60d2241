// Package appinfo provides application identity constants.
// These are used across packages for consistent naming.
package appinfo

const (
	// AppName is the display name of the application.
	AppName = "Planilha Festas"

	// DirName is the directory name used for storing application data.
	// Location: ~/.config/planilha-festas/ or the platform equivalent.
	DirName = "planilha-festas"

	// ConfigFileName is the configuration file name.
	ConfigFileName = "config.json"

	// OverridesFileName is the image override table file name.
	OverridesFileName = "overrides.yaml"

	// DatabaseFileName is the SQLite database file name.
	DatabaseFileName = "planilha.sqlite"

	// MutexName is the Windows named mutex used for single instance
	// control. Session-scoped (no Global\ prefix).
	MutexName = "PlanilhaFestasMutex"
)
