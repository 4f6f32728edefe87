package settings

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	IP       = "ip"
	Port     = "port"
	Loglevel = "loglevel"

	DBType             = "dbType"
	DBSettingsFilename = "dbSettings.filename"
	DBSettingsHost     = "dbSettings.host"
	DBSettingsPort     = "dbSettings.port"
	DBSettingsDatabase = "dbSettings.database"
	DBSettingsUser     = "dbSettings.user"
	DBSettingsPassword = "dbSettings.password"

	Source          = "source"
	RemoteURL       = "remote.url"
	RemoteRetryMax  = "remote.retryMax"
	RemoteTimeoutMs = "remote.timeoutMs"
	GitBinary       = "git.binary"
	GitRepositories = "git.repositories"

	CacheSize       = "cache.size"
	CacheTTLSeconds = "cache.ttlSeconds"

	PanelRenderTimeoutMs = "panel.renderTimeoutMs"
	PanelPlacement       = "panel.placement"
)

type ConfigKey struct {
	Key         string
	Default     any
	Description string
}

const envPrefix = "REVPANEL"

func EnvVar(key string) string {
	return envPrefix + "_" + strings.ToUpper(
		strings.ReplaceAll(key, ".", "_"),
	)
}

var Registry = []ConfigKey{
	// ---------------------------------------------------------------------
	// Core
	// ---------------------------------------------------------------------
	{Key: IP, Default: "0.0.0.0", Description: "Bind address"},
	{Key: Port, Default: "9001", Description: "HTTP server port"},
	{Key: Loglevel, Default: "INFO", Description: "Log level (DEBUG, INFO, WARN, ERROR)"},

	// ---------------------------------------------------------------------
	// Database
	// ---------------------------------------------------------------------
	{Key: DBType, Default: SQLITE.String(), Description: "Database type (memory, sqlite, postgres)"},
	{
		Key:         DBSettingsFilename,
		Default:     "var/revpanel.db",
		Description: "SQLite database filename",
	},
	{Key: DBSettingsHost, Default: "localhost", Description: "Database host"},
	{Key: DBSettingsPort, Default: "5432", Description: "Database port"},
	{Key: DBSettingsDatabase, Default: "revpanel", Description: "Database name"},
	{Key: DBSettingsUser, Default: "", Description: "Database user"},
	{Key: DBSettingsPassword, Default: "", Description: "Database password"},

	// ---------------------------------------------------------------------
	// Metadata source
	// ---------------------------------------------------------------------
	{
		Key:         Source,
		Default:     SourceStore.String(),
		Description: "Where revision metadata is looked up (store, git, remote)",
	},
	{
		Key:         RemoteURL,
		Default:     "http://localhost:9001",
		Description: "Base URL of the remote metadata service",
	},
	{Key: RemoteRetryMax, Default: 3, Description: "Retries for remote lookups"},
	{Key: RemoteTimeoutMs, Default: 5000, Description: "Timeout of a single remote lookup"},
	{Key: GitBinary, Default: "git", Description: "git executable used for working copies"},
	{
		Key:         GitRepositories,
		Default:     []GitRepository{},
		Description: "Working copies per application ([{application, path}])",
	},

	// ---------------------------------------------------------------------
	// Cache
	// ---------------------------------------------------------------------
	{Key: CacheSize, Default: 1024, Description: "Cached lookups (0 disables the cache)"},
	{Key: CacheTTLSeconds, Default: 60, Description: "Lifetime of a cached lookup"},

	// ---------------------------------------------------------------------
	// Panel
	// ---------------------------------------------------------------------
	{
		Key:         PanelRenderTimeoutMs,
		Default:     3000,
		Description: "How long a panel fragment waits for its lookup",
	},
	{
		Key:         PanelPlacement,
		Default:     "bottom",
		Description: "Tooltip placement (top, bottom, left, right)",
	},
}

func ApplyRegistryDefaults() {
	for _, c := range Registry {
		viper.SetDefault(c.Key, c.Default)
	}
}
