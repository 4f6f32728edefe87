package settings

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

func ReadConfig(jsonStr string) (*Settings, error) {
	viper.Reset()
	viper.SetConfigName("settings")
	viper.SetConfigType("json")

	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvPrefix(strings.ToLower(envPrefix))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	ApplyRegistryDefaults()

	if jsonStr != "" {
		if err := viper.ReadConfig(strings.NewReader(jsonStr)); err != nil {
			return nil, err
		}
	} else {
		if err := viper.ReadInConfig(); err != nil {
			var configFileNotFoundError viper.ConfigFileNotFoundError
			if !errors.As(err, &configFileNotFoundError) {
				return nil, err
			}
		}
	}

	dbTypeToUse, err := ParseDBType(viper.GetString(DBType))
	if err != nil {
		return nil, err
	}

	sourceToUse, err := ParseSourceType(viper.GetString(Source))
	if err != nil {
		return nil, err
	}

	var repositories []GitRepository
	if err := viper.UnmarshalKey(GitRepositories, &repositories); err != nil || repositories == nil {
		repositories = make([]GitRepository, 0)
	}

	s := &Settings{
		IP:       viper.GetString(IP),
		Port:     viper.GetString(Port),
		LogLevel: viper.GetString(Loglevel),
		DBType:   dbTypeToUse,
		DBSettings: DBSettings{
			Filename: viper.GetString(DBSettingsFilename),
			Host:     viper.GetString(DBSettingsHost),
			Port:     viper.GetString(DBSettingsPort),
			Database: viper.GetString(DBSettingsDatabase),
			User:     viper.GetString(DBSettingsUser),
			Password: viper.GetString(DBSettingsPassword),
		},
		Source: sourceToUse,
		Remote: RemoteSettings{
			URL:       strings.TrimRight(viper.GetString(RemoteURL), "/"),
			RetryMax:  viper.GetInt(RemoteRetryMax),
			TimeoutMs: viper.GetInt(RemoteTimeoutMs),
		},
		Git: GitSettings{
			Binary:       viper.GetString(GitBinary),
			Repositories: repositories,
		},
		Cache: CacheSettings{
			Size:       viper.GetInt(CacheSize),
			TTLSeconds: viper.GetInt(CacheTTLSeconds),
		},
		Panel: PanelSettings{
			RenderTimeoutMs: viper.GetInt(PanelRenderTimeoutMs),
			Placement:       viper.GetString(PanelPlacement),
		},
	}

	return s, nil
}
