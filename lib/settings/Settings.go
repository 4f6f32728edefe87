package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

type DBSettings struct {
	Filename string
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

type RemoteSettings struct {
	URL       string
	RetryMax  int
	TimeoutMs int
}

type GitRepository struct {
	Application string `mapstructure:"application" json:"application"`
	Path        string `mapstructure:"path" json:"path"`
}

type GitSettings struct {
	Binary       string
	Repositories []GitRepository
}

type CacheSettings struct {
	Size       int
	TTLSeconds int
}

func (c CacheSettings) Enabled() bool {
	return c.Size > 0 && c.TTLSeconds > 0
}

func (c CacheSettings) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type PanelSettings struct {
	RenderTimeoutMs int
	Placement       string
}

func (p PanelSettings) RenderTimeout() time.Duration {
	return time.Duration(p.RenderTimeoutMs) * time.Millisecond
}

type Settings struct {
	Root       string
	IP         string
	Port       string
	LogLevel   string
	DBType     IDBType
	DBSettings DBSettings
	Source     ISourceType
	Remote     RemoteSettings
	Git        GitSettings
	Cache      CacheSettings
	Panel      PanelSettings
	GitVersion string
}

// RepositoryPaths maps every configured application to its working copy.
// The first entry of an application listed twice wins.
func (s Settings) RepositoryPaths() map[string]string {
	paths := make(map[string]string, len(s.Git.Repositories))
	for _, repo := range s.Git.Repositories {
		if _, ok := paths[repo.Application]; !ok {
			paths[repo.Application] = repo.Path
		}
	}
	return paths
}

var Displayed Settings

// InitSettings loads settings.json from the working directory, falling back
// to defaults and environment variables when the file is missing.
func InitSettings(logger *zap.SugaredLogger) error {
	pathToRoot, err := os.Getwd()
	if err != nil {
		return err
	}

	settingsFilePath := filepath.Join(pathToRoot, "settings.json")
	settingsContent, err := os.ReadFile(settingsFilePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("error reading %s: %w", settingsFilePath, err)
		}
		logger.Infof("No settings file at %s, default settings will be used", settingsFilePath)
	}

	setting, err := ReadConfig(string(settingsContent))
	if err != nil {
		return err
	}
	setting.GitVersion = GitVersion()
	setting.Root = pathToRoot
	Displayed = *setting
	return nil
}
