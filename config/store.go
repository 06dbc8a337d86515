package config

import (
	"os"
	"path/filepath"

	"github.com/kardolus/settings-store/utils"
	"gopkg.in/yaml.v3"
)

const (
	defaultName             = "settings"
	defaultLockMaxRetries   = 5
	defaultLockRetryDelayMS = 100

	configFileName = "config.yaml"
)

type ConfigStore interface {
	Read() (Config, error)
	ReadDefaults() Config
	Write(Config) error
}

// Ensure FileIO implements ConfigStore interface
var _ ConfigStore = &FileIO{}

type FileIO struct {
	configFilePath string
}

func New() *FileIO {
	path, _ := getPath()
	return &FileIO{
		configFilePath: path,
	}
}

func (f *FileIO) WithConfigPath(configFilePath string) *FileIO {
	f.configFilePath = configFilePath
	return f
}

func (f *FileIO) Read() (Config, error) {
	return parseFile(f.configFilePath)
}

func (f *FileIO) ReadDefaults() Config {
	settingsPath, _ := utils.GetDefaultSettingsPath()

	return Config{
		Name:             defaultName,
		SettingsPath:     settingsPath,
		LockMaxRetries:   defaultLockMaxRetries,
		LockRetryDelayMS: defaultLockRetryDelayMS,
	}
}

func (f *FileIO) Write(config Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.configFilePath), 0755); err != nil {
		return err
	}

	return os.WriteFile(f.configFilePath, data, 0644)
}

func getPath() (string, error) {
	storeDir, err := utils.GetStoreDirectory()
	if err != nil {
		return "", err
	}

	return filepath.Join(storeDir, configFileName), nil
}

func parseFile(fileName string) (Config, error) {
	var result Config

	buf, err := os.ReadFile(fileName)
	if err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(buf, &result); err != nil {
		return Config{}, err
	}

	return result, nil
}
