package utils

import (
	"os"
	"path/filepath"
)

const (
	storeDirName     = ".settings-store"
	settingsFileName = "settings.json"
)

func GetStoreDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, storeDirName), nil
}

func GetDefaultSettingsPath() (string, error) {
	storeDir, err := GetStoreDirectory()
	if err != nil {
		return "", err
	}

	return filepath.Join(storeDir, settingsFileName), nil
}
