package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCommandsRegistered(t *testing.T) {
	wanted := map[string]bool{
		"run":      false,
		"validate": false,
		"version":  false,
	}

	for _, cmd := range rootCmd.Commands() {
		if _, ok := wanted[cmd.Name()]; ok {
			wanted[cmd.Name()] = true
		}
	}

	for name, found := range wanted {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestVersionCommandExists(t *testing.T) {
	if versionCmd == nil {
		t.Fatal("versionCmd is nil")
	}
	if versionCmd.Use != "version" {
		t.Errorf("versionCmd.Use = %q, want %q", versionCmd.Use, "version")
	}
	if versionCmd.Run == nil {
		t.Error("versionCmd.Run should not be nil")
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "classifier:\n  base_url: \"http://127.0.0.1:9000\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	origCfgFile := cfgFile
	defer func() { cfgFile = origCfgFile }()
	cfgFile = path

	if err := validateConfig(validateCmd, nil); err != nil {
		t.Errorf("validateConfig() error = %v", err)
	}

	cfgFile = filepath.Join(dir, "missing.yaml")
	if err := validateConfig(validateCmd, nil); err == nil {
		t.Error("validateConfig() with missing file should fail")
	}
}
