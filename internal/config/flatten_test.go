package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFlattenUnflattenRoundtrip(t *testing.T) {
	nested := map[string]any{
		"data_dir": "/data",
		"tts": map[string]any{
			"base_url": "http://tts.local",
			"api_key":  "secret",
		},
	}

	flat := Flatten(nested)
	if flat["data_dir"] != "/data" {
		t.Errorf("data_dir = %v", flat["data_dir"])
	}
	if flat["tts.base_url"] != "http://tts.local" {
		t.Errorf("tts.base_url = %v", flat["tts.base_url"])
	}

	back := Unflatten(flat)
	tts, ok := back["tts"].(map[string]any)
	if !ok {
		t.Fatalf("tts not a map: %v", back["tts"])
	}
	if tts["api_key"] != "secret" {
		t.Errorf("api_key = %v", tts["api_key"])
	}
}

func TestMaskSecrets(t *testing.T) {
	flat := map[string]any{
		"telegram.token": "123456:ABCDEF",
		"tts.api_key":    "",
		"language":       "fr",
	}
	masked := MaskSecrets(flat)

	if masked["telegram.token"] != "***CDEF" {
		t.Errorf("token = %v", masked["telegram.token"])
	}
	if masked["tts.api_key"] != "" {
		t.Errorf("empty secret should stay empty, got %v", masked["tts.api_key"])
	}
	if masked["language"] != "fr" {
		t.Errorf("non-secret changed: %v", masked["language"])
	}
}

func TestMaskSecretsShortValue(t *testing.T) {
	masked := MaskSecrets(map[string]any{"tts.api_key": "abcd"})
	if masked["tts.api_key"] != "***abcd" {
		t.Errorf("got %v", masked["tts.api_key"])
	}
}

func TestListValuesMasksSecrets(t *testing.T) {
	cfg := &Config{LogLevel: "info"}
	cfg.Telegram.Token = "123456:ABCDEF"

	values, err := ListValues(cfg, true)
	if err != nil {
		t.Fatal(err)
	}
	if values["telegram.token"] != "***CDEF" {
		t.Errorf("token = %v", values["telegram.token"])
	}
	if values["log_level"] != "info" {
		t.Errorf("log_level = %v", values["log_level"])
	}
}

func TestGetSetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"log_level": "info", "tts": {"base_url": ""}}`), 0644); err != nil {
		t.Fatal(err)
	}

	if err := SetValue(path, "tts.base_url", "http://tts.local"); err != nil {
		t.Fatal(err)
	}
	val, err := GetValue(path, "tts.base_url")
	if err != nil {
		t.Fatal(err)
	}
	if val != "http://tts.local" {
		t.Errorf("got %v", val)
	}

	// Numeric values are coerced.
	if err := SetValue(path, "max_concurrent", "4"); err != nil {
		t.Fatal(err)
	}
	val, err = GetValue(path, "max_concurrent")
	if err != nil {
		t.Fatal(err)
	}
	if val != float64(4) {
		t.Errorf("got %v (%T), want 4", val, val)
	}

	if _, err := GetValue(path, "no.such.key"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestIsSecretKey(t *testing.T) {
	if !IsSecretKey("telegram.token") || !IsSecretKey("tts.api_key") {
		t.Error("expected secret keys to be recognized")
	}
	if IsSecretKey("language") {
		t.Error("language is not a secret")
	}
}
