package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	DataDir         string `json:"data_dir"`
	LogLevel        string `json:"log_level"`
	MaxConcurrent   int    `json:"max_concurrent"`
	Language        string `json:"language"`
	SessionTTLHours int    `json:"session_ttl_hours"`
	Database        struct {
		Path string `json:"path"`
	} `json:"database"`
	HTTP struct {
		Addr string `json:"addr"`
	} `json:"http"`
	Telegram struct {
		Token string `json:"token"`
	} `json:"telegram"`
	TTS struct {
		BaseURL string `json:"base_url"`
		APIKey  string `json:"api_key"`
	} `json:"tts"`
	Reminders struct {
		Schedule string `json:"schedule"`
	} `json:"reminders"`
}

// ModelPath is where the trained intent model is persisted.
func (c *Config) ModelPath() string {
	return filepath.Join(c.DataDir, "intent.model")
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		DataDir:         filepath.Join(os.Getenv("HOME"), ".cartable"),
		LogLevel:        "info",
		MaxConcurrent:   2,
		Language:        "fr",
		SessionTTLHours: 24,
	}
	cfg.Database.Path = filepath.Join(cfg.DataDir, "cartable.db")
	cfg.HTTP.Addr = ":8080"
	cfg.Reminders.Schedule = "0 7 * * *"

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := writeDefaults(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if tgToken := os.Getenv("TELEGRAM_BOT_TOKEN"); tgToken != "" {
		cfg.Telegram.Token = tgToken
	}
	if ttsURL := os.Getenv("TTS_BASE_URL"); ttsURL != "" {
		cfg.TTS.BaseURL = ttsURL
	}
	if ttsKey := os.Getenv("TTS_API_KEY"); ttsKey != "" {
		cfg.TTS.APIKey = ttsKey
	}
	if dbPath := os.Getenv("CARTABLE_DB"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	return cfg, nil
}

func writeDefaults(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename default config: %w", err)
	}
	return nil
}
