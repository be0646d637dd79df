// Package config loads the daemon's immutable configuration snapshot from
// a dotenv file, a structured JSON settings file, a voice-personalities
// markdown file, and a pronunciations JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"

	"github.com/pai-voice/paivoiced/internal/dlog"
	"github.com/pai-voice/paivoiced/internal/voiceconf"
)

var log = dlog.For("config")

// EnvConfig is the subset of configuration bound directly from
// environment variables populated by the dotenv file.
type EnvConfig struct {
	Port             int    `env:"PORT" envDefault:"8888"`
	ElevenLabsAPIKey string `env:"ELEVENLABS_API_KEY"`
	ElevenLabsVoice  string `env:"ELEVENLABS_VOICE_ID"`
	TTSEngine        string `env:"PAI_TTS_ENGINE"`
	PiperModel       string `env:"PIPER_MODEL"`
	PiperModelDir    string `env:"PIPER_MODEL_DIR"`
	Qwen3Port        int    `env:"QWEN3_INTERNAL_PORT" envDefault:"8889"`
}

// Settings is the structured settings file's shape.
type Settings struct {
	DAIdentity struct {
		VoiceID string            `json:"voiceId"`
		Name    string            `json:"name"`
		Voice   voiceconf.Prosody `json:"voice"`
	} `json:"daidentity"`
	ReducedVoiceFeedback bool `json:"reducedVoiceFeedback"`
}

// Config is the daemon's immutable, post-load configuration snapshot.
type Config struct {
	Port                 int
	ElevenLabsAPIKey     string
	ElevenLabsVoiceID    string
	PreferredEngine      string // "piper" (neural-cpu), "qwen3" (neural-gpu), or ""
	PiperModel           string
	PiperModelDir        string
	Qwen3Port            int
	DefaultVoiceID       string
	OwnerName            string
	ReducedVoiceFeedback bool
	DefaultVoiceProsody  voiceconf.Prosody
	Voices               map[string]voiceconf.VoiceConfig
	Pronunciations       voiceconf.PronunciationMap
}

// CloudConfigured reports whether a usable ElevenLabs credential is
// present (non-empty, non-placeholder).
func (c Config) CloudConfigured() bool {
	v := strings.TrimSpace(c.ElevenLabsAPIKey)
	if v == "" {
		return false
	}
	lower := strings.ToLower(v)
	return lower != "your-api-key-here" && lower != "changeme" && lower != "placeholder"
}

const (
	dotenvFilename     = ".env"
	settingsFilename   = "settings.json"
	voicesFilename     = "voices.md"
	pronounceFilename  = "pronunciations.json"
	appScope           = "paivoiced"
)

// Load resolves every configuration file, applies defaults, and returns an
// immutable snapshot. Missing optional files are logged and skipped —
// per-back-end availability is decided later by the probe package.
func Load() (Config, error) {
	envCfg, err := loadDotenv()
	if err != nil {
		log.Warn("dotenv load failed, continuing with process environment", "err", err)
		envCfg = EnvConfig{Port: 8888, Qwen3Port: 8889}
		_ = env.Parse(&envCfg)
	}

	settings, err := loadSettings()
	if err != nil {
		log.Warn("structured settings load failed, using defaults", "err", err)
	}

	voices, err := loadVoicePersonalities()
	if err != nil {
		log.Warn("voice personalities load failed, continuing with none", "err", err)
	}

	pronunciations, err := loadPronunciations()
	if err != nil {
		log.Warn("pronunciations load failed, continuing with none", "err", err)
	}

	cfg := Config{
		Port:                 envCfg.Port,
		ElevenLabsAPIKey:     envCfg.ElevenLabsAPIKey,
		ElevenLabsVoiceID:    envCfg.ElevenLabsVoice,
		PreferredEngine:      envCfg.TTSEngine,
		PiperModel:           envCfg.PiperModel,
		PiperModelDir:        envCfg.PiperModelDir,
		Qwen3Port:            envCfg.Qwen3Port,
		DefaultVoiceID:       settings.DAIdentity.VoiceID,
		OwnerName:            settings.DAIdentity.Name,
		ReducedVoiceFeedback: settings.ReducedVoiceFeedback,
		DefaultVoiceProsody:  voiceconf.DefaultProsody().Merge(settings.DAIdentity.Voice),
		Voices:               voices,
		Pronunciations:       pronunciations,
	}

	if cfg.DefaultVoiceID == "" {
		cfg.DefaultVoiceID = cfg.ElevenLabsVoiceID
	}

	return cfg, nil
}

func configDir() (string, error) {
	if c := os.Getenv("PAIVOICED_CONFIG_HOME"); c != "" {
		return c, nil
	}

	scope := gap.NewScope(gap.User, appScope)
	dirs, err := scope.ConfigDirs()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	if len(dirs) == 0 {
		return "", fmt.Errorf("no config directories resolved")
	}
	return dirs[0], nil
}

func loadDotenv() (EnvConfig, error) {
	home, err := homedir.Dir()
	if err != nil {
		return EnvConfig{}, fmt.Errorf("resolve home directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("env")
	v.SetConfigName(dotenvFilename)
	v.AddConfigPath(home)

	path := filepath.Join(home, dotenvFilename)
	if _, statErr := os.Stat(path); statErr == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return EnvConfig{}, fmt.Errorf("parse dotenv: %w", err)
		}
		for _, key := range v.AllKeys() {
			envKey := strings.ToUpper(key)
			if os.Getenv(envKey) == "" {
				_ = os.Setenv(envKey, stripQuotes(v.GetString(key)))
			}
		}
	} else {
		log.Debug("no dotenv file found", "path", path)
	}

	cfg := EnvConfig{Port: 8888, Qwen3Port: 8889}
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("bind environment: %w", err)
	}
	return cfg, nil
}

func stripQuotes(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

func loadSettings() (Settings, error) {
	dir, err := configDir()
	if err != nil {
		return Settings{}, err
	}
	path := filepath.Join(dir, settingsFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, nil
		}
		return Settings{}, err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

var fencedJSONBlock = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)\\n```")

func loadVoicePersonalities() (map[string]voiceconf.VoiceConfig, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, voicesFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	match := fencedJSONBlock.FindSubmatch(data)
	if match == nil {
		return nil, fmt.Errorf("no fenced JSON block found in %s", path)
	}

	var parsed voiceconf.VoicePersonalities
	if err := json.Unmarshal(match[1], &parsed); err != nil {
		return nil, fmt.Errorf("parse voice personalities block: %w", err)
	}
	return parsed.Voices, nil
}

func loadPronunciations() (voiceconf.PronunciationMap, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, pronounceFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var m voiceconf.PronunciationMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}
