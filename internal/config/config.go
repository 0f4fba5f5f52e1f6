package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv  = "ANESTH_UPDATE_CONFIG"
	emailEnv       = "EMAIL"
	geminiKeyEnv   = "GEMINI_API_KEY"
	geminiModelEnv = "GEMINI_MODEL"
	lineTokenEnv   = "LINE_CHANNEL_ACCESS_TOKEN"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Storage       StorageConfig      `yaml:"storage"`
	PubMed        PubMedConfig       `yaml:"pubmed"`
	Gemini        GeminiConfig       `yaml:"gemini"`
	Notifications NotificationConfig `yaml:"notifications"`
	Dashboard     DashboardConfig    `yaml:"dashboard"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// StorageConfig points at the two persisted JSON documents.
type StorageConfig struct {
	PapersPath       string `yaml:"papersPath"`
	ProcessedIDsPath string `yaml:"processedIdsPath"`
}

// PubMedConfig describes the E-utilities fetch collaborator. The query term
// lists are configuration, not code: the pipeline treats the assembled query
// as opaque.
type PubMedConfig struct {
	BaseURL      string   `yaml:"baseUrl"`
	Email        string   `yaml:"email"`
	MaxResults   int      `yaml:"maxResults"`
	RelDateDays  int      `yaml:"relDateDays"`
	SearchRetMax int      `yaml:"searchRetMax"`
	BaseTerms    []string `yaml:"baseTerms"`
	Keywords     []string `yaml:"keywords"`
	PubTypes     []string `yaml:"pubTypes"`
	Exclusions   []string `yaml:"exclusions"`
}

// GeminiConfig defines how to contact the Gemini generateContent API.
type GeminiConfig struct {
	Endpoint     string  `yaml:"endpoint"`
	Model        string  `yaml:"model"`
	APIKey       string  `yaml:"apiKey"`
	SystemPrompt string  `yaml:"systemPrompt"`
	Temperature  float64 `yaml:"temperature"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Line LineConfig `yaml:"line"`
}

// LineConfig wires the LINE Messaging API broadcast channel.
type LineConfig struct {
	ChannelAccessToken string `yaml:"channelAccessToken"`
	DashboardURL       string `yaml:"dashboardUrl"`
}

// DashboardConfig describes the read-only browsing API server.
type DashboardConfig struct {
	Addr string `yaml:"addr"`
}

// SchedulerConfig defines the daemon-mode run interval.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(emailEnv); v != "" {
		c.PubMed.Email = v
	}
	if v := os.Getenv(geminiKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Gemini.Model = v
	}
	if v := os.Getenv(lineTokenEnv); v != "" {
		c.Notifications.Line.ChannelAccessToken = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Storage.PapersPath != "" {
		base.Storage.PapersPath = override.Storage.PapersPath
	}
	if override.Storage.ProcessedIDsPath != "" {
		base.Storage.ProcessedIDsPath = override.Storage.ProcessedIDsPath
	}

	if override.PubMed.BaseURL != "" {
		base.PubMed.BaseURL = override.PubMed.BaseURL
	}
	if override.PubMed.Email != "" {
		base.PubMed.Email = override.PubMed.Email
	}
	if override.PubMed.MaxResults > 0 {
		base.PubMed.MaxResults = override.PubMed.MaxResults
	}
	if override.PubMed.RelDateDays > 0 {
		base.PubMed.RelDateDays = override.PubMed.RelDateDays
	}
	if override.PubMed.SearchRetMax > 0 {
		base.PubMed.SearchRetMax = override.PubMed.SearchRetMax
	}
	if len(override.PubMed.BaseTerms) > 0 {
		base.PubMed.BaseTerms = override.PubMed.BaseTerms
	}
	if len(override.PubMed.Keywords) > 0 {
		base.PubMed.Keywords = override.PubMed.Keywords
	}
	if len(override.PubMed.PubTypes) > 0 {
		base.PubMed.PubTypes = override.PubMed.PubTypes
	}
	if len(override.PubMed.Exclusions) > 0 {
		base.PubMed.Exclusions = override.PubMed.Exclusions
	}

	if override.Gemini.Endpoint != "" {
		base.Gemini.Endpoint = override.Gemini.Endpoint
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}
	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}
	if override.Gemini.SystemPrompt != "" {
		base.Gemini.SystemPrompt = override.Gemini.SystemPrompt
	}
	if override.Gemini.Temperature > 0 {
		base.Gemini.Temperature = override.Gemini.Temperature
	}

	if override.Notifications.Line.ChannelAccessToken != "" {
		base.Notifications.Line.ChannelAccessToken = override.Notifications.Line.ChannelAccessToken
	}
	if override.Notifications.Line.DashboardURL != "" {
		base.Notifications.Line.DashboardURL = override.Notifications.Line.DashboardURL
	}

	if override.Dashboard.Addr != "" {
		base.Dashboard.Addr = override.Dashboard.Addr
	}

	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Storage: StorageConfig{
			PapersPath:       "data/papers.json",
			ProcessedIDsPath: "data/processed_ids.json",
		},
		PubMed: PubMedConfig{
			BaseURL:      "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
			MaxResults:   1,
			RelDateDays:  365,
			SearchRetMax: 100,
			BaseTerms: []string{
				`Anesthesiology[Title/Abstract]`,
				`"Perioperative care"[Title/Abstract]`,
			},
			Keywords: []string{
				`"GLP-1"`, `"SGLT2"`, `"Video Laryngoscope"`,
				`"Regional Anesthesia"`, `"POCUS"`, `"Frailty"`,
			},
			PubTypes: []string{
				`Guideline[Publication Type]`,
				`"Consensus Development Conference"[Publication Type]`,
				`"Meta-Analysis"[Publication Type]`,
				`"Systematic Review"[Publication Type]`,
				`"Review"[Publication Type]`,
			},
			Exclusions: []string{
				`"Animals"[MeSH Terms]`,
				`"Case Reports"[Publication Type]`,
			},
		},
		Gemini: GeminiConfig{
			Endpoint:     "https://generativelanguage.googleapis.com/v1beta",
			Model:        "gemini-2.5-flash",
			Temperature:  0.2,
			SystemPrompt: defaultSystemPrompt,
		},
		Notifications: NotificationConfig{
			Line: LineConfig{},
		},
		Dashboard: DashboardConfig{Addr: ":8080"},
		Scheduler: SchedulerConfig{Interval: 24 * time.Hour},
	}
}

const defaultSystemPrompt = `あなたは麻酔科の指導医です。1年間の育児休暇から復帰する同僚の麻酔科医に向けて、最新の論文を紹介してください。
目的は、基礎研究の結果を伝えることではなく、「明日の臨床でどう動くべきか」「この1年で変化した常識やピットフォール」を具体的かつ実践的に伝えることです。

提供された論文のタイトルとAbstractを読み、以下のJSON形式で出力してください。

{
  "title_ja": "論文の日本語タイトル",
  "summary": "3行程度の簡潔な要約（「〜である」調）",
  "clinical_action": "臨床現場での具体的なアクション指針や注意点（挨拶や前置きは不要。推奨事項や注意点から書き始めてください）",
  "importance": 5 (1〜5の整数。5が最重要)
}
日本語で出力してください。`
