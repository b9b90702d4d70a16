// Load envs from .env
// Load YAML config
// Provide default values

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Timeouts holds every bounded wait in the login and scrape flow, in
// milliseconds. Tests shrink these to keep the retry loops fast.
type Timeouts struct {
	PageLoad     int `yaml:"page_load_ms"`
	DialogClose  int `yaml:"dialog_close_ms"`
	QRScan       int `yaml:"qr_scan_ms"`
	QRConfirm    int `yaml:"qr_confirm_ms"`
	ToggleSettle int `yaml:"toggle_settle_ms"`
	ItemSettle   int `yaml:"item_settle_ms"`
	Politeness   int `yaml:"politeness_ms"`
}

func (t Timeouts) ToggleSettleDuration() time.Duration {
	return time.Duration(t.ToggleSettle) * time.Millisecond
}

func (t Timeouts) ItemSettleDuration() time.Duration {
	return time.Duration(t.ItemSettle) * time.Millisecond
}

func (t Timeouts) PolitenessDuration() time.Duration {
	return time.Duration(t.Politeness) * time.Millisecond
}

type Config struct {
	//Boss zhipin endpoints
	BaseURL           string `yaml:"base_url"`
	LoginURL          string `yaml:"login_url"`
	RecommendURL      string `yaml:"recommend_url"`
	SecurityCheckURL  string `yaml:"security_check_url"`
	InterestedJobsURL string `yaml:"interested_jobs_url"`

	//Paths
	DataDir     string `yaml:"data_dir"`
	CookiesFile string `yaml:"cookies_file"`

	//Browser
	Headless bool `yaml:"headless"`

	//Optional keyword filter; empty keywords accept every record
	Keywords        []string `yaml:"keywords"`
	ExcludeKeywords []string `yaml:"exclude_keywords"`

	//Optional Telegram run summary
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`

	//Viewer
	ViewerAddr string `yaml:"viewer_addr"`

	Timeouts Timeouts `yaml:"timeouts"`
}

// Default returns a config pointed at the live site with the stock wait
// bounds. Load starts from this and overlays yaml and env values on top.
func Default() *Config {
	return &Config{
		BaseURL:           "https://www.zhipin.com/",
		LoginURL:          "https://www.zhipin.com/web/user/",
		RecommendURL:      "https://www.zhipin.com/web/geek/job-recommend",
		SecurityCheckURL:  "https://www.zhipin.com/web/common/security-check.html",
		InterestedJobsURL: "https://www.zhipin.com/web/geek/recommend?tab=4&sub=1&page=1&tag=4&ka=header-personal",
		DataDir:           "boss_data",
		CookiesFile:       "cookies.json",
		ViewerAddr:        ":5000",
		Timeouts: Timeouts{
			PageLoad:     30000,
			DialogClose:  5000,
			QRScan:       20000,
			QRConfirm:    60000,
			ToggleSettle: 1000,
			ItemSettle:   2000,
			Politeness:   1000,
		},
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		//missing config file is fine, defaults apply
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	//Override with env vars
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	return cfg, nil
}
