package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application-level configuration
type Config struct {
	// Target site
	BaseURL    string
	CitiesFile string

	// Scraper
	MaxPagesPerCity int
	RequestDelayMin float64 // seconds
	RequestDelayMax float64 // seconds
	MaxRetries      int
	StopOnEmptyPage bool
	ContinueOnError bool
	ExtractPhone    bool

	// Fee plausibility range
	FeeMin int
	FeeMax int

	// Browser
	Headless          bool
	UserAgentRotation bool
	ProxyEnabled      bool
	ProxyServer       string
	ProxyUser         string
	ProxyPassword     string

	// Output
	OutputFile      string
	TimestampFormat string
	BatchSaveSize   int
	ScreenshotDir   string
	DatabaseURL     string
}

// Load reads configuration from a .env file (if present) and environment
// variables, falling back to defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		BaseURL:           getEnv("BASE_URL", "https://www.practo.com"),
		CitiesFile:        getEnv("CITIES_FILE", "cities.txt"),
		MaxPagesPerCity:   getEnvInt("MAX_PAGES_PER_CITY", 5),
		RequestDelayMin:   getEnvFloat("REQUEST_DELAY_MIN", 2),
		RequestDelayMax:   getEnvFloat("REQUEST_DELAY_MAX", 5),
		MaxRetries:        getEnvInt("MAX_RETRIES", 3),
		StopOnEmptyPage:   getEnvBool("STOP_ON_EMPTY_PAGE", true),
		ContinueOnError:   getEnvBool("CONTINUE_ON_ERROR", true),
		ExtractPhone:      getEnvBool("EXTRACT_PHONE", true),
		FeeMin:            getEnvInt("FEE_MIN", 100),
		FeeMax:            getEnvInt("FEE_MAX", 50000),
		Headless:          getEnvBool("HEADLESS", true),
		UserAgentRotation: getEnvBool("USER_AGENT_ROTATION", true),
		ProxyEnabled:      getEnvBool("PROXY_ENABLED", false),
		ProxyServer:       getEnv("PROXY_SERVER", ""),
		ProxyUser:         getEnv("PROXY_USER", ""),
		ProxyPassword:     getEnv("PROXY_PASSWORD", ""),
		OutputFile:        getEnv("OUTPUT_FILE", "output/pediatricians_data.csv"),
		TimestampFormat:   getEnv("TIMESTAMP_FORMAT", "2006-01-02 15:04:05"),
		BatchSaveSize:     getEnvInt("BATCH_SAVE_SIZE", 50),
		ScreenshotDir:     getEnv("SCREENSHOT_DIR", "."),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
	}
}

// MinDelay returns the lower bound of the inter-request delay.
func (c *Config) MinDelay() time.Duration {
	return time.Duration(c.RequestDelayMin * float64(time.Second))
}

// MaxDelay returns the upper bound of the inter-request delay.
func (c *Config) MaxDelay() time.Duration {
	return time.Duration(c.RequestDelayMax * float64(time.Second))
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
