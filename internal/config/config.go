package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "FEEDREWRITER_CONFIG"
	feedURLEnv         = "FEED_URL"
	recencyWindowEnv   = "RECENCY_WINDOW"
	storyLimitEnv      = "STORY_LIMIT"
	logLevelEnv        = "LOG_LEVEL"
	httpAddrEnv        = "HTTP_ADDR"
	rewriteAPIKeyEnv   = "REWRITE_API_KEY"
	openAIAPIKeyEnv    = "OPENAI_API_KEY"
	rewriteModelEnv    = "REWRITE_MODEL"
	rewriteEndpointEnv = "REWRITE_ENDPOINT"
	publishURLEnv      = "PUBLISH_URL"
	publishUserEnv     = "PUBLISH_USER"
	publishPasswordEnv = "PUBLISH_PASSWORD"
	adminPasswordEnv   = "ADMIN_PASSWORD"
	redisAddrEnv       = "REDIS_ADDR"
	redisPasswordEnv   = "REDIS_PASSWORD"
)

// ErrInvalid marks configuration problems that must abort a run.
var ErrInvalid = errors.New("invalid configuration")

// Config holds every setting of the process. It is built once and passed by value.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Feeds       []FeedConfig      `yaml:"feeds"`
	Admission   AdmissionConfig   `yaml:"admission"`
	Extractor   ExtractorConfig   `yaml:"extractor"`
	Rewrite     RewriteConfig     `yaml:"rewrite"`
	Attribution AttributionConfig `yaml:"attribution"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Publisher   PublisherConfig   `yaml:"publisher"`
	Admin       AdminConfig       `yaml:"admin"`
	Guard       GuardConfig       `yaml:"guard"`
}

// ServerConfig configures the HTTP presentation layer.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// BaseURL prefixes deep links; empty yields relative links.
	BaseURL string `yaml:"baseUrl"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// FeedConfig names one RSS/Atom feed.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// AdmissionConfig drives the admission filter.
type AdmissionConfig struct {
	Window              time.Duration `yaml:"window"`
	BlockedTitleTerms   []string      `yaml:"blockedTitleTerms"`
	BlockedDomains      []string      `yaml:"blockedDomains"`
	QuotaDomains        []string      `yaml:"quotaDomains"`
	DomainQuota         int           `yaml:"domainQuota"`
	SimilarityThreshold float64       `yaml:"similarityThreshold"`
	MaxStories          int           `yaml:"maxStories"`
}

// ExtractorConfig bounds article fetching.
type ExtractorConfig struct {
	Timeout          time.Duration `yaml:"timeout"`
	MinWords         int           `yaml:"minWords"`
	UserAgent        string        `yaml:"userAgent"`
	MaxBodyBytes     int64         `yaml:"maxBodyBytes"`
	FetchesPerSecond float64       `yaml:"fetchesPerSecond"`
}

// RewriteConfig defines how to contact the rewrite service.
type RewriteConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"apiKey"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"maxTokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// AttributionConfig selects when a citation block is appended.
type AttributionConfig struct {
	Keywords          []string `yaml:"keywords"`
	AlwaysCiteDomains []string `yaml:"alwaysCiteDomains"`
}

type PipelineConfig struct {
	DefaultLimit int `yaml:"defaultLimit"`
	MaxLimit     int `yaml:"maxLimit"`
}

// PublisherConfig points at the blog backend's posts endpoint.
type PublisherConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout"`
}

type AdminConfig struct {
	Password string `yaml:"password"`
}

// GuardConfig enables the Redis publish guard when Addr is set.
type GuardConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// PublishingEnabled reports whether the backend and admin credentials are present.
func (c Config) PublishingEnabled() bool {
	return c.Publisher.Endpoint != "" && c.Admin.Password != ""
}

// FeedNames lists configured feed names in order.
func (c Config) FeedNames() []string {
	names := make([]string, 0, len(c.Feeds))
	for _, f := range c.Feeds {
		names = append(names, f.Name)
	}
	return names
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
// A config file that is named but cannot be read or parsed is an error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: cannot load .env: %v", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: read %s: %v", ErrInvalid, path, err)
		}
		parsed, err := Parse(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %v", ErrInvalid, path, err)
		}
		cfg = parsed
	}

	cfg.applyEnvOverrides(os.Getenv)
	return cfg, nil
}

// Parse decodes YAML on top of the defaults. Keys absent from raw keep their
// default; keys present win, zero values included.
func Parse(raw []byte) (Config, error) {
	cfg := defaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings that would make a run meaningless.
func (c Config) Validate() error {
	var problems []string

	if len(c.Feeds) == 0 {
		problems = append(problems, "no feeds configured")
	}
	for i, f := range c.Feeds {
		if strings.TrimSpace(f.URL) == "" {
			problems = append(problems, fmt.Sprintf("feed %d (%s) has no url", i, f.Name))
		}
	}
	if c.Rewrite.APIKey == "" {
		problems = append(problems, "rewrite api key is not set")
	}
	if c.Rewrite.Endpoint == "" || c.Rewrite.Model == "" {
		problems = append(problems, "rewrite endpoint and model are required")
	}
	if c.Pipeline.DefaultLimit <= 0 {
		problems = append(problems, "pipeline.defaultLimit must be positive")
	}
	if c.Admission.SimilarityThreshold < 0 || c.Admission.SimilarityThreshold > 1 {
		problems = append(problems, "admission.similarityThreshold must be within [0,1]")
	}
	if c.Extractor.MinWords < 0 {
		problems = append(problems, "extractor.minWords must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) applyEnvOverrides(getenv func(string) string) {
	if v := getenv(feedURLEnv); v != "" {
		c.Feeds = []FeedConfig{{Name: "default", URL: v}}
	}

	if v := getenv(recencyWindowEnv); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Admission.Window = d
		} else {
			log.Printf("config: invalid %s %q: %v", recencyWindowEnv, v, err)
		}
	}

	if v := getenv(storyLimitEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Pipeline.DefaultLimit = n
		} else {
			log.Printf("config: invalid %s %q: %v", storyLimitEnv, v, err)
		}
	}

	if v := getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := getenv(openAIAPIKeyEnv); v != "" {
		c.Rewrite.APIKey = v
	}
	if v := getenv(rewriteAPIKeyEnv); v != "" {
		c.Rewrite.APIKey = v
	}

	if v := getenv(rewriteModelEnv); v != "" {
		c.Rewrite.Model = v
	}

	if v := getenv(rewriteEndpointEnv); v != "" {
		c.Rewrite.Endpoint = v
	}

	if v := getenv(publishURLEnv); v != "" {
		c.Publisher.Endpoint = v
	}
	if v := getenv(publishUserEnv); v != "" {
		c.Publisher.Username = v
	}
	if v := getenv(publishPasswordEnv); v != "" {
		c.Publisher.Password = v
	}

	if v := getenv(adminPasswordEnv); v != "" {
		c.Admin.Password = v
	}

	if v := getenv(redisAddrEnv); v != "" {
		c.Guard.Addr = v
	}
	if v := getenv(redisPasswordEnv); v != "" {
		c.Guard.Password = v
	}
}

func defaultConfig() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8080"},
		Logging: LoggingConfig{Level: "info"},
		Feeds: []FeedConfig{
			{Name: "HipHopDX", URL: "https://hiphopdx.com/feed"},
			{Name: "HotNewHipHop", URL: "https://www.hotnewhiphop.com/rss.xml"},
			{Name: "Rap-Up", URL: "https://www.rap-up.com/feed/"},
			{Name: "AllHipHop", URL: "https://allhiphop.com/feed/"},
		},
		Admission: AdmissionConfig{
			Window:              48 * time.Hour,
			BlockedTitleTerms:   []string{"timeline", "ranking", "best of", "quiz"},
			BlockedDomains:      nil,
			QuotaDomains:        []string{"hotnewhiphop.com"},
			DomainQuota:         3,
			SimilarityThreshold: 0.9,
			MaxStories:          50,
		},
		Extractor: ExtractorConfig{
			Timeout:          20 * time.Second,
			MinWords:         50,
			UserAgent:        "FeedRewriter/1.0",
			MaxBodyBytes:     8 << 20,
			FetchesPerSecond: 2,
		},
		Rewrite: RewriteConfig{
			Endpoint:    "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   700,
			Timeout:     60 * time.Second,
		},
		Attribution: AttributionConfig{
			Keywords:          []string{"interview", "said", "spoke with", "told", "discussed"},
			AlwaysCiteDomains: []string{"allhiphop.com"},
		},
		Pipeline:  PipelineConfig{DefaultLimit: 5, MaxLimit: 20},
		Publisher: PublisherConfig{Timeout: 15 * time.Second},
		Guard:     GuardConfig{TTL: 10 * time.Minute},
	}
}
