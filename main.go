package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	yaml "gopkg.in/yaml.v2"
)

var (
	configDir = flag.String("conf", os.Getenv("HOME")+"/.financekomek",
		"Config directory holding config.yaml and keywords.yaml.")
	dataDir    = flag.String("data", "", "Data directory. Defaults to the config directory.")
	userID     = flag.Int64("user", 1, "User id for the console session.")
	llmBackend = flag.String("llm", "", "LLM fallback backend: claude, ollama or empty to disable.")
	llmURL     = flag.String("llm-url", "http://localhost:11434", "Base URL of the ollama endpoint.")
	llmModel   = flag.String("llm-model", "", "Model name for the LLM fallback.")
	llmTimeout = flag.Int("llm-timeout", 6, "LLM fallback timeout in seconds.")
	debug      = flag.Bool("debug", false, "Log at debug level.")
)

type configs struct {
	DataDir string `yaml:"data_dir"`
	LLM     struct {
		Backend        string `yaml:"backend"`
		URL            string `yaml:"url"`
		Model          string `yaml:"model"`
		APIKey         string `yaml:"api_key"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"llm"`
}

// loadConfig layers config.yaml under the flags; flags win where both are set.
func loadConfig() configs {
	var c configs
	data, err := os.ReadFile(path.Join(*configDir, "config.yaml"))
	if err == nil {
		checkf(yaml.Unmarshal(data, &c), "Unable to parse config.yaml")
	}
	if *dataDir != "" {
		c.DataDir = *dataDir
	}
	if c.DataDir == "" {
		c.DataDir = *configDir
	}
	if *llmBackend != "" {
		c.LLM.Backend = *llmBackend
	}
	if c.LLM.URL == "" {
		c.LLM.URL = *llmURL
	}
	if *llmModel != "" {
		c.LLM.Model = *llmModel
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = *llmTimeout
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	return c
}

func completionClient(c configs, log zerolog.Logger) CompletionClient {
	switch c.LLM.Backend {
	case "claude":
		if c.LLM.APIKey == "" {
			log.Warn().Msg("claude backend configured without an api key; fallback disabled")
			return nil
		}
		return newClaudeClient(c.LLM.APIKey, c.LLM.Model)
	case "ollama":
		model := c.LLM.Model
		if model == "" {
			model = "llama3"
		}
		return newOllamaClient(c.LLM.URL, model)
	case "":
		return nil
	default:
		log.Warn().Str("backend", c.LLM.Backend).Msg("unknown llm backend; fallback disabled")
		return nil
	}
}

func main() {
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	assertf(*userID > 0, "user id must be positive, got %d", *userID)
	checkf(os.MkdirAll(*configDir, 0755), "Unable to create config dir: %v", *configDir)

	conf := loadConfig()
	filesDir := path.Join(conf.DataDir, "files")
	checkf(os.MkdirAll(filesDir, 0755), "Unable to create files dir: %v", filesDir)

	store, err := openBoltStore(path.Join(conf.DataDir, "finance.db"))
	checkf(err, "Unable to open store in %v", conf.DataDir)
	defer store.Close()

	kw, err := loadKeywords(path.Join(*configDir, "keywords.yaml"))
	checkf(err, "Unable to load keyword table")

	fallback := newFallbackAdapter(completionClient(conf, log),
		time.Duration(conf.LLM.TimeoutSeconds)*time.Second, log)

	bot := newBot(store, kw, fallback, filesDir, log)
	tr := newConsoleTransport(*userID, filesDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("data", conf.DataDir).Str("llm", conf.LLM.Backend).Msg("bot ready")
	checkf(bot.Run(ctx, tr), "Bot loop failed")
}
