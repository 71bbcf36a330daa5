package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/a-h/docsum/auth"
	"github.com/a-h/docsum/db"
	historyget "github.com/a-h/docsum/handlers/history/get"
	summarizeget "github.com/a-h/docsum/handlers/summarize/get"
	summarizepost "github.com/a-h/docsum/handlers/summarize/post"
	"github.com/a-h/docsum/pipeline"
	"github.com/a-h/docsum/summarize"
	"github.com/rqlite/gorqlite"
	"github.com/rs/cors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/huggingface"
	"github.com/tmc/langchaingo/llms/ollama"
	"golang.org/x/sync/errgroup"
)

const defaultHuggingFaceModel = "ibm-granite/granite-3.3-8b-instruct"

const defaultOllamaModel = "mistral-nemo"

type ServeCommand struct {
	ListenAddr         string        `help:"The address to listen on." env:"LISTEN_ADDR" default:"localhost:9020"`
	RqliteURL          string        `help:"The URL of the rqlite server." env:"RQLITE_URL" default:"http://localhost:4001"`
	LLMProvider        string        `help:"The inference provider to use." env:"LLM_PROVIDER" enum:"huggingface,ollama" default:"huggingface"`
	LLMModel           string        `help:"The model to summarize with. Defaults to a model suitable for the provider." env:"LLM_MODEL" default:""`
	OllamaURL          string        `help:"The URL of the Ollama server." env:"OLLAMA_URL" default:"http://127.0.0.1:11434/"`
	HuggingFaceToken   string        `help:"The Hugging Face API token." env:"HUGGINGFACEHUB_API_TOKEN" default:""`
	GoogleClientID     string        `help:"The Google OAuth client ID. Google sign in is disabled if empty." env:"GOOGLE_CLIENT_ID" default:""`
	GoogleClientSecret string        `help:"The Google OAuth client secret." env:"GOOGLE_CLIENT_SECRET" default:""`
	GoogleRedirectURL  string        `help:"The URL Google redirects to after sign in." env:"GOOGLE_REDIRECT_URL" default:"http://localhost:9020/auth/callback"`
	SessionSecret      string        `help:"The secret used to sign session tokens, at least 32 bytes." env:"SESSION_SECRET" default:""`
	SessionMaxAge      time.Duration `help:"How long sessions last." env:"SESSION_MAX_AGE" default:"720h"`
	APIKeysFile        string        `help:"The file containing a JSON map of API keys to user IDs." env:"API_KEYS_FILE" default:""`
	TLSCertFile        string        `help:"The TLS certificate file." env:"TLS_CERT_FILE" default:""`
	TLSKeyFile         string        `help:"The TLS key file." env:"TLS_KEY_FILE" default:""`
	AppEnv             string        `help:"The environment, development enables debug logging." env:"APP_ENV" default:"production"`
	LogLevel           string        `help:"The log level to use, overrides the environment default." env:"LOG_LEVEL" default:""`
}

func (c ServeCommand) tlsEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

func (c ServeCommand) newLLM(httpClient *http.Client) (llm llms.Model, err error) {
	switch c.LLMProvider {
	case "ollama":
		model := c.LLMModel
		if model == "" {
			model = defaultOllamaModel
		}
		lc, err := ollama.New(
			ollama.WithModel(model),
			ollama.WithHTTPClient(httpClient),
			ollama.WithServerURL(c.OllamaURL))
		if err != nil {
			return nil, err
		}
		return lc, nil
	case "huggingface":
		model := c.LLMModel
		if model == "" {
			model = defaultHuggingFaceModel
		}
		lc, err := huggingface.New(
			huggingface.WithToken(c.HuggingFaceToken),
			huggingface.WithModel(model))
		if err != nil {
			return nil, err
		}
		return lc, nil
	}
	return nil, fmt.Errorf("unknown LLM provider %q", c.LLMProvider)
}

func (c ServeCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel, c.AppEnv)

	databaseURL, err := db.ParseRqliteURL(c.RqliteURL)
	if err != nil {
		return fmt.Errorf("failed to parse rqlite URL: %w", err)
	}
	log.Info("connecting to database", slog.String("url", databaseURL.Redacted()))
	conn, err := gorqlite.Open(databaseURL.DataSourceName())
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer conn.Close()
	queries := db.New(conn)

	log.Info("migrating database schema")
	version, err := db.Migrate(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("database schema is up to date", slog.Uint64("version", uint64(version)))

	log.Info("creating LLM client", slog.String("provider", c.LLMProvider), slog.String("model", c.LLMModel))
	llm, err := c.newLLM(&http.Client{})
	if err != nil {
		return fmt.Errorf("failed to create LLM: %w", err)
	}
	p := pipeline.New(log, queries, summarize.New(llm))

	var sessions *auth.Sessions
	if c.SessionSecret != "" {
		sessions, err = auth.NewSessions([]byte(c.SessionSecret), c.SessionMaxAge)
		if err != nil {
			return fmt.Errorf("failed to configure sessions: %w", err)
		}
	} else {
		log.Warn("SESSION_SECRET is not set, only API keys can be used to authenticate")
	}

	apiKeyToUserID := map[string]string{}
	if c.APIKeysFile != "" {
		apiKeyToUserID, err = auth.LoadFromFile(c.APIKeysFile)
		if err != nil {
			return fmt.Errorf("failed to load API keys: %w", err)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("POST /summarize", summarizepost.New(log, p))
	mux.Handle("GET /summarize", summarizeget.New(log))
	mux.Handle("GET /history", historyget.New(log, queries))

	if c.GoogleClientID != "" {
		if sessions == nil {
			return fmt.Errorf("SESSION_SECRET is required for Google sign in")
		}
		g := auth.NewGoogle(log, auth.NewGoogleConfig(c.GoogleClientID, c.GoogleClientSecret, c.GoogleRedirectURL), sessions, queries)
		g.Secure = c.tlsEnabled() || c.AppEnv == "production"
		g.Register(mux)
	} else {
		log.Warn("GOOGLE_CLIENT_ID is not set, Google sign in is disabled")
	}

	authenticatedMux := auth.New(log, sessions, apiKeyToUserID, mux)
	withCORSAuthenticatedMux := cors.New(cors.Options{
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(authenticatedMux)

	s := &http.Server{
		Addr:    c.ListenAddr,
		Handler: withCORSAuthenticatedMux,
	}
	if c.tlsEnabled() {
		log.Info("Enabling TLS mode")
		var cert tls.Certificate
		cert, err = tls.LoadX509KeyPair(c.TLSCertFile, c.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load cert: %w", err)
		}
		s.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Listening", slog.String("addr", c.ListenAddr))
		var err error
		if c.tlsEnabled() {
			err = s.ListenAndServeTLS("", "")
		} else {
			err = s.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		// Uploads in progress are allowed to finish so that their documents are completed.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
