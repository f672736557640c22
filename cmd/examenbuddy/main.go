package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/frisoboot/examenbuddy/internal/catalog"
	"github.com/frisoboot/examenbuddy/internal/chat"
	"github.com/frisoboot/examenbuddy/internal/flashcards"
	"github.com/frisoboot/examenbuddy/internal/handler"
	appI18n "github.com/frisoboot/examenbuddy/internal/i18n"
	"github.com/frisoboot/examenbuddy/internal/llm"
	"github.com/frisoboot/examenbuddy/internal/llm/prompts"
	"github.com/frisoboot/examenbuddy/internal/session"
	"github.com/frisoboot/examenbuddy/internal/store"
	"github.com/frisoboot/examenbuddy/internal/topics"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "examenbuddy",
		Short: "AI study buddy for Dutch secondary-school exams",
	}

	serve := serveCmd()
	root.AddCommand(serve)

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `examenbuddy --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP tutoring server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "examenbuddy.db", "SQLite database path")
	f.String("subjects", "", "Path to a subjects JSON file (empty = built-in catalog)")
	f.String("llm-provider", "gemini", "LLM backend (openai, gemini, mock)")
	f.String("llm-url", "", "OpenAI-compatible API base URL (for openai provider)")
	f.String("llm-key", "", "API key for the LLM backend")
	f.String("llm-model", "gemini-2.5-flash", "LLM model name")
	f.StringP("lang", "l", "nl", "UI language (nl, en)")
	f.Int("pass-threshold", 6, "Minimum score (0-10) that counts an answer as correct")
	f.Int("question-limit", 10, "Default questions per session")
	f.Int("max-question-limit", 50, "Upper bound on the per-session question limit")
	f.Int("exam-year-range", 10, "How many past exam years drill questions may cite")
	f.Bool("secure-cookies", true, "Set Secure flag on device cookies")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("EXAMENBUDDY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("examenbuddy")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/examenbuddy")
	v.AddConfigPath("/etc/examenbuddy")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := context.Background()

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	cat, err := catalog.Load(v.GetString("subjects"))
	if err != nil {
		return fmt.Errorf("load subject catalog: %w", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	if err := prompts.Load(); err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}

	provider, err := llm.NewProvider(ctx, llm.Config{
		Provider: v.GetString("llm-provider"),
		OpenAI: llm.OpenAIConfig{
			APIKey:  v.GetString("llm-key"),
			Model:   v.GetString("llm-model"),
			BaseURL: v.GetString("llm-url"),
		},
		Gemini: llm.GeminiConfig{
			APIKey: v.GetString("llm-key"),
			Model:  v.GetString("llm-model"),
		},
	})
	if err != nil {
		return fmt.Errorf("create LLM provider: %w", err)
	}

	sessions := session.NewController(provider, session.Config{
		PassThreshold:        v.GetInt("pass-threshold"),
		DefaultQuestionLimit: v.GetInt("question-limit"),
		MaxQuestionLimit:     v.GetInt("max-question-limit"),
		ExamYearRange:        v.GetInt("exam-year-range"),
	})

	h := handler.New(db, cat, sessions,
		topics.NewService(provider),
		flashcards.NewService(provider),
		chat.NewService(provider),
		handler.Config{SecureCookies: v.GetBool("secure-cookies")},
	)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"provider", v.GetString("llm-provider"),
		"model", v.GetString("llm-model"),
		"lang", lang,
		"subjects", len(cat.All()),
		"pass_threshold", v.GetInt("pass-threshold"),
		"question_limit", v.GetInt("question-limit"),
	)
	return http.ListenAndServe(addr, r)
}
