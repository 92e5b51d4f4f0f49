package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/akanghida/soalgen/internal/app"
	"github.com/akanghida/soalgen/internal/handler"
	appI18n "github.com/akanghida/soalgen/internal/i18n"
	"github.com/akanghida/soalgen/internal/llm"
	"github.com/akanghida/soalgen/internal/model"
	"github.com/akanghida/soalgen/internal/render"
	"github.com/akanghida/soalgen/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "soalgen",
		Short: "AI exam question packet generator for Indonesian teachers",
	}

	serve := serveCmd()
	root.AddCommand(serve, generateCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `soalgen --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP question builder",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "soalgen.db", "SQLite database path")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "", "API key for LLM (or set SOALGEN_LLM_KEY)")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.StringP("lang", "l", "id", "UI language (id, en)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one question packet and write it out",
		RunE:  runGenerate,
	}
	f := cmd.Flags()
	f.String("db", "soalgen.db", "SQLite database path")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "", "API key for LLM (or set SOALGEN_LLM_KEY)")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.String("mode", string(model.ModeSekolah), "Teaching mode (sekolah, bimbel)")
	f.String("language", "Bahasa Indonesia", "Question language")
	f.String("level", "SMP / MTs", "Education level")
	f.String("grade", "Kelas 7", "Grade")
	f.StringP("subject", "s", "Matematika", "Subject")
	f.String("curriculum", "Kurikulum Merdeka (Kemendikbudristek)", "Curriculum")
	f.String("assessment-type", "Ulangan Harian", "Assessment type")
	f.StringP("topic", "t", "", "Topic (required)")
	f.String("sub-topic", "", "Sub-topic")
	f.String("competency", "", "Basic competency (empty = let the model decide)")
	f.String("question-type", string(model.TypeMultipleChoice), "Question type")
	f.IntP("total", "n", 5, "Number of questions (1-50)")
	f.StringP("difficulty", "d", string(model.DifficultyLevel2), "Difficulty level")
	f.String("view", "teacher", "Document view (teacher, student)")
	f.String("format", "doc", "Output format (doc, text, json)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("topic")

	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a stored packet as a Word document, plain text, or JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "soalgen.db", "SQLite database path")
	f.String("id", "", "Packet identifier from history (required)")
	f.String("view", "teacher", "Document view (teacher, student)")
	f.String("format", "doc", "Output format (doc, text, json)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("id")

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

	v.SetEnvPrefix("SOALGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("soalgen")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/soalgen")
	v.AddConfigPath("/etc/soalgen")
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

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	llmClient := llm.New(
		v.GetString("llm-url"),
		v.GetString("llm-key"),
		v.GetString("llm-model"),
	)
	if err := llmClient.Ping(context.Background()); err != nil {
		return fmt.Errorf("LLM health check: %w", err)
	}
	slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))

	ctrl := app.New(llmClient, db)
	h, err := handler.New(ctrl)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"model", v.GetString("llm-model"),
		"llm_url", v.GetString("llm-url"),
		"lang", lang,
		"history_entries", len(ctrl.History()),
	)
	return http.ListenAndServe(addr, r)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	cfg := model.ExamConfig{
		Mode:           model.Mode(v.GetString("mode")),
		Language:       v.GetString("language"),
		Level:          v.GetString("level"),
		Grade:          v.GetString("grade"),
		Subject:        v.GetString("subject"),
		Curriculum:     v.GetString("curriculum"),
		AssessmentType: v.GetString("assessment-type"),
		Topic:          v.GetString("topic"),
		SubTopic:       v.GetString("sub-topic"),
		Competency:     v.GetString("competency"),
		QuestionType:   model.QuestionType(v.GetString("question-type")),
		TotalQuestions: v.GetInt("total"),
		Difficulty:     model.DifficultyLevel(v.GetString("difficulty")),
	}
	if !cfg.QuestionType.Valid() {
		return fmt.Errorf("unknown question type %q", cfg.QuestionType)
	}
	if !cfg.Difficulty.Valid() {
		return fmt.Errorf("unknown difficulty %q", cfg.Difficulty)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.ClampTotalQuestions()

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	llmClient := llm.New(
		v.GetString("llm-url"),
		v.GetString("llm-key"),
		v.GetString("llm-model"),
	)

	// Route the call through the controller so the packet lands in the same
	// history the web UI shows.
	ctrl := app.New(llmClient, db)
	ctrl.SetConfig(cfg)
	result, err := ctrl.Generate(cmd.Context())
	if err != nil {
		return err
	}
	slog.Info("packet generated", "id", result.ID, "questions", len(result.Questions))

	return writeResult(*result, v)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	id := v.GetString("id")
	for _, entry := range db.Load() {
		if entry.ID == id {
			return writeResult(entry, v)
		}
	}
	return fmt.Errorf("no packet with id %q in history", id)
}

// writeResult renders a packet in the requested view and format and writes it
// to the configured output.
func writeResult(result model.ExamResult, v *viper.Viper) error {
	mode := render.ParseViewMode(v.GetString("view"))

	var data []byte
	switch strings.ToLower(v.GetString("format")) {
	case "doc":
		// Leading BOM so word processors pick up UTF-8.
		data = []byte("\ufeff" + render.WordDocument(result, mode))
	case "text":
		data = []byte(render.PlainText(result, mode))
	case "json":
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		data = append(out, '\n')
	default:
		return fmt.Errorf("unknown format %q", v.GetString("format"))
	}

	return writeOutput(data, v.GetString("output"))
}

func writeOutput(data []byte, outPath string) error {
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
