package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/semillaai/semilla/pkg/chat"
	"github.com/semillaai/semilla/pkg/config"
	"github.com/semillaai/semilla/pkg/erpdb"
	"github.com/semillaai/semilla/pkg/format"
	"github.com/semillaai/semilla/pkg/knowledgebase"
	"github.com/semillaai/semilla/pkg/llm"
	"github.com/semillaai/semilla/pkg/retry"
	"github.com/semillaai/semilla/pkg/schema"
	"github.com/semillaai/semilla/pkg/server"
	"github.com/semillaai/semilla/pkg/sqlgen"
	"github.com/semillaai/semilla/pkg/vector"
	"github.com/semillaai/semilla/pkg/voice"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlx.ConnectContext(ctx, "mysql", cfg.ERPDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to ERP database")
	}
	defer db.Close()

	var opts []option.RequestOption
	if cfg.OpenAIAPIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.OpenAIAPIKey))
	}
	if cfg.LLMBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.LLMBaseURL))
	}
	llmCli := openai.NewClient(opts...)

	reg := schema.Default()
	executor := erpdb.New(db)

	orch := &chat.Orchestrator{
		LLM:       llm.New(llmCli, cfg.LLMChatModel),
		Schema:    reg,
		Validator: sqlgen.NewValidator(reg),
		Guard:     sqlgen.NewGuard(reg),
		Runner:    executor,
		Cascade:   retry.New(executor, reg),
		Formatter: format.New(reg),
		Sessions:  chat.NewSessionStore(time.Duration(cfg.SessionTTLMinutes) * time.Minute),
		Analyze:   cfg.Analyze,
	}

	// The knowledge base is optional: without it the assistant runs with no
	// retrieval context and no persisted history.
	vs, err := vector.New(ctx, cfg, llmCli)
	if err != nil {
		log.Warn().Err(err).Msg("Knowledge base unavailable, continuing without it")
	} else {
		defer vs.Close()
		ks, err := vector.NewKnowledge(ctx, vs)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize knowledge service")
		}
		if err := knowledgebase.Populate(ctx, ks); err != nil {
			log.Fatal().Err(err).Msg("Failed to populate knowledge base")
		}
		hs, err := vector.NewHistory(ctx, vs)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize history service")
		}
		orch.Knowledge = ks
		orch.Recorder = hs
	}

	if cfg.HTTPAddr != "" {
		runServer(ctx, cfg, orch, llmCli)
		return
	}
	runConsole(ctx, orch)
}

func runServer(ctx context.Context, cfg *config.Config, orch *chat.Orchestrator, llmCli *openai.Client) {
	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.New(server.Deps{
			Processor: orch,
			Voice:     voice.New(llmCli, cfg.Voice),
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Shutdown was not clean")
	}
}

func runConsole(ctx context.Context, orch *chat.Orchestrator) {
	conversationID := uuid.NewString()

	pterm.DefaultBasicText.Println("Bienvenido al asistente" + pterm.LightGreen(" Semilla ") + "del ERP. Pregunta por clientes, artículos, siembras o albaranes.")
	pterm.DefaultBasicText.Printfln("Conversación: %s", conversationID)

	for ctx.Err() == nil {
		question, err := pterm.DefaultInteractiveTextInput.
			WithDefaultText(">").
			WithDelimiter(" ").
			WithOnInterruptFunc(exitFunc(conversationID)).
			Show()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get user input")
		}
		question = strings.TrimSpace(question)
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "salir") {
			break
		}

		reply, err := orch.Process(ctx, conversationID, question)
		if err != nil {
			log.Err(err).Msg("Failed to process question")
			continue
		}
		pterm.DefaultBasicText.Println(pterm.LightGreen("Semilla: ") + reply)
	}

	pterm.DefaultBasicText.Printf("Cerrando conversación %s\n", conversationID)
}

func exitFunc(conversationID string) func() {
	return func() {
		pterm.DefaultBasicText.Printf("Cerrando conversación %s\n", conversationID)
		os.Exit(1)
	}
}
