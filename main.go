package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	actionsx "github.com/napatw/storeops/agent/actions"
	"github.com/napatw/storeops/agent/agents/specialist"
	"github.com/napatw/storeops/agent/agents/supervisor"
	contractx "github.com/napatw/storeops/agent/contract"
	llmx "github.com/napatw/storeops/agent/llm"
	promptx "github.com/napatw/storeops/agent/prompt"
	statex "github.com/napatw/storeops/agent/state"
	toolx "github.com/napatw/storeops/agent/tool"
	workflowx "github.com/napatw/storeops/agent/workflow"
	"github.com/napatw/storeops/pkg/commercedb"
	configx "github.com/napatw/storeops/pkg/config"
	_ "github.com/napatw/storeops/pkg/logger/autoload"
	openrouterx "github.com/napatw/storeops/pkg/openrouter"
	qstashx "github.com/napatw/storeops/pkg/qstash"
	"github.com/napatw/storeops/pkg/vectorstore"
)

// maxHistoryTurns bounds the conversation context handed to the workflow.
const maxHistoryTurns = 6

type AppConfig struct {
	ApprovalWebhook string `envconfig:"APPROVAL_WEBHOOK" split_words:"true"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("APP")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	dbCfg := configx.MustNew[commercedb.Config]("DB")
	vecCfg := configx.MustNew[vectorstore.Config]("VECTOR")

	db, err := commercedb.Open(*dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open commerce database")
	}
	defer db.Close()
	if err := db.InitSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("init schema")
	}

	embedder, err := vectorstore.NewOpenAIEmbedder(openrouterx.NewClient(llmCfg.OpenRouterFor(llmx.RoleSynthesis)), llmCfg.EmbeddingModel)
	if err != nil {
		log.Fatal().Err(err).Msg("create embedder")
	}
	search, err := vectorstore.New(*vecCfg, embedder)
	if err != nil {
		log.Fatal().Err(err).Msg("create vector store")
	}

	deps := toolx.Deps{Data: db, Search: search, Now: time.Now}

	registry, err := specialist.NewRegistry(ctx, *llmCfg, deps)
	if err != nil {
		log.Fatal().Err(err).Msg("build specialist registry")
	}

	prompts := promptx.LoadSet()
	routerModel, err := newModel(ctx, *llmCfg, llmx.RoleRouter)
	if err != nil {
		log.Fatal().Err(err).Msg("create router model")
	}
	router, err := supervisor.NewRouter(ctx, routerModel, prompts.Router)
	if err != nil {
		log.Fatal().Err(err).Msg("build router")
	}

	synthModel, err := newModel(ctx, *llmCfg, llmx.RoleSynthesis)
	if err != nil {
		log.Fatal().Err(err).Msg("create synthesis model")
	}
	synthesizer, err := supervisor.NewSynthesizer(ctx, synthModel, prompts.Synthesis)
	if err != nil {
		log.Fatal().Err(err).Msg("build synthesizer")
	}

	actionModel, err := newModel(ctx, *llmCfg, llmx.RoleAction)
	if err != nil {
		log.Fatal().Err(err).Msg("create action model")
	}
	planner, err := actionsx.NewPlanner(ctx, actionModel, prompts.Action, db)
	if err != nil {
		log.Fatal().Err(err).Msg("build action planner")
	}

	engineOpts := []workflowx.EngineOption{}
	if notifier := buildNotifier(appCfg.ApprovalWebhook); notifier != nil {
		engineOpts = append(engineOpts, workflowx.WithNotifier(notifier))
	}

	engine, err := workflowx.NewEngine(ctx, router, registry, synthesizer, planner,
		actionsx.NewExecutor(db), buildCheckpointStore(), engineOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("build workflow engine")
	}

	runREPL(ctx, engine)
}

func newModel(ctx context.Context, cfg llmx.Config, role llmx.Role) (einomodel.ToolCallingChatModel, error) {
	modelCfg := cfg.OpenRouterFor(role)
	return modelCfg.New(ctx)
}

// buildCheckpointStore prefers the durable Upstash store and falls back to
// in-memory when the environment carries no credentials.
func buildCheckpointStore() statex.Store {
	cfg, err := configx.New[statex.UpstashRedisConfig]("UPSTASH_REDIS")
	if err != nil {
		log.Warn().Err(err).Msg("no upstash config, checkpoints are in-memory only")
		return statex.NewMemoryStore()
	}
	store, err := statex.NewUpstashRedisStore(*cfg)
	if err != nil {
		log.Warn().Err(err).Msg("upstash store unavailable, checkpoints are in-memory only")
		return statex.NewMemoryStore()
	}
	return store
}

func buildNotifier(destination string) workflowx.Notifier {
	if strings.TrimSpace(destination) == "" {
		return nil
	}
	cfg, err := configx.New[qstashx.Config]("QSTASH")
	if err != nil {
		log.Warn().Err(err).Msg("approval webhook set but qstash config missing")
		return nil
	}
	client, err := qstashx.NewClient(*cfg)
	if err != nil {
		log.Warn().Err(err).Msg("qstash client unavailable")
		return nil
	}
	notifier, err := workflowx.NewQStashNotifier(client, destination)
	if err != nil {
		log.Warn().Err(err).Msg("approval notifier unavailable")
		return nil
	}
	return notifier
}

func runREPL(ctx context.Context, engine *workflowx.Engine) {
	threadID := "cli-" + uuid.NewString()[:8]
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var history []contractx.ChatTurn

	fmt.Printf("storeops thread %s. Ask about sales, inventory, support, marketing or history. Ctrl-D to quit.\n", threadID)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}

		res, err := engine.RunQuery(ctx, threadID, query, history)
		if err != nil {
			log.Error().Err(err).Msg("query failed")
			continue
		}

		if res.AwaitingApproval {
			fmt.Println(res.Response)
			fmt.Println("\nProposed actions:")
			for _, p := range res.ProposedActions {
				fmt.Printf("  [%s] %s (%s)\n", p.ID, p.Description, p.Type)
			}
			fmt.Print("Approve ids (comma separated, empty to reject all): ")
			if !scanner.Scan() {
				return
			}
			res, err = engine.Resume(ctx, threadID, splitIDs(scanner.Text()))
			if err != nil {
				log.Error().Err(err).Msg("resume failed")
				continue
			}
		}

		fmt.Println(res.Response)
		history = appendTurns(history, query, res.Response)
	}
}

func splitIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// appendTurns records one exchange and keeps only the trailing window.
func appendTurns(history []contractx.ChatTurn, query, response string) []contractx.ChatTurn {
	history = append(history,
		contractx.ChatTurn{Role: "user", Content: query},
		contractx.ChatTurn{Role: "assistant", Content: response},
	)
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	return history
}
