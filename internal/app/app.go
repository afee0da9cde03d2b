// Package app is the dependency-injection root: it builds every repository,
// service, worker, and handler the process needs and wires them together,
// the way main.go's own construction logic would if it weren't split out
// for testability.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/xpanvictor/xarvis/internal/config"
	"github.com/xpanvictor/xarvis/internal/database"
	"github.com/xpanvictor/xarvis/internal/domains/agent"
	"github.com/xpanvictor/xarvis/internal/domains/conversation"
	"github.com/xpanvictor/xarvis/internal/domains/notificationworker"
	"github.com/xpanvictor/xarvis/internal/domains/recurrenceworker"
	"github.com/xpanvictor/xarvis/internal/domains/reminderscheduler"
	"github.com/xpanvictor/xarvis/internal/domains/task"
	"github.com/xpanvictor/xarvis/internal/domains/user"
	"github.com/xpanvictor/xarvis/internal/eventbus"
	"github.com/xpanvictor/xarvis/internal/handlers"
	convoRepo "github.com/xpanvictor/xarvis/internal/repository/conversation"
	eventbusRepo "github.com/xpanvictor/xarvis/internal/repository/eventbus"
	taskRepo "github.com/xpanvictor/xarvis/internal/repository/task"
	userRepo "github.com/xpanvictor/xarvis/internal/repository/user"
	"github.com/xpanvictor/xarvis/internal/server"
	"github.com/xpanvictor/xarvis/pkg/Logger"
	"github.com/xpanvictor/xarvis/pkg/assistant"
	"github.com/xpanvictor/xarvis/pkg/assistant/adapters/geminiadapter"
	"github.com/xpanvictor/xarvis/pkg/assistant/adapters/openaiadapter"
	"github.com/xpanvictor/xarvis/pkg/assistant/router"
	"gorm.io/gorm"
)

// App holds every long-lived dependency this process constructs once at
// startup and tears down once at shutdown.
type App struct {
	Config *config.Settings
	Logger *Logger.Logger
	DB     *gorm.DB

	bus               eventbus.Bus
	reminderScheduler *reminderscheduler.Scheduler
	recurrenceWorker  *recurrenceworker.Worker
	notifyWorker      *notificationworker.Worker

	taskService  task.Service
	userService  user.UserService
	agentService agent.Service
	convos       conversation.Repository

	serverDeps server.Dependencies

	cancelBackground context.CancelFunc
}

// NewApp wires every repository, service, worker, and handler against the
// given config and database handle.
func NewApp(cfg *config.Settings, logger *Logger.Logger, db *gorm.DB) (*App, error) {
	a := &App{Config: cfg, Logger: logger, DB: db}
	if err := a.setupDependencies(); err != nil {
		return nil, fmt.Errorf("failed to set up dependencies: %w", err)
	}
	return a, nil
}

func (a *App) setupDependencies() error {
	if err := a.setupEventBus(); err != nil {
		return err
	}

	dedup := eventbusRepo.NewGormDedup(a.DB)
	taskRepository := taskRepo.NewGormTaskRepo(a.DB)
	userRepository := userRepo.NewGormUserRepo(a.DB)
	convoRepository := convoRepo.NewGormRepo(a.DB)

	a.convos = convoRepository
	a.taskService = task.NewService(taskRepository, a.bus, a.Logger)
	a.userService = user.NewUserService(
		userRepository, a.Logger, a.Config.Auth.JWTSecret,
		time.Duration(a.Config.Auth.TokenTTLHours)*time.Hour, a.Config.Auth.BcryptCost,
	)

	if a.Config.Workers.RecurrenceEnabled {
		a.recurrenceWorker = recurrenceworker.NewWorker(taskRepository, dedup, a.Logger)
		a.recurrenceWorker.Register(a.bus)
	}
	if a.Config.Workers.NotificationEnabled {
		a.notifyWorker = notificationworker.NewWorker(userRepository, dedup, a.setupEmailSender(), a.Logger)
		a.notifyWorker.Register(a.bus)
	}
	if a.Config.Workers.ReminderSchedulerEnabled {
		a.reminderScheduler = reminderscheduler.NewScheduler(taskRepository, a.bus, a.Logger, reminderscheduler.Config{
			Interval:  time.Duration(a.Config.Scheduler.TickSeconds) * time.Second,
			BatchSize: a.Config.Scheduler.BatchSize,
		})
	}

	llm, err := a.setupLLM()
	if err != nil {
		return fmt.Errorf("failed to set up assistant client: %w", err)
	}
	registry, err := agent.BuildRegistry(a.taskService)
	if err != nil {
		return fmt.Errorf("failed to build agent tool registry: %w", err)
	}
	a.agentService = agent.NewService(convoRepository, registry, llm, agent.Config{
		MaxToolIterations: a.Config.Agent.MaxToolIterations,
		TurnDeadline:      time.Duration(a.Config.Agent.TurnDeadlineSecs) * time.Second,
	}, a.Logger)

	a.serverDeps = server.Dependencies{
		UserService:  a.userService,
		UserHandler:  handlers.NewUserHandler(a.userService, a.Logger),
		TaskHandler:  handlers.NewTaskHandler(a.taskService, a.Logger),
		ConvoHandler: handlers.NewConvoHandler(a.agentService, convoRepository, a.Logger),
		Logger:       a.Logger,
	}

	return nil
}

// setupEventBus selects the production Redis-backed bus or the in-process
// memory bus depending on config, pinging Redis eagerly so a misconfigured
// address fails startup instead of surfacing as silent event loss later.
func (a *App) setupEventBus() error {
	if !a.Config.Workers.EventBusEnabled {
		a.bus = eventbus.NewMemoryBus()
		return nil
	}

	pingClient, err := database.NewRedis(a.Config.RedisDB)
	if err != nil {
		return fmt.Errorf("failed to build redis client: %w", err)
	}
	defer pingClient.Close()
	if _, err := pingClient.Ping().Result(); err != nil {
		return fmt.Errorf("redis unreachable at %s: %w", a.Config.RedisDB.Addr, err)
	}

	a.bus = eventbus.NewAsynqBus(eventbus.AsynqConfig{
		RedisAddr:     a.Config.RedisDB.Addr,
		RedisPassword: a.Config.RedisDB.Pass,
		Concurrency:   10,
		Queue:         "xarvis",
	}, a.Logger)
	return nil
}

func (a *App) setupEmailSender() notificationworker.EmailSender {
	if !a.Config.SMTP.Enabled {
		return notificationworker.NewLogSender(a.Logger)
	}
	return notificationworker.NewSMTPSender(notificationworker.SMTPConfig{
		Host:     a.Config.SMTP.Host,
		Port:     a.Config.SMTP.Port,
		Username: a.Config.SMTP.Username,
		Password: a.Config.SMTP.Password,
		From:     a.Config.SMTP.From,
	})
}

// setupLLM builds the assistant.Client the Agent calls, selecting the
// OpenAI or Gemini adapter by config and putting it behind a single-pack
// router.Mux so swapping providers later needs no call-site changes.
func (a *App) setupLLM() (assistant.Client, error) {
	switch a.Config.Agent.Provider {
	case "gemini":
		adapter, err := geminiadapter.New(context.Background(), a.Config.AssistantKeys.Gemini.APIKey, a.Config.Agent.Model)
		if err != nil {
			return nil, err
		}
		return router.NewMux(router.AdapterPack{Name: "gemini", Client: adapter})
	default:
		adapter := openaiadapter.New(a.Config.AssistantKeys.OpenAiApiKey, a.Config.Agent.Model)
		return router.NewMux(router.AdapterPack{Name: "openai", Client: adapter})
	}
}

// GetServerDependencies returns the bundle InitializeRoutes mounts onto the
// gin.Engine in cmd/api/main.go.
func (a *App) GetServerDependencies() server.Dependencies {
	return a.serverDeps
}

// Run starts every background component this process owns: the reminder
// sweep ticker and the event bus's own delivery loop. Both block until ctx
// is cancelled, so each runs in its own goroutine.
func (a *App) Run(ctx context.Context) {
	bgCtx, cancel := context.WithCancel(ctx)
	a.cancelBackground = cancel

	go func() {
		if err := a.bus.Run(bgCtx); err != nil && bgCtx.Err() == nil {
			a.Logger.Errorw("event bus run loop exited", "error", err)
		}
	}()

	if a.reminderScheduler != nil {
		go func() {
			if err := a.reminderScheduler.Run(bgCtx); err != nil && bgCtx.Err() == nil {
				a.Logger.Errorw("reminder scheduler exited", "error", err)
			}
		}()
	}
}

// Shutdown stops the background scheduler loop and closes the event bus:
// stop background work first, then close transport-owning resources.
func (a *App) Shutdown(ctx context.Context) error {
	if a.cancelBackground != nil {
		a.cancelBackground()
	}
	if a.bus != nil {
		return a.bus.Close()
	}
	return nil
}
