package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/acme/voice-squad/internal/calendar"
	"github.com/acme/voice-squad/internal/config"
	"github.com/acme/voice-squad/internal/crm"
	"github.com/acme/voice-squad/internal/infra/db"
	"github.com/acme/voice-squad/internal/infra/redis"
	"github.com/acme/voice-squad/internal/queue"
	"github.com/acme/voice-squad/internal/repository"
	pgrepo "github.com/acme/voice-squad/internal/repository/postgres"
	scyllarepo "github.com/acme/voice-squad/internal/repository/scylla"
	bookingsvc "github.com/acme/voice-squad/internal/service/booking"
	"github.com/acme/voice-squad/internal/service/dedupe"
	"github.com/acme/voice-squad/internal/service/redial"
	retryflowsvc "github.com/acme/voice-squad/internal/service/retryflow"
	"github.com/acme/voice-squad/internal/voice"
	voicemock "github.com/acme/voice-squad/internal/voice/mock"
	"github.com/acme/voice-squad/pkg/logger"
)

// Container wires together shared infrastructure dependencies.
type Container struct {
	Config *config.Config
	Logger *logger.Logger

	Postgres *db.Postgres
	Scylla   *db.Scylla
	Redis    *redis.Client
	Kafka    *queue.Kafka

	// lazily initialised components
	components struct {
		once         sync.Once
		repositories *repositories
		services     *services
		dispatchers  *dispatchers
		clients      *clients
	}
}

type repositories struct {
	Journal    repository.CallJournal
	BookingLog repository.BookingLog
}

type services struct {
	RetryFlow *retryflowsvc.Service
	Booking   *bookingsvc.Service
}

type dispatchers struct {
	Dial   *queue.DialDispatcher
	Events *queue.EventPublisher
}

type clients struct {
	Directory crm.Directory
	Calendar  calendar.API
	Voice     voice.Provider
	Redial    *redial.Index
	Guard     *dedupe.Guard
}

// Build constructs a container for the given configuration path.
func Build(ctx context.Context, configPath string) (*Container, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	lg, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, err
	}

	pg, err := db.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("bootstrap postgres: %w", err)
	}

	scylla, err := db.NewScylla(cfg.Scylla)
	if err != nil {
		return nil, fmt.Errorf("bootstrap scylla: %w", err)
	}

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("bootstrap redis: %w", err)
	}

	kafka, err := queue.NewKafka(cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("bootstrap kafka: %w", err)
	}

	container := &Container{
		Config:   cfg,
		Logger:   lg,
		Postgres: pg,
		Scylla:   scylla,
		Redis:    redisClient,
		Kafka:    kafka,
	}

	return container, nil
}

func (c *Container) initComponents() {
	c.components.once.Do(func() {
		repos := &repositories{
			Journal:    scyllarepo.NewCallJournal(c.Scylla.Session()),
			BookingLog: pgrepo.NewBookingLogRepository(c.Postgres.DB()),
		}

		disp := &dispatchers{
			Dial:   queue.NewDialDispatcher(c.Kafka, c.Config.Kafka.DialTopic),
			Events: queue.NewEventPublisher(c.Kafka, c.Config.Kafka.EventTopic),
		}

		var provider voice.Provider
		if c.Config.Voice.ProviderName == "mock" {
			provider = voicemock.NewProvider()
		} else {
			provider = voice.NewClient(c.Config.Voice)
		}

		cl := &clients{
			Directory: crm.NewClient(c.Config.CRM),
			Calendar:  calendar.NewClient(c.Config.Calendar),
			Voice:     provider,
			Redial:    redial.NewIndex(c.Redis.Inner()),
			Guard:     dedupe.NewGuard(c.Redis.Inner(), c.Config.Scheduler.DedupeTTL),
		}

		svcs := &services{
			RetryFlow: retryflowsvc.NewService(
				cl.Directory,
				repos.Journal,
				cl.Redial,
				cl.Guard,
				disp.Events,
				c.Logger.Named("retryflow"),
				c.Config.SMS.FollowUpMessage,
			),
			Booking: bookingsvc.NewService(
				cl.Calendar,
				cl.Directory,
				repos.BookingLog,
				c.Logger.Named("booking"),
				c.Config.Calendar.Timezone,
			),
		}

		c.components.repositories = repos
		c.components.dispatchers = disp
		c.components.clients = cl
		c.components.services = svcs
	})
}

// Repositories exposes initialized repositories.
func (c *Container) Repositories() *repositories {
	c.initComponents()
	return c.components.repositories
}

// Services exposes initialized services.
func (c *Container) Services() *services {
	c.initComponents()
	return c.components.services
}

// Dispatchers exposes Kafka dispatchers.
func (c *Container) Dispatchers() *dispatchers {
	c.initComponents()
	return c.components.dispatchers
}

// CRM exposes the contact directory client.
func (c *Container) CRM() crm.Directory {
	c.initComponents()
	return c.components.clients.Directory
}

// Calendar exposes the calendar client.
func (c *Container) Calendar() calendar.API {
	c.initComponents()
	return c.components.clients.Calendar
}

// Voice exposes the outbound call provider.
func (c *Container) Voice() voice.Provider {
	c.initComponents()
	return c.components.clients.Voice
}

// Redial exposes the due-retry index.
func (c *Container) Redial() *redial.Index {
	c.initComponents()
	return c.components.clients.Redial
}

// Guard exposes the event dedupe guard.
func (c *Container) Guard() *dedupe.Guard {
	c.initComponents()
	return c.components.clients.Guard
}

// Close releases all held resources.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if d := c.components.dispatchers; d != nil {
		if d.Dial != nil {
			if err := d.Dial.Close(); err != nil {
				errs = append(errs, fmt.Errorf("dial dispatcher close: %w", err))
			}
		}
		if d.Events != nil {
			if err := d.Events.Close(); err != nil {
				errs = append(errs, fmt.Errorf("event publisher close: %w", err))
			}
		}
	}
	if c.Kafka != nil {
		if err := c.Kafka.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kafka close: %w", err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if c.Scylla != nil {
		if err := c.Scylla.Close(); err != nil {
			errs = append(errs, fmt.Errorf("scylla close: %w", err))
		}
	}
	if c.Postgres != nil {
		if err := c.Postgres.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres close: %w", err))
		}
	}
	if c.Logger != nil {
		c.Logger.Sync()
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// EnsureTopics ensures required Kafka topics exist.
func (c *Container) EnsureTopics(ctx context.Context) error {
	topics := []string{c.Config.Kafka.DialTopic, c.Config.Kafka.EventTopic}
	return c.Kafka.EnsureTopics(ctx, topics, 12, 1)
}
