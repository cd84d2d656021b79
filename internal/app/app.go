package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"somiti-server/internal/config"
	"somiti-server/internal/db"
	memberdomain "somiti-server/internal/domain/member"
	reportsdomain "somiti-server/internal/domain/reports"
	transactiondomain "somiti-server/internal/domain/transaction"
	amqpevents "somiti-server/internal/events/amqp"
	"somiti-server/internal/identity"
	"somiti-server/internal/identity/firebase"
	"somiti-server/internal/identity/memory"
	"somiti-server/internal/metrics"
	mongomember "somiti-server/internal/repository/mongo/member"
	mongotransaction "somiti-server/internal/repository/mongo/transaction"
	pgmember "somiti-server/internal/repository/postgres/member"
	pgtransaction "somiti-server/internal/repository/postgres/transaction"
	"somiti-server/internal/transport/httpserver"
	"somiti-server/internal/transport/httpserver/handler"
	"somiti-server/pkg/logger"
)

type App struct {
	cfg        config.Config
	log        logger.Logger
	httpServer *http.Server
	sqlDB      *gorm.DB
	mongo      *mongo.Client
	publisher  *amqpevents.Publisher
}

type stores struct {
	members      memberdomain.Repository
	transactions transactiondomain.Repository
}

func New(ctx context.Context, log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log}

	log.Info("app: initializing store", "driver", cfg.Store.Driver)
	repos, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	log.Info("app: initializing identity provider", "provider", cfg.Identity.Provider)
	provider, err := newIdentityProvider(ctx, cfg.Identity)
	if err != nil {
		a.Close()
		return nil, err
	}

	var publisher transactiondomain.Publisher
	if cfg.AMQP.Enabled() {
		log.Info("app: initializing event publisher")
		a.publisher, err = amqpevents.NewPublisher(cfg.AMQP, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		publisher = a.publisher
	}

	members := memberdomain.NewService(repos.members, repos.transactions, provider, cfg.BcryptCost)
	transactions := transactiondomain.NewService(repos.transactions, publisher, log)
	reports := reportsdomain.NewService(repos.members, repos.transactions)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	log.Info("app: initializing router")
	handlers := handler.New(members, transactions, reports, log)
	router := httpserver.NewRouter(cfg, handlers, m, log)

	log.Info("app: initializing http server")
	a.httpServer = httpserver.New(cfg, router)
	return a, nil
}

func (a *App) openStore(ctx context.Context) (stores, error) {
	switch a.cfg.Store.Driver {
	case config.StorePostgres:
		conn, err := db.NewPostgres(a.cfg.DB, a.log)
		if err != nil {
			return stores{}, err
		}
		a.sqlDB = conn
		if a.cfg.DB.AutoMigrate {
			if err := db.Migrate(conn, a.log); err != nil {
				return stores{}, fmt.Errorf("migrate: %w", err)
			}
		}
		return stores{
			members:      pgmember.NewPostgres(conn),
			transactions: pgtransaction.NewPostgres(conn),
		}, nil
	default:
		client, database, err := db.NewMongo(ctx, a.cfg.Mongo, a.log)
		if err != nil {
			return stores{}, err
		}
		a.mongo = client

		members := mongomember.NewMongo(database)
		transactions := mongotransaction.NewMongo(database)
		if err := members.EnsureIndexes(ctx); err != nil {
			return stores{}, err
		}
		if err := transactions.EnsureIndexes(ctx); err != nil {
			return stores{}, err
		}
		return stores{members: members, transactions: transactions}, nil
	}
}

func newIdentityProvider(ctx context.Context, cfg config.IdentityConfig) (identity.Provider, error) {
	switch cfg.Provider {
	case config.IdentityMemory:
		return memory.New(), nil
	default:
		return firebase.New(ctx, cfg)
	}
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	var errs []error

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("disconnect mongo: %w", err))
		}
	}
	if a.sqlDB != nil {
		sqlDB, err := a.sqlDB.DB()
		if err != nil {
			errs = append(errs, err)
		} else if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}

	return errors.Join(errs...)
}
