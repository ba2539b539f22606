package app

import (
	"context"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/britishfeed/feedstore/config"
	"github.com/britishfeed/feedstore/internal/advisor"
	"github.com/britishfeed/feedstore/internal/blob"
	"github.com/britishfeed/feedstore/internal/catalog"
	"github.com/britishfeed/feedstore/internal/inquiry"
	"github.com/britishfeed/feedstore/internal/kv"
	"github.com/britishfeed/feedstore/pkg/metrics"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Application struct {
	appConfig     *config.AppConfig
	store         kv.Store
	bus           EventBus.Bus
	sched         *cron.Cron
	catalog       *catalog.Store
	publicCatalog *catalog.PublicView
	blobs         *blob.Store
	chatSettings  *advisor.Settings
	advisor       *advisor.Advisor
	mailer        *inquiry.Mailer
	inquiries     *inquiry.Store
}

// Ensure Application implements all interfaces
var (
	_ ConfigProvider    = (*Application)(nil)
	_ StorageProvider   = (*Application)(nil)
	_ CatalogProvider   = (*Application)(nil)
	_ BlobProvider      = (*Application)(nil)
	_ AdvisorProvider   = (*Application)(nil)
	_ InquiryProvider   = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) KV() kv.Store {
	return a.store
}

func (a *Application) Catalog() *catalog.Store {
	return a.catalog
}

func (a *Application) PublicCatalog() *catalog.PublicView {
	return a.publicCatalog
}

func (a *Application) Blobs() *blob.Store {
	return a.blobs
}

func (a *Application) Advisor() *advisor.Advisor {
	return a.advisor
}

func (a *Application) ChatSettings() *advisor.Settings {
	return a.chatSettings
}

func (a *Application) Inquiries() *inquiry.Store {
	return a.inquiries
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// initLogger installs the global zap logger
func initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}
	zap.ReplaceGlobals(logger)
}

func (a *Application) Init(cfg *config.AppConfig) {
	a.appConfig = cfg
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg)

	workdir := cfg.System.Workdir
	if cfg.Storage.Type == "memory" {
		workdir = ""
	}
	if err := metrics.InitMetrics(workdir); err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	store, err := kv.Open(cfg)
	if err != nil {
		zap.S().Fatalf("storage open failed: %v", err)
	}
	a.Bootstrap(store)
	a.initJob()
}

// Bootstrap wires every service on top of store and seeds missing defaults.
// Init calls it after opening the configured backend; tests call it directly.
func (a *Application) Bootstrap(store kv.Store) {
	cfg := a.appConfig
	a.store = store
	a.bus = EventBus.New()
	a.catalog = catalog.NewStore(store, catalog.WithBus(a.bus))
	a.publicCatalog = catalog.NewPublicView(a.catalog, a.bus)
	a.blobs = blob.NewStore(store)
	a.chatSettings = advisor.NewSettings(store)

	completer, err := advisor.NewCompleter(context.Background(), cfg.Advisor)
	if err != nil {
		zap.L().Warn("completion service not configured, chat replies will use the fallback",
			zap.String("namespace", "advisor"),
			zap.String("provider", cfg.Advisor.Provider),
			zap.Error(err))
		completer = nil
	}
	a.advisor = advisor.New(a.chatSettings, advisor.StoreFactsFromConfig(cfg.Store), completer)

	a.mailer, err = inquiry.NewMailer(cfg.Mail)
	if err != nil {
		zap.L().Error("inquiry mail disabled", zap.String("namespace", "inquiry"), zap.Error(err))
		a.mailer = nil
	}
	a.inquiries = inquiry.NewStore(store, a.mailer)

	a.checkSessionSecret()
	a.checkPersona()
	a.checkKnowledge()
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if err := a.mailer.Close(10 * time.Second); err != nil {
		zap.L().Warn("mail queue not drained", zap.String("namespace", "inquiry"), zap.Error(err))
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}
