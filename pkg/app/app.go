package app

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/code-payments/echo-client/pkg/metrics"
)

// App is a short lived command run once per process.
//
// The app gets initialized after configuration and logging are set up, runs
// to completion with the remaining command line arguments, and gets stopped
// before the process exits.
type App interface {
	// Init initializes the application in a blocking fashion.
	Init(config Config, metricsProvider *newrelic.Application) error

	// Run executes the command. The context is cancelled when the process
	// receives an interrupt.
	Run(ctx context.Context, args []string) error

	// Stop allows the application to clean up any resources.
	//
	// Stop should be idempotent.
	Stop()
}

var (
	configPath = flag.String("config", "config.yaml", "configuration file path")
	envPath    = flag.String("env", ".env", "dotenv file path")

	osSigCh = make(chan os.Signal, 1)
)

func init() {
	signal.Notify(osSigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
}

// Run configures the process and runs app. Configuration failures terminate
// the process, while the result of App.Run is returned.
func Run(app App) error {
	flag.Parse()

	logger := logrus.StandardLogger().WithField("type", "app")
	fatal := func(err error, msg string) {
		logger.WithError(err).Error(msg)
		os.Exit(1)
	}

	if err := loadEnvFile(*envPath); err != nil {
		fatal(err, "failed to load env file")
	}

	config, err := loadConfig(*configPath)
	if err != nil {
		fatal(err, "failed to load config")
	}

	metricsProvider, err := newMetricsProvider(config)
	if err != nil {
		fatal(err, "error connecting to new relic")
	}

	configureLogger(config, metricsProvider)

	if err := app.Init(config.AppConfig, metricsProvider); err != nil {
		fatal(err, "failed to initialize application")
	}
	defer func() {
		app.Stop()

		if metricsProvider != nil {
			metricsProvider.Shutdown(config.ShutdownGracePeriod)
		}
	}()

	ctx, cancel := context.WithCancel(metrics.WithApplication(context.Background(), metricsProvider))
	defer cancel()

	go func() {
		select {
		case <-osSigCh:
			logger.Info("interrupt received, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	return app.Run(ctx, flag.Args())
}

// loadEnvFile loads path if it exists. Variables already in the environment
// take precedence.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Wrap(err, "failed to check if env file exists")
	}
	return godotenv.Load(path)
}

// loadConfig reads the optional config file at path over the defaults, with
// bound environment variables taking precedence.
func loadConfig(path string) (BaseConfig, error) {
	// An explicitly set file that is missing isn't reported as a
	// ConfigFileNotFoundError, so only set it when present.
	if _, err := os.Stat(path); err == nil {
		viper.SetConfigFile(path)
	} else if !os.IsNotExist(err) {
		return BaseConfig{}, errors.Wrap(err, "failed to check if config exists")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return BaseConfig{}, err
		}
	}

	config := defaultConfig
	if err := viper.Unmarshal(&config); err != nil {
		return BaseConfig{}, errors.Wrap(err, "failed to unmarshal config")
	}
	if len(config.AppName) == 0 {
		return BaseConfig{}, errors.New("must specify an application name")
	}
	return config, nil
}

// newMetricsProvider returns nil when no license key is configured.
func newMetricsProvider(config BaseConfig) (*newrelic.Application, error) {
	if len(config.NewRelicLicenseKey) == 0 {
		return nil, nil
	}
	return newrelic.NewApplication(
		newrelic.ConfigFromEnvironment(),
		newrelic.ConfigAppName(config.AppName),
		newrelic.ConfigLicense(config.NewRelicLicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
}

func configureLogger(config BaseConfig, metricsProvider *newrelic.Application) {
	var formatter logrus.Formatter = &logrus.JSONFormatter{}
	if metricsProvider != nil {
		formatter = metrics.NewLogFormatter(metricsProvider, formatter)
	}
	logrus.SetFormatter(formatter)
	logrus.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
		return
	}
	logrus.SetLevel(level)
}
