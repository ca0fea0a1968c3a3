package logger

import (
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
)

var Logger *zap.SugaredLogger

// Init builds the package logger. Development mode logs debug output to stderr,
// production mode writes JSON to queryspec.log.
func Init(dev bool) {
	if dev {
		cfg := zap.NewDevelopmentConfig()
		UpdateLogger(&cfg)
		return
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"queryspec.log"}
	UpdateLogger(&cfg)
}

// UpdateLogger replaces the package logger with one built from config.
// A nil config selects the production defaults.
func UpdateLogger(config *zap.Config) {
	if config == nil {
		defaultConfig := zap.NewProductionConfig()
		defaultConfig.OutputPaths = []string{"queryspec.log"}
		config = &defaultConfig
	}

	logger, err := config.Build()
	if err != nil {
		log.Print(err)
		return
	}

	Logger = logger.Sugar()
	Debug("QuerySpec logger initialized")
}

// Sync flushes buffered log entries.
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

func Info(template string, args ...interface{}) {
	if Logger == nil {
		log.Printf(template, args...)
		return
	}
	Logger.Infow(fmt.Sprintf(template, args...), "process_id", os.Getpid())
}

func Warn(template string, args ...interface{}) {
	if Logger == nil {
		log.Printf(template, args...)
		return
	}
	Logger.Warnw(fmt.Sprintf(template, args...), "process_id", os.Getpid())
}

func Error(template string, args ...interface{}) {
	if Logger == nil {
		log.Printf(template, args...)
		return
	}
	Logger.Errorw(fmt.Sprintf(template, args...), "process_id", os.Getpid())
}

// Debug is silent until Init has been called, unlike the other levels.
func Debug(template string, args ...interface{}) {
	if Logger == nil {
		return
	}
	Logger.Debugw(fmt.Sprintf(template, args...), "process_id", os.Getpid())
}
