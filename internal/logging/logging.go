package logging

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vladislavdragonenkov/orderdesk/internal/config"
)

// Setup настраивает пакетный logrus: уровень, формат и вывод.
// Логи идут в stderr, stdout остаётся за JSON-выводом команд.
// Если задан cfg.File, запись дублируется в файл с ротацией; возвращённый Closer закрывает его.
func Setup(cfg config.Log) (io.Closer, error) {
	return setup(log.StandardLogger(), cfg, os.Stderr)
}

func setup(logger *log.Logger, cfg config.Log, console io.Writer) (io.Closer, error) {
	level := log.InfoLevel
	if cfg.Level != "" {
		parsed, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if cfg.File == "" {
		logger.SetOutput(console)
		return io.NopCloser(nil), nil
	}

	rot := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     7, // days
	}
	logger.SetOutput(io.MultiWriter(console, rot))
	return rot, nil
}

// Component возвращает entry с полем component.
func Component(name string) *log.Entry {
	return log.WithField("component", name)
}
