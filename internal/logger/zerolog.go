package logger

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

type ZerologAdapter struct {
	mu     sync.RWMutex
	logger zerolog.Logger
}

func NewZerolog(writer io.Writer, level zerolog.Level) *ZerologAdapter {
	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &ZerologAdapter{logger: logger}
}

func NewConsoleLogger(level zerolog.Level) *ZerologAdapter {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout}
	return NewZerolog(consoleWriter, level)
}

// ParseLevel maps a config level string to a zerolog level, defaulting to
// info for unknown values.
func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

// SetLevel swaps the minimum emitted level. Used on config reload.
func (z *ZerologAdapter) SetLevel(level zerolog.Level) {
	z.mu.Lock()
	z.logger = z.logger.Level(level)
	z.mu.Unlock()
}

func (z *ZerologAdapter) Debug(component, message string, fields map[string]interface{}) {
	z.mu.RLock()
	event := z.logger.Debug().Str("component", component)
	z.mu.RUnlock()
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

func (z *ZerologAdapter) Info(component, message string, fields map[string]interface{}) {
	z.mu.RLock()
	event := z.logger.Info().Str("component", component)
	z.mu.RUnlock()
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

func (z *ZerologAdapter) Warning(component, message string, fields map[string]interface{}) {
	z.mu.RLock()
	event := z.logger.Warn().Str("component", component)
	z.mu.RUnlock()
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

func (z *ZerologAdapter) Error(component string, err error, fields map[string]interface{}) {
	z.mu.RLock()
	event := z.logger.Error().Str("component", component).Err(err)
	z.mu.RUnlock()
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg("operation failed")
}
