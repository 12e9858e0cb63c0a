package main

import "time"

type Config struct {
	Port              int           `env:"PORT,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,required=true"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath     string        `env:"BLUGE_FILEPATH,required=true"`
	MediaRoot         string        `env:"MEDIA_ROOT,required=true"`
	BufferSize        int           `env:"BUFFER_SIZE,required=true"`
	SinkTimeout       time.Duration `env:"SINK_TIMEOUT,required=true"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,required=true"`
	MetricInterval    time.Duration `env:"METRIC_INTERVAL,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
	CharReplacement   string        `env:"CHARACTER_REPLACEMENT"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// censorRune returns the configured replacement character, defaulting
// to an asterisk.
func (c Config) censorRune() rune {
	r := []rune(c.CharReplacement)
	if len(r) != 1 {
		return '*'
	}
	return r[0]
}
