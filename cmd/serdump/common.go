package main

import (
	"flag"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"serdump/internal/config"
	"serdump/internal/decode"
	"serdump/internal/input"
	"serdump/internal/logging"
)

type commonFlags struct {
	fs         *flag.FlagSet
	in         *string
	configPath *string
	logLevel   *string
	hex        *bool
	raw        *bool
	maxDepth   *int
	maxInput   *int64
}

func addCommon(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		fs:         fs,
		in:         fs.String("in", "", "input file, - for stdin"),
		configPath: fs.String("config", "", "TOML config file"),
		logLevel:   fs.String("log-level", "", "log level"),
		hex:        fs.Bool("hex", false, "input is hex text"),
		raw:        fs.Bool("raw", false, "input is binary"),
		maxDepth:   fs.Int("max-depth", 0, "nesting cap"),
		maxInput:   fs.Int64("max-input", 0, "input size cap in bytes"),
	}
}

// session is one loaded input with its resolved settings.
type session struct {
	cfg  config.Config
	log  zerolog.Logger
	src  string
	data []byte
}

// open resolves settings (defaults < config file < env < flags), builds
// the logger and loads the input. Call after fs.Parse.
func (c *commonFlags) open() (*session, error) {
	if *c.in == "" {
		return nil, errors.New("--in is required")
	}
	if *c.hex && *c.raw {
		return nil, errors.New("--hex and --raw are exclusive")
	}

	cfg, err := config.Load(*c.configPath)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	c.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["max-depth"] {
		cfg.MaxDepth = *c.maxDepth
	}
	if set["max-input"] {
		cfg.MaxInput = *c.maxInput
	}
	if set["log-level"] {
		cfg.LogLevel = *c.logLevel
	}
	if set["hex"] {
		cfg.Hex = *c.hex
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	log := logging.New("serdump", logging.Config{Level: cfg.LogLevel, Timestamp: cfg.LogTimestamp})

	format := input.FormatAuto
	switch {
	case *c.raw:
		format = input.FormatRaw
	case cfg.Hex:
		format = input.FormatHex
	}
	data, err := input.Load(*c.in, input.Options{Format: format, MaxInput: cfg.MaxInput})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("in", *c.in).Int("bytes", len(data)).Int("max_depth", cfg.MaxDepth).Msg("input loaded")

	return &session{cfg: cfg, log: log, src: *c.in, data: data}, nil
}

func (s *session) decode(sink decode.Sink) (*decode.Result, error) {
	return decode.Decode(s.data, decode.Options{
		MaxDepth: s.cfg.MaxDepth,
		Sink:     sink,
		Logger:   &s.log,
	})
}

// stopped wraps a decode error with how far the parse got.
func stopped(res *decode.Result, err error) error {
	return errors.Wrapf(err, "decode stopped after %d bytes", res.Consumed)
}
