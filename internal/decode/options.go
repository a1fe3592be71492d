package decode

import "github.com/rs/zerolog"

// DefaultMaxDepth bounds grammar nesting when Options.MaxDepth is 0.
const DefaultMaxDepth = 512

// Options controls one Decode call.
type Options struct {
	MaxDepth int             // nesting cap; 0 = DefaultMaxDepth
	Sink     Sink            // event consumer; nil = record into Result.Events
	Logger   *zerolog.Logger // nil = no logging
}

func (o Options) EffectiveMaxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return DefaultMaxDepth
}

func (o Options) logger() zerolog.Logger {
	if o.Logger != nil {
		return *o.Logger
	}
	return zerolog.Nop()
}

// Result is everything one Decode call produced. On error it holds what
// was decoded before the failure.
type Result struct {
	Contents []Content `json:"contents"`
	Handles  []Entry   `json:"handles"`
	Events   []Event   `json:"-"`
	Consumed int       `json:"consumed"` // bytes read, header included
}
