package logging

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/tacit/internal/config"
)

// maxPatternLen bounds user-supplied redaction patterns.
const maxPatternLen = 200

const redactedMarker = "[REDACTED]"

// Secret logs a config.Secret as a redaction marker carrying its length.
func Secret(key string, val config.Secret) zap.Field {
	return RedactedString(key, val.Value())
}

// RedactedString logs val as a redaction marker carrying its length.
func RedactedString(key, val string) zap.Field {
	return zap.String(key, "[REDACTED:"+strconv.Itoa(len(val))+"]")
}

// RedactingEncoder wraps a zapcore.Encoder. Values under sensitive keys are
// replaced wholesale; string values have pattern matches masked in place.
type RedactingEncoder struct {
	zapcore.Encoder
	keys     map[string]struct{}
	patterns []*regexp.Regexp
}

// NewRedactingEncoder wraps base with the rules in cfg.
func NewRedactingEncoder(base zapcore.Encoder, cfg RedactionConfig) (*RedactingEncoder, error) {
	if !cfg.Enabled {
		return &RedactingEncoder{Encoder: base}, nil
	}

	keys := make(map[string]struct{}, len(cfg.Fields))
	for _, f := range cfg.Fields {
		keys[strings.ToLower(f)] = struct{}{}
	}

	patterns := make([]*regexp.Regexp, 0, len(cfg.Patterns))
	for _, p := range cfg.Patterns {
		if len(p) > maxPatternLen {
			return nil, fmt.Errorf("redaction pattern too long (max %d chars): %q", maxPatternLen, p)
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}

	return &RedactingEncoder{Encoder: base, keys: keys, patterns: patterns}, nil
}

func (e *RedactingEncoder) sensitive(key string) bool {
	_, ok := e.keys[strings.ToLower(key)]
	return ok
}

// mask replaces every pattern match in s.
func (e *RedactingEncoder) mask(s string) string {
	for _, re := range e.patterns {
		s = re.ReplaceAllString(s, redactedMarker)
	}
	return s
}

func (e *RedactingEncoder) AddString(key, val string) {
	if e.sensitive(key) {
		e.Encoder.AddString(key, redactedMarker)
		return
	}
	e.Encoder.AddString(key, e.mask(val))
}

func (e *RedactingEncoder) AddByteString(key string, val []byte) {
	if e.sensitive(key) {
		e.Encoder.AddString(key, redactedMarker)
		return
	}
	e.Encoder.AddString(key, e.mask(string(val)))
}

func (e *RedactingEncoder) AddBinary(key string, val []byte) {
	if e.sensitive(key) {
		e.Encoder.AddString(key, redactedMarker)
		return
	}
	e.Encoder.AddBinary(key, val)
}

// AddReflected redacts the whole value under a sensitive key. Nested values
// are not inspected.
func (e *RedactingEncoder) AddReflected(key string, val interface{}) error {
	if e.sensitive(key) {
		e.Encoder.AddString(key, redactedMarker)
		return nil
	}
	return e.Encoder.AddReflected(key, val)
}

func (e *RedactingEncoder) AddArray(key string, arr zapcore.ArrayMarshaler) error {
	if e.sensitive(key) {
		e.Encoder.AddString(key, redactedMarker)
		return nil
	}
	return e.Encoder.AddArray(key, arr)
}

func (e *RedactingEncoder) AddObject(key string, obj zapcore.ObjectMarshaler) error {
	if e.sensitive(key) {
		e.Encoder.AddString(key, redactedMarker)
		return nil
	}
	return e.Encoder.AddObject(key, obj)
}

// Clone keeps the rules. Fields added through With are encoded into the
// clone, so they are redacted too.
func (e *RedactingEncoder) Clone() zapcore.Encoder {
	return &RedactingEncoder{
		Encoder:  e.Encoder.Clone(),
		keys:     e.keys,
		patterns: e.patterns,
	}
}

// EncodeEntry masks the message itself before delegating.
func (e *RedactingEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	ent.Message = e.mask(ent.Message)
	return e.Encoder.EncodeEntry(ent, e.scrub(fields))
}

// scrub applies the rules to per-entry fields, which the wrapped encoder
// would otherwise write without calling back into e.
func (e *RedactingEncoder) scrub(fields []zapcore.Field) []zapcore.Field {
	if len(e.keys) == 0 && len(e.patterns) == 0 {
		return fields
	}
	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		switch {
		case e.sensitive(f.Key):
			out[i] = zap.String(f.Key, redactedMarker)
		case f.Type == zapcore.StringType:
			out[i] = zap.String(f.Key, e.mask(f.String))
		case f.Type == zapcore.ErrorType:
			if err, ok := f.Interface.(error); ok {
				out[i] = zap.String(f.Key, e.mask(err.Error()))
			} else {
				out[i] = f
			}
		default:
			out[i] = f
		}
	}
	return out
}
