package ledgersdk

import (
	"os"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/rs/zerolog"
)

// logBackend is the narrow interface the rest of this module logs through.
// Both of logiface's generic event types it's implemented against (stumpy's
// and zerolog's, via izerolog) satisfy it identically, so logger.b can be
// swapped without any call site depending on the concrete event type.
type logBackend interface {
	warn(msg string, kv ...any)
	info(msg string, kv ...any)
	err(msg string, kv ...any)
	debug(msg string, kv ...any)
}

// logger wraps a logBackend behind a narrow, key-value-pair API, so the
// rest of this module never depends on the concrete event type chosen for
// the active backend.
type logger struct {
	b logBackend
}

type stumpyBackend struct {
	l *logiface.Logger[*stumpy.Event]
}

func (b *stumpyBackend) warn(msg string, kv ...any)  { logKV(b.l.Warning(), msg, kv) }
func (b *stumpyBackend) info(msg string, kv ...any)  { logKV(b.l.Info(), msg, kv) }
func (b *stumpyBackend) err(msg string, kv ...any)   { logKV(b.l.Err(), msg, kv) }
func (b *stumpyBackend) debug(msg string, kv ...any) { logKV(b.l.Debug(), msg, kv) }

type zerologBackend struct {
	l *logiface.Logger[*izerolog.Event]
}

func (b *zerologBackend) warn(msg string, kv ...any)  { logKV(b.l.Warning(), msg, kv) }
func (b *zerologBackend) info(msg string, kv ...any)  { logKV(b.l.Info(), msg, kv) }
func (b *zerologBackend) err(msg string, kv ...any)   { logKV(b.l.Err(), msg, kv) }
func (b *zerologBackend) debug(msg string, kv ...any) { logKV(b.l.Debug(), msg, kv) }

// defaultLogger writes newline-delimited JSON to stderr, matching the
// teacher ecosystem's stumpy default.
func defaultLogger() *logger {
	return &logger{b: &stumpyBackend{l: stumpy.L.New(stumpy.L.WithStumpy())}}
}

// NewLoggerWithWriter builds a logger writing to the file w (e.g. a
// rotated log file, or os.Stdout for CLI use). Pass the result to
// Client.SetLogger.
func NewLoggerWithWriter(w *os.File) *logger {
	return &logger{b: &stumpyBackend{l: stumpy.L.New(stumpy.L.WithStumpy(stumpy.WithWriter(w)))}}
}

// NewLoggerWithZerolog builds a logger backed by an application's existing
// zerolog.Logger instead of the default stumpy backend (spec §10), via
// github.com/joeycumines/izerolog. Pass the result to Client.SetLogger.
func NewLoggerWithZerolog(zl zerolog.Logger) *logger {
	return &logger{b: &zerologBackend{l: izerolog.L.New(izerolog.WithZerolog(zl))}}
}

func (lg *logger) warn(msg string, kv ...any)  { lg.b.warn(msg, kv...) }
func (lg *logger) info(msg string, kv ...any)  { lg.b.info(msg, kv...) }
func (lg *logger) err(msg string, kv ...any)   { lg.b.err(msg, kv...) }
func (lg *logger) debug(msg string, kv ...any) { lg.b.debug(msg, kv...) }

// logKV is generic over the logiface event type so both the stumpy and
// zerolog backends can share the same key-value decoding, rather than
// duplicating the type switch per backend.
func logKV[E logiface.Event](b *logiface.Builder[E], msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		switch v := kv[i+1].(type) {
		case string:
			b = b.Str(key, v)
		case error:
			b = b.Err(v)
		case int:
			b = b.Int(key, v)
		case int32:
			b = b.Int(key, int(v))
		case int64:
			b = b.Int64(key, v)
		case bool:
			b = b.Bool(key, v)
		default:
			b = b.Any(key, v)
		}
	}
	b.Log(msg)
}
