package logger

import (
	"fmt"
	"io"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/go-stack/stack"
)

// New builds a leveled logger writing to w. format is "logfmt" or "json";
// lvl is one of debug, info, warn, error or off.
func New(w io.Writer, format, lvl string) log.Logger {
	var logger log.Logger //nolint:gosimple
	logger = withFormat(format, w)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	logger = log.With(logger, "caller", pathCaller(6))
	return withLevel(logger, lvl)
}

// OrNop returns logger, or a logger that discards everything when it is nil.
func OrNop(logger log.Logger) log.Logger {
	if logger == nil {
		return log.NewNopLogger()
	}
	return logger
}

func withFormat(format string, w io.Writer) log.Logger {
	switch format {
	case "json":
		return log.NewJSONLogger(w)
	case "logfmt":
		return log.NewLogfmtLogger(w)
	default:
		return log.NewLogfmtLogger(w)
	}
}

func withLevel(logger log.Logger, lvl string) log.Logger {
	switch lvl {
	case "debug":
		return level.NewFilter(logger, level.AllowDebug())
	case "info":
		return level.NewFilter(logger, level.AllowInfo())
	case "warn":
		return level.NewFilter(logger, level.AllowWarn())
	case "error":
		return level.NewFilter(logger, level.AllowError())
	case "off":
		return level.NewFilter(logger, level.AllowNone())
	default:
		logger.Log("msg", "Unknown log level, using info", "received", lvl)
		return level.NewFilter(logger, level.AllowInfo())
	}
}

func pathCaller(depth int) log.Valuer {
	return func() interface{} {
		return fmt.Sprintf("%+s", stack.Caller(depth))
	}
}
