package bag

import (
	"os"

	"golang.org/x/exp/slog"
)

// LogLevel controls the verbosity of the bag package's own diagnostic
// logging: a package-level slog.LevelVar callers can flip at runtime.
var LogLevel = new(slog.LevelVar)

var logger *slog.Logger

func init() {
	LogLevel.Set(slog.LevelWarn)

	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: LogLevel})
	logger = slog.New(h).WithGroup("bag")
}
