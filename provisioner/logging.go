package provisioner

import (
	"os"

	"golang.org/x/exp/slog"
)

var LogLevel = new(slog.LevelVar)
var logger *slog.Logger

func init() {
	LogLevel.Set(slog.LevelWarn)

	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: LogLevel})
	logger = slog.New(h).WithGroup("provisioner")
}
