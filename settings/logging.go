package settings

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process logger, replaced by SetupLogger
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// SetupLogger points Logger at _out_ (console formatted) at the configured level,
// teeing JSON lines to a rotating file in LogPath when set.
func SetupLogger(s *SKSettings, out io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil {
		return Logger, err
	}
	var writer io.Writer = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	if s.LogPath != "" {
		// lumberjack lets us rotate log files automatically
		file := &lumberjack.Logger{
			Filename:   filepath.Join(s.LogPath, "sketchkit.log"),
			MaxSize:    2, // megabytes
			MaxBackups: 3,
			MaxAge:     28, //days
		}
		writer = zerolog.MultiLevelWriter(writer, file)
	}
	Logger = zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return Logger, nil
}
