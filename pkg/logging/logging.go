package logging

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	rotates "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"

	"github.com/gokaycavdar/go-ipreputation/pkg/config"
)

// ParseLevel maps a configured level name to a logrus level. Unknown names
// fall back to WARN.
func ParseLevel(name string) logrus.Level {
	switch strings.ToUpper(name) {
	case "TRACE":
		return logrus.TraceLevel
	case "DEBUG":
		return logrus.DebugLevel
	case "INFO":
		return logrus.InfoLevel
	case "WARN", "WARNING":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	case "FATAL":
		return logrus.FatalLevel
	case "PANIC":
		return logrus.PanicLevel
	default:
		return logrus.WarnLevel
	}
}

// InitLogger configures the standard logrus logger. When cfg.Log.Dir is set,
// every level is also written to a time-rotated file in that directory.
func InitLogger(cfg *config.Config) error {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logrus.SetLevel(ParseLevel(cfg.Log.Level))

	if cfg.Log.Dir == "" {
		return nil
	}

	if err := os.MkdirAll(cfg.Log.Dir, 0755); err != nil {
		return err
	}
	logFileName := filepath.Join(cfg.Log.Dir, cfg.Log.Filename)

	writer, err := rotates.New(
		logFileName+".%Y%m%d%H%M",
		rotates.WithMaxAge(time.Duration(cfg.Log.MaxAge)*time.Hour),
		rotates.WithRotationTime(time.Duration(cfg.Log.RotateTime)*time.Hour),
	)
	if err != nil {
		return err
	}

	logrus.AddHook(lfshook.NewHook(lfshook.WriterMap{
		logrus.TraceLevel: writer,
		logrus.DebugLevel: writer,
		logrus.InfoLevel:  writer,
		logrus.WarnLevel:  writer,
		logrus.ErrorLevel: writer,
		logrus.FatalLevel: writer,
		logrus.PanicLevel: writer,
	}, &logrus.TextFormatter{}))
	return nil
}
