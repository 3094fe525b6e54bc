package logging

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init parses and sets the log level. JSON output is used in production,
// text otherwise. A non-empty file other than "console" enables a rotating
// log file.
func Init(logLevel, logFile string, production bool) error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		log.Errorf("Failed parsing log-level %s: %s", logLevel, err)
		return err
	}

	if logFile != "" && logFile != "console" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   filepath.ToSlash(logFile),
			MaxSize:    5, // MB
			MaxBackups: 10,
			MaxAge:     30, // days
			Compress:   true,
		})
	} else {
		log.SetOutput(os.Stdout)
	}

	if production {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetLevel(level)
	return nil
}
