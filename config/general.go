package config

import (
	"fmt"
	"os"

	"github.com/go-ini/ini"
	"github.com/mattn/go-isatty"

	"git.sr.ht/~exteditor/exteditor/lib/xdg"
	"git.sr.ht/~exteditor/exteditor/log"
)

type GeneralConfig struct {
	LogFile  string       `ini:"log-file"`
	LogLevel log.LogLevel `ini:"log-level" default:"info" parse:"ParseLogLevel"`
}

func (gen *GeneralConfig) ParseLogLevel(sec *ini.Section, key *ini.Key) (log.LogLevel, error) {
	return log.ParseLevel(key.String())
}

func (config *Config) parseGeneral(file *ini.File) error {
	config.General = GeneralConfig{}
	gen := file.Section("general")
	if err := MapToStruct(gen, &config.General, true); err != nil {
		return err
	}
	return nil
}

// OpenLog picks where log messages go. stdout never carries logs: in the
// native helper it is the message channel. An explicit log-file wins;
// otherwise stderr is used when it does not lead to a terminal, which is
// the case when a browser starts the helper and captures it.
func (gen *GeneralConfig) OpenLog() (*os.File, error) {
	if gen.LogFile != "" {
		path := xdg.ExpandHome(gen.LogFile)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("log-file: %w", err)
		}
		return f, nil
	}
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return os.Stderr, nil
	}
	return nil, nil
}
