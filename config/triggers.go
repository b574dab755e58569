package config

import (
	"errors"
	"strings"

	"github.com/go-ini/ini"
	"github.com/google/shlex"

	"git.sr.ht/~exteditor/exteditor/log"
)

type TriggersConfig struct {
	NotifyCmd      string `ini:"notify-cmd"`
	ExecuteCommand func(command []string) error
}

func (config *Config) parseTriggers(file *ini.File) error {
	triggers := file.Section("triggers")
	if err := MapToStruct(triggers, &config.Triggers, true); err != nil {
		return err
	}
	log.Debugf("exteditor.conf: [triggers] notify-cmd=%q", config.Triggers.NotifyCmd)
	return nil
}

func (trig *TriggersConfig) ExecTrigger(triggerCmd string,
	triggerFmt func(string) (string, error),
) error {
	if len(triggerCmd) == 0 {
		return errors.New("Trigger command empty")
	}
	if trig.ExecuteCommand == nil {
		return errors.New("Trigger commands cannot be run")
	}
	triggerCmdParts, err := shlex.Split(triggerCmd)
	if err != nil {
		return err
	}
	if len(triggerCmdParts) == 0 {
		return errors.New("Trigger command has no words")
	}

	var command []string
	for _, part := range triggerCmdParts {
		formattedPart, err := triggerFmt(part)
		if err != nil {
			return err
		}
		command = append(command, formattedPart)
	}
	return trig.ExecuteCommand(command)
}

// ExecNotify runs notify-cmd with %m replaced by the message. It does
// nothing when no command is configured.
func (trig *TriggersConfig) ExecNotify(message string) {
	if trig.NotifyCmd == "" {
		return
	}
	err := trig.ExecTrigger(trig.NotifyCmd,
		func(part string) (string, error) {
			return strings.ReplaceAll(part, "%m", message), nil
		})
	if err != nil {
		log.Errorf("failed to run notify-cmd trigger: %v", err)
	}
}
