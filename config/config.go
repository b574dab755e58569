// Package config loads exteditor.conf.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/go-ini/ini"
	"github.com/google/shlex"

	"git.sr.ht/~exteditor/exteditor/lib/store"
	"git.sr.ht/~exteditor/exteditor/lib/xdg"
	"git.sr.ht/~exteditor/exteditor/log"
)

type HelperConfig struct {
	Command      string   `ini:"command" default:"exteditor"`
	SwapPatterns []string `ini:"swap-patterns" delim:"," default:".*.swp,.*.swx,*~,#*#,4913"`
}

// Argv splits the helper command into words.
func (h *HelperConfig) Argv() ([]string, error) {
	argv, err := shlex.Split(h.Command)
	if err != nil {
		return nil, fmt.Errorf("[helper].command: %w", err)
	}
	if len(argv) == 0 {
		return nil, errors.New("[helper].command: empty command")
	}
	return argv, nil
}

type Config struct {
	General  GeneralConfig
	Helper   HelperConfig
	Triggers TriggersConfig
	// Defaults seeds the settings store, keyed by setting name.
	Defaults map[string]string
}

// DefaultPath is where the configuration is read from unless another file
// is given on the command line.
func DefaultPath() string {
	return xdg.ConfigPath("exteditor", "exteditor.conf")
}

// Load reads the configuration at path. A missing file is not an error:
// every setting has a default.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	opts := ini.LoadOptions{
		// '#' is valid in swap patterns
		IgnoreInlineComment: true,
		KeyValueDelimiters:  "=",
	}
	file := ini.Empty(opts)
	if _, err := os.Stat(path); err == nil {
		file, err = ini.LoadSources(opts, path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		log.Debugf("Parsing configuration from %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	} else {
		log.Debugf("%s not found, using defaults", path)
	}
	return parse(file)
}

// LoadString parses configuration from memory.
func LoadString(data string) (*Config, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment: true,
		KeyValueDelimiters:  "=",
	}, []byte(data))
	if err != nil {
		return nil, err
	}
	return parse(file)
}

func parse(file *ini.File) (*Config, error) {
	config := &Config{}
	if err := config.parseGeneral(file); err != nil {
		return nil, err
	}
	if err := config.parseHelper(file); err != nil {
		return nil, err
	}
	if err := config.parseDefaults(file); err != nil {
		return nil, err
	}
	if err := config.parseTriggers(file); err != nil {
		return nil, err
	}
	return config, nil
}

func (config *Config) parseHelper(file *ini.File) error {
	helper := file.Section("helper")
	if err := MapToStruct(helper, &config.Helper, true); err != nil {
		return err
	}
	log.Debugf("exteditor.conf: [helper] %#v", config.Helper)
	return nil
}

func (config *Config) parseDefaults(file *ini.File) error {
	config.Defaults = make(map[string]string)
	defaults := file.Section("defaults")
	for _, key := range defaults.Keys() {
		if !store.IsKey(key.Name()) {
			return fmt.Errorf("[defaults].%s: unknown setting", key.Name())
		}
		value := key.Value()
		if key.Name() != store.KeyEditor && key.Name() != store.KeyExtension {
			b, err := key.Bool()
			if err != nil {
				return fmt.Errorf("[defaults].%s: %w", key.Name(), err)
			}
			value = strconv.FormatBool(b)
		}
		config.Defaults[key.Name()] = value
	}
	return nil
}

// SeedStore stores the [defaults] values the store does not hold yet.
func (config *Config) SeedStore(s *store.Store) error {
	keys := make([]string, 0, len(config.Defaults))
	for k := range config.Defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := s.Seed(k, config.Defaults[k]); err != nil {
			return fmt.Errorf("[defaults].%s: %w", k, err)
		}
	}
	return nil
}
