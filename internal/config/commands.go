package config

import (
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// CommandConfig is the policy data for the command table: which roles may
// run which command, the alias table, and the default leaderboard size.
// Role names are matched case-insensitively; a command with no required
// roles is open to everyone.
type CommandConfig struct {
	DefaultLeaderboardSize int                 `mapstructure:"defaultLeaderboardSize"`
	RequiredRoles          map[string][]string `mapstructure:"requiredRoles"`
	Aliases                map[string]string   `mapstructure:"aliases"`
}

// CommandNames are the canonical commands the dispatcher understands.
var CommandNames = []string{"add", "leaderboard", "remove", "set", "resetall"}

func DefaultCommandConfig() CommandConfig {
	return CommandConfig{
		DefaultLeaderboardSize: 10,
		RequiredRoles: map[string][]string{
			"add":         {"Chef"},
			"leaderboard": {},
			"remove":      {"Head Chef", "Owner"},
			"set":         {"Head Chef", "Owner"},
			"resetall":    {"Head Chef", "Owner"},
		},
		Aliases: map[string]string{
			"lb":  "leaderboard",
			"top": "leaderboard",
		},
	}
}

// Canonical resolves an alias to its canonical command name. The second
// return reports whether the name maps to a known command at all.
func (c CommandConfig) Canonical(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if target, ok := c.Aliases[name]; ok {
		name = target
	}
	if knownCommand(name) {
		return name, true
	}
	return "", false
}

// Required returns the any-of required role set for a command. An empty
// slice means the command is open.
func (c CommandConfig) Required(command string) []string {
	return c.RequiredRoles[command]
}

type CommandConfigHolder struct {
	current atomic.Value // holds CommandConfig

	mu        sync.Mutex
	reloadFns []func(CommandConfig)
}

// NewStaticCommandConfig wraps a fixed snapshot with no file watching.
// Used by tests and as the fallback when no commands.yml exists.
func NewStaticCommandConfig(cfg CommandConfig) *CommandConfigHolder {
	holder := &CommandConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

// NewCommandConfigHolder loads commands.yml via viper and hot-reloads it
// on change so role grants can be edited without a restart.
func NewCommandConfigHolder() (*CommandConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("commands")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/orderboard")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ORDERBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultCommandConfig()
		v.SetDefault("commands.defaultLeaderboardSize", defaults.DefaultLeaderboardSize)
		v.SetDefault("commands.requiredRoles", defaults.RequiredRoles)
		v.SetDefault("commands.aliases", defaults.Aliases)
	}

	var cfg CommandConfig
	if err := v.UnmarshalKey("commands", &cfg); err != nil {
		return nil, err
	}
	if err := validateCommandConfig(cfg); err != nil {
		return nil, err
	}

	holder := &CommandConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated CommandConfig
		if err := v.UnmarshalKey("commands", &updated); err != nil {
			log.Printf("[command-config] reload failed: %v", err)
			return
		}
		if err := validateCommandConfig(updated); err != nil {
			log.Printf("[command-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		holder.notify(updated)
	})

	return holder, nil
}

// Current returns a consistent snapshot; in-flight dispatches keep the
// snapshot they started with across a reload.
func (h *CommandConfigHolder) Current() CommandConfig {
	return h.current.Load().(CommandConfig)
}

// OnReload registers a callback invoked after a successful hot reload.
func (h *CommandConfigHolder) OnReload(fn func(CommandConfig)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reloadFns = append(h.reloadFns, fn)
}

func (h *CommandConfigHolder) notify(cfg CommandConfig) {
	h.mu.Lock()
	fns := make([]func(CommandConfig), len(h.reloadFns))
	copy(fns, h.reloadFns)
	h.mu.Unlock()
	for _, fn := range fns {
		fn(cfg)
	}
}

func validateCommandConfig(cfg CommandConfig) error {
	if cfg.DefaultLeaderboardSize <= 0 {
		return errors.New("commands.defaultLeaderboardSize must be positive")
	}
	for command, roles := range cfg.RequiredRoles {
		if !knownCommand(command) {
			return errors.New("commands.requiredRoles references unknown command " + command)
		}
		for _, role := range roles {
			if strings.TrimSpace(role) == "" {
				return errors.New("commands.requiredRoles has a blank role for " + command)
			}
		}
	}
	for alias, target := range cfg.Aliases {
		if strings.TrimSpace(alias) == "" {
			return errors.New("commands.aliases has a blank alias")
		}
		if !knownCommand(target) {
			return errors.New("commands.aliases targets unknown command " + target)
		}
	}
	return nil
}

func knownCommand(name string) bool {
	for _, known := range CommandNames {
		if known == name {
			return true
		}
	}
	return false
}
