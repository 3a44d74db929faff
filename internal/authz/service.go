// Package authz decides whether a caller's role set satisfies a
// command's required-role predicate. Grants are data-driven from the
// command configuration (role name -> command), persisted through the
// casbin gorm adapter, and matched case-insensitively. A command with no
// required roles is open to everyone; denial is a boolean, never an
// error, so the dispatcher can turn it into a user-facing reply.
package authz

import (
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/ovenlight/orderboard/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	Commands *config.CommandConfigHolder
}

type Service struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	commands *config.CommandConfigHolder
}

func NewEnforcer(db *gorm.DB, commands *config.CommandConfigHolder) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer, commands.Current()); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) *Service {
	s := &Service{
		log:      p.Log.Named("authz.service"),
		enforcer: p.Enforcer,
		commands: p.Commands,
	}
	p.Commands.OnReload(s.resync)
	return s
}

// Authorize reports whether any of the caller's roles grants the
// command. Role names compare case-insensitively; an empty required set
// means the command is open.
func (s *Service) Authorize(callerRoles []string, command string) (bool, error) {
	required := s.commands.Current().Required(command)
	if len(required) == 0 {
		return true, nil
	}

	for _, role := range callerRoles {
		role = strings.ToLower(strings.TrimSpace(role))
		if role == "" {
			continue
		}
		allowed, err := s.enforcer.Enforce(role, command)
		if err != nil {
			return false, err
		}
		if allowed {
			return true, nil
		}
	}
	return false, nil
}

// resync rebuilds the grant table after a command-config hot reload.
func (s *Service) resync(cfg config.CommandConfig) {
	s.enforcer.ClearPolicy()
	if err := seedPolicies(s.enforcer, cfg); err != nil {
		s.log.Error("reseeding command grants failed", zap.Error(err))
		return
	}
	if err := s.enforcer.SavePolicy(); err != nil {
		s.log.Error("persisting command grants failed", zap.Error(err))
	}
	s.log.Info("command grants resynced")
}

func seedPolicies(enforcer *casbin.SyncedEnforcer, cfg config.CommandConfig) error {
	for command, roles := range cfg.RequiredRoles {
		for _, role := range roles {
			role = strings.ToLower(strings.TrimSpace(role))
			if role == "" {
				continue
			}
			if _, err := enforcer.AddPolicy(role, command); err != nil {
				return err
			}
		}
	}
	return nil
}

var Module = fx.Module("authz.service",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)
