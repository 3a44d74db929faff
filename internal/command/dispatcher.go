package command

import (
	"context"
	"strconv"
	"strings"

	"github.com/ovenlight/orderboard/internal/communityctx"
	"github.com/ovenlight/orderboard/internal/config"
	counterdomain "github.com/ovenlight/orderboard/internal/counter/domain"
	"github.com/ovenlight/orderboard/internal/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Authorizer answers whether a caller's role set satisfies a command's
// required-role predicate.
type Authorizer interface {
	Authorize(callerRoles []string, command string) (bool, error)
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Counters counterdomain.Service
	Authz    Authorizer
	Commands *config.CommandConfigHolder
	Metrics  *metrics.CommandMetrics `optional:"true"`
}

// Dispatcher maps command names to counter store operations. Every
// invocation resolves in one pass to a typed Result; only storage
// failures escape as errors, for the transport loop to log and report
// generically.
type Dispatcher struct {
	log      *zap.Logger
	counters counterdomain.Service
	authz    Authorizer
	commands *config.CommandConfigHolder
	metrics  *metrics.CommandMetrics
}

func New(p Params) *Dispatcher {
	return &Dispatcher{
		log:      p.Log.Named("command.dispatcher"),
		counters: p.Counters,
		authz:    p.Authz,
		commands: p.Commands,
		metrics:  p.Metrics,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) (Result, error) {
	cfg := d.commands.Current()

	name, ok := cfg.Canonical(inv.Command)
	if !ok {
		return Result{Kind: KindUnknownCommand}, nil
	}

	res, err := d.dispatch(ctx, cfg, name, inv)
	if err != nil {
		if d.metrics != nil {
			d.metrics.StoreFailures.Inc()
		}
		return Result{}, err
	}
	if d.metrics != nil {
		d.metrics.Dispatched.WithLabelValues(name, res.Kind.String()).Inc()
	}
	return res, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, cfg config.CommandConfig, name string, inv Invocation) (Result, error) {
	if inv.CommunityID == 0 {
		return Result{Kind: KindNotInCommunity}, nil
	}

	allowed, err := d.authz.Authorize(inv.CallerRoles, name)
	if err != nil {
		return Result{}, err
	}
	if !allowed {
		return Result{Kind: KindForbidden, Command: name, Required: cfg.Required(name)}, nil
	}

	ctx = communityctx.WithCommunityID(ctx, inv.CommunityID)

	switch name {
	case "add":
		return d.add(ctx, inv)
	case "leaderboard":
		return d.leaderboard(ctx, cfg, inv)
	case "remove":
		return d.remove(ctx, inv)
	case "set":
		return d.set(ctx, inv)
	case "resetall":
		return d.resetAll(ctx)
	default:
		return Result{Kind: KindUnknownCommand}, nil
	}
}

func (d *Dispatcher) add(ctx context.Context, inv Invocation) (Result, error) {
	newCount, err := d.counters.Increment(ctx, inv.CallerID, 1, inv.CallerName)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: KindOrderAdded, NewCount: newCount}, nil
}

func (d *Dispatcher) leaderboard(ctx context.Context, cfg config.CommandConfig, inv Invocation) (Result, error) {
	limit := cfg.DefaultLeaderboardSize
	if len(inv.Args) > 0 {
		parsed, err := strconv.Atoi(strings.TrimSpace(inv.Args[0].Text))
		if err != nil || parsed <= 0 {
			return Result{Kind: KindUsageError, Command: "leaderboard"}, nil
		}
		limit = parsed
	}

	records, err := d.counters.TopN(ctx, limit)
	if err != nil {
		return Result{}, err
	}

	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, Entry{
			MemberID:    record.MemberID,
			DisplayName: record.DisplayName,
			Count:       record.Count,
		})
	}
	return Result{Kind: KindLeaderboard, Entries: entries}, nil
}

func (d *Dispatcher) remove(ctx context.Context, inv Invocation) (Result, error) {
	target, ok := memberAt(inv.Args, 0)
	if !ok {
		return Result{Kind: KindUsageError, Command: "remove"}, nil
	}

	removed, err := d.counters.Remove(ctx, target.ID)
	if err != nil {
		return Result{}, err
	}
	if !removed {
		return Result{Kind: KindNotFound, Who: target.DisplayName}, nil
	}
	return Result{Kind: KindRemoved, Who: target.DisplayName}, nil
}

func (d *Dispatcher) set(ctx context.Context, inv Invocation) (Result, error) {
	target, ok := memberAt(inv.Args, 0)
	if !ok {
		return Result{Kind: KindUsageError, Command: "set"}, nil
	}
	if len(inv.Args) < 2 {
		return Result{Kind: KindUsageError, Command: "set"}, nil
	}
	amount, err := strconv.Atoi(strings.TrimSpace(inv.Args[1].Text))
	if err != nil {
		return Result{Kind: KindUsageError, Command: "set"}, nil
	}
	if amount < 0 {
		return Result{Kind: KindInvalidAmount}, nil
	}

	newCount, err := d.counters.SetValue(ctx, target.ID, amount, target.DisplayName)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: KindValueSet, Who: target.DisplayName, NewCount: newCount}, nil
}

func (d *Dispatcher) resetAll(ctx context.Context) (Result, error) {
	affected, err := d.counters.ResetAll(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: KindAllReset, Affected: affected}, nil
}

func memberAt(args []Arg, i int) (*MemberRef, bool) {
	if i >= len(args) || args[i].Member == nil || args[i].Member.ID == 0 {
		return nil, false
	}
	return args[i].Member, true
}

var Module = fx.Module("command.dispatcher",
	fx.Provide(New),
)
