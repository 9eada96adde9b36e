package bot

import (
	"context"
	"time"

	"github.com/qubitbot/qubit/internal/config"
	"github.com/qubitbot/qubit/internal/gateway"
	"github.com/qubitbot/qubit/internal/ledger"
)

type (
	// Deferrer schedules continuations; satisfied by *scheduler.Scheduler.
	Deferrer interface {
		Schedule(delay time.Duration, fn func(ctx context.Context)) string
	}

	// Service bundles the collaborators every handler needs.
	Service interface {
		GetActuator() gateway.Actuator
		GetInspector() gateway.Inspector
		GetOffenses() *ledger.OffenseLedger
		GetLevels() *ledger.LevelingLedger
		GetPrefixes() *ledger.PrefixStore
		GetScheduler() Deferrer
		GetPolicy() *config.Policy
	}
)

type service struct {
	actuator  gateway.Actuator
	inspector gateway.Inspector
	offenses  *ledger.OffenseLedger
	levels    *ledger.LevelingLedger
	prefixes  *ledger.PrefixStore
	scheduler Deferrer
	policy    *config.Policy
}

func NewService(
	actuator gateway.Actuator,
	inspector gateway.Inspector,
	offenses *ledger.OffenseLedger,
	levels *ledger.LevelingLedger,
	prefixes *ledger.PrefixStore,
	scheduler Deferrer,
	policy *config.Policy,
) Service {
	return &service{
		actuator:  actuator,
		inspector: inspector,
		offenses:  offenses,
		levels:    levels,
		prefixes:  prefixes,
		scheduler: scheduler,
		policy:    policy,
	}
}

func (s *service) GetActuator() gateway.Actuator       { return s.actuator }
func (s *service) GetInspector() gateway.Inspector     { return s.inspector }
func (s *service) GetOffenses() *ledger.OffenseLedger  { return s.offenses }
func (s *service) GetLevels() *ledger.LevelingLedger   { return s.levels }
func (s *service) GetPrefixes() *ledger.PrefixStore    { return s.prefixes }
func (s *service) GetScheduler() Deferrer              { return s.scheduler }
func (s *service) GetPolicy() *config.Policy           { return s.policy }
