// Package settings implements the effective-settings resolution and
// persistence protocol for the refresh-interval feature: an administrator
// record and a per-user preference are persisted in a local key-value store,
// combined by a pure resolver into a single effective interval, and changes
// are broadcast in-process so mounted components re-resolve and update.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-settings/broadcast"
	"github.com/goliatone/go-settings/kv"
	"github.com/goliatone/go-settings/rule"
)

const defaultKeyPrefix = "settings"

// ErrStoreRequired indicates the service was constructed without a store.
var ErrStoreRequired = errors.New("settings: store is required")

// Service owns the two refresh-settings records. It is an explicit object:
// construct one at application start and pass it to every consumer. There
// are no ambient singletons, so tests can inject an isolated in-memory
// store.
//
// Loads are total: missing keys, malformed payloads, and backend read
// failures all degrade to built-in defaults and are reported only through
// the configured Logger. Saves overwrite the full record and then publish a
// change event; a write failure returns an error without publishing, so the
// caller's draft stays intact for retry.
type Service struct {
	store       kv.Store
	broadcaster *broadcast.Broadcaster
	logger      Logger
	defaults    AdminSettings
	evaluator   rule.Evaluator
	prefix      string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithBroadcaster wires the change broadcaster notified after every save.
func WithBroadcaster(b *broadcast.Broadcaster) ServiceOption {
	return func(s *Service) {
		s.broadcaster = b
	}
}

// WithLogger wires the fault logger.
func WithLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger == nil {
			s.logger = noopLogger{}
			return
		}
		s.logger = logger
	}
}

// WithAdminDefaults overrides the built-in administrator defaults applied
// when storage holds nothing or only a partial record.
func WithAdminDefaults(defaults AdminSettings) ServiceOption {
	return func(s *Service) {
		s.defaults = defaults
	}
}

// WithRuleEvaluator wires the engine used for admin-authored page rules.
func WithRuleEvaluator(evaluator rule.Evaluator) ServiceOption {
	return func(s *Service) {
		s.evaluator = evaluator
	}
}

// WithKeyPrefix overrides the storage key prefix, letting several features
// share one store without colliding.
func WithKeyPrefix(prefix string) ServiceOption {
	return func(s *Service) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			s.prefix = trimmed
		}
	}
}

// NewService constructs a settings service over store.
func NewService(store kv.Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	s := &Service{
		store:    store,
		logger:   noopLogger{},
		defaults: DefaultAdminSettings(),
		prefix:   defaultKeyPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.defaults = s.defaults.normalized()
	return s, nil
}

func (s *Service) adminKey() string { return s.prefix + ":refresh:admin" }
func (s *Service) userKey() string  { return s.prefix + ":refresh:user" }

// LoadAdmin returns the administrator record, merging whatever partial
// record storage holds over the built-in defaults. Total: malformed content
// degrades to the defaults.
func (s *Service) LoadAdmin(ctx context.Context) AdminSettings {
	fallback := s.defaults.clone()
	payload, ok := s.read(ctx, s.adminKey())
	if !ok {
		return fallback
	}
	merged := s.defaults.clone()
	if err := json.Unmarshal(payload, &merged); err != nil {
		s.logger.Log(LogEvent{Op: "load", Key: s.adminKey(), Err: err})
		return fallback
	}
	return merged.normalized()
}

// LoadUser returns the per-user preference record. Total: missing or
// malformed content degrades to the deferring preference.
func (s *Service) LoadUser(ctx context.Context) UserSettings {
	payload, ok := s.read(ctx, s.userKey())
	if !ok {
		return UserSettings{}
	}
	var record UserSettings
	if err := json.Unmarshal(payload, &record); err != nil {
		s.logger.Log(LogEvent{Op: "load", Key: s.userKey(), Err: err})
		return UserSettings{}
	}
	return record
}

// SaveAdmin validates, persists, and announces the administrator record.
func (s *Service) SaveAdmin(ctx context.Context, actor Identity, record AdminSettings) error {
	if err := record.Validate(); err != nil {
		return err
	}
	if err := s.write(ctx, s.adminKey(), record.normalized()); err != nil {
		return err
	}
	s.announce(ctx, broadcast.VerbAdminUpdated, KindAdmin, actor)
	return nil
}

// SaveUser persists and announces the per-user preference. Resetting to the
// admin default stores an explicit null; the record is never deleted.
func (s *Service) SaveUser(ctx context.Context, actor Identity, record UserSettings) error {
	if err := s.write(ctx, s.userKey(), record); err != nil {
		return err
	}
	s.announce(ctx, broadcast.VerbUserUpdated, KindUser, actor)
	return nil
}

// Effective loads both records and resolves the effective refresh interval.
func (s *Service) Effective(ctx context.Context) int {
	return Resolve(s.LoadAdmin(ctx), s.LoadUser(ctx))
}

// ExplainEffective resolves like Effective and reports provenance.
func (s *Service) ExplainEffective(ctx context.Context) Resolution {
	return Explain(s.LoadAdmin(ctx), s.LoadUser(ctx))
}

// RefreshEnabled reports whether auto-refresh should run on page. A page is
// suppressed when listed in the administrator's disabled pages or when any
// configured page rule evaluates true. Rule faults are logged and treated as
// no match.
func (s *Service) RefreshEnabled(ctx context.Context, page string) bool {
	admin := s.LoadAdmin(ctx)
	if admin.PageDisabled(page) {
		return false
	}
	if len(admin.PageRules) == 0 || s.evaluator == nil {
		return true
	}
	ruleCtx := rule.Context{
		Page:             page,
		EffectiveSeconds: Resolve(admin, s.LoadUser(ctx)),
	}
	for _, expression := range admin.PageRules {
		matched, err := rule.EvaluateBool(s.evaluator, ruleCtx, expression)
		if err != nil {
			s.logger.Log(LogEvent{Op: "rule", Key: expression, Err: err})
			continue
		}
		if matched {
			return false
		}
	}
	return true
}

// CanEditAdmin reports whether actor may edit the administrator section.
// This is a UI convenience only; any server-side counterpart must enforce
// authorization independently.
func (s *Service) CanEditAdmin(actor Identity) bool {
	return actor.IsAdmin()
}

func (s *Service) read(ctx context.Context, key string) ([]byte, bool) {
	payload, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Log(LogEvent{Op: "load", Key: key, Err: err})
		return nil, false
	}
	return payload, ok
}

func (s *Service) write(ctx context.Context, key string, record any) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("settings: encode %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, payload); err != nil {
		s.logger.Log(LogEvent{Op: "save", Key: key, Err: err})
		return fmt.Errorf("settings: save %s: %w", key, err)
	}
	return nil
}

// announce publishes the change event. Listener failures stay local to the
// listeners; the save has already succeeded.
func (s *Service) announce(ctx context.Context, verb string, kind Kind, actor Identity) {
	if s.broadcaster == nil {
		return
	}
	event := broadcast.Event{
		Verb:       verb,
		Record:     string(kind),
		ActorID:    actor.UserID,
		SnapshotID: uuid.NewString(),
		OccurredAt: time.Now(),
	}
	if err := s.broadcaster.Publish(ctx, event); err != nil {
		s.logger.Log(LogEvent{Op: "publish", Key: string(kind), Err: err})
	}
}
