// Package battle binds characters, the world, and the combat core into the
// operations a client drives: moving around, fighting, and resting.
package battle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/encounter"
	"github.com/cory-johannsen/arena/internal/game/session"
	"github.com/cory-johannsen/arena/internal/game/world"
	"github.com/cory-johannsen/arena/internal/observability"
	"github.com/cory-johannsen/arena/internal/storage/postgres"
)

var (
	// ErrExhausted is returned when a character with no hit points tries to explore.
	ErrExhausted = errors.New("you are too exhausted to go on; rest in a town first")
	// ErrNotInTown is returned when resting outside a town.
	ErrNotInTown = errors.New("you can only rest in a town")
	// ErrNoRoute is returned when a destination is not reachable from the current location.
	ErrNoRoute = errors.New("you can't go that way")
)

// Characters is the persistence the service needs.
// *postgres.CharacterRepository satisfies it.
type Characters interface {
	Create(ctx context.Context, c *character.Character) (*character.Character, error)
	GetByID(ctx context.Context, id int64) (*character.Character, error)
	GetByName(ctx context.Context, name string) (*character.Character, error)
	SaveProgress(ctx context.Context, c *character.Character) error
}

// Deps collects the collaborators of a Service.
type Deps struct {
	Characters Characters
	World      *world.Manager
	Encounters *encounter.Resolver
	Engine     *combat.Engine
	Tracer     trace.Tracer
	Logger     *zap.Logger
	// IdleTimeout abandons battles left without an action this long. Zero disables.
	IdleTimeout time.Duration
}

// ExploreResult describes where a character ended up and what it met.
type ExploreResult struct {
	Character *character.Character
	Location  *world.Location
	// Battle is the newly started session, or nil when nothing appeared.
	Battle *combat.Session
}

// ActResult is the outcome of one submitted action.
type ActResult struct {
	Turn combat.Turn
	// Character and Outcome are set only when the action ended the battle.
	Character *character.Character
	Outcome   *character.Outcome
}

// Service is safe for concurrent use. Every change to a character, including
// the action that ends its battle and the settlement that follows, runs under
// a per-character lock, so no other operation observes a battle that is gone
// from the store but not yet written to the character record.
type Service struct {
	chars      Characters
	world      *world.Manager
	encounters *encounter.Resolver
	engine     *combat.Engine
	sessions   *session.Store
	tracer     trace.Tracer
	logger     *zap.Logger

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// NewService creates a Service.
//
// Precondition: every pointer and interface field of d must be non-nil.
// Postcondition: Returns a Service with an empty battle store.
func NewService(d Deps) *Service {
	s := &Service{
		chars:      d.Characters,
		world:      d.World,
		encounters: d.Encounters,
		engine:     d.Engine,
		tracer:     d.Tracer,
		logger:     d.Logger,
		locks:      make(map[int64]*sync.Mutex),
	}
	s.sessions = session.NewStore(d.IdleTimeout, s.expired)
	s.sessions.LockOwnerWith(s.lockCharacter)
	return s
}

func (s *Service) lockCharacter(id int64) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[id] = mu
	}
	s.locksMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// Login loads the character called name, creating it in the default town when
// it does not exist yet.
//
// Postcondition: Returns the character and whether it was just created.
func (s *Service) Login(ctx context.Context, name string) (*character.Character, bool, error) {
	ctx, span := s.tracer.Start(ctx, "battle.login", trace.WithAttributes(attribute.String("character.name", name)))
	defer span.End()

	c, err := s.chars.GetByName(ctx, name)
	if err == nil {
		if _, ok := s.world.GetLocation(c.Location); !ok {
			home := s.world.DefaultTown()
			s.logger.Warn("character stranded in unknown location, moving to default town",
				zap.String("character", c.Name),
				zap.String("location", c.Location),
				zap.String("town", home.ID),
			)
			c.MoveTo(home.ID, true)
			if err := s.chars.SaveProgress(ctx, c); err != nil {
				return nil, false, fail(span, fmt.Errorf("relocating character: %w", err))
			}
		}
		return c, false, nil
	}
	if !errors.Is(err, postgres.ErrCharacterNotFound) {
		return nil, false, fail(span, fmt.Errorf("loading character: %w", err))
	}

	fresh, err := character.New(name, s.world.DefaultTown().ID)
	if err != nil {
		return nil, false, fail(span, err)
	}
	created, err := s.chars.Create(ctx, fresh)
	if err != nil {
		return nil, false, fail(span, fmt.Errorf("creating character: %w", err))
	}
	observability.WithSpan(ctx, s.logger).Info("character created", zap.Int64("character_id", created.ID), zap.String("name", created.Name))
	return created, true, nil
}

// Character returns the stored character record.
func (s *Service) Character(ctx context.Context, id int64) (*character.Character, error) {
	return s.chars.GetByID(ctx, id)
}

// Explore moves the character toward dest and runs an encounter check at the
// location it arrives in. An empty dest, or the current location's ID,
// searches in place.
//
// Precondition: the character exists.
// Postcondition: The new location is persisted. Returns session.ErrBattleInProgress
// when the character is already fighting, ErrExhausted at 0 HP, and ErrNoRoute
// when dest is not adjacent.
func (s *Service) Explore(ctx context.Context, charID int64, dest string) (ExploreResult, error) {
	ctx, span := s.tracer.Start(ctx, "battle.explore", trace.WithAttributes(
		attribute.Int64("character.id", charID),
		attribute.String("destination", dest),
	))
	defer span.End()

	unlock := s.lockCharacter(charID)
	defer unlock()

	if id, busy := s.sessions.ForCharacter(charID); busy {
		return ExploreResult{}, fail(span, fmt.Errorf("%w (battle %s)", session.ErrBattleInProgress, id))
	}
	c, err := s.chars.GetByID(ctx, charID)
	if err != nil {
		return ExploreResult{}, fail(span, fmt.Errorf("loading character: %w", err))
	}
	if c.CurrentHP <= 0 {
		return ExploreResult{}, fail(span, ErrExhausted)
	}

	loc, err := s.destination(c, dest)
	if err != nil {
		return ExploreResult{}, fail(span, err)
	}
	if loc.ID != c.Location {
		c.MoveTo(loc.ID, loc.IsTown())
		if err := s.chars.SaveProgress(ctx, c); err != nil {
			return ExploreResult{}, fail(span, fmt.Errorf("saving location: %w", err))
		}
	}
	span.SetAttributes(attribute.String("location", loc.ID))
	out := ExploreResult{Character: c, Location: loc}

	enc, err := s.encounters.Check(loc.ID)
	if err != nil {
		return out, fail(span, fmt.Errorf("checking encounter: %w", err))
	}
	if enc == nil {
		return out, nil
	}

	sess, err := s.engine.Start(c.Combatant(), enc.Template.NewCombatant(), c.LastTown)
	if err != nil {
		return out, fail(span, err)
	}
	if err := s.sessions.Add(session.Battle{CharacterID: c.ID, Session: sess, TemplateID: enc.TemplateID}); err != nil {
		return out, fail(span, err)
	}
	span.SetAttributes(
		attribute.String("battle.id", sess.ID),
		attribute.String("monster", enc.TemplateID),
	)
	observability.WithSpan(ctx, s.logger).Info("battle started",
		zap.Int64("character_id", c.ID),
		zap.String("session", sess.ID),
		zap.String("monster", enc.TemplateID),
		zap.String("location", loc.ID),
	)
	out.Battle = &sess
	return out, nil
}

func (s *Service) destination(c *character.Character, dest string) (*world.Location, error) {
	cur, ok := s.world.GetLocation(c.Location)
	if !ok {
		cur = s.world.DefaultTown()
	}
	if dest == "" || dest == cur.ID {
		return cur, nil
	}
	next, err := s.world.Navigate(cur.ID, dest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoRoute, err)
	}
	return next, nil
}

// Act submits action to the battle sessionID. When the battle ends the
// character record absorbs the result and is persisted.
//
// Postcondition: Returns an error matching combat.ErrInvalidSessionState for
// a missing or ended battle, combat.ErrUnknownAction for a bad action.
func (s *Service) Act(ctx context.Context, sessionID string, action combat.Action) (ActResult, error) {
	ctx, span := s.tracer.Start(ctx, "battle.act", trace.WithAttributes(
		attribute.String("battle.id", sessionID),
		attribute.String("action", action.String()),
	))
	defer span.End()

	b, err := s.sessions.Get(sessionID)
	if err != nil {
		return ActResult{}, fail(span, missing(sessionID, err))
	}
	charID := b.CharacterID
	unlock := s.lockCharacter(charID)
	defer unlock()

	var turn combat.Turn
	err = s.sessions.Update(sessionID, func(b session.Battle) (combat.Session, error) {
		t, err := s.engine.Submit(b.Session, action)
		if err != nil {
			return combat.Session{}, err
		}
		turn = t
		return t.Session, nil
	})
	if err != nil {
		return ActResult{}, fail(span, missing(sessionID, err))
	}
	span.SetAttributes(attribute.Int("battle.turn", turn.Session.Turn))

	out := ActResult{Turn: turn}
	if !turn.Ended {
		return out, nil
	}
	span.SetAttributes(attribute.String("battle.result", string(turn.Result)))

	c, outcome, err := s.settle(ctx, charID, turn.Session)
	if err != nil {
		return out, fail(span, err)
	}
	out.Character = c
	out.Outcome = &outcome
	observability.WithSpan(ctx, s.logger).Info("battle ended",
		zap.Int64("character_id", charID),
		zap.String("session", sessionID),
		zap.String("result", string(turn.Result)),
		zap.Int("experience", outcome.ExperienceGained),
		zap.Int("gold_delta", outcome.GoldDelta),
		zap.Int("levels", outcome.LevelsGained),
	)
	return out, nil
}

func missing(sessionID string, err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return fmt.Errorf("%w: battle %s: %w", combat.ErrInvalidSessionState, sessionID, err)
	}
	return err
}

// settle writes a finished battle to the character record.
//
// Precondition: the caller holds lockCharacter(charID).
func (s *Service) settle(ctx context.Context, charID int64, final combat.Session) (*character.Character, character.Outcome, error) {
	c, err := s.chars.GetByID(ctx, charID)
	if err != nil {
		return nil, character.Outcome{}, fmt.Errorf("loading character: %w", err)
	}
	outcome := c.ApplyBattle(final)
	if err := s.chars.SaveProgress(ctx, c); err != nil {
		return nil, character.Outcome{}, fmt.Errorf("saving battle result: %w", err)
	}
	return c, outcome, nil
}

// Abandon ends the battle without reward or penalty. Damage taken so far is kept.
//
// Postcondition: The battle is gone from the store. Returns an error matching
// combat.ErrInvalidSessionState when it was not active.
func (s *Service) Abandon(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "battle.abandon", trace.WithAttributes(attribute.String("battle.id", sessionID)))
	defer span.End()

	b, err := s.sessions.Get(sessionID)
	if err != nil {
		return fail(span, missing(sessionID, err))
	}
	unlock := s.lockCharacter(b.CharacterID)
	defer unlock()

	b, err = s.sessions.Remove(sessionID)
	if err != nil {
		return fail(span, missing(sessionID, err))
	}
	if err := s.keepWounds(ctx, b); err != nil {
		return fail(span, err)
	}
	observability.WithSpan(ctx, s.logger).Info("battle abandoned", zap.Int64("character_id", b.CharacterID), zap.String("session", sessionID))
	return nil
}

// keepWounds copies the player's remaining HP and MP to the character record.
//
// Precondition: the caller holds lockCharacter(b.CharacterID).
func (s *Service) keepWounds(ctx context.Context, b session.Battle) error {
	c, err := s.chars.GetByID(ctx, b.CharacterID)
	if err != nil {
		return fmt.Errorf("loading character: %w", err)
	}
	c.CurrentHP = b.Session.Player.HP
	c.CurrentMP = b.Session.Player.MP
	if err := s.chars.SaveProgress(ctx, c); err != nil {
		return fmt.Errorf("saving character: %w", err)
	}
	return nil
}

// expired runs with lockCharacter(b.CharacterID) held by the store.
func (s *Service) expired(b session.Battle) {
	s.logger.Info("battle expired",
		zap.Int64("character_id", b.CharacterID),
		zap.String("session", b.Session.ID),
		zap.Time("last_action", b.UpdatedAt),
	)
	if err := s.keepWounds(context.Background(), b); err != nil {
		s.logger.Error("saving expired battle", zap.String("session", b.Session.ID), zap.Error(err))
	}
}

// Status returns a snapshot of an active battle.
//
// Postcondition: Returns an error matching combat.ErrInvalidSessionState when
// no battle with sessionID is active.
func (s *Service) Status(sessionID string) (combat.Session, error) {
	b, err := s.sessions.Get(sessionID)
	if err != nil {
		return combat.Session{}, missing(sessionID, err)
	}
	return b.Session, nil
}

// ActiveBattle returns the ID of the character's battle, if any.
func (s *Service) ActiveBattle(charID int64) (string, bool) {
	return s.sessions.ForCharacter(charID)
}

// ActiveBattles returns the number of battles in progress.
func (s *Service) ActiveBattles() int {
	return s.sessions.Len()
}

// Rest restores the character's HP and MP. Only allowed in towns.
//
// Postcondition: Returns ErrNotInTown outside towns and
// session.ErrBattleInProgress during a battle.
func (s *Service) Rest(ctx context.Context, charID int64) (*character.Character, error) {
	ctx, span := s.tracer.Start(ctx, "battle.rest", trace.WithAttributes(attribute.Int64("character.id", charID)))
	defer span.End()

	unlock := s.lockCharacter(charID)
	defer unlock()

	if _, busy := s.sessions.ForCharacter(charID); busy {
		return nil, fail(span, session.ErrBattleInProgress)
	}
	c, err := s.chars.GetByID(ctx, charID)
	if err != nil {
		return nil, fail(span, fmt.Errorf("loading character: %w", err))
	}
	loc, ok := s.world.GetLocation(c.Location)
	if !ok || !loc.IsTown() {
		return nil, fail(span, ErrNotInTown)
	}
	c.Rest()
	if err := s.chars.SaveProgress(ctx, c); err != nil {
		return nil, fail(span, fmt.Errorf("saving character: %w", err))
	}
	return c, nil
}
