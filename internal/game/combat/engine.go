package combat

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/dice"
)

// Selector chooses the monster's action on rounds where it acts freely.
type Selector interface {
	// SelectAction returns ActionAttack or ActionDefend for self facing opponent.
	SelectAction(self, opponent Combatant, src dice.Source) Action
}

// Settlement computes what the player gains or loses when a battle ends.
type Settlement interface {
	// Victory returns the reward and the player with that reward applied.
	Victory(player, monster Combatant, src dice.Source) (Reward, Combatant)
	// Defeat returns the penalty and the player with that penalty applied.
	Defeat(player Combatant, returnTown string, src dice.Source) (Penalty, Combatant)
}

// Turn is the result of submitting one player action.
type Turn struct {
	Session Session
	// Log holds only the entries produced by this action, in order.
	Log    []LogEntry
	Ended  bool
	Result Result
}

// Engine runs the battle state machine. It holds only immutable collaborators
// and is safe for concurrent use as long as its Source is.
//
// Every round moves AwaitingPlayerAction -> ResolvingAction -> CheckEnd and
// then back to AwaitingPlayerAction or into BattleEnded.
type Engine struct {
	src      dice.Source
	selector Selector
	settle   Settlement
	logger   *zap.Logger
}

// NewEngine creates an Engine.
//
// Precondition: all arguments must be non-nil.
// Postcondition: Returns a ready Engine.
func NewEngine(src dice.Source, selector Selector, settle Settlement, logger *zap.Logger) *Engine {
	return &Engine{src: src, selector: selector, settle: settle, logger: logger}
}

// Start opens a battle between player and monster.
//
// Precondition: both combatants pass Validate and have HP > 0.
// Postcondition: Returns a Session with a fresh ID, Turn == 1, Phase ==
// PhasePlayerTurn, and a single opening log entry.
func (e *Engine) Start(player, monster Combatant, returnTown string) (Session, error) {
	player.Kind = KindPlayer
	monster.Kind = KindMonster
	for _, c := range []Combatant{player, monster} {
		if err := c.Validate(); err != nil {
			return Session{}, fmt.Errorf("starting battle: %w", err)
		}
		if c.IsDefeated() {
			return Session{}, invalidState(fmt.Sprintf("%s %q has no hit points", c.Kind, c.Name))
		}
	}

	s := Session{
		ID:         uuid.NewString(),
		Player:     player,
		Monster:    monster,
		Turn:       1,
		Phase:      PhasePlayerTurn,
		ReturnTown: returnTown,
		Log: []LogEntry{{
			Actor:   ActorMonster,
			Message: fmt.Sprintf("A wild %s (level %d) appears!", monster.Name, monster.Level),
		}},
	}
	e.logger.Debug("battle started",
		zap.String("session", s.ID),
		zap.String("player", player.Name),
		zap.String("monster", monster.Name),
	)
	return s, nil
}

// Submit resolves one player action against s and returns the next session.
// The input session is never modified.
//
// Precondition: s was produced by Start or Submit.
// Postcondition: Returns an error matching ErrInvalidSessionState when s is
// empty, ended, or holds a combatant already at 0 HP, or ErrUnknownAction when action is not recognised. On success
// Turn.Ended == Turn.Session.Ended() and Victory and Defeat never both occur.
func (e *Engine) Submit(s Session, action Action) (Turn, error) {
	if s.ID == "" {
		return Turn{}, invalidState("no battle in progress")
	}
	if s.Ended() || s.Phase != PhasePlayerTurn {
		return Turn{}, invalidState(fmt.Sprintf("battle %s already ended (%s)", s.ID, s.Result))
	}
	if s.Player.IsDefeated() || s.Monster.IsDefeated() {
		return Turn{}, invalidState(fmt.Sprintf("battle %s has a defeated combatant but no result", s.ID))
	}
	if !action.Valid() {
		return Turn{}, &Error{Kind: KindUnknownAction, Msg: fmt.Sprintf("unknown action %q", action)}
	}

	r := &round{engine: e, s: s.clone(), start: len(s.Log)}
	switch action {
	case ActionAttack:
		r.playerAttack()
	case ActionDefend:
		r.playerDefend()
	case ActionEscape:
		r.playerEscape()
	}
	r.checkEnd()

	e.logger.Debug("battle action resolved",
		zap.String("session", r.s.ID),
		zap.String("action", action.String()),
		zap.Int("turn", r.s.Turn),
		zap.Int("player_hp", r.s.Player.HP),
		zap.Int("monster_hp", r.s.Monster.HP),
		zap.String("result", string(r.s.Result)),
	)

	return Turn{
		Session: r.s,
		Log:     append([]LogEntry(nil), r.s.Log[r.start:]...),
		Ended:   r.s.Ended(),
		Result:  r.s.Result,
	}, nil
}

// round holds the working state while one action is resolved.
type round struct {
	engine *Engine
	s      Session
	start  int
}

func (r *round) log(actor Actor, msg string, dmg int, crit bool) {
	r.s.Log = append(r.s.Log, LogEntry{Actor: actor, Message: msg, Damage: dmg, Critical: crit})
}

// end moves the session into BattleEnded with result.
func (r *round) end(result Result) {
	r.s.Result = result
	r.s.Phase = PhaseBattleEnd
}

func (r *round) playerAttack() {
	p, m := r.s.Player, r.s.Monster
	out := ResolveAttack(p, m, p.MagicWeapon, r.engine.src)
	if out.Hit {
		r.s.Monster = ApplyDamage(m, out.Damage, m.DamageReduction)
	}
	msg := out.Message
	if out.Hit && !r.s.Monster.IsDefeated() {
		msg = fmt.Sprintf("%s %s looks %s.", msg, r.s.Monster.Name, r.s.Monster.Condition())
	}
	r.log(ActorPlayer, msg, out.Damage, out.Critical)

	// The player's action is checked before the monster may respond.
	if r.s.Monster.IsDefeated() {
		r.end(ResultVictory)
		return
	}

	switch r.engine.selector.SelectAction(r.s.Monster, r.s.Player, r.engine.src) {
	case ActionDefend:
		r.log(ActorMonster, Defend(r.s.Monster).Message, 0, false)
	default:
		r.monsterAttack(Guard{})
	}
}

func (r *round) playerDefend() {
	guard := Defend(r.s.Player)
	r.log(ActorPlayer, guard.Message, 0, false)
	// The monster always presses a defending player.
	r.monsterAttack(guard)
}

func (r *round) playerEscape() {
	out := AttemptEscape(r.s.Player, r.s.Monster, r.engine.src)
	r.log(ActorPlayer, out.Message, 0, false)
	if out.Hit {
		r.end(ResultEscaped)
		return
	}
	// A failed escape always draws an attack.
	r.monsterAttack(Guard{})
}

// monsterAttack resolves the monster striking the player through guard.
func (r *round) monsterAttack(guard Guard) {
	m, p := r.s.Monster, r.s.Player
	out := ResolveAttack(m, p, m.MagicWeapon, r.engine.src)
	dmg := out.Damage
	msg := out.Message
	if out.Hit && guard.Reduction > 0 {
		dmg = guard.Mitigate(out.Damage)
		msg = fmt.Sprintf("%s attacks %s, who blocks and takes %d damage.", m.Name, p.Name, dmg)
		if out.Critical {
			msg = "Critical hit! " + msg
		}
	}
	if out.Hit {
		r.s.Player = ApplyDamage(p, dmg, p.DamageReduction)
	}
	r.log(ActorMonster, msg, dmg, out.Critical)
}

// checkEnd settles a finished battle or advances the turn counter.
// Defeat is checked first so a dead player can never also win.
func (r *round) checkEnd() {
	e := r.engine
	switch {
	case r.s.Result == ResultEscaped:
		return
	case r.s.Player.IsDefeated():
		r.end(ResultDefeat)
		penalty, player := e.settle.Defeat(r.s.Player, r.s.ReturnTown, e.src)
		r.s.Player = player
		r.s.Penalty = &penalty
		r.log(ActorMonster, fmt.Sprintf("%s has been defeated. Lost %d gold (%d%%) and woke up in %s.",
			player.Name, penalty.GoldLost, penalty.PenaltyPercent, penalty.TeleportLocation), 0, false)
	case r.s.Result == ResultVictory || r.s.Monster.IsDefeated():
		r.end(ResultVictory)
		reward, player := e.settle.Victory(r.s.Player, r.s.Monster, e.src)
		r.s.Player = player
		r.s.Reward = &reward
		r.log(ActorPlayer, fmt.Sprintf("%s is defeated! Gained %d experience and %d gold.",
			r.s.Monster.Name, reward.ExperienceGained, reward.GoldGained), 0, false)
	default:
		r.s.Turn++
	}
}
