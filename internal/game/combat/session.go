package combat

// Phase is the externally visible state of a battle session.
type Phase string

const (
	PhasePlayerTurn Phase = "player_turn"
	PhaseBattleEnd  Phase = "battle_end"
)

// Result is the terminal outcome of a battle. The zero value means ongoing.
type Result string

const (
	ResultNone    Result = ""
	ResultVictory Result = "victory"
	ResultDefeat  Result = "defeat"
	ResultEscaped Result = "escaped"
)

// Terminal reports whether r ends a battle.
func (r Result) Terminal() bool {
	return r == ResultVictory || r == ResultDefeat || r == ResultEscaped
}

// Actor identifies who produced a log entry.
type Actor string

const (
	ActorPlayer  Actor = "player"
	ActorMonster Actor = "monster"
)

// LogEntry is one human-readable battle event.
type LogEntry struct {
	Actor    Actor  `json:"actor"`
	Message  string `json:"message"`
	Damage   int    `json:"damage,omitempty"`
	Critical bool   `json:"critical,omitempty"`
}

// Reward is granted to the player on victory.
type Reward struct {
	ExperienceGained int `json:"experience_gained"`
	GoldGained       int `json:"gold_gained"`
}

// Penalty is levied on the player on defeat.
type Penalty struct {
	GoldLost         int    `json:"gold_lost"`
	RemainingGold    int    `json:"remaining_gold"`
	TeleportLocation string `json:"teleport_location"`
	PenaltyPercent   int    `json:"penalty_percent"`
}

// Session is one encounter between the player and a monster. It is a plain
// value: the engine returns a new Session from each action and never keeps one.
type Session struct {
	ID      string    `json:"id"`
	Player  Combatant `json:"player"`
	Monster Combatant `json:"monster"`
	// Turn starts at 1 and increments after every full round that does not end the battle.
	Turn   int        `json:"turn"`
	Phase  Phase      `json:"phase"`
	Log    []LogEntry `json:"log"`
	Result Result     `json:"result,omitempty"`
	// ReturnTown is the player's last-visited town, used as the defeat teleport destination.
	ReturnTown string `json:"return_town,omitempty"`
	// Reward and Penalty are set when the battle ends in victory or defeat.
	Reward  *Reward  `json:"reward,omitempty"`
	Penalty *Penalty `json:"penalty,omitempty"`
}

// Ended reports whether the session has reached a terminal result.
func (s Session) Ended() bool {
	return s.Phase == PhaseBattleEnd || s.Result.Terminal()
}

// clone returns a copy of s that shares no mutable memory with it.
func (s Session) clone() Session {
	c := s
	c.Log = append([]LogEntry(nil), s.Log...)
	if s.Reward != nil {
		r := *s.Reward
		c.Reward = &r
	}
	if s.Penalty != nil {
		p := *s.Penalty
		c.Penalty = &p
	}
	return c
}
