// Package session keeps active battle sessions in memory and serializes the
// actions submitted against each one.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cory-johannsen/arena/internal/game/combat"
)

// ErrNotFound is returned when no active battle has the requested ID.
var ErrNotFound = errors.New("battle session not found")

// ErrBattleInProgress is returned when a character already has an active battle.
var ErrBattleInProgress = errors.New("character already in battle")

// Battle is an active session and the character fighting it.
type Battle struct {
	CharacterID int64
	Session     combat.Session
	// TemplateID is the monster template the session was started from.
	TemplateID string
	UpdatedAt  time.Time
}

type entry struct {
	mu     sync.Mutex
	battle Battle
	timer  *IdleTimer
	gone   bool
}

// Store tracks active battles by session ID and by character.
// All methods are safe for concurrent use; Update calls for the same session
// run one at a time.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]*entry
	byChar  map[int64]string
	idle    time.Duration
	expired func(Battle)
	now     func() time.Time
	// lockOwner, when set, is held around idle expiry of a character's battle.
	lockOwner func(characterID int64) (unlock func())
}

// NewStore creates an empty Store. When idle > 0, a battle untouched for idle
// is removed and passed to onExpire (which may be nil). onExpire runs without
// any Store lock held.
func NewStore(idle time.Duration, onExpire func(Battle)) *Store {
	return &Store{
		byID:    make(map[string]*entry),
		byChar:  make(map[int64]string),
		idle:    idle,
		expired: onExpire,
		now:     time.Now,
	}
}

// LockOwnerWith makes idle expiry hold lock(characterID) while it removes the
// battle and runs onExpire, so expiry is ordered with the owner's other
// changes to that character.
//
// Precondition: called before the first Add; lock must not call into the Store.
func (s *Store) LockOwnerWith(lock func(characterID int64) (unlock func())) {
	s.lockOwner = lock
}

// Add registers a new active battle.
//
// Precondition: b.Session.ID must be non-empty and the session not ended.
// Postcondition: Returns ErrBattleInProgress if the character already has a
// battle, or an error if the ID is taken or the session is unusable.
func (s *Store) Add(b Battle) error {
	if b.Session.ID == "" {
		return fmt.Errorf("session: battle has no id")
	}
	if b.Session.Ended() {
		return fmt.Errorf("session: battle %s already ended", b.Session.ID)
	}
	b.UpdatedAt = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byChar[b.CharacterID]; ok {
		return ErrBattleInProgress
	}
	if _, ok := s.byID[b.Session.ID]; ok {
		return fmt.Errorf("session: battle %s already registered", b.Session.ID)
	}
	e := &entry{battle: b}
	if s.idle > 0 {
		id := b.Session.ID
		e.timer = NewIdleTimer(s.idle, func() { s.expire(id) })
	}
	s.byID[b.Session.ID] = e
	s.byChar[b.CharacterID] = b.Session.ID
	return nil
}

func (s *Store) lookup(id string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	return e, ok
}

// Get returns a snapshot of the battle with the given ID.
func (s *Store) Get(id string) (Battle, error) {
	e, ok := s.lookup(id)
	if !ok {
		return Battle{}, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return Battle{}, ErrNotFound
	}
	return e.battle, nil
}

// ForCharacter returns the ID of the character's active battle, if any.
func (s *Store) ForCharacter(characterID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byChar[characterID]
	return id, ok
}

// Update runs fn with exclusive access to the battle and stores the session it
// returns. A returned session that has ended removes the battle from the store.
//
// Precondition: fn must not call back into the Store for the same ID.
// Postcondition: Returns ErrNotFound if the battle is absent, or fn's error,
// in which case the stored battle is unchanged.
func (s *Store) Update(id string, fn func(Battle) (combat.Session, error)) error {
	e, ok := s.lookup(id)
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return ErrNotFound
	}

	next, err := fn(e.battle)
	if err != nil {
		return err
	}
	e.battle.Session = next
	e.battle.UpdatedAt = s.now()
	if next.Ended() {
		s.drop(e)
		return nil
	}
	if e.timer != nil {
		e.timer.Reset(s.idle, func() { s.expire(id) })
	}
	return nil
}

// Remove deletes the battle and returns its final snapshot.
func (s *Store) Remove(id string) (Battle, error) {
	e, ok := s.lookup(id)
	if !ok {
		return Battle{}, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return Battle{}, ErrNotFound
	}
	s.drop(e)
	return e.battle, nil
}

// Len returns the number of active battles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// drop removes e from the indexes.
//
// Precondition: e.mu is held.
func (s *Store) drop(e *entry) {
	e.gone = true
	if e.timer != nil {
		e.timer.Stop()
	}
	s.mu.Lock()
	delete(s.byID, e.battle.Session.ID)
	if s.byChar[e.battle.CharacterID] == e.battle.Session.ID {
		delete(s.byChar, e.battle.CharacterID)
	}
	s.mu.Unlock()
}

// expire removes the battle if it has still been idle for the full timeout.
// A timer that fired while an Update was resetting it finds a fresh
// UpdatedAt and leaves the battle alone.
func (s *Store) expire(id string) {
	e, ok := s.lookup(id)
	if !ok {
		return
	}
	if s.lockOwner != nil {
		e.mu.Lock()
		charID := e.battle.CharacterID
		e.mu.Unlock()
		defer s.lockOwner(charID)()
	}

	e.mu.Lock()
	if e.gone || s.now().Sub(e.battle.UpdatedAt) < s.idle {
		e.mu.Unlock()
		return
	}
	s.drop(e)
	b := e.battle
	e.mu.Unlock()
	if s.expired != nil {
		s.expired(b)
	}
}
