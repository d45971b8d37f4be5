package handlers_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/arena/internal/battle"
	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/frontend/handlers"
	"github.com/cory-johannsen/arena/internal/frontend/telnet"
	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/encounter"
	"github.com/cory-johannsen/arena/internal/game/npc"
	"github.com/cory-johannsen/arena/internal/game/reward"
	"github.com/cory-johannsen/arena/internal/game/world"
	"github.com/cory-johannsen/arena/internal/storage/postgres"
	"github.com/cory-johannsen/arena/internal/testutil"
)

type memCharacters struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]character.Character
}

func (m *memCharacters) Create(_ context.Context, c *character.Character) (*character.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	out := *c
	out.ID = m.nextID
	m.byID[out.ID] = out
	return &out, nil
}

func (m *memCharacters) GetByID(_ context.Context, id int64) (*character.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil, postgres.ErrCharacterNotFound
	}
	return &c, nil
}

func (m *memCharacters) GetByName(_ context.Context, name string) (*character.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byID {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, postgres.ErrCharacterNotFound
}

func (m *memCharacters) SaveProgress(_ context.Context, c *character.Character) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[c.ID]; !ok {
		return postgres.ErrCharacterNotFound
	}
	m.byID[c.ID] = *c
	return nil
}

const regionYAML = `
region:
  id: vale
  name: Vale
  start_location: aldea
  locations:
    - id: aldea
      name: Aldea
      description: A quiet village.
      kind: town
      exits: [{direction: north, target: meadow}]
    - id: meadow
      name: Green Meadow
      kind: field
      encounter_rate: 1
      monsters: [{template: slime}]
      exits: [{direction: south, target: aldea}]
`

const timeout = 2 * time.Second

func startServer(t *testing.T, src dice.Source) (*battle.Service, string) {
	t.Helper()
	region, err := world.LoadRegionFromBytes([]byte(regionYAML))
	require.NoError(t, err)
	w, err := world.NewManager([]*world.Region{region}, "aldea")
	require.NoError(t, err)
	monsters, err := npc.NewRegistry([]*npc.Template{
		{ID: "slime", Name: "Slime", Level: 1, MaxHP: 1, ExperienceReward: 100,
			Stats: npc.Stats{Attack: 5, Agility: 5, Accuracy: 70}},
	})
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	svc := battle.NewService(battle.Deps{
		Characters: &memCharacters{byID: make(map[int64]character.Character)},
		World:      w,
		Encounters: encounter.NewResolver(w, monsters, src, encounter.DefaultRate, logger),
		Engine:     combat.NewEngine(src, ai.Heuristic{}, reward.NewCalculator("aldea"), logger),
		Tracer:     noop.NewTracerProvider().Tracer("test"),
		Logger:     logger,
	})

	acc := telnet.NewAcceptor(config.TelnetConfig{
		Host:         "127.0.0.1",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}, handlers.NewGameHandler(svc, w, logger), logger)
	go func() { _ = acc.Start() }()
	require.Eventually(t, func() bool { return acc.IsRunning() && acc.Addr() != "" }, timeout, 10*time.Millisecond)
	t.Cleanup(acc.Stop)
	return svc, acc.Addr()
}

// connect dials addr and waits for the login prompt.
func connect(t *testing.T, addr string) *testutil.TelnetClient {
	t.Helper()
	client := testutil.NewTelnetClient(t, addr)
	out := client.ReadUntil("> ", timeout)
	require.Contains(t, out, "login <name>")
	return client
}

const gamePrompt = "]> "

func TestGameHandler_WinABattle(t *testing.T) {
	// encounter roll, monster pick, hit, 100% damage, no crit, 15 gold
	_, addr := startServer(t, dice.NewFixedSource([]int{0, 0, 20, 99, 5}, 0))
	client := connect(t, addr)

	out := client.Command("login Hero", gamePrompt)
	assert.Contains(t, out, "A new hero steps forward: Hero!")
	assert.Contains(t, out, "Aldea (town)")
	assert.Contains(t, out, "[Hero 30/30]")

	out = client.Command("search", gamePrompt)
	assert.Contains(t, out, "The town is peaceful")

	out = client.Command("go green meadow", gamePrompt)
	assert.Contains(t, out, "Green Meadow")
	assert.Contains(t, out, "A wild Slime (level 1) appears!")
	assert.Contains(t, out, "attack | defend | escape")
	assert.Contains(t, out, "vs Slime]")

	out = client.Command("a", gamePrompt)
	assert.Contains(t, out, "Victory over Slime!")
	assert.Contains(t, out, "100 experience and 15 gold")
	assert.Contains(t, out, "Level up")

	out = client.Command("status", gamePrompt)
	assert.Contains(t, out, "Level 2")
	assert.Contains(t, out, "Gold 65")
	assert.Contains(t, out, "Location: Green Meadow")

	client.Send("quit")
	client.ReadUntil("Farewell, Hero.", timeout)
}

func TestGameHandler_DisconnectAbandonsBattle(t *testing.T) {
	svc, addr := startServer(t, dice.NewFixedSource([]int{0}, 0))
	client := connect(t, addr)

	client.Command("login Hero", gamePrompt)
	out := client.Command("north", gamePrompt)
	assert.Contains(t, out, "A wild Slime")
	assert.Contains(t, out, "vs Slime]")

	out = client.Command("rest", gamePrompt)
	assert.Contains(t, out, "middle of a battle")
	assert.Equal(t, 1, svc.ActiveBattles())

	client.Close()
	assert.Eventually(t, func() bool {
		return svc.ActiveBattles() == 0
	}, timeout, 10*time.Millisecond)
}

func TestGameHandler_LoginValidation(t *testing.T) {
	_, addr := startServer(t, dice.NewFixedSource(nil))
	client := connect(t, addr)

	assert.Contains(t, client.Command("login", "> "), "Usage: login <name>")
	assert.Contains(t, client.Command("login x!", "> "), "may only contain letters")
	assert.Contains(t, client.Command("dance", "> "), "Unknown command: dance")
	client.Send("quit")
	client.ReadUntil("Goodbye!", timeout)
}

func TestGameHandler_CommandsOutsideBattle(t *testing.T) {
	_, addr := startServer(t, dice.NewFixedSource(nil))
	client := connect(t, addr)
	client.Command("login Hero", gamePrompt)

	assert.Contains(t, client.Command("attack", gamePrompt), "You are not fighting anything.")
	assert.Contains(t, client.Command("go swamp", gamePrompt), "you can't go that way")
	assert.Contains(t, client.Command("go", gamePrompt), "Usage: go <place>")
	assert.Contains(t, client.Command("rest", gamePrompt), "You rest at the inn. HP 30/30")
	assert.Contains(t, client.Command("help", gamePrompt), "[combat]")
	assert.Contains(t, client.Command("xyzzy", gamePrompt), "Unknown command: xyzzy")
	client.Send("quit")
	client.ReadUntil("Farewell", timeout)
}
