package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/arena/internal/game/character"
)

// ErrCharacterNotFound is returned when a character lookup yields no results.
var ErrCharacterNotFound = errors.New("character not found")

// ErrCharacterNameTaken is returned when creating a character whose name is already used.
var ErrCharacterNameTaken = errors.New("character name already taken")

const characterColumns = `id, name, level, experience, gold,
	max_hp, current_hp, max_mp, current_mp, sp,
	attack, magic_attack, defense, agility, accuracy, evasion,
	magic_weapon, damage_reduction, location, last_town,
	created_at, updated_at`

// CharacterRepository provides character persistence operations.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Create inserts a new character and returns it with ID and timestamps set.
//
// Precondition: c.Name must be non-empty.
// Postcondition: Returns the created character with ID set, or ErrCharacterNameTaken
// when a character with the same name (case-insensitive) exists.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO characters
			(name, level, experience, gold,
			 max_hp, current_hp, max_mp, current_mp, sp,
			 attack, magic_attack, defense, agility, accuracy, evasion,
			 magic_weapon, damage_reduction, location, last_town)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING `+characterColumns,
		c.Name, c.Level, c.Experience, c.Gold,
		c.MaxHP, c.CurrentHP, c.MaxMP, c.CurrentMP, c.SP,
		c.Stats.Attack, c.Stats.MagicAttack, c.Stats.Defense,
		c.Stats.Agility, c.Stats.Accuracy, c.Stats.Evasion,
		c.MagicWeapon, c.DamageReduction, c.Location, c.LastTown,
	)
	out, err := scanCharacter(row)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrCharacterNameTaken
		}
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	return out, nil
}

// GetByID retrieves a character by its primary key.
//
// Precondition: id must be > 0.
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*character.Character, error) {
	c, err := scanCharacter(r.db.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	return c, nil
}

// GetByName retrieves a character by name, ignoring case.
//
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByName(ctx context.Context, name string) (*character.Character, error) {
	c, err := scanCharacter(r.db.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE LOWER(name) = LOWER($1)`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character by name: %w", err)
	}
	return c, nil
}

// SaveProgress persists everything a battle, a rest, or movement can change.
//
// Precondition: c.ID must be > 0.
// Postcondition: Returns nil on success, ErrCharacterNotFound if no row updated.
func (r *CharacterRepository) SaveProgress(ctx context.Context, c *character.Character) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE characters SET
			level = $2, experience = $3, gold = $4,
			max_hp = $5, current_hp = $6, max_mp = $7, current_mp = $8, sp = $9,
			attack = $10, magic_attack = $11, defense = $12,
			agility = $13, accuracy = $14, evasion = $15,
			location = $16, last_town = $17, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.Level, c.Experience, c.Gold,
		c.MaxHP, c.CurrentHP, c.MaxMP, c.CurrentMP, c.SP,
		c.Stats.Attack, c.Stats.MagicAttack, c.Stats.Defense,
		c.Stats.Agility, c.Stats.Accuracy, c.Stats.Evasion,
		c.Location, c.LastTown,
	)
	if err != nil {
		return fmt.Errorf("saving character progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}
	return nil
}

func scanCharacter(row pgx.Row) (*character.Character, error) {
	var c character.Character
	err := row.Scan(
		&c.ID, &c.Name, &c.Level, &c.Experience, &c.Gold,
		&c.MaxHP, &c.CurrentHP, &c.MaxMP, &c.CurrentMP, &c.SP,
		&c.Stats.Attack, &c.Stats.MagicAttack, &c.Stats.Defense,
		&c.Stats.Agility, &c.Stats.Accuracy, &c.Stats.Evasion,
		&c.MagicWeapon, &c.DamageReduction, &c.Location, &c.LastTown,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// SQLSTATE 23505 is unique_violation.
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
