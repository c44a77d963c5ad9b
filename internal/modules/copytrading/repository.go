package copytrading

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/yieldrouter/internal/database"
	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/rs/zerolog"
)

// strategyColumns is the list of columns for the strategies table.
// Column order must match scanStrategy().
const strategyColumns = `id, creator, name, description, chain, risk, allocations,
expected_apy, tvl_usd, followers, created_at, updated_at`

// Repository stores strategies and follows in strategies.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new strategy repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "strategy").Logger(),
	}
}

// Create inserts a new strategy.
func (r *Repository) Create(s Strategy) error {
	allocs, err := json.Marshal(s.Allocations)
	if err != nil {
		return fmt.Errorf("failed to marshal allocations: %w", err)
	}

	query := `
		INSERT INTO strategies
		(id, creator, name, description, chain, risk, allocations,
		 expected_apy, tvl_usd, followers, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		s.ID,
		s.Creator,
		s.Name,
		s.Description,
		s.Chain,
		string(s.Risk),
		string(allocs),
		s.ExpectedAPY,
		s.TVLUSD,
		s.Followers,
		s.CreatedAt.Unix(),
		s.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create strategy: %w", err)
	}

	r.log.Info().Str("id", s.ID).Str("creator", s.Creator).Msg("Strategy created")
	return nil
}

// GetByID retrieves a strategy by ID. Returns ErrNotFound when missing.
func (r *Repository) GetByID(id string) (Strategy, error) {
	row := r.db.QueryRow("SELECT "+strategyColumns+" FROM strategies WHERE id = ?", id)

	s, err := scanStrategy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Strategy{}, ErrNotFound
	}
	if err != nil {
		return Strategy{}, fmt.Errorf("failed to get strategy %s: %w", id, err)
	}
	return s, nil
}

// List returns strategies newest first. limit <= 0 returns all of them.
func (r *Repository) List(limit int) ([]Strategy, error) {
	query := "SELECT " + strategyColumns + " FROM strategies ORDER BY created_at DESC, id"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}
	defer rows.Close()

	strategies := make([]Strategy, 0)
	for rows.Next() {
		s, err := scanStrategy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}
		strategies = append(strategies, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate strategies: %w", err)
	}

	return strategies, nil
}

// RecordFollow stores a follow and bumps the strategy's follower count and
// followed TVL in one transaction.
func (r *Repository) RecordFollow(f Follow) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		result, err := tx.Exec(
			"UPDATE strategies SET followers = followers + 1, tvl_usd = tvl_usd + ?, updated_at = ? WHERE id = ?",
			f.AmountUSD, f.CreatedAt.Unix(), f.StrategyID,
		)
		if err != nil {
			return fmt.Errorf("failed to update strategy: %w", err)
		}
		if n, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		} else if n == 0 {
			return ErrNotFound
		}

		_, err = tx.Exec(
			"INSERT INTO strategy_follows (id, strategy_id, follower, amount_usd, created_at) VALUES (?, ?, ?, ?, ?)",
			f.ID, f.StrategyID, f.Follower, f.AmountUSD, f.CreatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert follow: %w", err)
		}
		return nil
	})
}

// Follows returns the follows of a strategy, oldest first.
func (r *Repository) Follows(strategyID string) ([]Follow, error) {
	rows, err := r.db.Query(
		"SELECT id, strategy_id, follower, amount_usd, created_at FROM strategy_follows WHERE strategy_id = ? ORDER BY created_at, id",
		strategyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}
	defer rows.Close()

	follows := make([]Follow, 0)
	for rows.Next() {
		var f Follow
		var createdAt int64
		if err := rows.Scan(&f.ID, &f.StrategyID, &f.Follower, &f.AmountUSD, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan follow: %w", err)
		}
		f.CreatedAt = time.Unix(createdAt, 0).UTC()
		follows = append(follows, f)
	}
	return follows, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanStrategy(row scanner) (Strategy, error) {
	var s Strategy
	var risk, allocs string
	var createdAt, updatedAt int64

	err := row.Scan(
		&s.ID,
		&s.Creator,
		&s.Name,
		&s.Description,
		&s.Chain,
		&risk,
		&allocs,
		&s.ExpectedAPY,
		&s.TVLUSD,
		&s.Followers,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return Strategy{}, err
	}

	if err := json.Unmarshal([]byte(allocs), &s.Allocations); err != nil {
		return Strategy{}, fmt.Errorf("failed to unmarshal allocations: %w", err)
	}
	s.Risk = domain.RiskTier(risk)
	s.CreatedAt = time.Unix(createdAt, 0).UTC()
	s.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return s, nil
}
