// Package store persists built corpus models in a SQLite database. Models
// are stored sparsely: one row per state label and one row per nonzero
// transition probability, keyed by a model name.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/CTAG07/Babbler/pkg/corpus"
)

// SetupSchema initializes the necessary tables in the provided database.
// This function should be called once on a new database before any other
// operations are performed. It is idempotent and safe to call on an
// already-initialized database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaModels = `
CREATE TABLE IF NOT EXISTS babbler_models (
    model_id INTEGER PRIMARY KEY,
    model_name TEXT NOT NULL UNIQUE,
    state_count INTEGER NOT NULL
);
`
		schemaStates = `
CREATE TABLE IF NOT EXISTS babbler_states (
    model_id INTEGER NOT NULL,
    state_index INTEGER NOT NULL,
    label TEXT NOT NULL,
    PRIMARY KEY (model_id, state_index)
);
`
		schemaTransitions = `
CREATE TABLE IF NOT EXISTS babbler_transitions (
    model_id INTEGER NOT NULL,
    from_state INTEGER NOT NULL,
    to_state INTEGER NOT NULL,
    probability REAL NOT NULL,
    PRIMARY KEY (model_id, from_state, to_state)
);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaModels); err != nil {
		return fmt.Errorf("could not create models schema: %w", err)
	}
	if _, err = tx.Exec(schemaStates); err != nil {
		return fmt.Errorf("could not create states schema: %w", err)
	}
	if _, err = tx.Exec(schemaTransitions); err != nil {
		return fmt.Errorf("could not create transitions schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// ModelInfo holds the essential metadata for a stored model.
type ModelInfo struct {
	Id     int
	Name   string
	States int
}

// Store is the entry point for persisting and retrieving corpus models.
// It holds the database connection and prepared SQL statements.
type Store struct {
	db                  *sql.DB
	stmtGetModel        *sql.Stmt
	stmtGetModels       *sql.Stmt
	stmtAddModel        *sql.Stmt
	stmtGetStates       *sql.Stmt
	stmtGetTransitions  *sql.Stmt
	stmtInsertState     *sql.Stmt
	stmtInsertTrans     *sql.Stmt
	stmtModelTransCount *sql.Stmt
	stmtTotalStates     *sql.Stmt
	stmtTotalTrans      *sql.Stmt
	logger              *slog.Logger
}

// NewStore creates and returns a new Store for a database that has already
// been through SetupSchema. It pre-compiles all necessary SQL statements,
// returning an error if any preparation fails.
func NewStore(db *sql.DB) (*Store, error) {
	stmtGetModel, err := db.Prepare(`SELECT model_id, state_count FROM babbler_models WHERE model_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetModels, err := db.Prepare(`SELECT model_id, model_name, state_count FROM babbler_models;`)
	if err != nil {
		return nil, err
	}

	stmtAddModel, err := db.Prepare(`INSERT INTO babbler_models (model_name, state_count) VALUES (?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtGetStates, err := db.Prepare(`SELECT label FROM babbler_states WHERE model_id = ? ORDER BY state_index;`)
	if err != nil {
		return nil, err
	}

	stmtGetTransitions, err := db.Prepare(`SELECT from_state, to_state, probability FROM babbler_transitions WHERE model_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtInsertState, err := db.Prepare(`INSERT INTO babbler_states (model_id, state_index, label) VALUES (?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtInsertTrans, err := db.Prepare(`INSERT INTO babbler_transitions (model_id, from_state, to_state, probability) VALUES (?, ?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtModelTransCount, err := db.Prepare(`SELECT COUNT(*) FROM babbler_transitions WHERE model_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtTotalStates, err := db.Prepare(`SELECT COUNT(*) FROM babbler_states;`)
	if err != nil {
		return nil, err
	}

	stmtTotalTrans, err := db.Prepare(`SELECT COUNT(*) FROM babbler_transitions;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:                  db,
		stmtGetModel:        stmtGetModel,
		stmtGetModels:       stmtGetModels,
		stmtAddModel:        stmtAddModel,
		stmtGetStates:       stmtGetStates,
		stmtGetTransitions:  stmtGetTransitions,
		stmtInsertState:     stmtInsertState,
		stmtInsertTrans:     stmtInsertTrans,
		stmtModelTransCount: stmtModelTransCount,
		stmtTotalStates:     stmtTotalStates,
		stmtTotalTrans:      stmtTotalTrans,
		logger:              slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared SQL statements held by the Store. It should
// be called when the Store is no longer needed to free up database
// resources.
func (s *Store) Close() {
	_ = s.stmtGetModel.Close()
	_ = s.stmtGetModels.Close()
	_ = s.stmtAddModel.Close()
	_ = s.stmtGetStates.Close()
	_ = s.stmtGetTransitions.Close()
	_ = s.stmtInsertState.Close()
	_ = s.stmtInsertTrans.Close()
	_ = s.stmtModelTransCount.Close()
	_ = s.stmtTotalStates.Close()
	_ = s.stmtTotalTrans.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// GetModelInfo retrieves the metadata for a single model specified by name.
// It returns sql.ErrNoRows (wrapped) if the model does not exist.
func (s *Store) GetModelInfo(ctx context.Context, name string) (ModelInfo, error) {
	var info = ModelInfo{Name: name}
	err := s.stmtGetModel.QueryRowContext(ctx, name).Scan(&info.Id, &info.States)
	if err != nil {
		return ModelInfo{}, fmt.Errorf("could not look up model %q: %w", name, err)
	}
	return info, nil
}

// ListModels retrieves metadata for all models currently in the database,
// returning them in a map keyed by model name.
func (s *Store) ListModels(ctx context.Context) (map[string]ModelInfo, error) {
	rows, err := s.stmtGetModels.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	models := make(map[string]ModelInfo)
	for rows.Next() {
		var info ModelInfo
		if err = rows.Scan(&info.Id, &info.Name, &info.States); err != nil {
			return nil, err
		}
		models[info.Name] = info
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return models, nil
}

// SaveModel persists a built model under the given name. The name must not
// already exist. The states and the nonzero transition probabilities are
// written within a single transaction.
func (s *Store) SaveModel(ctx context.Context, name string, model *corpus.Model) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	n := len(model.Labels)
	res, err := tx.StmtContext(ctx, s.stmtAddModel).ExecContext(ctx, name, n)
	if err != nil {
		return fmt.Errorf("could not insert model %q: %w", name, err)
	}
	modelID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get id for model %q: %w", name, err)
	}

	stmtInsertState := tx.StmtContext(ctx, s.stmtInsertState)
	for i, label := range model.Labels {
		if _, err = stmtInsertState.ExecContext(ctx, modelID, i, label); err != nil {
			return fmt.Errorf("could not insert state %d (%q): %w", i, label, err)
		}
	}

	var transitions int
	stmtInsertTrans := tx.StmtContext(ctx, s.stmtInsertTrans)
	for to, row := range model.Rows {
		for from, p := range row {
			if p == 0 {
				continue
			}
			if _, err = stmtInsertTrans.ExecContext(ctx, modelID, from, to, p); err != nil {
				return fmt.Errorf("could not insert transition (%d -> %d): %w", from, to, err)
			}
			transitions++
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Model saved",
		slog.String("model_name", name),
		slog.Int64("model_id", modelID),
		slog.Int("states", n),
		slog.Int("transitions", transitions),
	)
	return nil
}

// LoadModel reads a stored model back into a dense corpus.Model. Cells not
// present in the transitions table are zero.
func (s *Store) LoadModel(ctx context.Context, name string) (*corpus.Model, error) {
	info, err := s.GetModelInfo(ctx, name)
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, info.States)
	sRows, err := s.stmtGetStates.QueryContext(ctx, info.Id)
	if err != nil {
		return nil, err
	}
	for sRows.Next() {
		var label string
		if err = sRows.Scan(&label); err != nil {
			_ = sRows.Close()
			return nil, err
		}
		labels = append(labels, label)
	}
	_ = sRows.Close()
	if err = sRows.Err(); err != nil {
		return nil, err
	}
	if len(labels) != info.States {
		return nil, fmt.Errorf("model %q has %d state rows, expected %d", name, len(labels), info.States)
	}

	rows := make([][]float64, info.States)
	for i := range rows {
		rows[i] = make([]float64, info.States)
	}
	tRows, err := s.stmtGetTransitions.QueryContext(ctx, info.Id)
	if err != nil {
		return nil, err
	}
	defer func(tRows *sql.Rows) {
		_ = tRows.Close()
	}(tRows)
	for tRows.Next() {
		var from, to int
		var p float64
		if err = tRows.Scan(&from, &to, &p); err != nil {
			return nil, err
		}
		if from < 0 || from >= info.States || to < 0 || to >= info.States {
			return nil, fmt.Errorf("model %q has out-of-range transition (%d -> %d)", name, from, to)
		}
		rows[to][from] = p
	}
	if err = tRows.Err(); err != nil {
		return nil, err
	}

	return &corpus.Model{Labels: labels, Rows: rows}, nil
}

// DeleteModel removes a model and all of its associated state and
// transition data from the database. The operation is performed within a
// transaction.
func (s *Store) DeleteModel(ctx context.Context, info ModelInfo) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.ExecContext(ctx, "DELETE FROM babbler_transitions WHERE model_id = ?", info.Id); err != nil {
		return fmt.Errorf("failed to remove transitions for model %d: %w", info.Id, err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM babbler_states WHERE model_id = ?", info.Id); err != nil {
		return fmt.Errorf("failed to remove states for model %d: %w", info.Id, err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM babbler_models WHERE model_id = ?", info.Id); err != nil {
		return fmt.Errorf("failed to remove model %d: %w", info.Id, err)
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Model removed successfully",
		slog.String("model_name", info.Name),
		slog.Int("model_id", info.Id),
	)
	return nil
}
