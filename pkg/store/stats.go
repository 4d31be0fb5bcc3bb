package store

import "context"

// DBStats holds aggregated statistics for the entire database, including a
// list of all models and their individual stats.
type DBStats struct {
	Models      []ModelInfo        // A list of models in the database
	Stats       map[int]ModelStats // A mapping of model ids to their stats
	TotalStates int                // The number of state rows across all models
	TotalTrans  int                // The number of stored transitions across all models
}

// ModelStats holds aggregated statistics for a single stored model.
type ModelStats struct {
	States      int // The number of states, sentinels included.
	Transitions int // The number of nonzero transition probabilities.
}

// GetStats returns a snapshot of statistics for the entire database,
// including global counts and per-model stats.
func (s *Store) GetStats(ctx context.Context) (*DBStats, error) {
	modelInfos, err := s.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	var totalStates int
	if err = s.stmtTotalStates.QueryRowContext(ctx).Scan(&totalStates); err != nil {
		return nil, err
	}

	var totalTrans int
	if err = s.stmtTotalTrans.QueryRowContext(ctx).Scan(&totalTrans); err != nil {
		return nil, err
	}

	models := make([]ModelInfo, 0, len(modelInfos))
	modelStats := make(map[int]ModelStats)
	for _, info := range modelInfos {
		models = append(models, info)
		var transitions int
		if err = s.stmtModelTransCount.QueryRowContext(ctx, info.Id).Scan(&transitions); err != nil {
			return nil, err
		}
		modelStats[info.Id] = ModelStats{
			States:      info.States,
			Transitions: transitions,
		}
	}

	return &DBStats{
		Models:      models,
		Stats:       modelStats,
		TotalStates: totalStates,
		TotalTrans:  totalTrans,
	}, nil
}
