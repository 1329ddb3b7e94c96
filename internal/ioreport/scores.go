package ioreport

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
)

// RecomputeScores recalculates popularity and coverage scores for
// every game from derived rows. The computation is a pure function of
// stored rows, so re-running it is always safe.
func (r *reporter) RecomputeScores(ctx context.Context) error {
	pool := r.operator.Pool()
	if pool == nil {
		return NewNotConnectedError()
	}

	start := time.Now()
	gn.Info("Recomputing game scores")

	tag, err := pool.Exec(ctx, scoresQuery)
	if err != nil {
		return NewScoresError(err)
	}

	elapsed := time.Since(start)
	slog.Info("Scores recomputed",
		"games", tag.RowsAffected(),
		"duration", gnfmt.TimeString(elapsed.Seconds()),
	)
	gn.Info(`Scores recomputed for <em>%s</em> games
Elapsed time: <em>%s</em>`,
		humanize.Comma(tag.RowsAffected()),
		gnfmt.TimeString(elapsed.Seconds()))
	return nil
}

// Coverage counts filled facets; popularity grows logarithmically
// with the number of derived rows pointing at the game.
const scoresQuery = `
UPDATE games g SET
  coverage_score = (
      (CASE WHEN g.release_year IS NOT NULL THEN 1 ELSE 0 END)
    + (CASE WHEN g.cover_image <> '' THEN 1 ELSE 0 END)
    + (CASE WHEN EXISTS
        (SELECT 1 FROM game_genres x WHERE x.game_id = g.id)
        THEN 1 ELSE 0 END)
    + (CASE WHEN EXISTS
        (SELECT 1 FROM game_companies x WHERE x.game_id = g.id)
        THEN 1 ELSE 0 END)
    + (CASE WHEN EXISTS
        (SELECT 1 FROM game_platforms x WHERE x.game_id = g.id)
        THEN 1 ELSE 0 END)
    + (CASE WHEN EXISTS
        (SELECT 1 FROM game_websites x WHERE x.game_id = g.id)
        THEN 1 ELSE 0 END)
    + (CASE WHEN EXISTS
        (SELECT 1 FROM game_external_ids x WHERE x.game_id = g.id)
        THEN 1 ELSE 0 END)
    + (CASE WHEN EXISTS
        (SELECT 1 FROM game_age_ratings x WHERE x.game_id = g.id)
        THEN 1 ELSE 0 END)
  )::float / 8,
  popularity_score = ln(1
    + (SELECT count(*) FROM game_platforms x WHERE x.game_id = g.id)
    + (SELECT count(*) FROM game_external_ids x WHERE x.game_id = g.id)
    + (SELECT count(*) FROM game_websites x WHERE x.game_id = g.id)
    + (SELECT count(*) FROM game_relations x
       WHERE x.related_game_id = g.id))
WHERE g.flag_reason <> 'missing'`
