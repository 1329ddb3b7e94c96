package ioreport

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/gamedex/gdb/pkg/registry"
	"github.com/gamedex/gdb/pkg/schema"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	_ "modernc.org/sqlite"
)

// platformRow is one per-platform line of the coverage artifact.
type platformRow struct {
	qid, name  string
	games      int
	enriched   int
	normalized int
}

// ExportCoverage writes the coverage artifact: a standalone SQLite
// file with per-platform roster counts and per-target fill rates. The
// artifact is self-contained and needs no access to the pipeline
// database.
func (r *reporter) ExportCoverage(ctx context.Context) error {
	pool := r.operator.Pool()
	if pool == nil {
		return NewNotConnectedError()
	}

	path := r.cfg.OutputFile
	if path == "" {
		path = "coverage.sqlite"
	}

	start := time.Now()
	gn.Info("Exporting coverage report to <em>%s</em>", path)

	platforms, err := r.platformCoverage(ctx)
	if err != nil {
		return err
	}
	fills, err := r.targetFill(ctx)
	if err != nil {
		return err
	}
	totals, err := r.totals(ctx)
	if err != nil {
		return err
	}
	totals["registry_version"] = registryVersion()

	// Always produce a fresh artifact.
	if err = os.Remove(path); err != nil && !os.IsNotExist(err) {
		return NewExportError(path, err)
	}

	out, err := sql.Open("sqlite", path)
	if err != nil {
		return NewExportError(path, err)
	}
	defer out.Close()

	if err = writeArtifact(ctx, out, platforms, fills, totals); err != nil {
		return NewExportError(path, err)
	}

	elapsed := time.Since(start)
	slog.Info("Coverage report exported",
		"path", path,
		"platforms", len(platforms),
		"targets", len(fills),
		"duration", gnfmt.TimeString(elapsed.Seconds()),
	)
	gn.Info(`Coverage report written to <em>%s</em>
Platforms: %d, targets: %d
Elapsed time: <em>%s</em>`,
		path, len(platforms), len(fills),
		gnfmt.TimeString(elapsed.Seconds()))
	return nil
}

func (r *reporter) platformCoverage(
	ctx context.Context,
) ([]platformRow, error) {
	rows, err := r.operator.Pool().Query(ctx, `
		SELECT p.qid, p.name,
		  count(gp.game_id),
		  count(g.last_enriched_at),
		  count(g.last_normalized_at)
		FROM platforms p
		LEFT JOIN game_platforms gp ON gp.platform_id = p.id
		LEFT JOIN games g ON g.id = gp.game_id
		WHERE p.major
		GROUP BY p.qid, p.name
		ORDER BY p.qid`)
	if err != nil {
		return nil, NewCoverageQueryError(err)
	}
	defer rows.Close()

	var res []platformRow
	for rows.Next() {
		var pr platformRow
		err = rows.Scan(&pr.qid, &pr.name, &pr.games,
			&pr.enriched, &pr.normalized)
		if err != nil {
			return nil, NewCoverageQueryError(err)
		}
		res = append(res, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, NewCoverageQueryError(err)
	}
	return res, nil
}

// targetFill computes, per derived table, how many games carry at
// least one row.
func (r *reporter) targetFill(
	ctx context.Context,
) (map[string]int, error) {
	res := make(map[string]int)
	for _, table := range schema.DerivedTables() {
		var filled int
		row := r.operator.Pool().QueryRow(ctx,
			`SELECT count(DISTINCT game_id) FROM `+table)
		if err := row.Scan(&filled); err != nil {
			return nil, NewCoverageQueryError(err)
		}
		res[table] = filled
	}
	return res, nil
}

func (r *reporter) totals(ctx context.Context) (map[string]int, error) {
	res := make(map[string]int)
	queries := map[string]string{
		"games":            `SELECT count(*) FROM games`,
		"platforms":        `SELECT count(*) FROM platforms`,
		"genres":           `SELECT count(*) FROM genres`,
		"companies":        `SELECT count(*) FROM companies`,
		"cached_documents": `SELECT count(*) FROM entity_caches`,
		"flagged_games": `SELECT count(*) FROM games
			WHERE flag_reason <> ''`,
	}
	for key, q := range queries {
		var n int
		if err := r.operator.Pool().QueryRow(ctx, q).Scan(&n); err != nil {
			return nil, NewCoverageQueryError(err)
		}
		res[key] = n
	}
	return res, nil
}

func writeArtifact(
	ctx context.Context,
	out *sql.DB,
	platforms []platformRow,
	fills map[string]int,
	totals map[string]int,
) error {
	ddl := []string{
		`CREATE TABLE platform_coverage (
			qid TEXT NOT NULL,
			name TEXT NOT NULL,
			games INTEGER NOT NULL,
			enriched INTEGER NOT NULL,
			normalized INTEGER NOT NULL
		)`,
		`CREATE TABLE target_fill (
			target TEXT NOT NULL,
			filled_games INTEGER NOT NULL,
			total_games INTEGER NOT NULL,
			fill_rate REAL NOT NULL
		)`,
		`CREATE TABLE summary (
			key TEXT NOT NULL,
			value INTEGER NOT NULL
		)`,
	}
	for _, q := range ddl {
		if _, err := out.ExecContext(ctx, q); err != nil {
			return err
		}
	}

	tx, err := out.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, pr := range platforms {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO platform_coverage
			 (qid, name, games, enriched, normalized)
			 VALUES (?, ?, ?, ?, ?)`,
			pr.qid, pr.name, pr.games, pr.enriched, pr.normalized)
		if err != nil {
			return err
		}
	}

	totalGames := totals["games"]
	// Deterministic row order for the artifact.
	for _, table := range schema.DerivedTables() {
		filled := fills[table]
		rate := 0.0
		if totalGames > 0 {
			rate = float64(filled) / float64(totalGames)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO target_fill
			 (target, filled_games, total_games, fill_rate)
			 VALUES (?, ?, ?, ?)`,
			table, filled, totalGames, rate)
		if err != nil {
			return err
		}
	}

	for _, key := range []string{
		"games", "platforms", "genres", "companies",
		"cached_documents", "flagged_games", "registry_version",
	} {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO summary (key, value) VALUES (?, ?)`,
			key, totals[key])
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// registryVersion is recorded in the artifact summary so fill rates
// can be traced to the mapping that produced them.
func registryVersion() int {
	reg, err := registry.Load(registry.LoadOptions{})
	if err != nil {
		return 0
	}
	return reg.Version
}
