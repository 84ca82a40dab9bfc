package db

import (
	"context"
)

const presetColumns = `name, description, width, depth, seed, color, max_height, falloff, z,
    fractal_octaves, fractal_frequency, noise_backend, created_at, updated_at`

const upsertPreset = `-- name: UpsertPreset :exec
INSERT INTO terrain_presets (
    name, description, width, depth, seed, color, max_height, falloff, z,
    fractal_octaves, fractal_frequency, noise_backend
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
    description = excluded.description,
    width = excluded.width,
    depth = excluded.depth,
    seed = excluded.seed,
    color = excluded.color,
    max_height = excluded.max_height,
    falloff = excluded.falloff,
    z = excluded.z,
    fractal_octaves = excluded.fractal_octaves,
    fractal_frequency = excluded.fractal_frequency,
    noise_backend = excluded.noise_backend,
    updated_at = CURRENT_TIMESTAMP`

type UpsertPresetParams struct {
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Width            float64 `json:"width"`
	Depth            float64 `json:"depth"`
	Seed             int64   `json:"seed"`
	Color            string  `json:"color"`
	MaxHeight        float64 `json:"max_height"`
	Falloff          float64 `json:"falloff"`
	Z                float64 `json:"z"`
	FractalOctaves   int64   `json:"fractal_octaves"`
	FractalFrequency float64 `json:"fractal_frequency"`
	NoiseBackend     string  `json:"noise_backend"`
}

func (q *Queries) UpsertPreset(ctx context.Context, arg UpsertPresetParams) error {
	_, err := q.db.ExecContext(ctx, upsertPreset,
		arg.Name,
		arg.Description,
		arg.Width,
		arg.Depth,
		arg.Seed,
		arg.Color,
		arg.MaxHeight,
		arg.Falloff,
		arg.Z,
		arg.FractalOctaves,
		arg.FractalFrequency,
		arg.NoiseBackend,
	)
	return err
}

const getPreset = `-- name: GetPreset :one
SELECT ` + presetColumns + `
FROM terrain_presets
WHERE name = ?`

func (q *Queries) GetPreset(ctx context.Context, name string) (TerrainPreset, error) {
	row := q.db.QueryRowContext(ctx, getPreset, name)
	var i TerrainPreset
	err := scanPreset(row, &i)
	return i, err
}

const listPresets = `-- name: ListPresets :many
SELECT ` + presetColumns + `
FROM terrain_presets
ORDER BY name`

func (q *Queries) ListPresets(ctx context.Context) ([]TerrainPreset, error) {
	rows, err := q.db.QueryContext(ctx, listPresets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TerrainPreset
	for rows.Next() {
		var i TerrainPreset
		if err := scanPreset(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deletePreset = `-- name: DeletePreset :execrows
DELETE FROM terrain_presets
WHERE name = ?`

func (q *Queries) DeletePreset(ctx context.Context, name string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePreset, name)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countPresets = `-- name: CountPresets :one
SELECT COUNT(*) FROM terrain_presets`

func (q *Queries) CountPresets(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPresets)
	var count int64
	err := row.Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPreset(s scanner, i *TerrainPreset) error {
	return s.Scan(
		&i.Name,
		&i.Description,
		&i.Width,
		&i.Depth,
		&i.Seed,
		&i.Color,
		&i.MaxHeight,
		&i.Falloff,
		&i.Z,
		&i.FractalOctaves,
		&i.FractalFrequency,
		&i.NoiseBackend,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
}
