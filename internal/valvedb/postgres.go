package valvedb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/procflow/sizer-cli/internal/db"
	"github.com/procflow/sizer-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS valves (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	manufacturer TEXT NOT NULL,
	series       TEXT NOT NULL,
	style        TEXT NOT NULL,
	nominal_size TEXT NOT NULL,
	rated_cv     DOUBLE PRECISION NOT NULL,
	fl           DOUBLE PRECISION NOT NULL,
	xt           DOUBLE PRECISION NOT NULL,
	fd           DOUBLE PRECISION NOT NULL,
	rangeability DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (manufacturer, series, nominal_size)
);

CREATE TABLE IF NOT EXISTS liquid_fluids (
	name              TEXT PRIMARY KEY,
	category          TEXT NOT NULL,
	density           DOUBLE PRECISION NOT NULL,
	vapor_pressure    DOUBLE PRECISION NOT NULL,
	critical_pressure DOUBLE PRECISION NOT NULL,
	viscosity         DOUBLE PRECISION NOT NULL,
	typical_temp_c    DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS gas_fluids (
	name             TEXT PRIMARY KEY,
	category         TEXT NOT NULL,
	molecular_weight DOUBLE PRECISION NOT NULL,
	specific_heat    DOUBLE PRECISION NOT NULL,
	compressibility  DOUBLE PRECISION NOT NULL,
	typical_temp_c   DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_valves_style ON valves(style);
CREATE INDEX IF NOT EXISTS idx_valves_size ON valves(nominal_size);
CREATE INDEX IF NOT EXISTS idx_valves_cv ON valves(rated_cv);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Seed bulk-loads the starter catalog via COPY into empty tables. A
// non-empty catalog is left untouched.
func (s *PostgresStore) Seed(ctx context.Context) error {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM valves`).Scan(&count); err != nil {
		return eris.Wrap(err, "postgres: count valves")
	}
	if count > 0 {
		return nil
	}

	valveRows := make([][]any, 0, len(seedValves))
	for _, v := range seedValves {
		valveRows = append(valveRows, []any{
			uuid.New().String(), v.Manufacturer, v.Series, v.Style.String(),
			v.NominalSize, v.RatedCv, v.FL, v.XT, v.Fd, v.Rangeability,
		})
	}
	if _, err := db.CopyFrom(ctx, s.pool, "valves",
		[]string{"id", "manufacturer", "series", "style", "nominal_size", "rated_cv", "fl", "xt", "fd", "rangeability"},
		valveRows,
	); err != nil {
		return err
	}

	liquidRows := make([][]any, 0, len(seedLiquids))
	for _, f := range seedLiquids {
		liquidRows = append(liquidRows, []any{
			f.Name, f.Category, f.Density, f.VaporPressure, f.CriticalPressure, f.Viscosity, f.TypicalTempC,
		})
	}
	if _, err := db.CopyFrom(ctx, s.pool, "liquid_fluids",
		[]string{"name", "category", "density", "vapor_pressure", "critical_pressure", "viscosity", "typical_temp_c"},
		liquidRows,
	); err != nil {
		return err
	}

	gasRows := make([][]any, 0, len(seedGases))
	for _, f := range seedGases {
		gasRows = append(gasRows, []any{
			f.Name, f.Category, f.MolecularWeight, f.SpecificHeat, f.Compressibility, f.TypicalTempC,
		})
	}
	_, err := db.CopyFrom(ctx, s.pool, "gas_fluids",
		[]string{"name", "category", "molecular_weight", "specific_heat", "compressibility", "typical_temp_c"},
		gasRows,
	)
	return err
}

func (s *PostgresStore) PutValve(ctx context.Context, v Valve) (*Valve, error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO valves (id, manufacturer, series, style, nominal_size, rated_cv, fl, xt, fd, rangeability)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (manufacturer, series, nominal_size) DO UPDATE SET
		   style = $4, rated_cv = $6, fl = $7, xt = $8, fd = $9, rangeability = $10`,
		v.ID, v.Manufacturer, v.Series, v.Style.String(), v.NominalSize, v.RatedCv, v.FL, v.XT, v.Fd, v.Rangeability,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: put valve %s %s", v.Series, v.NominalSize)
	}
	return &v, nil
}

func (s *PostgresStore) GetValve(ctx context.Context, id string) (*Valve, error) {
	var v Valve
	var style string

	err := s.pool.QueryRow(ctx,
		`SELECT id, manufacturer, series, style, nominal_size, rated_cv, fl, xt, fd, rangeability, created_at
		 FROM valves WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.Manufacturer, &v.Series, &style, &v.NominalSize,
		&v.RatedCv, &v.FL, &v.XT, &v.Fd, &v.Rangeability, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("valve not found: %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get valve %s", id)
	}

	parsed, ok := model.ParseStyle(style)
	if !ok {
		return nil, eris.Errorf("postgres: valve %s has unknown style %q", v.ID, style)
	}
	v.Style = parsed
	return &v, nil
}

func (s *PostgresStore) ListValves(ctx context.Context, filter ValveFilter) ([]Valve, error) {
	query := `SELECT id, manufacturer, series, style, nominal_size, rated_cv, fl, xt, fd, rangeability, created_at
	          FROM valves WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Style != "" {
		query += fmt.Sprintf(` AND style = $%d`, argIdx)
		args = append(args, filter.Style)
		argIdx++
	}
	if filter.NominalSize != "" {
		query += fmt.Sprintf(` AND nominal_size = $%d`, argIdx)
		args = append(args, filter.NominalSize)
		argIdx++
	}
	if filter.MinCv > 0 {
		query += fmt.Sprintf(` AND rated_cv >= $%d`, argIdx)
		args = append(args, filter.MinCv)
		argIdx++
	}
	query += ` ORDER BY rated_cv ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list valves")
	}
	defer rows.Close()

	var valves []Valve
	for rows.Next() {
		var v Valve
		var style string
		if err := rows.Scan(&v.ID, &v.Manufacturer, &v.Series, &style, &v.NominalSize,
			&v.RatedCv, &v.FL, &v.XT, &v.Fd, &v.Rangeability, &v.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan valve")
		}
		parsed, ok := model.ParseStyle(style)
		if !ok {
			return nil, eris.Errorf("postgres: valve %s has unknown style %q", v.ID, style)
		}
		v.Style = parsed
		valves = append(valves, v)
	}
	return valves, eris.Wrap(rows.Err(), "postgres: list valves iterate")
}

func (s *PostgresStore) DeleteValve(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM valves WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete valve %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("valve not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) PutLiquid(ctx context.Context, f LiquidFluid) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO liquid_fluids (name, category, density, vapor_pressure, critical_pressure, viscosity, typical_temp_c)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (name) DO UPDATE SET
		   category = $2, density = $3, vapor_pressure = $4,
		   critical_pressure = $5, viscosity = $6, typical_temp_c = $7`,
		f.Name, f.Category, f.Density, f.VaporPressure, f.CriticalPressure, f.Viscosity, f.TypicalTempC,
	)
	return eris.Wrapf(err, "postgres: put liquid %s", f.Name)
}

func (s *PostgresStore) GetLiquid(ctx context.Context, name string) (*LiquidFluid, error) {
	var f LiquidFluid
	err := s.pool.QueryRow(ctx,
		`SELECT name, category, density, vapor_pressure, critical_pressure, viscosity, typical_temp_c
		 FROM liquid_fluids WHERE name = $1`,
		name,
	).Scan(&f.Name, &f.Category, &f.Density, &f.VaporPressure, &f.CriticalPressure, &f.Viscosity, &f.TypicalTempC)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get liquid %s", name)
	}
	return &f, nil
}

func (s *PostgresStore) ListLiquids(ctx context.Context) ([]LiquidFluid, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, category, density, vapor_pressure, critical_pressure, viscosity, typical_temp_c
		 FROM liquid_fluids ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list liquids")
	}
	defer rows.Close()

	var fluids []LiquidFluid
	for rows.Next() {
		var f LiquidFluid
		if err := rows.Scan(&f.Name, &f.Category, &f.Density, &f.VaporPressure, &f.CriticalPressure, &f.Viscosity, &f.TypicalTempC); err != nil {
			return nil, eris.Wrap(err, "postgres: scan liquid")
		}
		fluids = append(fluids, f)
	}
	return fluids, eris.Wrap(rows.Err(), "postgres: list liquids iterate")
}

func (s *PostgresStore) PutGas(ctx context.Context, f GasFluid) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO gas_fluids (name, category, molecular_weight, specific_heat, compressibility, typical_temp_c)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (name) DO UPDATE SET
		   category = $2, molecular_weight = $3, specific_heat = $4,
		   compressibility = $5, typical_temp_c = $6`,
		f.Name, f.Category, f.MolecularWeight, f.SpecificHeat, f.Compressibility, f.TypicalTempC,
	)
	return eris.Wrapf(err, "postgres: put gas %s", f.Name)
}

func (s *PostgresStore) GetGas(ctx context.Context, name string) (*GasFluid, error) {
	var f GasFluid
	err := s.pool.QueryRow(ctx,
		`SELECT name, category, molecular_weight, specific_heat, compressibility, typical_temp_c
		 FROM gas_fluids WHERE name = $1`,
		name,
	).Scan(&f.Name, &f.Category, &f.MolecularWeight, &f.SpecificHeat, &f.Compressibility, &f.TypicalTempC)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get gas %s", name)
	}
	return &f, nil
}

func (s *PostgresStore) ListGases(ctx context.Context) ([]GasFluid, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, category, molecular_weight, specific_heat, compressibility, typical_temp_c
		 FROM gas_fluids ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list gases")
	}
	defer rows.Close()

	var fluids []GasFluid
	for rows.Next() {
		var f GasFluid
		if err := rows.Scan(&f.Name, &f.Category, &f.MolecularWeight, &f.SpecificHeat, &f.Compressibility, &f.TypicalTempC); err != nil {
			return nil, eris.Wrap(err, "postgres: scan gas")
		}
		fluids = append(fluids, f)
	}
	return fluids, eris.Wrap(rows.Err(), "postgres: list gases iterate")
}
