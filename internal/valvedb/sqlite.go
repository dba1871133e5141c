package valvedb

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/procflow/sizer-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite catalog at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS valves (
	id           TEXT PRIMARY KEY,
	manufacturer TEXT NOT NULL,
	series       TEXT NOT NULL,
	style        TEXT NOT NULL,
	nominal_size TEXT NOT NULL,
	rated_cv     REAL NOT NULL,
	fl           REAL NOT NULL,
	xt           REAL NOT NULL,
	fd           REAL NOT NULL,
	rangeability REAL NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (manufacturer, series, nominal_size)
);

CREATE TABLE IF NOT EXISTS liquid_fluids (
	name              TEXT PRIMARY KEY,
	category          TEXT NOT NULL,
	density           REAL NOT NULL,
	vapor_pressure    REAL NOT NULL,
	critical_pressure REAL NOT NULL,
	viscosity         REAL NOT NULL,
	typical_temp_c    REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS gas_fluids (
	name             TEXT PRIMARY KEY,
	category         TEXT NOT NULL,
	molecular_weight REAL NOT NULL,
	specific_heat    REAL NOT NULL,
	compressibility  REAL NOT NULL,
	typical_temp_c   REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_valves_style ON valves(style);
CREATE INDEX IF NOT EXISTS idx_valves_size ON valves(nominal_size);
CREATE INDEX IF NOT EXISTS idx_valves_cv ON valves(rated_cv);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Seed loads the starter catalog, overwriting coefficient rows that already
// exist so re-seeding is idempotent.
func (s *SQLiteStore) Seed(ctx context.Context) error {
	for _, v := range seedValves {
		if _, err := s.PutValve(ctx, v); err != nil {
			return err
		}
	}
	for _, f := range seedLiquids {
		if err := s.PutLiquid(ctx, f); err != nil {
			return err
		}
	}
	for _, f := range seedGases {
		if err := s.PutGas(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) PutValve(ctx context.Context, v Valve) (*Valve, error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO valves (id, manufacturer, series, style, nominal_size, rated_cv, fl, xt, fd, rangeability)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (manufacturer, series, nominal_size) DO UPDATE SET
		   style = excluded.style, rated_cv = excluded.rated_cv,
		   fl = excluded.fl, xt = excluded.xt, fd = excluded.fd,
		   rangeability = excluded.rangeability`,
		v.ID, v.Manufacturer, v.Series, v.Style.String(), v.NominalSize, v.RatedCv, v.FL, v.XT, v.Fd, v.Rangeability,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: put valve %s %s", v.Series, v.NominalSize)
	}
	return &v, nil
}

func (s *SQLiteStore) GetValve(ctx context.Context, id string) (*Valve, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, manufacturer, series, style, nominal_size, rated_cv, fl, xt, fd, rangeability, created_at
		 FROM valves WHERE id = ?`,
		id,
	)
	return scanValve(row)
}

func (s *SQLiteStore) ListValves(ctx context.Context, filter ValveFilter) ([]Valve, error) {
	query := `SELECT id, manufacturer, series, style, nominal_size, rated_cv, fl, xt, fd, rangeability, created_at
	          FROM valves WHERE 1=1`
	var args []any

	if filter.Style != "" {
		query += ` AND style = ?`
		args = append(args, filter.Style)
	}
	if filter.NominalSize != "" {
		query += ` AND nominal_size = ?`
		args = append(args, filter.NominalSize)
	}
	if filter.MinCv > 0 {
		query += ` AND rated_cv >= ?`
		args = append(args, filter.MinCv)
	}
	query += ` ORDER BY rated_cv ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list valves")
	}
	defer rows.Close()

	var valves []Valve
	for rows.Next() {
		v, err := scanValve(rows)
		if err != nil {
			return nil, err
		}
		valves = append(valves, *v)
	}
	return valves, eris.Wrap(rows.Err(), "sqlite: list valves iterate")
}

func (s *SQLiteStore) DeleteValve(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM valves WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete valve %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("valve not found: %s", id)
	}
	return nil
}

func (s *SQLiteStore) PutLiquid(ctx context.Context, f LiquidFluid) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO liquid_fluids (name, category, density, vapor_pressure, critical_pressure, viscosity, typical_temp_c)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET
		   category = excluded.category, density = excluded.density,
		   vapor_pressure = excluded.vapor_pressure, critical_pressure = excluded.critical_pressure,
		   viscosity = excluded.viscosity, typical_temp_c = excluded.typical_temp_c`,
		f.Name, f.Category, f.Density, f.VaporPressure, f.CriticalPressure, f.Viscosity, f.TypicalTempC,
	)
	return eris.Wrapf(err, "sqlite: put liquid %s", f.Name)
}

func (s *SQLiteStore) GetLiquid(ctx context.Context, name string) (*LiquidFluid, error) {
	var f LiquidFluid
	err := s.db.QueryRowContext(ctx,
		`SELECT name, category, density, vapor_pressure, critical_pressure, viscosity, typical_temp_c
		 FROM liquid_fluids WHERE name = ?`,
		name,
	).Scan(&f.Name, &f.Category, &f.Density, &f.VaporPressure, &f.CriticalPressure, &f.Viscosity, &f.TypicalTempC)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get liquid %s", name)
	}
	return &f, nil
}

func (s *SQLiteStore) ListLiquids(ctx context.Context) ([]LiquidFluid, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, category, density, vapor_pressure, critical_pressure, viscosity, typical_temp_c
		 FROM liquid_fluids ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list liquids")
	}
	defer rows.Close()

	var fluids []LiquidFluid
	for rows.Next() {
		var f LiquidFluid
		if err := rows.Scan(&f.Name, &f.Category, &f.Density, &f.VaporPressure, &f.CriticalPressure, &f.Viscosity, &f.TypicalTempC); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan liquid")
		}
		fluids = append(fluids, f)
	}
	return fluids, eris.Wrap(rows.Err(), "sqlite: list liquids iterate")
}

func (s *SQLiteStore) PutGas(ctx context.Context, f GasFluid) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO gas_fluids (name, category, molecular_weight, specific_heat, compressibility, typical_temp_c)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET
		   category = excluded.category, molecular_weight = excluded.molecular_weight,
		   specific_heat = excluded.specific_heat, compressibility = excluded.compressibility,
		   typical_temp_c = excluded.typical_temp_c`,
		f.Name, f.Category, f.MolecularWeight, f.SpecificHeat, f.Compressibility, f.TypicalTempC,
	)
	return eris.Wrapf(err, "sqlite: put gas %s", f.Name)
}

func (s *SQLiteStore) GetGas(ctx context.Context, name string) (*GasFluid, error) {
	var f GasFluid
	err := s.db.QueryRowContext(ctx,
		`SELECT name, category, molecular_weight, specific_heat, compressibility, typical_temp_c
		 FROM gas_fluids WHERE name = ?`,
		name,
	).Scan(&f.Name, &f.Category, &f.MolecularWeight, &f.SpecificHeat, &f.Compressibility, &f.TypicalTempC)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get gas %s", name)
	}
	return &f, nil
}

func (s *SQLiteStore) ListGases(ctx context.Context) ([]GasFluid, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, category, molecular_weight, specific_heat, compressibility, typical_temp_c
		 FROM gas_fluids ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list gases")
	}
	defer rows.Close()

	var fluids []GasFluid
	for rows.Next() {
		var f GasFluid
		if err := rows.Scan(&f.Name, &f.Category, &f.MolecularWeight, &f.SpecificHeat, &f.Compressibility, &f.TypicalTempC); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan gas")
		}
		fluids = append(fluids, f)
	}
	return fluids, eris.Wrap(rows.Err(), "sqlite: list gases iterate")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanValve(row scannable) (*Valve, error) {
	var v Valve
	var style string

	err := row.Scan(&v.ID, &v.Manufacturer, &v.Series, &style, &v.NominalSize,
		&v.RatedCv, &v.FL, &v.XT, &v.Fd, &v.Rangeability, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("valve not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan valve")
	}

	parsed, ok := model.ParseStyle(style)
	if !ok {
		return nil, eris.Errorf("sqlite: valve %s has unknown style %q", v.ID, style)
	}
	v.Style = parsed
	return &v, nil
}
