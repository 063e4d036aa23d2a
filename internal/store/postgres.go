package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/opendata-be/kbo-cli/internal/db"
	"github.com/opendata-be/kbo-cli/internal/model"
)

// activityFanout bounds how many per-enterprise updates of one flush
// batch are in flight at once.
const activityFanout = 100

// upsertColumns are the import-owned columns written by the bulk upsert.
// Enrichment columns are deliberately absent so a re-import never clears
// enriched data.
var upsertColumns = []string{
	"enterprise_nr", "name", "slug", "names", "legal_form",
	"status", "situation", "start_date", "address", "contact",
	"branch_count", "updated_at",
}

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
	// The activity flush fans out up to activityFanout statements; the pool
	// multiplexes them over maxConns connections.
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

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) UpsertCompanies(ctx context.Context, companies []model.Company) (int64, error) {
	if len(companies) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(companies))
	for i := range companies {
		c := &companies[i]

		namesJSON, err := json.Marshal(c.Names)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal names for %s", c.EnterpriseNr)
		}
		contactJSON, err := json.Marshal(c.Contact)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal contact for %s", c.EnterpriseNr)
		}
		var addressJSON []byte
		if c.Address != nil {
			addressJSON, err = json.Marshal(c.Address)
			if err != nil {
				return 0, eris.Wrapf(err, "postgres: marshal address for %s", c.EnterpriseNr)
			}
		}

		rows = append(rows, []any{
			c.EnterpriseNr, c.Name, c.Slug, namesJSON, c.LegalForm,
			string(c.Status), string(c.Situation), c.StartDate, addressJSON, contactJSON,
			c.BranchCount, now,
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "companies",
		Columns:      upsertColumns,
		ConflictKeys: []string{"enterprise_nr"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert companies")
	}
	return n, nil
}

const applyActivitySQL = `
UPDATE companies SET
	nace_codes = ARRAY(SELECT DISTINCT c FROM unnest(nace_codes || $2::text[]) AS c),
	main_nace  = CASE WHEN main_nace = '' AND $3::text <> '' THEN $3 ELSE main_nace END,
	updated_at = now()
WHERE enterprise_nr = $1`

func (s *PostgresStore) ApplyActivityUpdates(ctx context.Context, updates []ActivityUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(activityFanout)

	for _, u := range updates {
		g.Go(func() error {
			if _, err := s.pool.Exec(gctx, applyActivitySQL, u.EnterpriseNr, u.Codes, u.Main); err != nil {
				return eris.Wrapf(err, "postgres: activity update %s", u.EnterpriseNr)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *PostgresStore) SelectStaleEnrichment(ctx context.Context, source string, threshold time.Duration, limit int) ([]string, error) {
	col, err := enrichedAtColumn(source)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().Add(-threshold)
	rows, err := s.pool.Query(ctx,
		`SELECT enterprise_nr FROM companies
		 WHERE `+col+` IS NULL OR `+col+` < $1
		 ORDER BY `+col+` ASC NULLS FIRST
		 LIMIT $2`,
		cutoff, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: select stale for %s", source)
	}
	defer rows.Close()

	var nrs []string
	for rows.Next() {
		var nr string
		if err := rows.Scan(&nr); err != nil {
			return nil, eris.Wrap(err, "postgres: scan stale row")
		}
		nrs = append(nrs, nr)
	}
	return nrs, eris.Wrap(rows.Err(), "postgres: iterate stale rows")
}

func (s *PostgresStore) MergeFinancials(ctx context.Context, enterpriseNr string, snap *model.FinancialSnapshot, at time.Time) error {
	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return eris.Wrapf(err, "postgres: marshal financials for %s", enterpriseNr)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET financials = $2, financials_enriched_at = $3, updated_at = now()
		 WHERE enterprise_nr = $1`,
		enterpriseNr, snapJSON, at,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: merge financials %s", enterpriseNr)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: company not found: %s", enterpriseNr)
	}
	return nil
}

const mergeRegistrySQL = `
UPDATE companies SET
	share_capital        = COALESCE(NULLIF($2, ''), share_capital),
	fiscal_year_end      = COALESCE(NULLIF($3, ''), fiscal_year_end),
	annual_meeting_month = COALESCE(NULLIF($4, ''), annual_meeting_month),
	situation_date       = COALESCE(NULLIF($5, ''), situation_date),
	officers             = COALESCE($6, officers),
	related_entities     = COALESCE($7, related_entities),
	qualifications       = COALESCE($8, qualifications),
	historical_nace      = COALESCE($9, historical_nace),
	exceptional_periods  = COALESCE($10, exceptional_periods),
	registry_enriched_at = $11,
	updated_at           = now()
WHERE enterprise_nr = $1`

func (s *PostgresStore) MergeRegistryDetails(ctx context.Context, enterpriseNr string, det *model.RegistryDetails, at time.Time) error {
	if det == nil {
		det = &model.RegistryDetails{}
	}

	// Empty slices become SQL NULL so COALESCE keeps existing values.
	fields := []struct {
		v     any
		empty bool
	}{
		{det.Officers, len(det.Officers) == 0},
		{det.RelatedEntities, len(det.RelatedEntities) == 0},
		{det.Qualifications, len(det.Qualifications) == 0},
		{det.HistoricalNace, len(det.HistoricalNace) == 0},
		{det.ExceptionalPeriods, len(det.ExceptionalPeriods) == 0},
	}
	jsonArgs := make([]any, 0, len(fields))
	for _, f := range fields {
		b, err := marshalNullable(f.v, f.empty)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal registry details for %s", enterpriseNr)
		}
		jsonArgs = append(jsonArgs, b)
	}

	args := append([]any{
		enterpriseNr,
		det.ShareCapital, det.FiscalYearEnd, det.AnnualMeetingMonth, det.SituationDate,
	}, jsonArgs...)
	args = append(args, at)

	tag, err := s.pool.Exec(ctx, mergeRegistrySQL, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: merge registry details %s", enterpriseNr)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: company not found: %s", enterpriseNr)
	}
	return nil
}

func (s *PostgresStore) TouchEnrichment(ctx context.Context, enterpriseNr, source string, at time.Time) error {
	col, err := enrichedAtColumn(source)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET `+col+` = $2, updated_at = now() WHERE enterprise_nr = $1`,
		enterpriseNr, at,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: touch %s for %s", source, enterpriseNr)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: company not found: %s", enterpriseNr)
	}
	return nil
}

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

// enrichedAtColumn maps an enrichment source to its timestamp column.
// Column names are fixed here, never interpolated from input.
func enrichedAtColumn(source string) (string, error) {
	switch source {
	case model.SourceFinancials:
		return "financials_enriched_at", nil
	case model.SourceRegistryDetail:
		return "registry_enriched_at", nil
	default:
		return "", eris.Errorf("postgres: unknown enrichment source %q", source)
	}
}

// marshalNullable marshals a slice, mapping empty to SQL NULL.
func marshalNullable(v any, empty bool) ([]byte, error) {
	if empty {
		return nil, nil
	}
	return json.Marshal(v)
}
