package store

// postgresMigration is the idempotent schema for the record store. One
// logical table keyed by the normalized enterprise number; composite
// attributes live in JSONB documents.
const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	enterprise_nr        TEXT PRIMARY KEY,
	name                 TEXT NOT NULL,
	slug                 TEXT NOT NULL,
	names                JSONB NOT NULL DEFAULT '{}',
	legal_form           TEXT NOT NULL DEFAULT '',
	status               TEXT NOT NULL DEFAULT 'active',
	situation            TEXT NOT NULL DEFAULT 'normal',
	start_date           TEXT NOT NULL DEFAULT '',
	address              JSONB,
	contact              JSONB NOT NULL DEFAULT '{}',
	nace_codes           TEXT[] NOT NULL DEFAULT '{}',
	main_nace            TEXT NOT NULL DEFAULT '',
	branch_count         INTEGER NOT NULL DEFAULT 0,
	financials           JSONB,
	share_capital        TEXT NOT NULL DEFAULT '',
	fiscal_year_end      TEXT NOT NULL DEFAULT '',
	annual_meeting_month TEXT NOT NULL DEFAULT '',
	situation_date       TEXT NOT NULL DEFAULT '',
	officers             JSONB,
	related_entities     JSONB,
	qualifications       JSONB,
	historical_nace      JSONB,
	exceptional_periods  JSONB,
	financials_enriched_at TIMESTAMPTZ,
	registry_enriched_at   TIMESTAMPTZ,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_companies_slug ON companies (slug);
CREATE INDEX IF NOT EXISTS idx_companies_financials_enriched_at
	ON companies (financials_enriched_at NULLS FIRST);
CREATE INDEX IF NOT EXISTS idx_companies_registry_enriched_at
	ON companies (registry_enriched_at NULLS FIRST);
`
