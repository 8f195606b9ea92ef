package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/fuelsignal/leadgen-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it in
// tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
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

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY,
	company_key  TEXT NOT NULL,
	company_name TEXT NOT NULL,
	industry     TEXT NOT NULL DEFAULT 'Unknown',
	source       TEXT NOT NULL,
	source_url   TEXT,
	raw_text     TEXT NOT NULL,
	summary      TEXT,
	intent_score INTEGER NOT NULL DEFAULT 0,
	fingerprint  JSONB NOT NULL,
	products     JSONB NOT NULL,
	clues        JSONB,
	actions      JSONB,
	score        DOUBLE PRECISION NOT NULL,
	confidence   DOUBLE PRECISION NOT NULL,
	priority     TEXT NOT NULL,
	propensity   DOUBLE PRECISION,
	status       TEXT NOT NULL DEFAULT 'New',
	officer_id   BIGINT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS company_aliases (
	company_key TEXT NOT NULL,
	alias       TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (company_key, alias)
);

CREATE TABLE IF NOT EXISTS scoring_weights (
	industry   TEXT NOT NULL,
	term       TEXT NOT NULL,
	multiplier DOUBLE PRECISION NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (industry, term)
);

CREATE TABLE IF NOT EXISTS feedback_events (
	id         TEXT PRIMARY KEY,
	lead_id    TEXT NOT NULL REFERENCES leads(id),
	outcome    TEXT NOT NULL,
	officer_id BIGINT,
	notes      TEXT,
	features   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	seq        BIGSERIAL
);

CREATE TABLE IF NOT EXISTS officers (
	id     BIGSERIAL PRIMARY KEY,
	name   TEXT NOT NULL,
	phone  TEXT,
	email  TEXT,
	region TEXT,
	active BOOLEAN NOT NULL DEFAULT true
);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	officer_id BIGINT,
	channel    TEXT NOT NULL,
	type       TEXT NOT NULL,
	title      TEXT NOT NULL,
	body       TEXT NOT NULL,
	lead_id    TEXT,
	sent_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS models (
	name       TEXT PRIMARY KEY,
	data       BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_priority ON leads(priority);
CREATE INDEX IF NOT EXISTS idx_leads_company_key ON leads(company_key);
CREATE INDEX IF NOT EXISTS idx_feedback_events_seq ON feedback_events(seq);
CREATE INDEX IF NOT EXISTS idx_notifications_officer ON notifications(officer_id);
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

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) CreateLead(ctx context.Context, lead *model.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	if lead.Status == "" {
		lead.Status = model.StatusNew
	}

	fpJSON, err := json.Marshal(lead.Fingerprint)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal fingerprint")
	}
	productsJSON, err := json.Marshal(lead.Products)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal products")
	}
	cluesJSON, err := json.Marshal(lead.Clues)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal clues")
	}
	actionsJSON, err := json.Marshal(lead.Actions)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal actions")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO leads (id, company_key, company_name, industry, source, source_url, raw_text, summary,
		   intent_score, fingerprint, products, clues, actions, score, confidence, priority, propensity,
		   status, officer_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		lead.ID, lead.CompanyKey, lead.CompanyName, lead.Industry, lead.Source, lead.SourceURL,
		lead.RawText, lead.Summary, lead.IntentScore, fpJSON, productsJSON, cluesJSON, actionsJSON,
		lead.Score, lead.Confidence, string(lead.Priority), lead.Propensity, string(lead.Status),
		lead.OfficerID, now, now,
	)
	return eris.Wrap(err, "postgres: insert lead")
}

const pgLeadColumns = `id, company_key, company_name, industry, source, source_url, raw_text, summary,
	intent_score, fingerprint, products, clues, actions, score, confidence, priority, propensity,
	status, officer_id, created_at, updated_at`

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pgLeadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanPgLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "lead %s", id)
	}
	return lead, err
}

func (s *PostgresStore) FindOpenLead(ctx context.Context, companyKey, rawText string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgLeadColumns+` FROM leads
		 WHERE company_key = $1 AND raw_text = $2 AND status NOT IN ($3, $4)
		 ORDER BY created_at DESC LIMIT 1`,
		companyKey, rawText, string(model.StatusRejected), string(model.StatusConverted),
	)
	lead, err := scanPgLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return lead, err
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT ` + pgLeadColumns + ` FROM leads WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Priority != "" {
		query += fmt.Sprintf(` AND priority = $%d`, argIdx)
		args = append(args, string(filter.Priority))
		argIdx++
	}
	if filter.CompanyKey != "" {
		query += fmt.Sprintf(` AND company_key = $%d`, argIdx)
		args = append(args, filter.CompanyKey)
		argIdx++
	}
	if filter.MinScore > 0 {
		query += fmt.Sprintf(` AND score >= $%d`, argIdx)
		args = append(args, filter.MinScore)
		argIdx++
	}
	query += ` ORDER BY score DESC, created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		l, err := scanPgLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) UpdateLeadStatus(ctx context.Context, id string, status model.LeadStatus, officerID *int64) error {
	var tag pgconn.CommandTag
	var err error
	if officerID != nil {
		tag, err = s.pool.Exec(ctx,
			`UPDATE leads SET status = $1, officer_id = $2, updated_at = $3 WHERE id = $4`,
			string(status), *officerID, time.Now().UTC(), id,
		)
	} else {
		tag, err = s.pool.Exec(ctx,
			`UPDATE leads SET status = $1, updated_at = $2 WHERE id = $3`,
			string(status), time.Now().UTC(), id,
		)
	}
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "lead %s", id)
	}
	return nil
}

func (s *PostgresStore) UpdateLeadScore(ctx context.Context, id string, score, confidence float64, priority model.Priority, propensity *float64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET score = $1, confidence = $2, priority = $3, propensity = $4, updated_at = $5 WHERE id = $6`,
		score, confidence, string(priority), propensity, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead score %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "lead %s", id)
	}
	return nil
}

func (s *PostgresStore) UpsertCompanyAlias(ctx context.Context, companyKey, alias string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO company_aliases (company_key, alias, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (company_key, alias) DO NOTHING`,
		companyKey, alias, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: upsert company alias")
}

func (s *PostgresStore) GetCompanyAliases(ctx context.Context, companyKey string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT alias FROM company_aliases WHERE company_key = $1 ORDER BY alias`,
		companyKey,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get company aliases")
	}
	defer rows.Close()

	var aliases []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, eris.Wrap(err, "postgres: scan alias")
		}
		aliases = append(aliases, a)
	}
	return aliases, eris.Wrap(rows.Err(), "postgres: aliases iterate")
}

func (s *PostgresStore) SaveWeights(ctx context.Context, entries []model.WeightEntry) error {
	now := time.Now().UTC()
	for _, e := range entries {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO scoring_weights (industry, term, multiplier, updated_at) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (industry, term) DO UPDATE SET multiplier = $3, updated_at = $4`,
			e.Industry, e.Term, e.Multiplier, now,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: save weight %s/%s", e.Industry, e.Term)
		}
	}
	return nil
}

func (s *PostgresStore) LoadWeights(ctx context.Context) ([]model.WeightEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT industry, term, multiplier FROM scoring_weights ORDER BY industry, term`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load weights")
	}
	defer rows.Close()

	var entries []model.WeightEntry
	for rows.Next() {
		var e model.WeightEntry
		if err := rows.Scan(&e.Industry, &e.Term, &e.Multiplier); err != nil {
			return nil, eris.Wrap(err, "postgres: scan weight")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: weights iterate")
}

func (s *PostgresStore) AppendFeedback(ctx context.Context, event *model.FeedbackEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	featuresJSON, err := json.Marshal(event.Features)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal features")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO feedback_events (id, lead_id, outcome, officer_id, notes, features, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.LeadID, string(event.Outcome), event.OfficerID, event.Notes,
		featuresJSON, event.CreatedAt,
	)
	return eris.Wrap(err, "postgres: append feedback")
}

func (s *PostgresStore) ListFeedback(ctx context.Context) ([]model.FeedbackEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, lead_id, outcome, officer_id, notes, features, created_at
		 FROM feedback_events ORDER BY seq`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list feedback")
	}
	defer rows.Close()

	var events []model.FeedbackEvent
	for rows.Next() {
		var ev model.FeedbackEvent
		var notes *string
		var featuresJSON []byte
		if err := rows.Scan(&ev.ID, &ev.LeadID, &ev.Outcome, &ev.OfficerID, &notes, &featuresJSON, &ev.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan feedback")
		}
		if notes != nil {
			ev.Notes = *notes
		}
		if err := json.Unmarshal(featuresJSON, &ev.Features); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal features")
		}
		events = append(events, ev)
	}
	return events, eris.Wrap(rows.Err(), "postgres: feedback iterate")
}

func (s *PostgresStore) CreateOfficer(ctx context.Context, officer *model.Officer) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO officers (name, phone, email, region, active) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		officer.Name, officer.Phone, officer.Email, officer.Region, officer.Active,
	).Scan(&officer.ID)
	return eris.Wrap(err, "postgres: insert officer")
}

func (s *PostgresStore) GetOfficer(ctx context.Context, id int64) (*model.Officer, error) {
	var o model.Officer
	var phone, email, region *string
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, phone, email, region, active FROM officers WHERE id = $1`, id,
	).Scan(&o.ID, &o.Name, &phone, &email, &region, &o.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "officer %d", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get officer")
	}
	o.Phone, o.Email, o.Region = deref(phone), deref(email), deref(region)
	return &o, nil
}

func (s *PostgresStore) ListOfficers(ctx context.Context, activeOnly bool) ([]model.Officer, error) {
	query := `SELECT id, name, phone, email, region, active FROM officers`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list officers")
	}
	defer rows.Close()

	var officers []model.Officer
	for rows.Next() {
		var o model.Officer
		var phone, email, region *string
		if err := rows.Scan(&o.ID, &o.Name, &phone, &email, &region, &o.Active); err != nil {
			return nil, eris.Wrap(err, "postgres: scan officer")
		}
		o.Phone, o.Email, o.Region = deref(phone), deref(email), deref(region)
		officers = append(officers, o)
	}
	return officers, eris.Wrap(rows.Err(), "postgres: officers iterate")
}

func (s *PostgresStore) LogNotification(ctx context.Context, n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.SentAt.IsZero() {
		n.SentAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO notifications (id, officer_id, channel, type, title, body, lead_id, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.OfficerID, n.Channel, n.Type, n.Title, n.Body, n.LeadID, n.SentAt,
	)
	return eris.Wrap(err, "postgres: log notification")
}

func (s *PostgresStore) ListNotifications(ctx context.Context, officerID *int64, limit int) ([]model.Notification, error) {
	query := `SELECT id, officer_id, channel, type, title, body, lead_id, sent_at FROM notifications`
	args := []any{}
	argIdx := 1
	if officerID != nil {
		query += fmt.Sprintf(` WHERE officer_id = $%d`, argIdx)
		args = append(args, *officerID)
		argIdx++
	}
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(` ORDER BY sent_at DESC LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list notifications")
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		var leadID *string
		if err := rows.Scan(&n.ID, &n.OfficerID, &n.Channel, &n.Type, &n.Title, &n.Body, &leadID, &n.SentAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan notification")
		}
		n.LeadID = deref(leadID)
		out = append(out, n)
	}
	return out, eris.Wrap(rows.Err(), "postgres: notifications iterate")
}

func (s *PostgresStore) SaveModel(ctx context.Context, name string, data []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO models (name, data, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE SET data = $2, updated_at = $3`,
		name, data, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: save model")
}

func (s *PostgresStore) LoadModel(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM models WHERE name = $1`, name,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load model")
	}
	return data, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func scanPgLead(row pgx.Row) (*model.Lead, error) {
	var l model.Lead
	var sourceURL, summary *string
	var fpJSON, productsJSON []byte
	var cluesJSON, actionsJSON []byte

	err := row.Scan(&l.ID, &l.CompanyKey, &l.CompanyName, &l.Industry, &l.Source, &sourceURL,
		&l.RawText, &summary, &l.IntentScore, &fpJSON, &productsJSON, &cluesJSON, &actionsJSON,
		&l.Score, &l.Confidence, &l.Priority, &l.Propensity, &l.Status, &l.OfficerID,
		&l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan lead")
	}

	l.SourceURL = deref(sourceURL)
	l.Summary = deref(summary)
	if err := json.Unmarshal(fpJSON, &l.Fingerprint); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal fingerprint")
	}
	if err := json.Unmarshal(productsJSON, &l.Products); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal products")
	}
	if len(cluesJSON) > 0 {
		if err := json.Unmarshal(cluesJSON, &l.Clues); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal clues")
		}
	}
	if len(actionsJSON) > 0 {
		if err := json.Unmarshal(actionsJSON, &l.Actions); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal actions")
		}
	}
	return &l, nil
}
