package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/fuelsignal/leadgen-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
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
	fingerprint  TEXT NOT NULL,
	products     TEXT NOT NULL,
	clues        TEXT,
	actions      TEXT,
	score        REAL NOT NULL,
	confidence   REAL NOT NULL,
	priority     TEXT NOT NULL,
	propensity   REAL,
	status       TEXT NOT NULL DEFAULT 'New',
	officer_id   INTEGER REFERENCES officers(id),
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS company_aliases (
	company_key TEXT NOT NULL,
	alias       TEXT NOT NULL,
	created_at  DATETIME NOT NULL,
	PRIMARY KEY (company_key, alias)
);

CREATE TABLE IF NOT EXISTS scoring_weights (
	industry   TEXT NOT NULL,
	term       TEXT NOT NULL,
	multiplier REAL NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (industry, term)
);

CREATE TABLE IF NOT EXISTS feedback_events (
	id         TEXT PRIMARY KEY,
	lead_id    TEXT NOT NULL REFERENCES leads(id),
	outcome    TEXT NOT NULL,
	officer_id INTEGER,
	notes      TEXT,
	features   TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	seq        INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS officers (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	name   TEXT NOT NULL,
	phone  TEXT,
	email  TEXT,
	region TEXT,
	active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	officer_id INTEGER,
	channel    TEXT NOT NULL,
	type       TEXT NOT NULL,
	title      TEXT NOT NULL,
	body       TEXT NOT NULL,
	lead_id    TEXT,
	sent_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS models (
	name       TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_priority ON leads(priority);
CREATE INDEX IF NOT EXISTS idx_leads_company_key ON leads(company_key);
CREATE INDEX IF NOT EXISTS idx_feedback_events_seq ON feedback_events(seq);
CREATE INDEX IF NOT EXISTS idx_notifications_officer ON notifications(officer_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const leadColumns = `id, company_key, company_name, industry, source, source_url, raw_text, summary,
	intent_score, fingerprint, products, clues, actions, score, confidence, priority, propensity,
	status, officer_id, created_at, updated_at`

func (s *SQLiteStore) CreateLead(ctx context.Context, lead *model.Lead) error {
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
		return eris.Wrap(err, "sqlite: marshal fingerprint")
	}
	productsJSON, err := json.Marshal(lead.Products)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal products")
	}
	cluesJSON, err := json.Marshal(lead.Clues)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal clues")
	}
	actionsJSON, err := json.Marshal(lead.Actions)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal actions")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leads (`+leadColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.CompanyKey, lead.CompanyName, lead.Industry, lead.Source, lead.SourceURL,
		lead.RawText, lead.Summary, lead.IntentScore, string(fpJSON), string(productsJSON),
		string(cluesJSON), string(actionsJSON), lead.Score, lead.Confidence, string(lead.Priority),
		lead.Propensity, string(lead.Status), lead.OfficerID, now, now,
	)
	return eris.Wrap(err, "sqlite: insert lead")
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = ?`, id,
	)
	lead, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "lead %s", id)
	}
	return lead, err
}

func (s *SQLiteStore) FindOpenLead(ctx context.Context, companyKey, rawText string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads
		 WHERE company_key = ? AND raw_text = ? AND status NOT IN (?, ?)
		 ORDER BY created_at DESC LIMIT 1`,
		companyKey, rawText, string(model.StatusRejected), string(model.StatusConverted),
	)
	lead, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return lead, err
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Priority != "" {
		query += ` AND priority = ?`
		args = append(args, string(filter.Priority))
	}
	if filter.CompanyKey != "" {
		query += ` AND company_key = ?`
		args = append(args, filter.CompanyKey)
	}
	if filter.MinScore > 0 {
		query += ` AND score >= ?`
		args = append(args, filter.MinScore)
	}
	query += ` ORDER BY score DESC, created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) UpdateLeadStatus(ctx context.Context, id string, status model.LeadStatus, officerID *int64) error {
	var res sql.Result
	var err error
	if officerID != nil {
		res, err = s.db.ExecContext(ctx,
			`UPDATE leads SET status = ?, officer_id = ?, updated_at = ? WHERE id = ?`,
			string(status), *officerID, time.Now().UTC(), id,
		)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE leads SET status = ?, updated_at = ? WHERE id = ?`,
			string(status), time.Now().UTC(), id,
		)
	}
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead status %s", id)
	}
	return checkRowsAffected(res, "lead", id)
}

func (s *SQLiteStore) UpdateLeadScore(ctx context.Context, id string, score, confidence float64, priority model.Priority, propensity *float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET score = ?, confidence = ?, priority = ?, propensity = ?, updated_at = ? WHERE id = ?`,
		score, confidence, string(priority), propensity, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead score %s", id)
	}
	return checkRowsAffected(res, "lead", id)
}

func (s *SQLiteStore) UpsertCompanyAlias(ctx context.Context, companyKey, alias string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO company_aliases (company_key, alias, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (company_key, alias) DO NOTHING`,
		companyKey, alias, time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: upsert company alias")
}

func (s *SQLiteStore) GetCompanyAliases(ctx context.Context, companyKey string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT alias FROM company_aliases WHERE company_key = ? ORDER BY alias`,
		companyKey,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get company aliases")
	}
	defer rows.Close()

	var aliases []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan alias")
		}
		aliases = append(aliases, a)
	}
	return aliases, eris.Wrap(rows.Err(), "sqlite: aliases iterate")
}

func (s *SQLiteStore) SaveWeights(ctx context.Context, entries []model.WeightEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save weights")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, e := range entries {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO scoring_weights (industry, term, multiplier, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT (industry, term) DO UPDATE SET multiplier = excluded.multiplier, updated_at = excluded.updated_at`,
			e.Industry, e.Term, e.Multiplier, now,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: save weight %s/%s", e.Industry, e.Term)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit save weights")
}

func (s *SQLiteStore) LoadWeights(ctx context.Context) ([]model.WeightEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT industry, term, multiplier FROM scoring_weights ORDER BY industry, term`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load weights")
	}
	defer rows.Close()

	var entries []model.WeightEntry
	for rows.Next() {
		var e model.WeightEntry
		if err := rows.Scan(&e.Industry, &e.Term, &e.Multiplier); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan weight")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: weights iterate")
}

func (s *SQLiteStore) AppendFeedback(ctx context.Context, event *model.FeedbackEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	featuresJSON, err := json.Marshal(event.Features)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal features")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO feedback_events (id, lead_id, outcome, officer_id, notes, features, created_at, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?,
		   (SELECT COALESCE(MAX(seq), 0) + 1 FROM feedback_events))`,
		event.ID, event.LeadID, string(event.Outcome), event.OfficerID, event.Notes,
		string(featuresJSON), event.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: append feedback")
}

func (s *SQLiteStore) ListFeedback(ctx context.Context) ([]model.FeedbackEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lead_id, outcome, officer_id, notes, features, created_at
		 FROM feedback_events ORDER BY seq`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list feedback")
	}
	defer rows.Close()

	var events []model.FeedbackEvent
	for rows.Next() {
		var ev model.FeedbackEvent
		var notes sql.NullString
		var featuresJSON string
		if err := rows.Scan(&ev.ID, &ev.LeadID, &ev.Outcome, &ev.OfficerID, &notes, &featuresJSON, &ev.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan feedback")
		}
		ev.Notes = notes.String
		if err := json.Unmarshal([]byte(featuresJSON), &ev.Features); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal features")
		}
		events = append(events, ev)
	}
	return events, eris.Wrap(rows.Err(), "sqlite: feedback iterate")
}

func (s *SQLiteStore) CreateOfficer(ctx context.Context, officer *model.Officer) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO officers (name, phone, email, region, active) VALUES (?, ?, ?, ?, ?)`,
		officer.Name, officer.Phone, officer.Email, officer.Region, officer.Active,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert officer")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return eris.Wrap(err, "sqlite: officer id")
	}
	officer.ID = id
	return nil
}

func (s *SQLiteStore) GetOfficer(ctx context.Context, id int64) (*model.Officer, error) {
	var o model.Officer
	var phone, email, region sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, phone, email, region, active FROM officers WHERE id = ?`, id,
	).Scan(&o.ID, &o.Name, &phone, &email, &region, &o.Active)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "officer %d", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get officer")
	}
	o.Phone, o.Email, o.Region = phone.String, email.String, region.String
	return &o, nil
}

func (s *SQLiteStore) ListOfficers(ctx context.Context, activeOnly bool) ([]model.Officer, error) {
	query := `SELECT id, name, phone, email, region, active FROM officers`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list officers")
	}
	defer rows.Close()

	var officers []model.Officer
	for rows.Next() {
		var o model.Officer
		var phone, email, region sql.NullString
		if err := rows.Scan(&o.ID, &o.Name, &phone, &email, &region, &o.Active); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan officer")
		}
		o.Phone, o.Email, o.Region = phone.String, email.String, region.String
		officers = append(officers, o)
	}
	return officers, eris.Wrap(rows.Err(), "sqlite: officers iterate")
}

func (s *SQLiteStore) LogNotification(ctx context.Context, n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.SentAt.IsZero() {
		n.SentAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, officer_id, channel, type, title, body, lead_id, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.OfficerID, n.Channel, n.Type, n.Title, n.Body, n.LeadID, n.SentAt,
	)
	return eris.Wrap(err, "sqlite: log notification")
}

func (s *SQLiteStore) ListNotifications(ctx context.Context, officerID *int64, limit int) ([]model.Notification, error) {
	query := `SELECT id, officer_id, channel, type, title, body, lead_id, sent_at FROM notifications`
	var args []any
	if officerID != nil {
		query += ` WHERE officer_id = ?`
		args = append(args, *officerID)
	}
	query += ` ORDER BY sent_at DESC LIMIT ?`
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list notifications")
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		var leadID sql.NullString
		if err := rows.Scan(&n.ID, &n.OfficerID, &n.Channel, &n.Type, &n.Title, &n.Body, &leadID, &n.SentAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan notification")
		}
		n.LeadID = leadID.String
		out = append(out, n)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: notifications iterate")
}

func (s *SQLiteStore) SaveModel(ctx context.Context, name string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO models (name, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		name, data, time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: save model")
}

func (s *SQLiteStore) LoadModel(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM models WHERE name = ?`, name,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load model")
	}
	return data, nil
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLead(row scannable) (*model.Lead, error) {
	var l model.Lead
	var sourceURL, summary, clues, actions sql.NullString
	var fpJSON, productsJSON string

	err := row.Scan(&l.ID, &l.CompanyKey, &l.CompanyName, &l.Industry, &l.Source, &sourceURL,
		&l.RawText, &summary, &l.IntentScore, &fpJSON, &productsJSON, &clues, &actions,
		&l.Score, &l.Confidence, &l.Priority, &l.Propensity, &l.Status, &l.OfficerID,
		&l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan lead")
	}

	l.SourceURL = sourceURL.String
	l.Summary = summary.String
	if err := json.Unmarshal([]byte(fpJSON), &l.Fingerprint); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal fingerprint")
	}
	if err := json.Unmarshal([]byte(productsJSON), &l.Products); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal products")
	}
	if clues.Valid && clues.String != "" {
		if err := json.Unmarshal([]byte(clues.String), &l.Clues); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal clues")
		}
	}
	if actions.Valid && actions.String != "" {
		if err := json.Unmarshal([]byte(actions.String), &l.Actions); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal actions")
		}
	}
	return &l, nil
}
