package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelsignal/leadgen-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_GetLead_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM leads WHERE id = \$1`).
		WithArgs("missing-lead").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetLead(context.Background(), "missing-lead")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindOpenLead_NoMatch(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM leads`).
		WithArgs("abc cement", "some text", "Rejected", "Converted").
		WillReturnError(pgx.ErrNoRows)

	lead, err := s.FindOpenLead(context.Background(), "abc cement", "some text")
	require.NoError(t, err)
	assert.Nil(t, lead)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateLeadStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE leads SET status = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs("Accepted", pgxmock.AnyArg(), "missing-lead").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateLeadStatus(context.Background(), "missing-lead", model.StatusAccepted, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateLeadStatus_WithOfficer(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	officerID := int64(7)
	mock.ExpectExec(`UPDATE leads SET status = \$1, officer_id = \$2, updated_at = \$3 WHERE id = \$4`).
		WithArgs("Assigned", officerID, pgxmock.AnyArg(), "lead-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateLeadStatus(context.Background(), "lead-1", model.StatusAssigned, &officerID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveWeights_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO scoring_weights .+ ON CONFLICT \(industry, term\) DO UPDATE`).
		WithArgs("Cement", "tender", 1.3, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveWeights(context.Background(), []model.WeightEntry{
		{Industry: "Cement", Term: "tender", Multiplier: 1.3},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadWeights(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"industry", "term", "multiplier"}).
		AddRow("Cement", "petcoke", 1.6).
		AddRow("Marine", "bunker", 0.9)
	mock.ExpectQuery(`SELECT industry, term, multiplier FROM scoring_weights`).
		WillReturnRows(rows)

	entries, err := s.LoadWeights(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.WeightEntry{Industry: "Cement", Term: "petcoke", Multiplier: 1.6}, entries[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadModel_Missing(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT data FROM models WHERE name = \$1`).
		WithArgs("propensity").
		WillReturnError(pgx.ErrNoRows)

	data, err := s.LoadModel(context.Background(), "propensity")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetOfficer_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, name, phone, email, region, active FROM officers WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetOfficer(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListFeedback_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"id", "lead_id", "outcome", "officer_id", "notes", "features", "created_at"})
	mock.ExpectQuery(`SELECT id, lead_id, outcome, officer_id, notes, features, created_at`).
		WillReturnRows(rows)

	events, err := s.ListFeedback(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}
