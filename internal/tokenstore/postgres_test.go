package tokenstore

import (
	"context"
	"errors"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var tokenColumns = []string{
	"id", "account", "access_token", "refresh_token", "token_uri",
	"client_id", "client_secret", "scopes", "expires_at", "created_at",
}

const (
	latestTokenQuery = `SELECT * FROM "google_tokens" WHERE account = $1 ORDER BY created_at DESC, id DESC`
	insertTokenQuery = `INSERT INTO "google_tokens" ("account","access_token","refresh_token","token_uri","client_id","client_secret","scopes","expires_at","created_at") VALUES`
)

// newMockStore returns a PostgresStore backed by sqlmock. The schema is
// not migrated.
func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	mock.ExpectPing()
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return &PostgresStore{db: gdb}, mock
}

func TestGoogleToken_TableName(t *testing.T) {
	assert.Equal(t, "google_tokens", GoogleToken{}.TableName())
}

func TestGoogleToken_Conversion(t *testing.T) {
	creds := testCredentials()

	row := newGoogleToken("work", creds)
	assert.Equal(t, "work", row.Account)
	assert.Equal(t, "https://www.googleapis.com/auth/drive,https://www.googleapis.com/auth/spreadsheets", row.Scopes)
	require.NotNil(t, row.ExpiresAt)

	back := row.Credentials()
	assert.Equal(t, creds.AccessToken, back.AccessToken)
	assert.Equal(t, creds.RefreshToken, back.RefreshToken)
	assert.Equal(t, creds.TokenURI, back.TokenURI)
	assert.Equal(t, creds.ClientID, back.ClientID)
	assert.Equal(t, creds.ClientSecret, back.ClientSecret)
	assert.Equal(t, creds.Scopes, back.Scopes)
	assert.True(t, creds.Expiry.Equal(*back.Expiry))
}

func TestGoogleToken_NoExpiry(t *testing.T) {
	creds := testCredentials()
	creds.Expiry = nil

	row := newGoogleToken("work", creds)
	assert.Nil(t, row.ExpiresAt)
	assert.Nil(t, row.Credentials().Expiry)
}

func TestPostgresStore_LatestNewestRow(t *testing.T) {
	store, mock := newMockStore(t)

	expires := time.Date(2030, 1, 2, 4, 4, 5, 0, time.FixedZone("CET", 3600))
	mock.ExpectQuery(regexp.QuoteMeta(latestTokenQuery)).
		WithArgs("work", 1).
		WillReturnRows(sqlmock.NewRows(tokenColumns).
			AddRow(7, "work", "access-2", "refresh", "https://oauth2.googleapis.com/token",
				"client", "secret", "https://www.googleapis.com/auth/drive, https://www.googleapis.com/auth/spreadsheets",
				expires, time.Now()))

	got, err := store.Latest(context.Background(), "work")
	require.NoError(t, err)
	assert.Equal(t, "access-2", got.AccessToken)
	assert.Equal(t, "client", got.ClientID)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/drive", "https://www.googleapis.com/auth/spreadsheets"}, got.Scopes)
	require.NotNil(t, got.Expiry)
	assert.Equal(t, time.UTC, got.Expiry.Location())
	assert.True(t, expires.Equal(*got.Expiry))
}

func TestPostgresStore_LatestNoRows(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(latestTokenQuery)).
		WithArgs("work", 1).
		WillReturnRows(sqlmock.NewRows(tokenColumns))

	_, err := store.Latest(context.Background(), "work")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestPostgresStore_LatestQueryError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(latestTokenQuery)).
		WillReturnError(errors.New("connection reset"))

	_, err := store.Latest(context.Background(), "work")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoToken))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestPostgresStore_SaveInsertsRow(t *testing.T) {
	store, mock := newMockStore(t)
	creds := testCredentials()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertTokenQuery)).
		WithArgs("work", creds.AccessToken, creds.RefreshToken, creds.TokenURI,
			creds.ClientID, creds.ClientSecret,
			"https://www.googleapis.com/auth/drive,https://www.googleapis.com/auth/spreadsheets",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	require.NoError(t, store.Save(context.Background(), "work", creds))
}

func TestPostgresStore_SaveError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertTokenQuery)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.Save(context.Background(), "work", testCredentials())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save token for account work")
}

func TestPostgresStore_RejectsBadAccount(t *testing.T) {
	store, _ := newMockStore(t)

	_, err := store.Latest(context.Background(), "../escape")
	assert.Error(t, err)
	assert.Error(t, store.Save(context.Background(), "bad name", testCredentials()))
}

func TestPostgresStore_Ping(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectPing()
	require.NoError(t, Ping(context.Background(), store))

	mock.ExpectPing().WillReturnError(errors.New("down"))
	assert.Error(t, Ping(context.Background(), store))
}

// TestPostgresStore runs against a real database when
// GDRIVEHELPER_TEST_DATABASE_URL is set.
func TestPostgresStore(t *testing.T) {
	url := os.Getenv("GDRIVEHELPER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("GDRIVEHELPER_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := OpenPostgres(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.db.Where("account = ?", "gdrivehelper-test").Delete(&GoogleToken{})
		store.Close()
	})

	_, err = store.Latest(ctx, "gdrivehelper-test")
	assert.True(t, errors.Is(err, ErrNoToken))

	require.NoError(t, store.Save(ctx, "gdrivehelper-test", testCredentials()))
	refreshed := testCredentials()
	refreshed.AccessToken = "access-2"
	require.NoError(t, store.Save(ctx, "gdrivehelper-test", refreshed))

	got, err := store.Latest(ctx, "gdrivehelper-test")
	require.NoError(t, err)
	assert.Equal(t, "access-2", got.AccessToken)
}
