package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/teemow/gdrivehelper/pkg/google"
)

// GoogleToken is one saved credential. Rows are never updated; a refresh
// inserts a new row.
type GoogleToken struct {
	ID           uint       `gorm:"primaryKey"`
	Account      string     `gorm:"type:text;not null;index:idx_google_tokens_account_created,priority:1"`
	AccessToken  string     `gorm:"type:text;not null"`
	RefreshToken string     `gorm:"type:text"`
	TokenURI     string     `gorm:"type:text"`
	ClientID     string     `gorm:"type:text"`
	ClientSecret string     `gorm:"type:text"`
	Scopes       string     `gorm:"type:text"`
	ExpiresAt    *time.Time `gorm:"type:timestamptz"`
	CreatedAt    time.Time  `gorm:"not null;index:idx_google_tokens_account_created,priority:2"`
}

func (GoogleToken) TableName() string { return "google_tokens" }

func newGoogleToken(account string, creds *google.Credentials) *GoogleToken {
	exported := google.ExportCredentials(creds)
	return &GoogleToken{
		Account:      account,
		AccessToken:  exported.AccessToken,
		RefreshToken: exported.RefreshToken,
		TokenURI:     exported.TokenURI,
		ClientID:     exported.ClientID,
		ClientSecret: exported.ClientSecret,
		Scopes:       strings.Join(exported.Scopes, ","),
		ExpiresAt:    exported.Expiry,
	}
}

// Credentials converts the row back into credentials.
func (t *GoogleToken) Credentials() *google.Credentials {
	var scopes []string
	for _, s := range strings.Split(t.Scopes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	creds := &google.Credentials{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenURI:     t.TokenURI,
		ClientID:     t.ClientID,
		ClientSecret: t.ClientSecret,
		Scopes:       scopes,
	}
	if t.ExpiresAt != nil {
		e := t.ExpiresAt.UTC()
		creds.Expiry = &e
	}
	return creds
}

// PostgresStore keeps credentials in the google_tokens table.
type PostgresStore struct {
	db *gorm.DB
}

// OpenPostgres connects to databaseURL and migrates the google_tokens table.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to token database: %w", err)
	}

	store, err := NewPostgresStore(ctx, db)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, err
	}
	return store, nil
}

// NewPostgresStore uses an existing connection and migrates the schema.
func NewPostgresStore(ctx context.Context, db *gorm.DB) (*PostgresStore, error) {
	if err := db.WithContext(ctx).AutoMigrate(&GoogleToken{}); err != nil {
		return nil, fmt.Errorf("failed to migrate google_tokens: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Latest(ctx context.Context, account string) (*google.Credentials, error) {
	if err := ValidateAccountName(account); err != nil {
		return nil, err
	}

	var token GoogleToken
	err := s.db.WithContext(ctx).
		Where("account = ?", account).
		Order("created_at DESC, id DESC").
		First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w for account %s", ErrNoToken, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token for account %s: %w", account, err)
	}
	return token.Credentials(), nil
}

func (s *PostgresStore) Save(ctx context.Context, account string, creds *google.Credentials) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(newGoogleToken(account, creds)).Error; err != nil {
		return fmt.Errorf("failed to save token for account %s: %w", account, err)
	}
	return nil
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
