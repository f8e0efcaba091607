package repositories

import (
	"database/sql"

	"authpanel/internal/models"
)

type OAuthAccountRepository interface {
	GetByProvider(provider, providerAccountID string) (*models.OAuthAccount, error)
	Link(userID int64, provider, providerAccountID string) (*models.OAuthAccount, error)
	ListByUser(userID int64) ([]*models.OAuthAccount, error)
}

type oauthAccountRepository struct {
	DB *sql.DB
}

func NewOAuthAccountRepository(db *sql.DB) OAuthAccountRepository {
	return &oauthAccountRepository{DB: db}
}

func (r *oauthAccountRepository) GetByProvider(provider, providerAccountID string) (*models.OAuthAccount, error) {
	const q = `
		SELECT id, user_id, provider, provider_account_id, created_at
		FROM oauth_accounts
		WHERE provider = $1 AND provider_account_id = $2
	`
	a := &models.OAuthAccount{}
	err := r.DB.QueryRow(q, provider, providerAccountID).Scan(
		&a.ID, &a.UserID, &a.Provider, &a.ProviderAccountID, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *oauthAccountRepository) Link(userID int64, provider, providerAccountID string) (*models.OAuthAccount, error) {
	const q = `
		INSERT INTO oauth_accounts (user_id, provider, provider_account_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider, provider_account_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, created_at
	`
	a := &models.OAuthAccount{
		UserID:            userID,
		Provider:          provider,
		ProviderAccountID: providerAccountID,
	}
	if err := r.DB.QueryRow(q, userID, provider, providerAccountID).Scan(&a.ID, &a.CreatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *oauthAccountRepository) ListByUser(userID int64) ([]*models.OAuthAccount, error) {
	const q = `
		SELECT id, user_id, provider, provider_account_id, created_at
		FROM oauth_accounts
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := r.DB.Query(q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*models.OAuthAccount
	for rows.Next() {
		a := &models.OAuthAccount{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.Provider, &a.ProviderAccountID, &a.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}
