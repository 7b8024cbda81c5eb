package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/johnrirwin/newsfeed/internal/models"
)

// PostgresStore keeps preferences in the user_preferences table, one row
// per profile. The schema comes from database.Migrate.
type PostgresStore struct {
	db      *sqlx.DB
	profile string
}

type preferencesRow struct {
	Sources    pq.StringArray `db:"preferred_sources"`
	Categories pq.StringArray `db:"preferred_categories"`
	Authors    pq.StringArray `db:"preferred_authors"`
}

func NewPostgresStore(db *sqlx.DB, profile string) *PostgresStore {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		profile = DefaultProfile
	}
	return &PostgresStore{db: db, profile: profile}
}

func (s *PostgresStore) Read(ctx context.Context) (models.UserPreferences, error) {
	var row preferencesRow
	err := s.db.GetContext(ctx, &row, `
		SELECT preferred_sources, preferred_categories, preferred_authors
		FROM user_preferences
		WHERE profile = $1
	`, s.profile)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultPreferences(), nil
	}
	if err != nil {
		return models.UserPreferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}

	return Normalize(models.UserPreferences{
		PreferredSources: lo.Map(row.Sources, func(s string, _ int) models.ProviderID {
			return models.ProviderID(s)
		}),
		PreferredCategories: row.Categories,
		PreferredAuthors:    row.Authors,
	}), nil
}

func (s *PostgresStore) Write(ctx context.Context, prefs models.UserPreferences) error {
	prefs = Normalize(prefs)
	sourceIDs := lo.Map(prefs.PreferredSources, func(id models.ProviderID, _ int) string {
		return string(id)
	})

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_preferences (profile, preferred_sources, preferred_categories, preferred_authors, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (profile) DO UPDATE SET
			preferred_sources = EXCLUDED.preferred_sources,
			preferred_categories = EXCLUDED.preferred_categories,
			preferred_authors = EXCLUDED.preferred_authors,
			updated_at = NOW()
	`, s.profile, pq.StringArray(sourceIDs), pq.StringArray(prefs.PreferredCategories), pq.StringArray(prefs.PreferredAuthors))
	if err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
