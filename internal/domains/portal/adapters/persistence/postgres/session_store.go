package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dogsdomain "github.com/Apurer/pawmatch/internal/domains/dogs/domain"
	"github.com/Apurer/pawmatch/internal/domains/portal/domain"
	"github.com/Apurer/pawmatch/internal/domains/portal/ports"
)

// SessionStore persists portal session snapshots in PostgreSQL.
type SessionStore struct {
	db *gorm.DB
}

// NewSessionStore wires a PostgreSQL-backed session store. Caller owns DB lifecycle.
func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

type sessionRecord struct {
	ID        string          `gorm:"primaryKey;column:id;size:64"`
	Cookies   []domain.Cookie `gorm:"column:cookies;serializer:json"`
	Breeds    pq.StringArray  `gorm:"column:breeds;type:text[]"`
	ZipCodes  pq.StringArray  `gorm:"column:zip_codes;type:text[]"`
	AgeMin    *int            `gorm:"column:age_min"`
	AgeMax    *int            `gorm:"column:age_max"`
	Sort      string          `gorm:"column:sort;size:32"`
	Size      int             `gorm:"column:size"`
	Selection pq.StringArray  `gorm:"column:selection;type:text[]"`
	ExpiresAt time.Time       `gorm:"column:expires_at;index"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at;index"`
}

func (sessionRecord) TableName() string { return "portal_sessions" }

// Save upserts a snapshot keyed by session id.
func (s *SessionStore) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if snapshot == nil || strings.TrimSpace(snapshot.ID) == "" {
		return domain.ErrEmptySessionID
	}
	rec := toRecord(snapshot)
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"cookies", "breeds", "zip_codes", "age_min", "age_max", "sort", "size", "selection", "expires_at", "updated_at",
			}),
		}).
		Create(&rec).Error
}

// Get loads a live snapshot. Expired rows read as not found.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rec sessionRecord
	err := s.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", strings.TrimSpace(id), time.Now()).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromRecord(rec), nil
}

// Delete removes a session by id.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&sessionRecord{}, "id = ?", id).Error
}

// PurgeExpired removes all expired sessions. Use for housekeeping or cron.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&sessionRecord{})
	return res.RowsAffected, res.Error
}

func (s *SessionStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres session store not configured")
	}
	return nil
}

func toRecord(s *domain.Snapshot) sessionRecord {
	c := s.Criteria.Normalize()
	return sessionRecord{
		ID:        strings.TrimSpace(s.ID),
		Cookies:   append([]domain.Cookie{}, s.Cookies...),
		Breeds:    pq.StringArray(c.Breeds),
		ZipCodes:  pq.StringArray(c.ZipCodes),
		AgeMin:    c.AgeMin,
		AgeMax:    c.AgeMax,
		Sort:      c.Sort,
		Size:      c.Size,
		Selection: pq.StringArray(append([]string{}, s.Selection...)),
		ExpiresAt: s.ExpiresAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func fromRecord(rec sessionRecord) *domain.Snapshot {
	cookies := rec.Cookies
	if cookies == nil {
		cookies = []domain.Cookie{}
	}
	return &domain.Snapshot{
		ID:      rec.ID,
		Cookies: cookies,
		Criteria: dogsdomain.Criteria{
			Breeds:   append([]string{}, rec.Breeds...),
			ZipCodes: append([]string{}, rec.ZipCodes...),
			AgeMin:   rec.AgeMin,
			AgeMax:   rec.AgeMax,
			Sort:     rec.Sort,
			Size:     rec.Size,
		}.Normalize(),
		Selection: append([]string{}, rec.Selection...),
		ExpiresAt: rec.ExpiresAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

var _ ports.SessionStore = (*SessionStore)(nil)
