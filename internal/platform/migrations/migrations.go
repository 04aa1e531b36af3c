package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema owned by the portal.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(&portalSessionRecord{})
}

// Session schema mirrors the portal Postgres session store.
type portalSessionRecord struct {
	ID        string         `gorm:"primaryKey;column:id;size:64"`
	Cookies   []cookieRecord `gorm:"column:cookies;serializer:json"`
	Breeds    pq.StringArray `gorm:"column:breeds;type:text[]"`
	ZipCodes  pq.StringArray `gorm:"column:zip_codes;type:text[]"`
	AgeMin    *int           `gorm:"column:age_min"`
	AgeMax    *int           `gorm:"column:age_max"`
	Sort      string         `gorm:"column:sort;size:32"`
	Size      int            `gorm:"column:size"`
	Selection pq.StringArray `gorm:"column:selection;type:text[]"`
	ExpiresAt time.Time      `gorm:"column:expires_at;index"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;index"`
}

func (portalSessionRecord) TableName() string { return "portal_sessions" }

type cookieRecord struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
