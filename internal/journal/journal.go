package journal

import (
	"fmt"
	"net/url"
	"time"

	"github.com/yanun0323/logs"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"main/internal/hedge"
	"main/internal/oms"
	"main/internal/ops"
	"main/internal/schema"
)

// FillRecord is one confirmed execution of a tracked order.
type FillRecord struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	OrderID    uint64 `gorm:"index"`
	Instrument string
	Side       string
	Purpose    string
	Price      int64
	Volume     int64
	Position   int64
	CreatedAt  time.Time
}

// TableName maps FillRecord to the fills table.
func (FillRecord) TableName() string {
	return "fills"
}

// HedgeRecord is one confirmed hedge execution.
type HedgeRecord struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	HedgeID     uint64 `gorm:"index"`
	Side        string
	Price       int64
	Volume      int64
	OriginPrice int64
	Attempts    int
	Position    int64
	CreatedAt   time.Time
}

// TableName maps HedgeRecord to the hedges table.
func (HedgeRecord) TableName() string {
	return "hedges"
}

// Journal persists confirmed executions for offline analysis. Writes
// are best-effort: a failed insert is logged and trading continues.
type Journal struct {
	db *gorm.DB
}

// Open connects to the journal database and migrates its tables.
func Open(cfg ops.JournalConfig) (*Journal, error) {
	db, err := gorm.Open(postgres.Open(dsn(cfg)), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&FillRecord{}, &HedgeRecord{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	return &Journal{db: db}, nil
}

// Close releases the database connection pool.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dsn(cfg ops.JournalConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	u := &url.URL{
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%d", host, port),
		Path:     "/" + cfg.Database,
		RawQuery: "sslmode=disable",
	}
	if cfg.User != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
	}
	return u.String()
}

// RecordFill stores one confirmed order execution.
func (j *Journal) RecordFill(order oms.Order, price schema.Price, volume schema.Volume, position schema.Volume) {
	record := FillRecord{
		OrderID:    order.ID,
		Instrument: order.Instrument.String(),
		Side:       order.Side.String(),
		Purpose:    order.Purpose.String(),
		Price:      int64(price),
		Volume:     int64(volume),
		Position:   int64(position),
		CreatedAt:  time.Now().UTC(),
	}
	if err := j.db.Create(&record).Error; err != nil {
		logs.Errorf("journal fill for order %d, err: %+v", order.ID, err)
	}
}

// RecordHedge stores one confirmed hedge execution.
func (j *Journal) RecordHedge(h hedge.Hedge, price schema.Price, volume schema.Volume, position schema.Volume) {
	record := HedgeRecord{
		HedgeID:     h.ID,
		Side:        h.Side.String(),
		Price:       int64(price),
		Volume:      int64(volume),
		OriginPrice: int64(h.OriginPrice),
		Attempts:    h.Attempts,
		Position:    int64(position),
		CreatedAt:   time.Now().UTC(),
	}
	if err := j.db.Create(&record).Error; err != nil {
		logs.Errorf("journal hedge %d, err: %+v", h.ID, err)
	}
}
