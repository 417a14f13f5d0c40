package journal

import (
	"time"

	"main/internal/model"
	"main/internal/order"

	"github.com/yanun0323/logs"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ order.Recorder = (*Journal)(nil)

// Journal persists order activity of backtest sessions to PostgreSQL for
// later auditing. It is strictly an observer: every write failure is logged
// and swallowed so journaling can never perturb the protocol.
//
// A nil *Journal is valid and records nothing, so callers wire it
// unconditionally.
type Journal struct {
	db         *gorm.DB
	backtestID string
}

// Open connects to PostgreSQL and migrates the journal tables. An empty DSN
// returns a nil journal, the disabled form.
func Open(dsn string) (*Journal, error) {
	if dsn == "" {
		return nil, nil
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&SessionRecord{}, &OrderRecord{}, &CancelRecord{}); err != nil {
		return nil, err
	}

	return &Journal{db: db}, nil
}

// Close releases the connection pool.
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

// StartSession opens the journal scope for one launched session.
func (j *Journal) StartSession(backtestID string, cfg model.LaunchConfig) {
	if j == nil {
		return
	}

	j.backtestID = backtestID
	record := SessionRecord{
		BacktestID: backtestID,
		Symbol:     cfg.Symbol,
		StartTime:  cfg.StartTime,
		EndTime:    cfg.EndTime,
	}
	if err := j.db.Create(&record).Error; err != nil {
		logs.Warnf("journal start session %s, err: %+v", backtestID, err)
	}
}

// EndSession stamps the terminal state of the session.
func (j *Journal) EndSession(ticks int, cause string) {
	if j == nil {
		return
	}

	err := j.db.Model(&SessionRecord{}).
		Where("backtest_id = ?", j.backtestID).
		Updates(map[string]any{"ticks": ticks, "cause": cause}).Error
	if err != nil {
		logs.Warnf("journal end session %s, err: %+v", j.backtestID, err)
	}
}

// RecordOrder journals one acknowledged submission.
func (j *Journal) RecordOrder(ord model.Order) {
	if j == nil {
		return
	}

	record := OrderRecord{
		BacktestID: j.backtestID,
		CID:        ord.CID,
		Exchange:   ord.Exchange.String(),
		Symbol:     ord.Symbol,
		Side:       ord.Side.String(),
		Price:      ord.Price,
		Amount:     ord.Amount,
		Timestamp:  ord.Timestamp,
	}
	if err := j.db.Create(&record).Error; err != nil {
		logs.Warnf("journal order %s, err: %+v", ord.CID, err)
	}
}

// RecordCancel journals one cancellation attempt and whether the server
// accepted it.
func (j *Journal) RecordCancel(cid string, accepted bool) {
	if j == nil {
		return
	}

	record := CancelRecord{
		BacktestID: j.backtestID,
		CID:        cid,
		Accepted:   accepted,
	}
	if err := j.db.Create(&record).Error; err != nil {
		logs.Warnf("journal cancel %s, err: %+v", cid, err)
	}
}

// SessionRecord is one backtest run.
type SessionRecord struct {
	ID         uint   `gorm:"primaryKey"`
	BacktestID string `gorm:"uniqueIndex"`
	Symbol     string
	StartTime  int64
	EndTime    int64
	Ticks      int
	Cause      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderRecord is one acknowledged order submission.
type OrderRecord struct {
	ID         uint   `gorm:"primaryKey"`
	BacktestID string `gorm:"index"`
	CID        string
	Exchange   string
	Symbol     string
	Side       string
	Price      float64
	Amount     float64
	Timestamp  int64
	CreatedAt  time.Time
}

// CancelRecord is one cancellation attempt.
type CancelRecord struct {
	ID         uint   `gorm:"primaryKey"`
	BacktestID string `gorm:"index"`
	CID        string
	Accepted   bool
	CreatedAt  time.Time
}
