package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ssargent/rollbook/pkg/codec"
	"github.com/ssargent/rollbook/pkg/record"
)

// DefaultSQLiteFileName is the database file created under the data dir
const DefaultSQLiteFileName = "rollbook.db"

const saveBatchSize = 200

// studentRow is one record in the students table. Position keeps store order.
type studentRow struct {
	Position int `gorm:"primaryKey;autoIncrement:false"`
	Roll     int `gorm:"not null;index"`
	Name     string
	Marks    float64
}

func (studentRow) TableName() string {
	return "students"
}

// SQLBackend keeps the roll book in a relational table through gorm
type SQLBackend struct {
	db       *gorm.DB
	location string
	codec    *codec.LineCodec
}

// OpenSQLiteBackend opens (or creates) a SQLite database at path
func OpenSQLiteBackend(path string, c *codec.LineCodec) (*SQLBackend, error) {
	return openSQL(sqlite.Open(path), "sqlite:"+path, c)
}

// OpenPostgresBackend connects to the database described by dsn
func OpenPostgresBackend(dsn string, c *codec.LineCodec) (*SQLBackend, error) {
	if dsn == "" {
		return nil, unavailable("open postgres", errors.New("empty dsn"))
	}
	return openSQL(postgres.Open(dsn), "postgres", c)
}

func openSQL(dialector gorm.Dialector, location string, c *codec.LineCodec) (*SQLBackend, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, unavailable("open "+location, err)
	}

	if err := db.AutoMigrate(&studentRow{}); err != nil {
		_ = closeGorm(db)
		return nil, unavailable("migrate "+location, err)
	}

	return &SQLBackend{db: db, location: location, codec: c}, nil
}

// Load reads every row in position order. Rows that no longer form a valid
// record are reported as skipped lines.
func (b *SQLBackend) Load(ctx context.Context) (*codec.Result, error) {
	var rows []studentRow
	if err := b.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, unavailable("query students", err)
	}

	res := &codec.Result{LinesRead: len(rows)}
	for i, row := range rows {
		rec, err := record.New(row.Roll, row.Name, row.Marks)
		if err != nil {
			res.Skipped = append(res.Skipped, &codec.LineError{
				Line:   i + 1,
				Text:   b.codec.EncodeLine(record.Record{Roll: row.Roll, Name: row.Name, Marks: row.Marks}),
				Reason: err.Error(),
			})
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

// Save replaces the table contents in one transaction
func (b *SQLBackend) Save(ctx context.Context, recs []record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rows := make([]studentRow, len(recs))
	for i, rec := range recs {
		rows[i] = studentRow{Position: i + 1, Roll: rec.Roll, Name: rec.Name, Marks: rec.Marks}
	}

	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&studentRow{}).Error; err != nil {
			return fmt.Errorf("clear students: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, saveBatchSize).Error; err != nil {
			return fmt.Errorf("insert students: %w", err)
		}
		return nil
	})
	if err != nil {
		return unavailable("save "+b.location, err)
	}
	return nil
}

// Describe implements Backend
func (b *SQLBackend) Describe() string {
	return b.location
}

// Close releases the connection pool
func (b *SQLBackend) Close() error {
	return closeGorm(b.db)
}

func closeGorm(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
