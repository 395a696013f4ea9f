package db

import (
	"errors"
	"time"

	"github.com/habedi/nodecli/pkg/apperr"
	"github.com/habedi/nodecli/pkg/validation"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Lookup is a block fetched from a node and kept for later inspection.
type Lookup struct {
	Hash      string    `gorm:"primaryKey" json:"hash"`
	Node      string    `gorm:"index" json:"node"`
	Height    int64     `json:"height"`
	Data      string    `json:"data"` // raw block JSON
	FetchedAt time.Time `gorm:"index" json:"fetched_at"`
}

func checkDB() error {
	if Db == nil {
		return apperr.Database(gorm.ErrInvalidDB)
	}
	return nil
}

// RecordLookup inserts or replaces the lookup for a block hash. Hashes are
// stored in normalized form.
func RecordLookup(l Lookup) error {
	if err := checkDB(); err != nil {
		return err
	}
	l.Hash = validation.NormalizeBlockHash(l.Hash)
	if l.FetchedAt.IsZero() {
		l.FetchedAt = time.Now().UTC()
	}
	if err := Db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&l).Error; err != nil {
		log.Error().Err(err).Str("hash", l.Hash).Msg("Failed to record lookup")
		return apperr.Database(err)
	}
	log.Debug().Str("hash", l.Hash).Int64("height", l.Height).Msg("Lookup recorded")
	return nil
}

// ListLookups returns the most recent lookups first. A limit <= 0 returns all of them.
func ListLookups(limit int) ([]Lookup, error) {
	if err := checkDB(); err != nil {
		return nil, err
	}
	query := Db.Order("fetched_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var lookups []Lookup
	if err := query.Find(&lookups).Error; err != nil {
		log.Error().Err(err).Msg("Failed to list lookups")
		return nil, apperr.Database(err)
	}
	return lookups, nil
}

// GetLookup returns the stored lookup for hash in any accepted form, or nil
// if there is none.
func GetLookup(hash string) (*Lookup, error) {
	if err := checkDB(); err != nil {
		return nil, err
	}
	var l Lookup
	if err := Db.First(&l, "hash = ?", validation.NormalizeBlockHash(hash)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Database(err)
	}
	return &l, nil
}

// ClearLookups removes every stored lookup.
func ClearLookups() error {
	if err := checkDB(); err != nil {
		return err
	}
	if err := Db.Where("1 = 1").Delete(&Lookup{}).Error; err != nil {
		log.Error().Err(err).Msg("Failed to clear lookup history")
		return apperr.Database(err)
	}
	log.Info().Msg("Lookup history cleared")
	return nil
}
