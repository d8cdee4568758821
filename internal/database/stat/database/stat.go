package database

import (
	"encoding/json"
	"fmt"

	"github.com/flip7-games/flip7/internal/byteutil"
	"github.com/flip7-games/flip7/internal/cache"
	"github.com/flip7-games/flip7/internal/database"
	"github.com/flip7-games/flip7/internal/database/stat/model"
	bolt "go.etcd.io/bbolt"
)

const prefix = "stat"

var (
	pLen        = len(prefix)
	ErrNotFound = fmt.Errorf("not found")
)

func New(db *database.DB, cache cache.Cache) *DB {
	return &DB{sDB: db, cache: cache}
}

type DB struct {
	sDB *database.DB

	cache cache.Cache
}

// BytesBucket builds the per-user bucket name: prefix + uint64.
func (db *DB) BytesBucket(userID int64) []byte {
	b := make([]byte, pLen+2<<5)
	copy(b, prefix[:])
	copy(b[pLen:], byteutil.EncodeInt64ToBytes(userID))
	return b
}

// FetchProfileStat aggregates a user's whole game history.
func (db *DB) FetchProfileStat(userID int64) (model.AggregationStat, error) {
	var agg model.AggregationStat
	var sumScore int

	stats, err := db.FetchByUserID(userID)
	if err != nil {
		return agg, fmt.Errorf("fetch by userID: %w", err)
	}

	for _, stat := range stats {
		agg.Count++
		if stat.Won {
			agg.Wins++
		}
		if stat.Score > agg.BestScore {
			agg.BestScore = stat.Score
		}
		if stat.BestRound > agg.BestRound {
			agg.BestRound = stat.BestRound
		}
		agg.Flip7s += stat.Flip7s
		agg.Busts += stat.Busts
		sumScore += stat.Score
	}

	if agg.Count > 0 {
		agg.AvgScore = sumScore / agg.Count
	}

	return agg, nil
}

func (db *DB) FetchByUserID(userID int64) ([]model.Stat, error) {
	if db.cache != nil {
		v, ok := db.cache.Get(userID)
		if ok {
			return v.([]model.Stat), nil
		}
	}

	var list []model.Stat
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(db.BytesBucket(userID))
		if b == nil {
			return ErrNotFound
		}

		if err := b.ForEach(func(k, v []byte) error {
			var stat model.Stat
			if err := json.Unmarshal(v, &stat); err != nil {
				return fmt.Errorf("json unmarshal error, %w", err)
			}
			list = append(list, stat)
			return nil
		}); err != nil {
			return fmt.Errorf("bucket for each: %w", err)
		}

		return nil
	}); err != nil {
		if err == ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("view transaction error: %w", err)
	}

	if db.cache != nil {
		db.cache.Add(userID, list)
	}

	return list, nil
}

func (db *DB) Add(m model.Stat) error {
	tx, err := db.sDB.DB.Begin(true)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	defer tx.Rollback() // nolint

	b := tx.Bucket(db.BytesBucket(m.UserID))
	if b == nil {
		bs, err := tx.CreateBucket(db.BytesBucket(m.UserID))
		if err != nil {
			return fmt.Errorf("can not create bucket: %w", err)
		}
		b = bs
	}

	bytes, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if err := b.Put(m.ID[:], bytes); err != nil {
		return fmt.Errorf("put to bucket error: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	if db.cache != nil {
		db.cache.Delete(m.UserID)
	}

	return nil
}
