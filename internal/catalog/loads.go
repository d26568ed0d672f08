package catalog

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/highwayhash"

	"github.com/banshee-data/pointplay/internal/cloud"
)

var fingerprintKey = []byte("pointplay-source-fingerprint-k32")

// Fingerprint returns a 64-bit HighwayHash of data as 16 hex digits.
func Fingerprint(data []byte) (string, error) {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return "", err
	}
	if _, err := h.Write(data); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// LoadRecord is one entry of the load history.
type LoadRecord struct {
	LoadID      string    `json:"load_id"`
	DatasetName string    `json:"dataset_name"`
	Fingerprint string    `json:"fingerprint"`
	Rows        int       `json:"rows"`
	Points      int       `json:"points"`
	Frames      int       `json:"frames"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// NewLoadRecord describes a completed load of ds from source bytes raw.
func NewLoadRecord(ds *cloud.Dataset, raw []byte) (*LoadRecord, error) {
	fp, err := Fingerprint(raw)
	if err != nil {
		return nil, fmt.Errorf("fingerprint %q: %w", ds.Name, err)
	}
	return &LoadRecord{
		LoadID:      ds.ID,
		DatasetName: ds.Name,
		Fingerprint: fp,
		Rows:        ds.Rows,
		Points:      len(ds.Points),
		Frames:      ds.Timeline.Len(),
	}, nil
}

// RecordLoad stores rec. An empty LoadID gets a new UUID and a zero
// LoadedAt gets the store clock's time.
func (s *Store) RecordLoad(rec *LoadRecord) error {
	if rec.LoadID == "" {
		rec.LoadID = uuid.New().String()
	}
	if rec.LoadedAt.IsZero() {
		rec.LoadedAt = s.clock.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO dataset_loads (
			load_id, dataset_name, fingerprint,
			row_count, point_count, frame_count, loaded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.LoadID,
		rec.DatasetName,
		rec.Fingerprint,
		rec.Rows,
		rec.Points,
		rec.Frames,
		rec.LoadedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert dataset load: %w", err)
	}
	logf("recorded load %s of %q (fingerprint %s)", rec.LoadID, rec.DatasetName, rec.Fingerprint)
	return nil
}

// ListLoads returns the load history of a dataset, oldest first.
func (s *Store) ListLoads(datasetName string) ([]*LoadRecord, error) {
	rows, err := s.db.Query(`
		SELECT load_id, dataset_name, fingerprint,
		       row_count, point_count, frame_count, loaded_at
		FROM dataset_loads
		WHERE dataset_name = ?
		ORDER BY loaded_at, load_id
	`, datasetName)
	if err != nil {
		return nil, fmt.Errorf("list dataset loads: %w", err)
	}
	defer rows.Close()

	var loads []*LoadRecord
	for rows.Next() {
		r := &LoadRecord{}
		var loadedAt int64
		err := rows.Scan(
			&r.LoadID, &r.DatasetName, &r.Fingerprint,
			&r.Rows, &r.Points, &r.Frames, &loadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan dataset load: %w", err)
		}
		r.LoadedAt = time.Unix(0, loadedAt)
		loads = append(loads, r)
	}
	return loads, rows.Err()
}

// LastFingerprint returns the fingerprint of the newest load of a dataset,
// or "" when it has never been loaded.
func (s *Store) LastFingerprint(datasetName string) (string, error) {
	loads, err := s.ListLoads(datasetName)
	if err != nil {
		return "", err
	}
	if len(loads) == 0 {
		return "", nil
	}
	return loads[len(loads)-1].Fingerprint, nil
}
