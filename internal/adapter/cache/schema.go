package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"seppy/config"
)

// CurrentSchemaVersion is the current schema version.
// Increment this when changing the entry encoding or the docs layout.
const CurrentSchemaVersion = 1

// docsFormat names the markdown layout cached entries were rendered with.
const docsFormat = "unit-md/1"

var (
	keySchemaVersion = []byte("schema_version")
	keyStamp         = []byte("stamp")
)

// SchemaInfo stores schema version and the configuration stamp.
type SchemaInfo struct {
	Version int    `json:"version"`
	Stamp   string `json:"stamp"`
}

// ComputeStamp hashes the configuration that shapes cached documentation.
// A different stamp invalidates every entry.
func ComputeStamp(cfg *config.Config) string {
	relevant := struct {
		Format       string `json:"format"`
		ReportFormat string `json:"report_format"`
	}{
		Format:       docsFormat,
		ReportFormat: cfg.Report.Format,
	}

	data, _ := json.Marshal(relevant)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}

func (s *Store) schemaInfo() (*SchemaInfo, error) {
	var info SchemaInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if v := b.Get(keySchemaVersion); v != nil {
			if err := json.Unmarshal(v, &info.Version); err != nil {
				info.Version = 0
			}
		}
		if v := b.Get(keyStamp); v != nil {
			info.Stamp = string(v)
		}
		return nil
	})
	return &info, err
}

// checkSchema drops all entries when the database was written by another
// schema version or under another stamp, then records the current ones.
func (s *Store) checkSchema(stamp string) error {
	info, err := s.schemaInfo()
	if err != nil {
		return fmt.Errorf("failed to get schema info: %w", err)
	}

	switch {
	case info.Version == 0 && info.Stamp == "":
		// fresh database
	case info.Version != CurrentSchemaVersion:
		s.reset = fmt.Sprintf("schema changed from v%d to v%d", info.Version, CurrentSchemaVersion)
	case info.Stamp != stamp:
		s.reset = "configuration changed"
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if s.reset != "" {
			if err := clearDocs(tx); err != nil {
				return err
			}
		}
		b := tx.Bucket(bucketMeta)
		version, err := json.Marshal(CurrentSchemaVersion)
		if err != nil {
			return err
		}
		if err := b.Put(keySchemaVersion, version); err != nil {
			return err
		}
		return b.Put(keyStamp, []byte(stamp))
	})
}
