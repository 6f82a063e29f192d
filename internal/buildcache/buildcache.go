package buildcache

import (
	"crypto/sha256"
	"database/sql"
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	glebarezsqlite "github.com/glebarez/sqlite"
	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store wraps a gorm.DB connection holding the cache tables.
type Store struct {
	db *gorm.DB
}

// Connect opens dsn and migrates the cache schema. A local file path opens
// through the pure-Go glebarez/sqlite driver (no cgo toolchain required for
// a one-off CLI build); a `libsql:`/`http(s):` DSN instead dials a remote
// Turso/libsql database through gorm.io/driver/sqlite's DriverName:"libsql"
// escape hatch, exactly as the teacher's db.Connect does — the pure-Go
// driver has no remote-libsql mode of its own.
func Connect(dsn string, debug bool) (*Store, error) {
	if !isRemote(dsn) {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("buildcache: create cache directory: %w", err)
		}
	}

	cfg := &gorm.Config{}
	if debug {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	var conn *sql.DB
	if isRemote(dsn) {
		var connector driver.Connector
		var err error
		if token := os.Getenv("LVC_LIBSQL_AUTH_TOKEN"); token != "" {
			connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(token))
		} else {
			connector, err = libsql.NewConnector(dsn)
		}
		if err != nil {
			return nil, fmt.Errorf("buildcache: create libsql connector: %w", err)
		}
		conn = sql.OpenDB(connector)
		dialector = gormsqlite.New(gormsqlite.Config{DriverName: "libsql", Conn: conn, DSN: dsn})
	} else {
		dialector = glebarezsqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, fmt.Errorf("buildcache: connect: %w", err)
	}

	if err := db.AutoMigrate(&CacheEntry{}, &CompileRun{}); err != nil {
		return nil, fmt.Errorf("buildcache: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func isRemote(dsn string) bool {
	return strings.HasPrefix(dsn, "http://") || strings.HasPrefix(dsn, "https://") || strings.HasPrefix(dsn, "libsql:")
}

// ContentHash returns the hex SHA-256 digest Lookup/Put key a cache entry
// by when releaseTag is empty.
func ContentHash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// keyFor picks CacheEntry.Key: a release-tagged build is keyed by
// <releaseTag>:<filePath>, so every file of that release shares one key
// regardless of content; an untagged (dev/incremental) build is keyed by
// its own content hash, so any edit naturally misses the cache (spec.md
// §4.4, SPEC_FULL.md §3.2 item 2 — the cache is always consulted, but what
// it's consulted against depends on whether a release tag was given).
func keyFor(filePath, releaseTag, contentHash string) string {
	if releaseTag != "" {
		return releaseTag + ":" + filePath
	}
	return contentHash
}

// Lookup returns a cached compile's output, if one exists for this exact
// key. A caller with Options.ForceRebuild set should skip calling Lookup
// entirely rather than relying on it to refuse — forcing a rebuild is the
// caller's decision, not the cache's.
func (s *Store) Lookup(moduleURI, filePath, releaseTag, source string) (string, bool, error) {
	hash := ContentHash(source)
	var entry CacheEntry
	err := s.db.Where("key = ?", keyFor(filePath, releaseTag, hash)).First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return entry.Output, true, nil
}

// Put stores a compile's output under its current key, replacing any
// earlier entry for the same key.
func (s *Store) Put(moduleURI, filePath, releaseTag, source, output string) error {
	hash := ContentHash(source)
	entry := CacheEntry{
		Key:         keyFor(filePath, releaseTag, hash),
		ModuleURI:   moduleURI,
		FilePath:    filePath,
		ReleaseTag:  releaseTag,
		ContentHash: hash,
		Output:      output,
	}
	return s.db.Save(&entry).Error
}

// RecordRun appends a CompileRun row describing one CompileModule
// invocation's outcome, for later auditing of what was built and when.
func (s *Store) RecordRun(id, moduleURI string, fileHashes []byte, status string) error {
	return s.db.Create(&CompileRun{ID: id, ModuleURI: moduleURI, FileHashes: fileHashes, Status: status}).Error
}

// DB exposes the underlying connection for callers that need direct
// access (migrations, ad hoc queries) beyond Store's own methods.
func (s *Store) DB() *gorm.DB { return s.db }
