// Package buildcache persists compiled output across builds, so a package
// whose files haven't changed since the last compile can skip straight to
// its cached output (spec.md §4.4, SPEC_FULL.md §3.2 item 2). Adapted from
// the teacher's own gorm/sqlite persistence layer (models/models.go,
// db/sqlite.go): Stage/Apply become CacheEntry/CompileRun, the same way the
// rest of this module's domain swapped out.
package buildcache

import (
	"time"

	"gorm.io/datatypes"
)

// CacheEntry is one cached compile of a single file, keyed by Key (see
// keyFor) — either a content hash or a release-tag-scoped key, never both
// at once.
type CacheEntry struct {
	Key         string `gorm:"primaryKey;type:varchar(128)"`
	ModuleURI   string `gorm:"type:varchar(255);index"`
	FilePath    string `gorm:"type:varchar(255);not null"`
	ReleaseTag  string `gorm:"type:varchar(64);index"`
	ContentHash string `gorm:"type:varchar(64);index"`
	Output      string `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// CompileRun records one CompileModule invocation: which files went in,
// their hashes at that time, and whether the run succeeded.
type CompileRun struct {
	ID        string         `gorm:"primaryKey;type:varchar(32)"`
	ModuleURI string         `gorm:"type:varchar(255);index"`
	FileHashes datatypes.JSON `gorm:"type:jsonb"`
	Status    string         `gorm:"type:varchar(20);not null"` // "ok" or "error"
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (CacheEntry) TableName() string { return "cache_entries" }
func (CompileRun) TableName() string { return "compile_runs" }
