package store

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"time"
)

type MigrationStatus struct {
	NowUTC         time.Time `json:"now_utc"`
	HasGooseTable  bool      `json:"has_goose_table"`
	CurrentVersion int64     `json:"current_version"`
	LatestVersion  int64     `json:"latest_version"`
	HasPending     bool      `json:"has_pending"`
}

func GetMigrationStatus(ctx context.Context, db *sql.DB) (MigrationStatus, error) {
	st := MigrationStatus{NowUTC: time.Now().UTC()}
	latest, err := latestMigrationVersion()
	if err != nil {
		return st, err
	}
	st.LatestVersion = latest
	if db == nil {
		return st, fmt.Errorf("nil db")
	}
	hasGoose, err := tableExists(ctx, db, gooseTable)
	if err != nil {
		return st, err
	}
	st.HasGooseTable = hasGoose
	if hasGoose {
		if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version_id), 0) FROM `+gooseTable).Scan(&st.CurrentVersion); err != nil {
			return st, err
		}
	}
	st.HasPending = st.LatestVersion > st.CurrentVersion
	return st, nil
}

// latestMigrationVersion reads the numeric prefix of embedded files, e.g.
// 00001_policy_templates.sql.
func latestMigrationVersion() (int64, error) {
	entries, err := fs.Glob(gooseMigrationsFS, migrationsDir+"/*.sql")
	if err != nil {
		return 0, err
	}
	var max int64
	for _, p := range entries {
		prefix, _, _ := strings.Cut(path.Base(p), "_")
		n, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}
