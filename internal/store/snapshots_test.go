package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStore_SaveAndCount(t *testing.T) {
	s, err := OpenSnapshots(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "0417497106", "registry_detail", "no officers matched", "Algemene informatie ..."))
	require.NoError(t, s.Save(ctx, "0403170701", "financials", "no rubric table", "Jaarrekening ..."))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSnapshotStore_TruncatesLargePages(t *testing.T) {
	s, err := OpenSnapshots(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	defer s.Close()

	big := strings.Repeat("x", 80*1024)
	require.NoError(t, s.Save(context.Background(), "0417497106", "registry_detail", "oversized", big))

	var stored string
	err = s.db.QueryRow(`SELECT page_text FROM extraction_snapshots LIMIT 1`).Scan(&stored)
	require.NoError(t, err)
	assert.Len(t, stored, 64*1024)
}
