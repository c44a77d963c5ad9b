package reliability

import (
	"errors"
	"testing"

	"github.com/aristath/yieldrouter/internal/database"
	testingpkg "github.com/aristath/yieldrouter/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plentyOfSpace(string) (uint64, error) { return 50 << 30, nil }

func newJob(t *testing.T, free DiskUsageFunc) (*MaintenanceJob, []*database.DB) {
	t.Helper()
	dbs := []*database.DB{
		testingpkg.NewTestDB(t, database.NameClientData),
		testingpkg.NewTestDB(t, database.NameStrategies),
	}
	job := NewMaintenanceJob(dbs, t.TempDir(), zerolog.Nop()).WithDiskUsage(free)
	return job, dbs
}

func TestMaintenanceJob_Run(t *testing.T) {
	job, _ := newJob(t, plentyOfSpace)

	assert.Equal(t, "database_maintenance", job.Name())
	assert.NoError(t, job.Run())
}

func TestMaintenanceJob_VacuumsFragmentedDatabase(t *testing.T) {
	job, dbs := newJob(t, plentyOfSpace)
	db := dbs[0]

	for i := 0; i < 200; i++ {
		_, err := db.Conn().Exec(
			"INSERT INTO pool_markets (source, data, expires_at) VALUES (?, ?, 0)",
			string(rune('a'+i%26))+string(rune('0'+i/26)), string(make([]byte, 4096)),
		)
		require.NoError(t, err)
	}
	_, err := db.Conn().Exec("DELETE FROM pool_markets")
	require.NoError(t, err)
	require.NoError(t, db.WALCheckpoint("TRUNCATE"))

	before, err := db.GetStats()
	require.NoError(t, err)
	require.Greater(t, before.FreelistCount, int64(0))

	require.NoError(t, job.Run())

	after, err := db.GetStats()
	require.NoError(t, err)
	assert.Less(t, after.FreelistCount, before.FreelistCount)
}

func TestMaintenanceJob_DiskSpace(t *testing.T) {
	t.Run("critical halts", func(t *testing.T) {
		job, _ := newJob(t, func(string) (uint64, error) { return 10 << 20, nil })
		assert.Error(t, job.Run())
	})

	t.Run("low only warns", func(t *testing.T) {
		job, _ := newJob(t, func(string) (uint64, error) { return 500 << 20, nil })
		assert.NoError(t, job.Run())
	})

	t.Run("probe failure", func(t *testing.T) {
		job, _ := newJob(t, func(string) (uint64, error) { return 0, errors.New("no such fs") })
		assert.Error(t, job.Run())
	})
}

func TestMaintenanceJob_ClosedDatabaseFails(t *testing.T) {
	job, dbs := newJob(t, plentyOfSpace)
	require.NoError(t, dbs[1].Close())

	assert.Error(t, job.Run())
}
