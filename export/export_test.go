package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k0kubun/sqligit/schema"
)

func TestExportWritesSchemaAndRecordFiles(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "source.db")
	outputDir := filepath.Join(dir, "out")

	db, err := schema.OpenReadWrite(dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (id, name) VALUES (1, 'alice'), (2, 'bob')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	require.NoError(t, Export(dbPath, outputDir))

	tableDir := filepath.Join(outputDir, "users")
	assert.FileExists(t, filepath.Join(tableDir, "table.sql"))
	assert.FileExists(t, filepath.Join(tableDir, "index.sql"))
	assert.FileExists(t, filepath.Join(tableDir, "trigger.sql"))
	assert.FileExists(t, filepath.Join(outputDir, "view.sql"))

	entries, err := os.ReadDir(tableDir)
	require.NoError(t, err)

	foundBucket := false
	for _, e := range entries {
		if !e.IsDir() && len(e.Name()) == 3 {
			foundBucket = true
		}
	}
	assert.True(t, foundBucket, "expected at least one bucket file")
}

func TestExportOfEmptyDatabaseWritesEmptyMarker(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "empty.db")
	outputDir := filepath.Join(dir, "out")

	db, err := schema.OpenReadWrite(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	require.NoError(t, Export(dbPath, outputDir))
	assert.FileExists(t, filepath.Join(outputDir, ".empty"))
}

func TestExportIsDeterministicAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "source.db")

	db, err := schema.OpenReadWrite(dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, label TEXT)`)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		_, err = db.Exec(`INSERT INTO items (label) VALUES (?1)`, "item")
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	outA := filepath.Join(dir, "outA")
	outB := filepath.Join(dir, "outB")
	require.NoError(t, Export(dbPath, outA))
	require.NoError(t, Export(dbPath, outB))

	bucketsA, err := os.ReadDir(filepath.Join(outA, "items"))
	require.NoError(t, err)
	bucketsB, err := os.ReadDir(filepath.Join(outB, "items"))
	require.NoError(t, err)
	require.Equal(t, len(bucketsA), len(bucketsB))

	for i := range bucketsA {
		assert.Equal(t, bucketsA[i].Name(), bucketsB[i].Name())
		contentA, err := os.ReadFile(filepath.Join(outA, "items", bucketsA[i].Name()))
		require.NoError(t, err)
		contentB, err := os.ReadFile(filepath.Join(outB, "items", bucketsB[i].Name()))
		require.NoError(t, err)
		assert.Equal(t, contentA, contentB)
	}
}

func TestBucketFileNameIsThreeDigitBase8(t *testing.T) {
	assert.Equal(t, "000", bucketFileName(0))
	assert.Equal(t, "777", bucketFileName(511))
	assert.Equal(t, "001", bucketFileName(1))
}

func TestEscapeTableNameDoublesSingleQuotes(t *testing.T) {
	assert.Equal(t, "o''brien", EscapeTableName("o'brien"))
}
