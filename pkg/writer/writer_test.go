package writer

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/pairscan/pkg/compression"
	"github.com/ajitpratap0/pairscan/pkg/errors"
	"github.com/ajitpratap0/pairscan/pkg/testutil"
)

type table struct {
	header []string
	rows   [][]string
}

func (t table) Header() []string { return t.header }
func (t table) Rows() [][]string { return t.rows }

var pairs = table{
	header: []string{"source", "target", "corr"},
	rows: [][]string{
		{"gene_a", "gene_b", "0.953"},
		{"gene_a", "gene_c", "-1.000"},
	},
}

func writeResult(t *testing.T, name string, r Result) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	ctx, cancel := testutil.TestContext(t)
	defer cancel()
	require.NoError(t, Write(ctx, path, r, Options{Logger: testutil.TestLogger(t)}))
	return path
}

func TestWriteDelimited(t *testing.T) {
	path := writeResult(t, "pairs.csv", pairs)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "source,target,corr\ngene_a,gene_b,0.953\ngene_a,gene_c,-1.000\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriteTabs(t *testing.T) {
	path := writeResult(t, "pairs.tsv", pairs)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "source\ttarget\tcorr\n"))
}

func TestWriteQuotesNames(t *testing.T) {
	path := writeResult(t, "pairs.csv", table{
		header: []string{"source", "target", "corr"},
		rows:   [][]string{{"a,1", `b"2`, "0.500"}},
	})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"a,1","b""2",0.500`)
}

func TestWriteJSONLines(t *testing.T) {
	path := writeResult(t, "pairs.jsonl", pairs)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []map[string]string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec map[string]string
		require.NoError(t, gojson.Unmarshal(sc.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, sc.Err())
	require.Len(t, records, 2)
	assert.Equal(t, map[string]string{"source": "gene_a", "target": "gene_c", "corr": "-1.000"}, records[1])
}

func TestWriteCompressed(t *testing.T) {
	path := writeResult(t, "pairs.csv.gz", pairs)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rc, err := compression.NewReader(f, compression.Gzip)
	require.NoError(t, err)
	defer rc.Close()

	sc := bufio.NewScanner(rc)
	require.True(t, sc.Scan())
	assert.Equal(t, "source,target,corr", sc.Text())
}

func TestWriteEmptyResult(t *testing.T) {
	path := writeResult(t, "pairs.csv", table{header: pairs.header})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "source,target,corr\n", string(data))
}

func TestWriteUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pairs.parquet")

	err := Write(context.Background(), path, pairs, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFileFormat))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCheckPath(t *testing.T) {
	for _, path := range []string{"pairs.csv", "pairs.tsv", "pairs.txt", "pairs.jsonl", "pairs.json.gz", "pairs.tsv.zst"} {
		assert.NoError(t, CheckPath(path), path)
	}
	for _, path := range []string{"pairs.parquet", "pairs.xlsx.gz", "pairs"} {
		err := CheckPath(path)
		require.Error(t, err, path)
		assert.True(t, errors.IsType(err, errors.ErrorTypeFileFormat), path)
	}
}

func TestWriteMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "pairs.csv")

	err := Write(context.Background(), path, pairs, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIO))
	assert.NoFileExists(t, path)
}

func TestWriteReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o600))

	require.NoError(t, Write(context.Background(), path, pairs, Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
