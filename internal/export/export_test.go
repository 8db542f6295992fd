package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Libelle string
	Ordre   int
}

var columns = []Column[row]{
	{Header: "Libellé", Value: func(r row) string { return r.Libelle }},
	{Header: "Ordre", Value: func(r row) string { return strconv.Itoa(r.Ordre) }},
}

func TestCSV_DefaultOptions(t *testing.T) {
	data, err := CSV([]row{{"Monsieur", 1}, {"Madame; Mme", 2}}, columns, DefaultCSVOptions())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, utf8BOM), "starts with BOM")
	assert.Equal(t, "Libellé;Ordre\r\nMonsieur;1\r\n\"Madame; Mme\";2\r\n", string(data[len(utf8BOM):]))
}

func TestCSV_NoBOMCommaLF(t *testing.T) {
	data, err := CSV([]row{{`Dit "M."`, 3}}, columns, CSVOptions{Separator: ','})
	require.NoError(t, err)

	assert.Equal(t, "Libellé,Ordre\n\"Dit \"\"M.\"\"\",3\n", string(data))
}

func TestCSV_EmptyRowsStillHasHeader(t *testing.T) {
	data, err := CSV(nil, columns, CSVOptions{Separator: ';'})
	require.NoError(t, err)
	assert.Equal(t, "Libellé;Ordre\n", string(data))
}

func TestCSV_InvalidSeparator(t *testing.T) {
	_, err := CSV([]row{{"a", 1}}, columns, CSVOptions{Separator: '\n'})
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "civilites_2024-03-01_15-04-05.csv", FileName("civilites", ".csv", now))
	assert.Equal(t, "commandes_2024-03-01_15-04-05.pdf", FileName("commandes", "pdf", now))
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	path, err := Save(dir, &File{Name: "../escape.csv", Data: []byte("x")})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "escape.csv"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
