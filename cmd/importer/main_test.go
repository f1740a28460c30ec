package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestRunImportsWorkbook(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DOGETIONARY_DATABASE_DRIVER", "sqlite")
	t.Setenv("DOGETIONARY_DATABASE_URL", "file:"+filepath.Join(dir, "questions.db"))
	t.Setenv("DOGETIONARY_SERVER_LOG_LEVEL", "error")

	path := filepath.Join(dir, "words.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"word", "source", "question"},
		{"lucid", "new", "Define lucid"},
		{"ephemeral", "test_practice", ""},
		{"broken", "someday", ""},
	})

	var out bytes.Buffer
	err := run(context.Background(), []string{"-user", uuid.NewString(), path}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), `sheet "Sheet1": 3 rows, 2 imported, 1 skipped`)
	assert.Contains(t, out.String(), "row 4:")
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no arguments", args: nil},
		{name: "missing user", args: []string{"words.xlsx"}},
		{name: "missing file", args: []string{"-user", uuid.NewString()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.args, &bytes.Buffer{})
			assert.ErrorIs(t, err, errUsage)
		})
	}

	err := run(context.Background(), []string{"-user", "not-a-uuid", "words.xlsx"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid -user")
}
