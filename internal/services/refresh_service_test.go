package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource serves canned bytes, or an error, as the export.
type stubSource struct {
	data    []byte
	err     error
	fetches int
}

func (s *stubSource) Fetch(ctx context.Context) ([]byte, error) {
	s.fetches++
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

func (s *stubSource) Describe() string { return "stub" }

func exportCSV(rows ...string) []byte {
	return []byte(csvHeader + "\n" + strings.Join(rows, "\n") + "\n")
}

func TestReload_InstallsNewTable(t *testing.T) {
	src := &stubSource{data: exportCSV(
		"2024-03-01,18:30:00,9990011122,Downtown Taproom,Mar-2024,B001,450.00,420.00,2,Lager",
	)}
	dash := NewDashboardService()
	refresh := NewRefreshService(src, dash)

	result, err := refresh.Reload(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, 1, result.Rows)
	require.NotNil(t, dash.Table())
	assert.Equal(t, result.Fingerprint, dash.Table().Fingerprint)
}

func TestReload_UnchangedExportIsNoop(t *testing.T) {
	src := &stubSource{data: exportCSV(
		"2024-03-01,18:30:00,9990011122,Downtown Taproom,Mar-2024,B001,450.00,420.00,2,Lager",
	)}
	dash := NewDashboardService()
	refresh := NewRefreshService(src, dash)

	first, err := refresh.Reload(context.Background())
	require.NoError(t, err)
	require.True(t, first.Changed)

	second, err := refresh.Reload(context.Background())
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, 2, src.fetches)
}

func TestReload_MalformedExportKeepsServing(t *testing.T) {
	src := &stubSource{data: exportCSV(
		"2024-03-01,18:30:00,9990011122,Downtown Taproom,Mar-2024,B001,450.00,420.00,2,Lager",
	)}
	dash := NewDashboardService()
	refresh := NewRefreshService(src, dash)

	_, err := refresh.Reload(context.Background())
	require.NoError(t, err)
	served := dash.Table().Fingerprint

	src.data = exportCSV("not-a-date,18:30:00,9990011122,Downtown Taproom,Mar-2024,B002,450.00,420.00,2,Lager")
	_, err = refresh.Reload(context.Background())
	assert.Error(t, err)

	assert.Equal(t, served, dash.Table().Fingerprint)
}

func TestReload_FetchFailure(t *testing.T) {
	src := &stubSource{err: errors.New("bucket unreachable")}
	refresh := NewRefreshService(src, NewDashboardService())

	_, err := refresh.Reload(context.Background())
	assert.ErrorContains(t, err, "bucket unreachable")
}

func TestSchedule_InvalidSpec(t *testing.T) {
	refresh := NewRefreshService(&stubSource{}, NewDashboardService())
	assert.Error(t, refresh.Schedule("not a schedule"))
}

func TestSchedule_EmptySpecDisabled(t *testing.T) {
	refresh := NewRefreshService(&stubSource{}, NewDashboardService())
	require.NoError(t, refresh.Schedule(""))
	refresh.Stop()
}
