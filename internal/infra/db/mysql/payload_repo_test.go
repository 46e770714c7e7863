package mysql

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/datascope/internal/domain/analytics"
	"github.com/bryanwahyu/datascope/internal/infra/db/dbtest"
)

func TestPayloadRepository_Load(t *testing.T) {
	stub := &dbtest.Stub{
		Columns: []string{"payload_json", "generated_at"},
		Rows: [][]driver.Value{{
			[]byte(`{"stats":{"b":{"min":0,"mean":1,"max":2},"a":{"min":1,"mean":2,"max":3}}}`),
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
	db := stub.Open()
	defer db.Close()

	p, err := NewPayloadRepository(db).Load(context.Background(), "air.csv")

	require.NoError(t, err)
	assert.Equal(t, "air.csv", p.Filename)
	assert.Equal(t, []string{"b", "a"}, p.Columns)
	query, args := stub.LastQuery()
	assert.Contains(t, query, "FROM analytics_payloads")
	assert.Equal(t, []driver.Value{"air.csv"}, args)
}

func TestPayloadRepository_Load_NotFound(t *testing.T) {
	stub := &dbtest.Stub{Columns: []string{"payload_json", "generated_at"}}
	db := stub.Open()
	defer db.Close()

	_, err := NewPayloadRepository(db).Load(context.Background(), "nope.csv")

	assert.ErrorIs(t, err, analytics.ErrNotFound)
}

func TestPayloadRepository_Load_Errors(t *testing.T) {
	boom := errors.New("connection refused")
	db := (&dbtest.Stub{Err: boom}).Open()
	defer db.Close()
	_, err := NewPayloadRepository(db).Load(context.Background(), "air.csv")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, analytics.ErrNotFound)

	bad := (&dbtest.Stub{
		Columns: []string{"payload_json", "generated_at"},
		Rows:    [][]driver.Value{{[]byte(`{"stats":`), time.Now()}},
	}).Open()
	defer bad.Close()
	_, err = NewPayloadRepository(bad).Load(context.Background(), "air.csv")
	assert.ErrorIs(t, err, analytics.ErrMalformed)
}

func TestPayloadRepository_Filenames(t *testing.T) {
	stub := &dbtest.Stub{
		Columns: []string{"filename"},
		Rows:    [][]driver.Value{{"new.csv"}, {"old.csv"}},
	}
	db := stub.Open()
	defer db.Close()

	names, err := NewPayloadRepository(db).Filenames(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"new.csv", "old.csv"}, names)
	_, args := stub.LastQuery()
	assert.Equal(t, []driver.Value{int64(20)}, args)
}
