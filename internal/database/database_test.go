package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseName(t *testing.T) {
	tests := []struct {
		name   string
		uri    string
		dbName string
		want   string
	}{
		{"explicit name wins", "mongodb://localhost:27017/fromuri", "explicit", "explicit"},
		{"name from uri path", "mongodb://localhost:27017/fromuri?retryWrites=true", "", "fromuri"},
		{"default when absent", "mongodb://localhost:27017", "", DefaultDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DatabaseName(tt.uri, tt.dbName)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDatabaseName_InvalidURI(t *testing.T) {
	_, err := DatabaseName("http://not-mongo", "")
	require.Error(t, err)
}
