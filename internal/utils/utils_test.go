package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSessionToken(t *testing.T) {
	a, err := GenerateSessionToken()
	require.NoError(t, err)
	b, err := GenerateSessionToken()
	require.NoError(t, err)

	assert.Len(t, a, 48)
	assert.NotEqual(t, a, b)
}

func TestFormatTicketNo(t *testing.T) {
	created := time.Date(2024, 3, 7, 12, 0, 0, 0, time.Local)
	assert.Equal(t, "SSY-20240307-000042", FormatTicketNo("SSY", created, 42))
	assert.Equal(t, "ABC-20240307-1234567", FormatTicketNo("ABC", created, 1234567))
}

func TestGenerateBlobName(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	name, err := GenerateBlobName(now, ".png")
	require.NoError(t, err)
	assert.Regexp(t, `^1700000000123-[0-9a-f]{16}\.png$`, name)
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query     string
		wantLimit int
		wantOff   int
	}{
		{"", 50, 0},
		{"?limit=10&page=3", 10, 20},
		{"?limit=999", 200, 0},
		{"?limit=-5", 50, 0},
		{"?limit=abc", 50, 0},
	}

	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/api/audit"+tt.query, nil)

		params := GetPaginationParams(c)
		assert.Equal(t, tt.wantLimit, params.Limit, tt.query)
		assert.Equal(t, tt.wantOff, params.Offset, tt.query)
	}
}
