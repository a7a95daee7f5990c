package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c)
}

func TestParse(t *testing.T) {
	cases := []struct {
		name   string
		query  string
		expect Params
	}{
		{"defaults", "", Params{Page: 1, Limit: 20, Offset: 0}},
		{"explicit", "page=3&limit=10", Params{Page: 3, Limit: 10, Offset: 20}},
		{"zero page falls back", "page=0", Params{Page: 1, Limit: 20, Offset: 0}},
		{"negative limit falls back", "limit=-5", Params{Page: 1, Limit: 20, Offset: 0}},
		{"limit capped", "limit=5000", Params{Page: 1, Limit: 100, Offset: 0}},
		{"garbage ignored", "page=abc&limit=xyz", Params{Page: 1, Limit: 20, Offset: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, paramsFor(t, tc.query))
		})
	}
}
