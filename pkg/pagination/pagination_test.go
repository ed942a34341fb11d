package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c)
}

func TestParse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := paramsFor(t, "")
		require.Equal(t, DefaultPage, p.Page)
		require.Equal(t, DefaultLimit, p.Limit)
		require.Equal(t, 0, p.Offset)
	})

	t.Run("explicit values and offset", func(t *testing.T) {
		p := paramsFor(t, "page=3&limit=25")
		require.Equal(t, 3, p.Page)
		require.Equal(t, 25, p.Limit)
		require.Equal(t, 50, p.Offset)
	})

	t.Run("clamps limit to the maximum", func(t *testing.T) {
		p := paramsFor(t, "limit=5000")
		require.Equal(t, MaxLimit, p.Limit)
	})

	t.Run("rejects junk", func(t *testing.T) {
		p := paramsFor(t, "page=-1&limit=abc")
		require.Equal(t, DefaultPage, p.Page)
		require.Equal(t, DefaultLimit, p.Limit)
	})
}
