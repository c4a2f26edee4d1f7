package handlers

import (
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/testutil"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(testutil.RunWithPostgres(m))
}
