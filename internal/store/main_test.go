package store

import (
	"os"
	"testing"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/testutil"
)

func TestMain(m *testing.M) {
	os.Exit(testutil.RunWithPostgres(m))
}
