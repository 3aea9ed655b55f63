package integration_test

import (
	"log"
	"os"
	"sync"
	"testing"

	"clipstream_backend/test/helpers"
)

var (
	globalTestServer *helpers.TestServer
	serverOnce       sync.Once
)

// GetTestServer возвращает общий тестовый сервер (создает при первом
// вызове). Тесты пропускаются, если DATABASE_URL не задан.
func GetTestServer(t *testing.T) *helpers.TestServer {
	helpers.RequireDatabase(t)

	serverOnce.Do(func() {
		if os.Getenv("ACCESS_TOKEN_SECRET") == "" {
			os.Setenv("ACCESS_TOKEN_SECRET", "access_secret_for_integration_tests")
		}
		if os.Getenv("REFRESH_TOKEN_SECRET") == "" {
			os.Setenv("REFRESH_TOKEN_SECRET", "refresh_secret_for_integration_tests")
		}
		os.Setenv("SERVER_ENV", "test")

		log.Println("--- [GetTestServer] Initializing test server... ---")
		globalTestServer = helpers.NewTestServer(t)
		log.Println("--- [GetTestServer] Test server ready ---")
	})

	globalTestServer.ClearTables()
	return globalTestServer
}

func TestMain(m *testing.M) {
	code := m.Run()

	if globalTestServer != nil {
		log.Println("--- [TestMain] Cleaning up... ---")
		globalTestServer.Close()
	}

	os.Exit(code)
}
