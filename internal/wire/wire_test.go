package wire

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ride-booking/internal/data/entity"
	"ride-booking/internal/data/repository"
	"ride-booking/pkg/middleware"
	"ride-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) (*App, pgxmock.PgxPoolIface, string) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	config := &utils.Config{
		App: utils.AppConfig{AllowedOrigins: []string{"*"}},
		JWT: utils.JWTConfig{Secret: "wire-secret", Issuer: "ride-booking"},
	}
	logger := zap.NewNop()
	app := Wiring(repository.NewRepository(mock, logger), config, logger, Infra{})

	token, err := middleware.NewTokenVerifier(config.JWT).Issue(uuid.New(), entity.GenderMale, time.Hour)
	require.NoError(t, err)

	return app, mock, token
}

func TestRouter(t *testing.T) {
	app, mock, token := newTestApp(t)
	missingRide := uuid.New()

	mock.ExpectQuery(`(?s)SELECT .* FROM rides WHERE id = \$1`).
		WithArgs(missingRide).
		WillReturnError(pgx.ErrNoRows)

	tests := []struct {
		name   string
		method string
		path   string
		auth   bool
		status int
	}{
		{name: "health", method: http.MethodGet, path: "/health", status: http.StatusOK},
		{name: "bookings need a token", method: http.MethodGet, path: "/api/bookings/me", status: http.StatusUnauthorized},
		{name: "driver rides need a token", method: http.MethodGet, path: "/api/driver/rides", status: http.StatusUnauthorized},
		{name: "notifications need a token", method: http.MethodGet, path: "/api/notifications/unread-count", status: http.StatusUnauthorized},
		{name: "search is public", method: http.MethodGet, path: "/api/rides/search", status: http.StatusBadRequest},
		{name: "ride detail is public", method: http.MethodGet, path: "/api/rides/" + missingRide.String(), status: http.StatusNotFound},
		{name: "malformed ride id", method: http.MethodGet, path: "/api/rides/42", status: http.StatusBadRequest},
		{name: "malformed booking id", method: http.MethodPost, path: "/api/bookings/42/accept", auth: true, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Nil(t, app.Bus, "no redis bus without a redis client")
}
