package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const (
	livenessMessage  = "Is it Livness handler reached."
	readinessMessage = "Readiness handler reached."
)

// Pinger is the dependency readiness waits on.
type Pinger interface {
	Ping(ctx context.Context) error
}

type response struct {
	Message string `json:"message"`
}

// Register mounts /liveness and /readiness for GET and POST.
func Register(e *echo.Echo, db Pinger, logger log.FieldLogger) {
	methods := []string{http.MethodGet, http.MethodPost}
	e.Match(methods, "/liveness", liveness)
	e.Match(methods, "/readiness", readiness(db, logger))
}

func liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, response{Message: livenessMessage})
}

func readiness(db Pinger, logger log.FieldLogger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			logger.WithError(err).Warn("readiness: database unreachable")
			return c.JSON(http.StatusServiceUnavailable, response{Message: err.Error()})
		}
		return c.JSON(http.StatusOK, response{Message: readinessMessage})
	}
}

// NewServer builds an echo instance with the health routes and no banner.
func NewServer(db Pinger, logger log.FieldLogger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	Register(e, db, logger)
	return e
}

// Serve runs e on addr until ctx is cancelled.
func Serve(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
