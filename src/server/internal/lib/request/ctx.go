package request

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/veedubyou/audius-shake-be/src/shared/lib/env"
)

func Context(c echo.Context) context.Context {
	switch env.Get() {
	case env.Production:
		return c.Request().Context()

	case env.Development, env.Test:
		// opt to not use the request context outside of production
		// to avoid timeouts during debugging
		return context.Background()

	default:
		panic("Unrecognized environment")
	}
}
