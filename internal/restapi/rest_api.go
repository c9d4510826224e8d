// Package restapi serves the shuttle board as JSON.
package restapi

import (
	"time"

	"github.com/go-playground/validator/v10"
	"shuttle.campusbus.org/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
	validate    *validator.Validate
}

// NewRestAPI creates the API over app. Call Shutdown to stop the rate
// limiter's cleanup goroutine.
func NewRestAPI(app *app.Application) *RestAPI {
	limiter := NewRateLimitMiddleware(app.Config.RateLimit, time.Second, app.Clock)
	limiter.SetTrustedProxies(app.Config.TrustedProxies)
	return &RestAPI{
		Application: app,
		rateLimiter: limiter,
		validate:    validator.New(),
	}
}

func (api *RestAPI) Shutdown() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
}
