package health

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

const (
	StatusOK = "ok"

	ServiceAvailable = "available"
	ServicePending   = "pending"
)

type Services struct {
	Vectorizer    string `json:"vectorizer"`
	ClippingMagic string `json:"clippingMagic"`
}

type Response struct {
	Status    string   `json:"status"`
	Timestamp string   `json:"timestamp"`
	Services  Services `json:"services"`
}

// New reports liveness. Provider states are declared, not probed.
func New(now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, Response{
			Status:    StatusOK,
			Timestamp: now().UTC().Format(time.RFC3339),
			Services: Services{
				Vectorizer:    ServiceAvailable,
				ClippingMagic: ServicePending,
			},
		})
	}
}
