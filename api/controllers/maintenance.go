package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/mycrew-backend/api/responses"
	"github.com/angelmondragon/mycrew-backend/internal/integrity"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
)

type sweepRunner interface {
	Run(ctx context.Context) (integrity.Report, error)
}

// IntegritySweep runs the location repair pass on demand. A partial failure
// still reports what was repaired, under the error details.
func IntegritySweep(sweeper sweepRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := sweeper.Run(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
