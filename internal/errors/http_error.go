package errors

import (
	"errors"
	"net/http"
)

// HTTPStatus maps a scheduling error to the HTTP status the API surfaces.
// Unrecognized errors are treated as internal.
func HTTPStatus(err error) int {
	var (
		validation     *ValidationError
		invalidWindow  *InvalidWindowError
		invalidAddress *InvalidAddressError
		outOfHours     *OutOfHoursError
		notice         *InsufficientNoticeError
		advance        *AdvanceTooFarError
		double         *DoubleBookingError
		capacity       *CapacityExceededError
		inactive       *VehicleInactiveError
		transition     *InvalidTransitionError
		concurrency    *ConcurrencyConflictError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &invalidWindow), errors.As(err, &invalidAddress):
		return http.StatusBadRequest
	case errors.As(err, &outOfHours), errors.As(err, &notice), errors.As(err, &advance):
		return http.StatusUnprocessableEntity
	case errors.As(err, &double), errors.As(err, &capacity), errors.As(err, &inactive), errors.As(err, &transition):
		return http.StatusConflict
	case errors.As(err, &concurrency):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrVehicleNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
