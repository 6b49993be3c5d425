package handlers

import (
	"errors"
	"net/http"

	bookingSvc "chargehub/services/booking"
	"chargehub/services/payment"
	payoutSvc "chargehub/services/payout"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP status codes. Unmapped errors
// become a generic 500 so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *bookingSvc.ValidationError
		conflictErr   *bookingSvc.ConflictError
		stateErr      *bookingSvc.InvalidStateError
		permErr       *bookingSvc.PermissionError
		notFoundErr   *bookingSvc.NotFoundError

		noEligibleErr   *payoutSvc.NoEligibleBookingsError
		accountErr      *payoutSvc.AccountError
		payoutNotFound  *payoutSvc.NotFoundError
		gatewayErr      *payment.GatewayError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Message, "charger_id": conflictErr.ChargerID})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, gin.H{"error": stateErr.Error(), "current_status": string(stateErr.Current)})
	case errors.As(err, &permErr):
		c.JSON(http.StatusForbidden, gin.H{"error": permErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &noEligibleErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": noEligibleErr.Error()})
	case errors.As(err, &accountErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": accountErr.Error()})
	case errors.As(err, &payoutNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": payoutNotFound.Error()})
	case errors.As(err, &gatewayErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": gatewayErr.Message, "code": gatewayErr.Code})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
