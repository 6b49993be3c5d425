package handlers

import (
	"errors"
	"net/http"

	stationRepoPkg "chargehub/database/repository/station"
	"chargehub/middleware"

	"github.com/gin-gonic/gin"
)

// ListStations returns stations, optionally filtered by a search term against
// name and location area.
func ListStations(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		stations, err := hb.StationRepo.ListStations(c.Request.Context(), c.Query("search"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"stations": stations})
	}
}

// GetStation returns one station with its chargers.
func GetStation(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		station, err := hb.StationRepo.GetStationByID(ctx, c.Param("id"))
		if err != nil {
			if errors.Is(err, stationRepoPkg.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "station not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		chargers, err := hb.StationRepo.ListChargersByStation(ctx, station.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"station": station, "chargers": chargers})
	}
}

// ListChargers returns the chargers of a station.
func ListChargers(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		chargers, err := hb.StationRepo.ListChargersByStation(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"chargers": chargers})
	}
}

// SetChargerAvailability lets a host take a charger in or out of service.
// Ownership is checked through the charger's station.
func SetChargerAvailability(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Available *bool `json:"available" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		ctx := c.Request.Context()
		charger, err := hb.StationRepo.GetChargerByID(ctx, c.Param("id"))
		if err != nil {
			if errors.Is(err, stationRepoPkg.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "charger not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		station, err := hb.StationRepo.GetStationByID(ctx, charger.StationID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if station.HostID != middleware.ActorID(c) {
			c.JSON(http.StatusForbidden, gin.H{"error": "charger belongs to another host"})
			return
		}

		if err := hb.StationRepo.SetChargerAvailability(ctx, charger.ID, *input.Available); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"charger_id": charger.ID, "available": *input.Available})
	}
}
