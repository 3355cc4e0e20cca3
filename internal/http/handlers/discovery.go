package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/velora-app/velora-backend/internal/http/response"
	"github.com/velora-app/velora-backend/internal/services"
)

type DiscoveryHandler struct {
	discoveryService services.DiscoveryService
}

func NewDiscoveryHandler(discoveryService services.DiscoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{discoveryService: discoveryService}
}

func (dh *DiscoveryHandler) DatingCandidates(c *gin.Context) {
	limit := parseLimit(c, 25)
	profiles, err := dh.discoveryService.DatingCandidates(c.Request.Context(), limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"candidates": profiles})
}

func (dh *DiscoveryHandler) SocialSearch(c *gin.Context) {
	limit := parseLimit(c, 25)
	profiles, err := dh.discoveryService.SocialSearch(c.Request.Context(), limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profiles": profiles})
}

func (dh *DiscoveryHandler) NearbyPosts(c *gin.Context) {
	radiusKM, ok := parseRadiusKM(c)
	if !ok {
		return
	}
	limit := parseLimit(c, 50)
	posts, err := dh.discoveryService.NearbyPosts(c.Request.Context(), radiusKM, limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"posts": posts})
}

func (dh *DiscoveryHandler) NearbyProfiles(c *gin.Context) {
	radiusKM, ok := parseRadiusKM(c)
	if !ok {
		return
	}
	limit := parseLimit(c, 50)
	profiles, err := dh.discoveryService.NearbyProfiles(c.Request.Context(), radiusKM, limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profiles": profiles})
}

func parseRadiusKM(c *gin.Context) (float64, bool) {
	raw := c.Query("radius_km")
	if raw == "" {
		return 0, true
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_radius", err)
		return 0, false
	}
	return parsed, true
}
