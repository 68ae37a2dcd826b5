package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"matreshka-vpn/internal/database"
)

// ServersAPI exposes the read-only server catalog.
type ServersAPI struct {
	db *database.Database
}

// ServerInfo is one catalog entry as the frontend consumes it.
type ServerInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Country       string `json:"country"`
	City          string `json:"city"`
	Flag          string `json:"flag"`
	Ping          int    `json:"ping"`
	Load          int    `json:"load"`
	IsPremium     bool   `json:"isPremium"`
	IsRecommended bool   `json:"isRecommended"`
}

// ServerListResponse wraps the catalog listing.
type ServerListResponse struct {
	Servers []ServerInfo `json:"servers"`
}

// NewServersAPI creates a new server catalog API instance.
// Returns a pointer to the newly created ServersAPI.
func NewServersAPI(db *database.Database) *ServersAPI {
	return &ServersAPI{db: db}
}

// RegisterRoutes registers the catalog API routes.
func (api *ServersAPI) RegisterRoutes(router *gin.Engine) {
	router.Group("/api").GET("/servers", api.ListServers)
}

// ListServers returns all active servers, recommended first and then by
// ascending ping. The catalog has no mutation endpoints; seeding happens at
// startup only.
func (api *ServersAPI) ListServers(c *gin.Context) {
	servers, err := api.db.ListActiveServers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Failed to list servers"})
		return
	}

	response := ServerListResponse{
		Servers: make([]ServerInfo, len(servers)),
	}
	for i, server := range servers {
		response.Servers[i] = ServerInfo{
			ID:            server.ID,
			Name:          server.Name,
			Country:       server.Country,
			City:          server.City,
			Flag:          server.Flag,
			Ping:          server.Ping,
			Load:          server.LoadPercentage,
			IsPremium:     server.IsPremium,
			IsRecommended: server.IsRecommended,
		}
	}

	c.JSON(http.StatusOK, response)
}
