package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tabledine/tabledine/internal/help"
	"github.com/tabledine/tabledine/internal/tables"
	"github.com/tabledine/tabledine/internal/validation"
)

// RegisterHelpRoutes registers the table help-request routes.
func RegisterHelpRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	store := help.NewStore(cfg.DynamoDBClient, cfg.HelpTable)
	tableStore := tables.NewStore(cfg.DynamoDBClient, cfg.TablesTable)

	// POST /help-requests is public: a seated customer asks for staff.
	r.POST("/help-requests", func(c *gin.Context) {
		var req validation.CreateHelpRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		ctx := c.Request.Context()

		if _, err := tableStore.Resolve(ctx, req.Restaurant, req.TableNumber); err != nil {
			if errors.Is(err, tables.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "table_not_found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "table_lookup_failed", "detail": err.Error()})
			return
		}

		created, err := store.Create(ctx, req.Restaurant, req.TableNumber, req.Description)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "help_request_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, created)
	})

	// GET /help-requests?restaurant= lists a restaurant's requests for staff.
	r.GET("/help-requests", func(c *gin.Context) {
		restaurantID := c.Query("restaurant")
		if restaurantID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "restaurant_required"})
			return
		}
		reqs, err := store.ListByRestaurant(c.Request.Context(), restaurantID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "help_query_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, reqs)
	})

	// PATCH /help-requests/:id is the staff response.
	r.PATCH("/help-requests/:id", func(c *gin.Context) {
		var req validation.RespondHelpRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		if !help.ValidStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status", "status": req.Status})
			return
		}

		id := c.Param("id")
		if err := store.Respond(c.Request.Context(), id, req.Status, req.Response); err != nil {
			if errors.Is(err, help.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "help_request_not_found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "help_update_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
	})
}
