package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tabledine/tabledine/internal/tables"
	"github.com/tabledine/tabledine/internal/validation"
)

const qrCodeSize = 256

// RegisterTableRoutes registers the staff-side table management routes and
// the per-table QR code endpoint.
func RegisterTableRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	store := tables.NewStore(cfg.DynamoDBClient, cfg.TablesTable)

	group := r.Group("/restaurants/:restaurantId/tables")

	// POST adds a table; the number is assigned server-side (highest + 1).
	group.POST("", func(c *gin.Context) {
		var req validation.CreateTableRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		t, err := store.Create(c.Request.Context(), c.Param("restaurantId"), req.Capacity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "table_create_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, t)
	})

	// GET lists tables; ?table_number= narrows to one.
	group.GET("", func(c *gin.Context) {
		ctx := c.Request.Context()
		restaurantID := c.Param("restaurantId")

		if raw := c.Query("table_number"); raw != "" {
			number, err := strconv.Atoi(raw)
			if err != nil || number <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_table_number"})
				return
			}
			t, err := store.Resolve(ctx, restaurantID, number)
			if err != nil {
				if errors.Is(err, tables.ErrNotFound) {
					c.JSON(http.StatusNotFound, gin.H{"error": "table_not_found"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "table_lookup_failed", "detail": err.Error()})
				return
			}
			c.JSON(http.StatusOK, []tables.Table{*t})
			return
		}

		ts, err := store.List(ctx, restaurantID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "table_query_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, ts)
	})

	// DELETE removes the highest-numbered table, keeping numbering dense.
	group.DELETE("", func(c *gin.Context) {
		t, err := store.RemoveHighest(c.Request.Context(), c.Param("restaurantId"))
		if err != nil {
			if errors.Is(err, tables.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no_tables"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "table_delete_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": t.Number})
	})

	// PATCH /:tableNumber/status sets the occupancy status.
	group.PATCH("/:tableNumber/status", func(c *gin.Context) {
		number, err := strconv.Atoi(c.Param("tableNumber"))
		if err != nil || number <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_table_number"})
			return
		}
		var req validation.UpdateTableStatusRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		switch req.Status {
		case tables.StatusAvailable, tables.StatusOccupied, tables.StatusReserved:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status", "status": req.Status})
			return
		}

		if err := store.UpdateStatus(c.Request.Context(), c.Param("restaurantId"), number, req.Status); err != nil {
			if errors.Is(err, tables.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "table_not_found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "status_update_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"table_number": number, "status": req.Status})
	})

	// GET /:tableNumber/qrcode renders the PNG customers scan to open the
	// table's ordering page.
	group.GET("/:tableNumber/qrcode", func(c *gin.Context) {
		number, err := strconv.Atoi(c.Param("tableNumber"))
		if err != nil || number <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_table_number"})
			return
		}
		t, err := store.Resolve(c.Request.Context(), c.Param("restaurantId"), number)
		if err != nil {
			if errors.Is(err, tables.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "table_not_found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "table_lookup_failed", "detail": err.Error()})
			return
		}

		png, err := tables.QRCodePNG(cfg.FrontendBaseURL, *t, qrCodeSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "qrcode_failed", "detail": err.Error()})
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	})
}
