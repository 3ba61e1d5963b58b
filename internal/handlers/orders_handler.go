package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tabledine/tabledine/internal/aws"
	"github.com/tabledine/tabledine/internal/catalog"
	"github.com/tabledine/tabledine/internal/orders"
	"github.com/tabledine/tabledine/internal/tables"
	"github.com/tabledine/tabledine/internal/validation"
)

// RegisterOrderRoutes registers the order creation, status and staff routes.
func RegisterOrderRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	orderStore := orders.NewStore(cfg.DynamoDBClient, cfg.OrdersTable)
	tableStore := tables.NewStore(cfg.DynamoDBClient, cfg.TablesTable)
	catalogStore := catalog.NewStore(cfg.DynamoDBClient, cfg.CatalogTable)
	publisher := aws.NewPublisher(cfg.SQSClient, cfg.QueueURL)

	// POST /orders accepts the translated submission shape the customer
	// clients already send.
	r.POST("/orders", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CreateOrderRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		table, err := tableStore.Resolve(ctx, req.Restaurant, req.TableNumber)
		if err != nil {
			if errors.Is(err, tables.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "table_not_found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "table_lookup_failed", "detail": err.Error()})
			return
		}

		subItems := make([]orders.SubmissionItem, 0, len(req.Items))
		for _, it := range req.Items {
			subItems = append(subItems, orders.SubmissionItem{
				MenuItemID:        it.MenuItem,
				Quantity:          it.Quantity,
				SelectedChoiceIDs: it.SelectedOptions,
				SpecialRequest:    it.SpecialRequest,
			})
		}

		placeOrder(c, placeOrderDeps{
			orderStore:   orderStore,
			catalogStore: catalogStore,
			publisher:    publisher,
			cfg:          cfg,
		}, orders.Submission{
			RestaurantID: req.Restaurant,
			TableID:      table.ID,
			TableNumber:  req.TableNumber,
			MenuID:       req.Menu,
			OrderItems:   subItems,
		}, req.AdditionalInfo, nil)
	})

	// GET /orders/status is the public polling endpoint:
	// ?restaurant=<id>&table_number=<n>
	r.GET("/orders/status", func(c *gin.Context) {
		ctx := c.Request.Context()

		restaurantID := c.Query("restaurant")
		tableNumber, err := strconv.Atoi(c.Query("table_number"))
		if restaurantID == "" || err != nil || tableNumber <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_restaurant_or_table"})
			return
		}

		recent, err := orderStore.RecentByTable(ctx, restaurantID, tableNumber)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "status_query_failed", "detail": err.Error()})
			return
		}
		if len(recent) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "no_orders_for_table"})
			return
		}

		out := make([]gin.H, 0, len(recent))
		for i := range recent {
			o := &recent[i]
			out = append(out, gin.H{
				"id":              o.OrderID,
				"status":          o.Status,
				"items":           o.Items,
				"additional_info": o.AdditionalInfo,
			})
		}
		c.JSON(http.StatusOK, out)
	})

	// GET /orders/:id fetches one order.
	r.GET("/orders/:id", func(c *gin.Context) {
		o, err := orderStore.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order_lookup_failed", "detail": err.Error()})
			return
		}
		if o == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
			return
		}
		c.JSON(http.StatusOK, o)
	})

	// PATCH /orders/:id is the staff-side status edit.
	r.PATCH("/orders/:id", func(c *gin.Context) {
		var req validation.UpdateOrderStatusRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		switch req.Status {
		case orders.StatusPending, orders.StatusInProgress, orders.StatusCompleted, orders.StatusCancelled:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status", "status": req.Status})
			return
		}

		err := orderStore.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			if errors.Is(err, orders.ErrStatusMismatch) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "status_update_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": req.Status})
	})
}

type placeOrderDeps struct {
	orderStore   *orders.Store
	catalogStore *catalog.Store
	publisher    *aws.Publisher
	cfg          HandlerConfig
}

// placeOrder runs the shared creation path for both the raw /orders endpoint
// and basket checkout: duplicate-active-order guard, catalog enrichment,
// persistence, and the order-placed event. onCreated, when set, runs only once
// the submission has fully succeeded (basket checkout clears the basket
// there); any failure response leaves the caller's state untouched for retry.
func placeOrder(c *gin.Context, deps placeOrderDeps, sub orders.Submission, additionalInfo string, onCreated func(ctx context.Context)) {
	ctx := c.Request.Context()
	log := deps.cfg.log()

	// one active order per table at a time
	active, err := deps.orderStore.HasActiveOrder(ctx, sub.RestaurantID, sub.TableNumber)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "active_order_check_failed", "detail": err.Error()})
		return
	}
	if active {
		c.JSON(http.StatusConflict, gin.H{"error": "order_already_in_progress_for_table"})
		return
	}

	items, err := enrichOrderItems(ctx, deps.catalogStore, sub.RestaurantID, sub.OrderItems)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_menu_item", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog_lookup_failed", "detail": err.Error()})
		return
	}

	order := orders.Order{
		OrderID:        uuid.NewString(),
		RestaurantID:   sub.RestaurantID,
		TableID:        sub.TableID,
		TableNumber:    sub.TableNumber,
		MenuID:         sub.MenuID,
		Status:         orders.StatusPending,
		AdditionalInfo: additionalInfo,
		Items:          items,
	}
	if err := deps.orderStore.Create(ctx, order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order_create_failed", "detail": err.Error()})
		return
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"order_id":     order.OrderID,
		"restaurant":   order.RestaurantID,
		"table_number": order.TableNumber,
	})
	attrs := map[string]string{
		"order_id":   order.OrderID,
		"restaurant": order.RestaurantID,
	}
	if corr := c.GetHeader("X-Request-Id"); corr != "" {
		attrs["correlation_id"] = corr
	}
	if err := deps.publisher.SendOrderMessage(ctx, string(payload), attrs); err != nil {
		// the order is durable but the kitchen will not hear about it; undo
		// best-effort and tell the client to retry
		log.Error("order event publish failed", "order_id", order.OrderID, "error", err)
		_ = deps.orderStore.SetStatus(ctx, order.OrderID, orders.StatusCancelled)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue_failed", "detail": err.Error()})
		return
	}

	if onCreated != nil {
		onCreated(ctx)
	}

	c.Header("Location", fmt.Sprintf("/orders/%s", order.OrderID))
	c.JSON(http.StatusCreated, gin.H{"order_id": order.OrderID, "status": order.Status})
}

// enrichOrderItems resolves each submitted line against the catalog, pinning
// the display name and computing the line total from catalog prices. Unknown
// items or choices reject the whole submission.
func enrichOrderItems(ctx context.Context, store *catalog.Store, restaurantID string, subItems []orders.SubmissionItem) ([]orders.OrderItem, error) {
	items := make([]orders.OrderItem, 0, len(subItems))
	for _, si := range subItems {
		mi, err := store.GetItem(ctx, restaurantID, si.MenuItemID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, fmt.Errorf("menu item %d: %w", si.MenuItemID, err)
			}
			return nil, err
		}
		if !mi.IsAvailable {
			return nil, fmt.Errorf("menu item %d is unavailable: %w", si.MenuItemID, catalog.ErrNotFound)
		}

		unit := mi.Price
		for _, choiceID := range si.SelectedChoiceIDs {
			choice := mi.Choice(choiceID)
			if choice == nil {
				return nil, fmt.Errorf("menu item %d has no choice %d: %w", si.MenuItemID, choiceID, catalog.ErrNotFound)
			}
			unit += choice.PriceModifier
		}

		items = append(items, orders.OrderItem{
			MenuItemID:        si.MenuItemID,
			MenuItemName:      mi.Name,
			Quantity:          si.Quantity,
			SelectedChoiceIDs: si.SelectedChoiceIDs,
			SpecialRequest:    si.SpecialRequest,
			TotalPrice:        unit * float64(si.Quantity),
		})
	}
	return items, nil
}
