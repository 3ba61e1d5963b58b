package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tabledine/tabledine/internal/aws"
	"github.com/tabledine/tabledine/internal/basket"
	"github.com/tabledine/tabledine/internal/catalog"
	"github.com/tabledine/tabledine/internal/kv"
	"github.com/tabledine/tabledine/internal/orders"
	"github.com/tabledine/tabledine/internal/tables"
	"github.com/tabledine/tabledine/internal/validation"
)

// basketKey is the storage key for one table's basket session.
func basketKey(restaurantID string, tableNumber int) string {
	return fmt.Sprintf("%s:%s:%d", basket.StorageKey, restaurantID, tableNumber)
}

// RegisterBasketRoutes registers the per-table basket session routes under
// /restaurants/:restaurantId/tables/:tableNumber/basket.
func RegisterBasketRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	store := kv.NewDynamoStore(cfg.DynamoDBClient, cfg.BasketTable)
	catalogStore := catalog.NewStore(cfg.DynamoDBClient, cfg.CatalogTable)
	tableStore := tables.NewStore(cfg.DynamoDBClient, cfg.TablesTable)
	orderStore := orders.NewStore(cfg.DynamoDBClient, cfg.OrdersTable)
	publisher := aws.NewPublisher(cfg.SQSClient, cfg.QueueURL)
	log := cfg.log()

	// loadBasket hydrates the table's basket from storage and attaches the
	// persistence subscriber so every mutation is mirrored back.
	loadBasket := func(c *gin.Context) (*basket.Basket, *basket.Persistence, string, int, bool) {
		restaurantID := c.Param("restaurantId")
		tableNumber, err := strconv.Atoi(c.Param("tableNumber"))
		if restaurantID == "" || err != nil || tableNumber <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_restaurant_or_table"})
			return nil, nil, "", 0, false
		}

		p := basket.NewPersistence(store, basketKey(restaurantID, tableNumber), log)
		b := basket.New()
		p.Hydrate(c.Request.Context(), b)
		p.Attach(b)
		return b, p, restaurantID, tableNumber, true
	}

	basketState := func(b *basket.Basket) gin.H {
		return gin.H{
			"items": b.Items(),
			"count": b.Len(),
			"total": b.Total(),
		}
	}

	group := r.Group("/restaurants/:restaurantId/tables/:tableNumber/basket")

	// GET the current basket state.
	group.GET("", func(c *gin.Context) {
		b, _, _, _, ok := loadBasket(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, basketState(b))
	})

	// POST /items adds a catalog item, merging with an existing line of the
	// same configuration.
	group.POST("/items", func(c *gin.Context) {
		var req validation.AddBasketItemRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		b, _, restaurantID, _, ok := loadBasket(c)
		if !ok {
			return
		}

		mi, err := catalogStore.GetItem(c.Request.Context(), restaurantID, req.ItemID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "menu_item_not_found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog_lookup_failed", "detail": err.Error()})
			return
		}
		if !mi.IsAvailable {
			c.JSON(http.StatusConflict, gin.H{"error": "menu_item_unavailable"})
			return
		}

		opts, err := pinSelectedOptions(mi, req.SelectedOptions)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_option", "detail": err.Error()})
			return
		}

		b.Add(basket.LineItem{
			Item: basket.ItemRef{
				ItemID:    mi.ID,
				UnitPrice: mi.Price,
				MenuID:    req.Menu,
			},
			SelectedOptions: opts,
			Quantity:        req.Quantity,
			SpecialRequest:  req.SpecialRequest,
		})
		c.JSON(http.StatusOK, basketState(b))
	})

	// PATCH /items sets the quantity of a line identified by item id plus
	// selected options.
	group.PATCH("/items", func(c *gin.Context) {
		var req validation.UpdateBasketItemRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		b, _, _, _, ok := loadBasket(c)
		if !ok {
			return
		}
		b.UpdateQuantity(lineTarget(req.ItemID, req.SelectedOptions), req.Quantity)
		c.JSON(http.StatusOK, basketState(b))
	})

	// DELETE /items drops a line by identity.
	group.DELETE("/items", func(c *gin.Context) {
		var req validation.RemoveBasketItemRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		b, _, _, _, ok := loadBasket(c)
		if !ok {
			return
		}
		b.Remove(lineTarget(req.ItemID, req.SelectedOptions))
		c.JSON(http.StatusOK, basketState(b))
	})

	// POST /checkout translates the basket into an order. The session is
	// cleared only after the whole submission succeeds; any failure leaves
	// the basket as it was so the customer can retry.
	group.POST("/checkout", func(c *gin.Context) {
		var req validation.CheckoutRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		b, p, restaurantID, tableNumber, ok := loadBasket(c)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		sub, err := orders.Translate(ctx, b, restaurantID, tableNumber, req.Menu, tableStore)
		if err != nil {
			var invalid *orders.InvalidLineItemError
			switch {
			case errors.Is(err, orders.ErrMissingContext), errors.Is(err, orders.ErrEmptyBasket):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, orders.ErrTableNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case errors.As(err, &invalid):
				// a basket line we wrote ourselves failed translation
				log.Error("corrupt basket line at checkout",
					"restaurant", restaurantID, "table_number", tableNumber,
					"item_id", invalid.ItemID, "reason", invalid.Reason)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid_basket_line"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout_failed", "detail": err.Error()})
			}
			return
		}

		placeOrder(c, placeOrderDeps{
			orderStore:   orderStore,
			catalogStore: catalogStore,
			publisher:    publisher,
			cfg:          cfg,
		}, *sub, req.AdditionalInfo, func(ctx context.Context) {
			b.Clear()
			if err := p.Clear(ctx); err != nil {
				log.Warn("clearing persisted basket failed",
					"restaurant", restaurantID, "table_number", tableNumber, "error", err)
			}
		})
	})
}

// pinSelectedOptions resolves the requested choices against the catalog item
// and pins names and price modifiers server-side.
func pinSelectedOptions(mi *catalog.MenuItem, req map[string]validation.SelectedOptionRequest) (map[string]basket.SelectedOption, error) {
	if len(req) == 0 {
		return nil, nil
	}
	opts := make(map[string]basket.SelectedOption, len(req))
	for groupName, sel := range req {
		choice := mi.Choice(sel.ID)
		if choice == nil {
			return nil, fmt.Errorf("item %d has no choice %d for option %q", mi.ID, sel.ID, groupName)
		}
		opts[groupName] = basket.SelectedOption{
			ChoiceID:      choice.ID,
			ChoiceName:    choice.Name,
			PriceModifier: choice.PriceModifier,
		}
	}
	return opts, nil
}

// lineTarget builds a LineItem carrying just the identity of the line a
// request refers to. Prices are irrelevant to identity.
func lineTarget(itemID int, req map[string]validation.SelectedOptionRequest) basket.LineItem {
	var opts map[string]basket.SelectedOption
	if len(req) > 0 {
		opts = make(map[string]basket.SelectedOption, len(req))
		for groupName, sel := range req {
			opts[groupName] = basket.SelectedOption{ChoiceID: sel.ID}
		}
	}
	return basket.LineItem{
		Item:            basket.ItemRef{ItemID: itemID},
		SelectedOptions: opts,
	}
}
