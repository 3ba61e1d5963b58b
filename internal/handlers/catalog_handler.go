package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tabledine/tabledine/internal/catalog"
	"github.com/tabledine/tabledine/internal/validation"
)

const defaultMenuCacheTTL = 5 * time.Minute

// RegisterCatalogRoutes registers the public menu endpoint and the staff-side
// catalog management routes.
func RegisterCatalogRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	store := catalog.NewStore(cfg.DynamoDBClient, cfg.CatalogTable)
	log := cfg.log()

	menuTTL := cfg.MenuCacheTTL
	if menuTTL <= 0 {
		menuTTL = defaultMenuCacheTTL
	}

	// invalidateMenu drops the cached public menu after any catalog edit.
	// Cache trouble is never allowed to fail the edit.
	invalidateMenu := func(c *gin.Context, restaurantID string) {
		if cfg.Cache == nil {
			return
		}
		key := cfg.Cache.GenerateKey("menu", restaurantID)
		if err := cfg.Cache.Del(c.Request.Context(), key); err != nil {
			log.Warn("menu cache invalidation failed", "restaurant", restaurantID, "error", err)
		}
	}

	// GET /restaurants/:restaurantId/menu is the public customer-facing menu:
	// menus, categories and items in one payload, served read-through from
	// the cache.
	r.GET("/restaurants/:restaurantId/menu", func(c *gin.Context) {
		ctx := c.Request.Context()
		restaurantID := c.Param("restaurantId")

		var cacheKey string
		if cfg.Cache != nil {
			cacheKey = cfg.Cache.GenerateKey("menu", restaurantID)
			if cached, err := cfg.Cache.Get(ctx, cacheKey); err != nil {
				log.Warn("menu cache read failed", "restaurant", restaurantID, "error", err)
			} else if cached != "" {
				c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
				return
			}
		}

		menus, err := store.ListMenus(ctx, restaurantID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "menu_query_failed", "detail": err.Error()})
			return
		}
		categories, err := store.ListCategories(ctx, restaurantID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "menu_query_failed", "detail": err.Error()})
			return
		}
		items, err := store.ListItems(ctx, restaurantID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "menu_query_failed", "detail": err.Error()})
			return
		}

		payload := gin.H{
			"restaurant": restaurantID,
			"menus":      menus,
			"categories": categories,
			"items":      items,
		}

		if cacheKey != "" {
			if data, err := json.Marshal(payload); err == nil {
				if err := cfg.Cache.Set(ctx, cacheKey, string(data), menuTTL); err != nil {
					log.Warn("menu cache write failed", "restaurant", restaurantID, "error", err)
				}
			}
		}
		c.JSON(http.StatusOK, payload)
	})

	admin := r.Group("/restaurants/:restaurantId")

	admin.POST("/menus", func(c *gin.Context) {
		var req validation.CreateMenuRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		m := catalog.Menu{
			ID:           uuid.NewString(),
			RestaurantID: c.Param("restaurantId"),
			Name:         req.Name,
			Language:     req.Language,
		}
		if err := store.PutMenu(c.Request.Context(), m); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "menu_create_failed", "detail": err.Error()})
			return
		}
		invalidateMenu(c, m.RestaurantID)
		c.JSON(http.StatusCreated, m)
	})

	admin.DELETE("/menus/:menuId", func(c *gin.Context) {
		restaurantID := c.Param("restaurantId")
		if err := store.DeleteMenu(c.Request.Context(), restaurantID, c.Param("menuId")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "menu_delete_failed", "detail": err.Error()})
			return
		}
		invalidateMenu(c, restaurantID)
		c.Status(http.StatusNoContent)
	})

	admin.POST("/categories", func(c *gin.Context) {
		var req validation.CreateCategoryRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		cat := catalog.Category{
			ID:           uuid.NewString(),
			RestaurantID: c.Param("restaurantId"),
			Name:         req.Name,
			Description:  req.Description,
			ImageURL:     req.ImageURL,
		}
		if err := store.PutCategory(c.Request.Context(), cat); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "category_create_failed", "detail": err.Error()})
			return
		}
		invalidateMenu(c, cat.RestaurantID)
		c.JSON(http.StatusCreated, cat)
	})

	admin.DELETE("/categories/:categoryId", func(c *gin.Context) {
		restaurantID := c.Param("restaurantId")
		if err := store.DeleteCategory(c.Request.Context(), restaurantID, c.Param("categoryId")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "category_delete_failed", "detail": err.Error()})
			return
		}
		invalidateMenu(c, restaurantID)
		c.Status(http.StatusNoContent)
	})

	admin.POST("/items", func(c *gin.Context) {
		var req validation.MenuItemRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		item := menuItemFromRequest(c.Param("restaurantId"), req)
		if err := store.CreateItem(c.Request.Context(), &item); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "item_create_failed", "detail": err.Error()})
			return
		}
		invalidateMenu(c, item.RestaurantID)
		c.JSON(http.StatusCreated, item)
	})

	admin.PUT("/items/:itemId", func(c *gin.Context) {
		itemID, err := strconv.Atoi(c.Param("itemId"))
		if err != nil || itemID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_item_id"})
			return
		}
		var req validation.MenuItemRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		restaurantID := c.Param("restaurantId")
		if _, err := store.GetItem(c.Request.Context(), restaurantID, itemID); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "item_not_found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "item_lookup_failed", "detail": err.Error()})
			return
		}
		item := menuItemFromRequest(restaurantID, req)
		item.ID = itemID
		if err := store.UpdateItem(c.Request.Context(), item); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "item_update_failed", "detail": err.Error()})
			return
		}
		invalidateMenu(c, restaurantID)
		c.JSON(http.StatusOK, item)
	})

	admin.GET("/items", func(c *gin.Context) {
		items, err := store.ListItems(c.Request.Context(), c.Param("restaurantId"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "item_query_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, items)
	})

	admin.DELETE("/items/:itemId", func(c *gin.Context) {
		itemID, err := strconv.Atoi(c.Param("itemId"))
		if err != nil || itemID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_item_id"})
			return
		}
		restaurantID := c.Param("restaurantId")
		if err := store.DeleteItem(c.Request.Context(), restaurantID, itemID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "item_delete_failed", "detail": err.Error()})
			return
		}
		invalidateMenu(c, restaurantID)
		c.Status(http.StatusNoContent)
	})
}

func menuItemFromRequest(restaurantID string, req validation.MenuItemRequest) catalog.MenuItem {
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	options := make([]catalog.OptionGroup, 0, len(req.Options))
	for _, g := range req.Options {
		choices := make([]catalog.Choice, 0, len(g.Choices))
		for _, ch := range g.Choices {
			choices = append(choices, catalog.Choice{
				ID:            ch.ID,
				Name:          ch.Name,
				PriceModifier: ch.PriceModifier,
			})
		}
		options = append(options, catalog.OptionGroup{ID: g.ID, Name: g.Name, Choices: choices})
	}
	return catalog.MenuItem{
		RestaurantID: restaurantID,
		MenuID:       req.Menu,
		CategoryID:   req.Category,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		ImageURL:     req.ImageURL,
		IsAvailable:  available,
		Options:      options,
	}
}
