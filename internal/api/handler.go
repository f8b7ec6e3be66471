package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mealcart/internal/grocery"
	"mealcart/internal/recipe"
)

// Grocery list mutations present success or a generic retryable failure;
// partial-write detail is never surfaced to the user.
const groceryErrorMessage = "Could not update your grocery list. Please try again."

// RecipeGenerator defines the interface for LLM recipe generation.
type RecipeGenerator interface {
	GenerateRecipe(ctx context.Context, request, dietaryPreference, cuisine string, servings float64) (*recipe.Recipe, error)
}

// RecipeStore defines the interface for recipe data operations.
type RecipeStore interface {
	GetRecipe(ctx context.Context, id string) (*recipe.Recipe, error)
	SaveRecipe(ctx context.Context, recipe *recipe.Recipe) error
	ListRecipes(ctx context.Context, cuisine string) ([]*recipe.Recipe, error)
}

// GroceryService defines the grocery list operations the API exposes.
type GroceryService interface {
	AddIngredients(ctx context.Context, userID string, ingredients []grocery.Ingredient, servings, baseServings float64) error
	RemoveIngredients(ctx context.Context, userID string, ingredients []grocery.Ingredient, servings, baseServings float64) error
	AddItem(ctx context.Context, userID string, ing grocery.Ingredient) error
	SetChecked(ctx context.Context, userID, entryID string, checked bool) error
	ShoppingView(ctx context.Context, userID string) ([]grocery.ShoppingItem, error)
	Subscribe() (<-chan grocery.ChangeEvent, func())
}

// Handler handles HTTP requests.
type Handler struct {
	Generator RecipeGenerator
	Recipes   RecipeStore
	Grocery   GroceryService
	Logger    *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(generator RecipeGenerator, recipes RecipeStore, grocerySvc GroceryService, logger *zap.Logger) *Handler {
	return &Handler{Generator: generator, Recipes: recipes, Grocery: grocerySvc, Logger: logger}
}

// Register attaches all routes to the router.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/recipes/generate", h.GenerateRecipe)
	r.GET("/recipes", h.ListRecipes)
	r.GET("/recipes/:id", h.GetRecipe)

	r.GET("/grocery", h.GetGroceryList)
	r.POST("/grocery/recipes/:id", h.AddRecipeToList)
	r.DELETE("/grocery/recipes/:id", h.RemoveRecipeFromList)
	r.POST("/grocery/items", h.AddItem)
	r.PATCH("/grocery/items/:id/checked", h.SetItemChecked)
	r.GET("/grocery/events", h.StreamEvents)
}

func userID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return "default"
}

type generateRequest struct {
	Request           string  `json:"request" binding:"required"`
	DietaryPreference string  `json:"dietary_preference"`
	Cuisine           string  `json:"cuisine"`
	Servings          float64 `json:"servings"`
}

// GenerateRecipe generates a recipe from a text request and saves it.
func (h *Handler) GenerateRecipe(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid request: %s", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 45*time.Second)
	defer cancel()

	rec, err := h.Generator.GenerateRecipe(ctx, req.Request, req.DietaryPreference, req.Cuisine, req.Servings)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.String(http.StatusRequestTimeout, "Recipe generation timed out after 45 seconds")
			return
		}
		h.Logger.Error("recipe generation failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Recipe generation failed. Please try again.")
		return
	}

	rec.ID = uuid.NewString()
	if err := h.Recipes.SaveRecipe(ctx, rec); err != nil {
		h.Logger.Error("failed to save recipe", zap.Error(err))
		c.String(http.StatusInternalServerError, "Could not save the recipe. Please try again.")
		return
	}

	c.JSON(http.StatusOK, rec)
}

// ListRecipes retrieves saved recipes, optionally filtered by cuisine.
func (h *Handler) ListRecipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	recipes, err := h.Recipes.ListRecipes(ctx, c.Query("cuisine"))
	if err != nil {
		h.Logger.Error("failed to list recipes", zap.Error(err))
		c.String(http.StatusInternalServerError, "database error")
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// GetRecipe retrieves a single recipe by id.
func (h *Handler) GetRecipe(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Recipes.GetRecipe(ctx, c.Param("id"))
	if err != nil {
		h.Logger.Error("failed to get recipe", zap.Error(err))
		c.String(http.StatusInternalServerError, "database error")
		return
	}
	if rec == nil {
		c.String(http.StatusNotFound, "Recipe not found")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetGroceryList returns the shopping view: aggregated entries with
// formatted need amounts and purchase quantities.
func (h *Handler) GetGroceryList(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, err := h.Grocery.ShoppingView(ctx, userID(c))
	if err != nil {
		h.Logger.Error("failed to load grocery list", zap.Error(err))
		c.String(http.StatusInternalServerError, "database error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// AddRecipeToList folds a saved recipe's ingredients into the user's
// grocery list, scaled to the requested servings.
func (h *Handler) AddRecipeToList(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	rec, err := h.Recipes.GetRecipe(ctx, c.Param("id"))
	if err != nil {
		h.Logger.Error("failed to get recipe", zap.Error(err))
		c.String(http.StatusInternalServerError, "database error")
		return
	}
	if rec == nil {
		c.String(http.StatusNotFound, "Recipe not found")
		return
	}

	servings := queryFloat(c, "servings", rec.Servings)
	if err := h.Grocery.AddIngredients(ctx, userID(c), rec.Ingredients, servings, rec.Servings); err != nil {
		h.Logger.Error("failed to add recipe to grocery list",
			zap.String("recipe_id", rec.ID), zap.Error(err))
		c.String(http.StatusInternalServerError, groceryErrorMessage)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveRecipeFromList subtracts a saved recipe's ingredients from the
// user's grocery list at the same scale.
func (h *Handler) RemoveRecipeFromList(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	rec, err := h.Recipes.GetRecipe(ctx, c.Param("id"))
	if err != nil {
		h.Logger.Error("failed to get recipe", zap.Error(err))
		c.String(http.StatusInternalServerError, "database error")
		return
	}
	if rec == nil {
		c.String(http.StatusNotFound, "Recipe not found")
		return
	}

	servings := queryFloat(c, "servings", rec.Servings)
	if err := h.Grocery.RemoveIngredients(ctx, userID(c), rec.Ingredients, servings, rec.Servings); err != nil {
		h.Logger.Error("failed to remove recipe from grocery list",
			zap.String("recipe_id", rec.ID), zap.Error(err))
		c.String(http.StatusInternalServerError, groceryErrorMessage)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddItem adds a single custom item to the grocery list.
func (h *Handler) AddItem(c *gin.Context) {
	var ing grocery.Ingredient
	if err := c.ShouldBindJSON(&ing); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid request: %s", err.Error()))
		return
	}
	if ing.Name == "" || ing.Amount <= 0 || !grocery.IsValidUnit(ing.Unit) {
		c.String(http.StatusBadRequest, "item needs a name, a positive amount, and a known unit")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.Grocery.AddItem(ctx, userID(c), ing); err != nil {
		h.Logger.Error("failed to add grocery item", zap.Error(err))
		c.String(http.StatusInternalServerError, groceryErrorMessage)
		return
	}
	c.Status(http.StatusNoContent)
}

type checkedRequest struct {
	Checked bool `json:"checked"`
}

// SetItemChecked marks a grocery entry as checked off (or not).
func (h *Handler) SetItemChecked(c *gin.Context) {
	var req checkedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid request: %s", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Grocery.SetChecked(ctx, userID(c), c.Param("id"), req.Checked); err != nil {
		h.Logger.Error("failed to update checked state", zap.Error(err))
		c.String(http.StatusInternalServerError, groceryErrorMessage)
		return
	}
	c.Status(http.StatusNoContent)
}

// StreamEvents streams grocery list change events over SSE so open tabs
// can keep their local list fresh.
func (h *Handler) StreamEvents(c *gin.Context) {
	events, cancel := h.Grocery.Subscribe()
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Kind), ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func queryFloat(c *gin.Context, key string, fallback float64) float64 {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}
