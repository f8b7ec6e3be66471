package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"mealcart/internal/grocery"
	"mealcart/internal/recipe"
)

// mockGenerator is a mock of the RecipeGenerator.
type mockGenerator struct {
	recipe    *recipe.Recipe
	returnErr error

	receivedRequest  string
	receivedServings float64
}

func (m *mockGenerator) GenerateRecipe(ctx context.Context, request, dietaryPreference, cuisine string, servings float64) (*recipe.Recipe, error) {
	m.receivedRequest = request
	m.receivedServings = servings
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return m.recipe, nil
}

// mockRecipeStore is a mock of the RecipeStore.
type mockRecipeStore struct {
	recipes map[string]*recipe.Recipe
	saveErr error
}

func newMockRecipeStore() *mockRecipeStore {
	return &mockRecipeStore{recipes: make(map[string]*recipe.Recipe)}
}

func (m *mockRecipeStore) GetRecipe(ctx context.Context, id string) (*recipe.Recipe, error) {
	return m.recipes[id], nil
}

func (m *mockRecipeStore) SaveRecipe(ctx context.Context, r *recipe.Recipe) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.recipes[r.ID] = r
	return nil
}

func (m *mockRecipeStore) ListRecipes(ctx context.Context, cuisine string) ([]*recipe.Recipe, error) {
	var out []*recipe.Recipe
	for _, r := range m.recipes {
		if cuisine == "" || r.Cuisine == cuisine {
			out = append(out, r)
		}
	}
	return out, nil
}

// mockGroceryService is a mock of the GroceryService.
type mockGroceryService struct {
	addErr    error
	removeErr error

	addedUserID       string
	addedIngredients  []grocery.Ingredient
	addedServings     float64
	addedBaseServings float64
	removedCalled     bool
	checkedID         string
	checkedValue      bool
	items             []grocery.ShoppingItem
}

func (m *mockGroceryService) AddIngredients(ctx context.Context, userID string, ingredients []grocery.Ingredient, servings, baseServings float64) error {
	m.addedUserID = userID
	m.addedIngredients = ingredients
	m.addedServings = servings
	m.addedBaseServings = baseServings
	return m.addErr
}

func (m *mockGroceryService) RemoveIngredients(ctx context.Context, userID string, ingredients []grocery.Ingredient, servings, baseServings float64) error {
	m.removedCalled = true
	return m.removeErr
}

func (m *mockGroceryService) AddItem(ctx context.Context, userID string, ing grocery.Ingredient) error {
	m.addedUserID = userID
	m.addedIngredients = []grocery.Ingredient{ing}
	return m.addErr
}

func (m *mockGroceryService) SetChecked(ctx context.Context, userID, entryID string, checked bool) error {
	m.checkedID = entryID
	m.checkedValue = checked
	return nil
}

func (m *mockGroceryService) ShoppingView(ctx context.Context, userID string) ([]grocery.ShoppingItem, error) {
	return m.items, nil
}

func (m *mockGroceryService) Subscribe() (<-chan grocery.ChangeEvent, func()) {
	ch := make(chan grocery.ChangeEvent)
	close(ch)
	return ch, func() {}
}

func testRecipe() *recipe.Recipe {
	return &recipe.Recipe{
		ID:       "r1",
		Title:    "Weeknight Bolognese",
		Servings: 4,
		Ingredients: []grocery.Ingredient{
			{Name: "Ground Beef", Amount: 1, Unit: grocery.UnitLb, Category: "Meat"},
			{Name: "Onion", Amount: 1, Unit: grocery.UnitCount, Category: "Produce"},
		},
		Instructions: []string{"Brown the beef.", "Add the onion."},
	}
}

func setup() (*gin.Engine, *mockGenerator, *mockRecipeStore, *mockGroceryService) {
	gin.SetMode(gin.TestMode)
	generator := &mockGenerator{recipe: testRecipe()}
	recipes := newMockRecipeStore()
	grocerySvc := &mockGroceryService{}

	r := gin.New()
	NewHandler(generator, recipes, grocerySvc, zap.NewNop()).Register(r)
	return r, generator, recipes, grocerySvc
}

func TestGenerateRecipe(t *testing.T) {
	r, generator, recipes, _ := setup()

	body, _ := json.Marshal(map[string]interface{}{
		"request":  "a quick bolognese",
		"servings": 4,
	})
	req := httptest.NewRequest(http.MethodPost, "/recipes/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "a quick bolognese", generator.receivedRequest)
	assert.Equal(t, 4.0, generator.receivedServings)

	var got recipe.Recipe
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Weeknight Bolognese", got.Title)
	assert.Len(t, recipes.recipes, 1, "generated recipe must be saved")
}

func TestGenerateRecipeMissingRequest(t *testing.T) {
	r, _, _, _ := setup()

	req := httptest.NewRequest(http.MethodPost, "/recipes/generate", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGenerateRecipeGeneratorFailure(t *testing.T) {
	r, generator, _, _ := setup()
	generator.returnErr = errors.New("model unavailable")

	body, _ := json.Marshal(map[string]interface{}{"request": "soup"})
	req := httptest.NewRequest(http.MethodPost, "/recipes/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestAddRecipeToList(t *testing.T) {
	r, _, recipes, grocerySvc := setup()
	recipes.recipes["r1"] = testRecipe()

	req := httptest.NewRequest(http.MethodPost, "/grocery/recipes/r1?servings=8", nil)
	req.Header.Set("X-User-ID", "u1")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "u1", grocerySvc.addedUserID)
	assert.Len(t, grocerySvc.addedIngredients, 2)
	assert.Equal(t, 8.0, grocerySvc.addedServings)
	assert.Equal(t, 4.0, grocerySvc.addedBaseServings)
}

func TestAddRecipeToListDefaultsServings(t *testing.T) {
	r, _, recipes, grocerySvc := setup()
	recipes.recipes["r1"] = testRecipe()

	req := httptest.NewRequest(http.MethodPost, "/grocery/recipes/r1", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 4.0, grocerySvc.addedServings, "defaults to the recipe's own servings")
}

func TestAddRecipeToListNotFound(t *testing.T) {
	r, _, _, _ := setup()

	req := httptest.NewRequest(http.MethodPost, "/grocery/recipes/missing", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAddRecipeToListFailureIsGeneric(t *testing.T) {
	r, _, recipes, grocerySvc := setup()
	recipes.recipes["r1"] = testRecipe()
	grocerySvc.addErr = errors.New("insert failed on ground beef")

	req := httptest.NewRequest(http.MethodPost, "/grocery/recipes/r1", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, groceryErrorMessage, rr.Body.String(),
		"per-ingredient write detail never reaches the user")
}

func TestRemoveRecipeFromList(t *testing.T) {
	r, _, recipes, grocerySvc := setup()
	recipes.recipes["r1"] = testRecipe()

	req := httptest.NewRequest(http.MethodDelete, "/grocery/recipes/r1", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.True(t, grocerySvc.removedCalled)
}

func TestAddItemValidation(t *testing.T) {
	r, _, _, _ := setup()

	body, _ := json.Marshal(grocery.Ingredient{Name: "Mystery", Amount: 1, Unit: "bushel"})
	req := httptest.NewRequest(http.MethodPost, "/grocery/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAddItem(t *testing.T) {
	r, _, _, grocerySvc := setup()

	body, _ := json.Marshal(grocery.Ingredient{Name: "Paper Towels", Amount: 1, Unit: grocery.UnitCount})
	req := httptest.NewRequest(http.MethodPost, "/grocery/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Len(t, grocerySvc.addedIngredients, 1)
}

func TestSetItemChecked(t *testing.T) {
	r, _, _, grocerySvc := setup()

	req := httptest.NewRequest(http.MethodPatch, "/grocery/items/e1/checked", bytes.NewReader([]byte(`{"checked":true}`)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "e1", grocerySvc.checkedID)
	assert.True(t, grocerySvc.checkedValue)
}

func TestGetGroceryList(t *testing.T) {
	r, _, _, grocerySvc := setup()
	grocerySvc.items = []grocery.ShoppingItem{
		{
			Entry:      grocery.Entry{ID: "e1", Name: "Chicken Breast", Amount: 0.5, Unit: grocery.UnitLb, Category: "Meat"},
			NeedAmount: "0.5",
			Purchase: grocery.Purchase{
				NeedAmount: 0.5, NeedUnit: grocery.UnitLb,
				BuyAmount: 1, BuyUnit: "lb", Reason: "meat is sold by the pound",
			},
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/grocery", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got struct {
		Items []grocery.ShoppingItem `json:"items"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got.Items, 1)
	assert.Equal(t, 1.0, got.Items[0].Purchase.BuyAmount)
}
