package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"mealcart/internal/recipe"
)

// ErrUnusableRecipe is returned when the model's output cannot be used as
// a recipe (missing ingredients, unknown units, no JSON at all).
var ErrUnusableRecipe = fmt.Errorf("model response is not a usable recipe")

// Client is a client for the Gemini API.
type Client struct {
	model *genai.GenerativeModel
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Client{model: client.GenerativeModel("gemini-1.5-flash")}, nil
}

// GenerateRecipe asks the model for a recipe matching the request and
// decodes it into the structured recipe shape the grocery pipeline needs.
func (c *Client) GenerateRecipe(ctx context.Context, request, dietaryPreference, cuisine string, servings float64) (*recipe.Recipe, error) {
	promptText := "Write a recipe for: " + request + "." +
		" Return a single, clean JSON object with the following keys and data types:" +
		" 'title' (string), 'description' (string), 'cuisine' (string), 'cooking_time' (string)," +
		" 'servings' (number), 'instructions' (array of strings), and 'ingredients' (array of objects)." +
		" Each ingredient object has 'name' (string), 'amount' (positive number)," +
		" 'unit' (one of: lb, oz, cup, tbsp, tsp, g, kg, ml, l, count, slice, clove, pinch)," +
		" and 'category' (one of: Produce, Meat, Dairy, Bakery, Pantry, Spices, Other)." +
		" Use 'count' for whole items like onions or eggs." +
		" The JSON response should be clean and not contain any markdown formatting (e.g., ```json)."

	if dietaryPreference != "" {
		promptText += fmt.Sprintf(" The recipe should be %s.", dietaryPreference)
	}
	if cuisine != "" {
		promptText += fmt.Sprintf(" The recipe should be %s cuisine.", cuisine)
	}
	if servings > 0 {
		promptText += fmt.Sprintf(" The recipe should serve %g.", servings)
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(promptText))
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response format from Gemini")
	}

	// Extract the JSON from the response, which might be wrapped in markdown.
	raw := string(text)
	startIndex := strings.Index(raw, "{")
	endIndex := strings.LastIndex(raw, "}")
	if startIndex == -1 || endIndex == -1 || startIndex > endIndex {
		return nil, fmt.Errorf("%w: could not find JSON object in response", ErrUnusableRecipe)
	}
	cleanJSON := raw[startIndex : endIndex+1]

	var r recipe.Recipe
	if err := json.Unmarshal([]byte(cleanJSON), &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe JSON: %w. Raw response: %s", err, cleanJSON)
	}

	if r.Servings <= 0 {
		r.Servings = servings
	}
	if !r.Valid() {
		return nil, ErrUnusableRecipe
	}
	return &r, nil
}
