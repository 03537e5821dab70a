package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/models"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/service"
)

func TestExecutionContext(t *testing.T) {
	t.Run("PutThenGet", func(t *testing.T) {
		ctx := service.NewExecutionContext()
		env := models.ResultEnvelope{Status: "success", Data: map[string]interface{}{"keyword": "mug"}}
		ctx.Put("keyword-search", env)

		got, ok := ctx.Get("keyword-search")
		assert.True(t, ok)
		assert.Equal(t, env, got)
	})

	t.Run("GetMissingTask", func(t *testing.T) {
		ctx := service.NewExecutionContext()
		_, ok := ctx.Get("keyword-search")
		assert.False(t, ok)
	})

	t.Run("LookupWalksNestedData", func(t *testing.T) {
		ctx := service.NewExecutionContext()
		ctx.Put("product-select", models.ResultEnvelope{
			Status: "success",
			Data: map[string]interface{}{
				"selected_product": map[string]interface{}{"title": "mug", "price": 12.5},
			},
		})

		title, ok := ctx.LookupString("product-select", "selected_product", "title")
		assert.True(t, ok)
		assert.Equal(t, "mug", title)

		price, ok := ctx.Lookup("product-select", "selected_product", "price")
		assert.True(t, ok)
		assert.Equal(t, 12.5, price)
	})

	t.Run("LookupMissingPath", func(t *testing.T) {
		ctx := service.NewExecutionContext()
		ctx.Put("keyword-search", models.ResultEnvelope{Status: "success", Data: map[string]interface{}{}})

		_, ok := ctx.Lookup("keyword-search", "keyword")
		assert.False(t, ok)
		_, ok = ctx.Lookup("nonexistent", "keyword")
		assert.False(t, ok)
	})

	t.Run("LookupStringRejectsEmptyAndNonString", func(t *testing.T) {
		ctx := service.NewExecutionContext()
		ctx.Put("keyword-search", models.ResultEnvelope{
			Status: "success",
			Data:   map[string]interface{}{"keyword": "", "count": 3.0},
		})

		_, ok := ctx.LookupString("keyword-search", "keyword")
		assert.False(t, ok)
		_, ok = ctx.LookupString("keyword-search", "count")
		assert.False(t, ok)
	})

	t.Run("PutOverwritesSameName", func(t *testing.T) {
		ctx := service.NewExecutionContext()
		ctx.Put("keyword-search", models.ResultEnvelope{Data: map[string]interface{}{"keyword": "old"}})
		ctx.Put("keyword-search", models.ResultEnvelope{Data: map[string]interface{}{"keyword": "new"}})

		keyword, ok := ctx.LookupString("keyword-search", "keyword")
		assert.True(t, ok)
		assert.Equal(t, "new", keyword)
	})
}
