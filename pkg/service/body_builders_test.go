package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/models"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/service"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/storage"
)

func buildFor(t *testing.T, name string, settings models.JSONMap, ctx *service.ExecutionContext) (models.JSONMap, error) {
	t.Helper()
	registry := service.NewBodyBuilderRegistry(service.DefaultBindings())
	return registry.BuildFor(models.Task{ID: 7, Name: name, Settings: settings}, ctx)
}

func envelope(data map[string]interface{}) models.ResultEnvelope {
	return models.ResultEnvelope{Status: "success", Data: data}
}

func TestBodyBuilders(t *testing.T) {
	t.Run("UnboundTaskGetsEmptyBody", func(t *testing.T) {
		body, err := buildFor(t, "keyword-search", nil, service.NewExecutionContext())
		assert.NoError(t, err)
		assert.Equal(t, models.JSONMap{}, body)
	})

	t.Run("ProductSearchAlwaysCarriesKeyword", func(t *testing.T) {
		ctx := service.NewExecutionContext()
		body, err := buildFor(t, service.TaskProductSearch, nil, ctx)
		assert.NoError(t, err)
		assert.Equal(t, "", body["keyword"])

		ctx.Put(service.TaskKeywordSearch, envelope(map[string]interface{}{"keyword": "mug"}))
		body, err = buildFor(t, service.TaskProductSearch, nil, ctx)
		assert.NoError(t, err)
		assert.Equal(t, "mug", body["keyword"])
	})

	t.Run("ProductMatchOmitsMissingUpstream", func(t *testing.T) {
		body, err := buildFor(t, service.TaskProductMatch, nil, service.NewExecutionContext())
		assert.NoError(t, err)
		assert.NotContains(t, body, "keyword")
		assert.NotContains(t, body, "search_results")
	})

	t.Run("ProductSelectUsesSettingsWithDefault", func(t *testing.T) {
		body, err := buildFor(t, service.TaskProductSelect, nil, service.NewExecutionContext())
		assert.NoError(t, err)
		assert.Equal(t, "image_count_priority", body["selection_criteria"])
		assert.Equal(t, int64(7), body["task_id"])

		body, err = buildFor(t, service.TaskProductSelect,
			models.JSONMap{"selection_criteria": "price_priority"}, service.NewExecutionContext())
		assert.NoError(t, err)
		assert.Equal(t, "price_priority", body["selection_criteria"])
	})

	t.Run("ProductCrawlCollectsTopProductURLs", func(t *testing.T) {
		ctx := service.NewExecutionContext()
		ctx.Put(service.TaskSimilarityAnalysis, envelope(map[string]interface{}{
			"top_products": []interface{}{
				map[string]interface{}{"url": "https://a.example/p/1", "score": 0.9},
				map[string]interface{}{"score": 0.8}, // no url, skipped
				map[string]interface{}{"url": "https://a.example/p/3"},
			},
		}))
		body, err := buildFor(t, service.TaskProductCrawl, nil, ctx)
		assert.NoError(t, err)
		assert.Equal(t, []interface{}{"https://a.example/p/1", "https://a.example/p/3"}, body["product_urls"])
	})

	t.Run("ProductCrawlEmptyWithoutAnalysis", func(t *testing.T) {
		body, err := buildFor(t, service.TaskProductCrawl, nil, service.NewExecutionContext())
		assert.NoError(t, err)
		assert.Equal(t, []interface{}{}, body["product_urls"])
	})

	t.Run("S3UploadDefaultsBaseFolder", func(t *testing.T) {
		body, err := buildFor(t, service.TaskS3Upload, nil, service.NewExecutionContext())
		assert.NoError(t, err)
		assert.Equal(t, "product", body["base_folder"])
	})

	t.Run("BlogRAGCarriesDefaultsAndProduct", func(t *testing.T) {
		ctx := service.NewExecutionContext()
		ctx.Put(service.TaskProductSelect, envelope(map[string]interface{}{
			"selected_product": map[string]interface{}{"title": "mug"},
		}))
		body, err := buildFor(t, service.TaskBlogRAG, nil, ctx)
		assert.NoError(t, err)
		assert.Equal(t, "review_blog", body["content_type"])
		assert.Equal(t, 1000, body["target_length"])
		assert.Equal(t, map[string]interface{}{"title": "mug"}, body["product_info"])
	})

	t.Run("BlogPublishRequiresContent", func(t *testing.T) {
		_, err := buildFor(t, service.TaskBlogPublish, nil, service.NewExecutionContext())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no generated content")
	})

	t.Run("BlogPublishCarriesContentAndPlatform", func(t *testing.T) {
		ctx := service.NewExecutionContext()
		ctx.Put(service.TaskBlogRAG, envelope(map[string]interface{}{
			"content": "generated post",
			"title":   "A mug review",
		}))
		body, err := buildFor(t, service.TaskBlogPublish, nil, ctx)
		assert.NoError(t, err)
		assert.Equal(t, "generated post", body["post_content"])
		assert.Equal(t, "A mug review", body["post_title"])
		assert.Equal(t, "tistory", body["platform"])
		assert.NotContains(t, body, "post_tags")
	})
}

// The mandatory-content rule surfaces as a pre-dispatch task failure during a
// run: the runner is never called and the task run records the build error.
func TestExecutionService_BuilderFailureIsPreDispatch(t *testing.T) {
	store := storage.NewMockStore()
	seedWorkflow(store, 1,
		[]models.Job{{ID: 11, Name: "publishing"}},
		map[int64][]models.Task{11: {task(110, service.TaskBlogPublish, 1)}})
	runner := newScriptedRunner()
	svc := newTestService(t, store, runner)

	svc.ExecuteSync(1, models.ManualTrigger, 0)

	assert.Len(t, runner.received(service.TaskBlogPublish), 0)

	runs, _ := store.ListWorkflowRuns(1)
	assert.Equal(t, models.FailedRunStatus, runs[0].Status)
	jobRuns, _ := store.ListJobRuns(runs[0].ID)
	taskRuns, _ := store.ListTaskRuns(jobRuns[0].ID)
	assert.Len(t, taskRuns, 1)
	assert.Equal(t, models.FailedRunStatus, taskRuns[0].Status)
	assert.Contains(t, taskRuns[0].ResultMessage, "no generated content")
}
