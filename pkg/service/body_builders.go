package service

import (
	"github.com/pkg/errors"

	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/models"
)

// Task names of the blog automation pipeline. A task's name is its data-flow
// key: builders read upstream results under these names and the orchestrator
// publishes each completed task's envelope under its own name.
const (
	TaskKeywordSearch      = "keyword-search"
	TaskProductSearch      = "product-search"
	TaskProductMatch       = "product-match"
	TaskSimilarityAnalysis = "similarity-analysis"
	TaskProductSelect      = "product-select"
	TaskProductCrawl       = "product-crawl"
	TaskS3Upload           = "s3-upload"
	TaskImageOCR           = "image-ocr"
	TaskBlogRAG            = "blog-rag"
	TaskBlogPublish        = "blog-publish"
)

// DefaultBindings wires each pipeline task to its body builder. Tasks absent
// from this table get an empty request body.
func DefaultBindings() map[string]TaskBodyBuilder {
	return map[string]TaskBodyBuilder{
		TaskProductSearch: BuilderFunc(buildProductSearchBody),
		TaskProductMatch:  BuilderFunc(buildProductMatchBody),
		TaskProductSelect: BuilderFunc(buildProductSelectBody),
		TaskProductCrawl:  BuilderFunc(buildProductCrawlBody),
		TaskS3Upload:      BuilderFunc(buildS3UploadBody),
		TaskImageOCR:      BuilderFunc(buildImageOCRBody),
		TaskBlogRAG:       BuilderFunc(buildBlogRAGBody),
		TaskBlogPublish:   BuilderFunc(buildBlogPublishBody),
	}
}

// product-search posts the discovered keyword. The keyword field is always
// present, empty when the upstream task produced nothing.
func buildProductSearchBody(task models.Task, ctx *ExecutionContext) (models.JSONMap, error) {
	keyword, _ := ctx.LookupString(TaskKeywordSearch, "keyword")
	return models.JSONMap{"keyword": keyword}, nil
}

func buildProductMatchBody(task models.Task, ctx *ExecutionContext) (models.JSONMap, error) {
	body := models.JSONMap{}
	if keyword, ok := ctx.LookupString(TaskKeywordSearch, "keyword"); ok {
		body["keyword"] = keyword
	}
	if results, ok := ctx.Lookup(TaskProductSearch, "search_results"); ok {
		body["search_results"] = results
	}
	return body, nil
}

func buildProductSelectBody(task models.Task, ctx *ExecutionContext) (models.JSONMap, error) {
	return models.JSONMap{
		"task_id":            task.ID,
		"selection_criteria": task.Settings.String("selection_criteria", "image_count_priority"),
	}, nil
}

// product-crawl collects the URLs of the similarity analysis' top products.
// The array may be empty; the backend treats that as nothing to crawl.
func buildProductCrawlBody(task models.Task, ctx *ExecutionContext) (models.JSONMap, error) {
	urls := []interface{}{}
	if top, ok := ctx.Lookup(TaskSimilarityAnalysis, "top_products"); ok {
		if products, ok := top.([]interface{}); ok {
			for _, p := range products {
				product, ok := p.(map[string]interface{})
				if !ok {
					continue
				}
				if url, ok := product["url"].(string); ok && url != "" {
					urls = append(urls, url)
				}
			}
		}
	}
	return models.JSONMap{"product_urls": urls}, nil
}

func buildS3UploadBody(task models.Task, ctx *ExecutionContext) (models.JSONMap, error) {
	body := models.JSONMap{"base_folder": task.Settings.String("base_folder", "product")}
	if keyword, ok := ctx.LookupString(TaskKeywordSearch, "keyword"); ok {
		body["keyword"] = keyword
	}
	if crawled, ok := ctx.Lookup(TaskProductCrawl, "crawled_products"); ok {
		body["crawled_products"] = crawled
	}
	return body, nil
}

func buildImageOCRBody(task models.Task, ctx *ExecutionContext) (models.JSONMap, error) {
	body := models.JSONMap{}
	if keyword, ok := ctx.LookupString(TaskKeywordSearch, "keyword"); ok {
		body["keyword"] = keyword
	}
	return body, nil
}

func buildBlogRAGBody(task models.Task, ctx *ExecutionContext) (models.JSONMap, error) {
	body := models.JSONMap{
		"content_type":  task.Settings.String("content_type", "review_blog"),
		"target_length": 1000,
	}
	if keyword, ok := ctx.LookupString(TaskKeywordSearch, "keyword"); ok {
		body["keyword"] = keyword
	}
	if product, ok := ctx.Lookup(TaskProductSelect, "selected_product"); ok {
		body["product_info"] = product
	}
	return body, nil
}

// blog-publish requires generated content; publishing an empty post is a
// deterministic failure, not a backend call.
func buildBlogPublishBody(task models.Task, ctx *ExecutionContext) (models.JSONMap, error) {
	content, ok := ctx.Lookup(TaskBlogRAG, "content")
	if !ok {
		return nil, errors.Errorf("no generated content available for task '%s'", task.Name)
	}
	body := models.JSONMap{
		"post_content": content,
		"platform":     task.Settings.String("platform", "tistory"),
	}
	if title, ok := ctx.Lookup(TaskBlogRAG, "title"); ok {
		body["post_title"] = title
	}
	if tags, ok := ctx.Lookup(TaskBlogRAG, "tags"); ok {
		body["post_tags"] = tags
	}
	return body, nil
}
