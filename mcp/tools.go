package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/singleflight"

	"github.com/dkovalev83/ozon-scrap/config"
	"github.com/dkovalev83/ozon-scrap/internal/export"
	"github.com/dkovalev83/ozon-scrap/internal/logx"
	"github.com/dkovalev83/ozon-scrap/internal/models"
	"github.com/dkovalev83/ozon-scrap/internal/ozon"
)

type toolHandlers struct {
	crawler *ozon.Client
	cfg     *config.Config

	// crawls collapses identical in-flight requests: a full-catalog crawl
	// can run for minutes and the upstream does not tolerate doubling it.
	crawls singleflight.Group
}

func registerTools(s *server.MCPServer, crawler *ozon.Client, cfg *config.Config) {
	h := &toolHandlers{crawler: crawler, cfg: cfg}

	pageTool := mcp.NewTool("seller_page",
		mcp.WithDescription("Fetch one page of an Ozon seller's catalog"),
		mcp.WithString("seller",
			mcp.Required(),
			mcp.Description("Seller id or storefront URL"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number (default: 1)"),
		),
	)
	s.AddTool(pageTool, h.handleSellerPage)

	catalogTool := mcp.NewTool("seller_products",
		mcp.WithDescription("Crawl an Ozon seller's whole catalog, page by page"),
		mcp.WithString("seller",
			mcp.Required(),
			mcp.Description("Seller id or storefront URL"),
		),
	)
	s.AddTool(catalogTool, h.handleSellerProducts)

	detailTool := mcp.NewTool("product_detail",
		mcp.WithDescription("Fetch detailed information for one product by id"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Product id"),
		),
	)
	s.AddTool(detailTool, h.handleProductDetail)
}

func (h *toolHandlers) handleSellerPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seller := request.GetString("seller", "")
	if seller == "" {
		return mcp.NewToolResultError("seller is required"), nil
	}
	page := request.GetInt("page", 1)

	result, err := h.crawler.FetchPage(ctx, seller, page)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetch error: %v", err)), nil
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (h *toolHandlers) handleSellerProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seller := request.GetString("seller", "")
	if seller == "" {
		return mcp.NewToolResultError("seller is required"), nil
	}

	// The crawl is shared across joined callers, so it must not inherit the
	// first caller's cancellation; per-request timeouts still bound it.
	crawlCtx := context.WithoutCancel(ctx)
	result, err, _ := h.crawls.Do("catalog:"+seller, func() (any, error) {
		return h.crawler.FetchAllPages(crawlCtx, seller)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("crawl error: %v", err)), nil
	}

	pages := result.([]*models.PageResult)
	if len(pages) > 0 && h.cfg.OutputDir != "" {
		if _, err := export.WriteCatalog(h.cfg.OutputDir, pages[0].Metadata["seller_id"], pages); err != nil {
			log := logx.New("mcp")
			log.Warn().Err(err).Msg("catalog export failed")
		}
	}

	data, _ := json.MarshalIndent(pages, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (h *toolHandlers) handleProductDetail(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	detailCtx := context.WithoutCancel(ctx)
	details, err, _ := h.crawls.Do("product:"+id, func() (any, error) {
		return h.crawler.FetchProduct(detailCtx, id)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("detail error: %v", err)), nil
	}

	data, _ := json.MarshalIndent(details, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}
