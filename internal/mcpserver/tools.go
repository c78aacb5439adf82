package mcpserver

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("get_chart_image",
		mcp.WithDescription("Capture a TradingView chart snapshot for a ticker and interval. Returns the rendered chart as a PNG image."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description(`TradingView ticker symbol, e.g. "NASDAQ:AAPL" or "BYBIT:BTCUSDT.P".`),
		),
		mcp.WithString("interval",
			mcp.Required(),
			mcp.Description(`Chart interval code, e.g. "1", "5", "15", "60", "240", "D", "W".`),
		),
	), s.handleGetChartImage)

	s.mcp.AddTool(mcp.NewTool("get_performance_stats",
		mcp.WithDescription("Report the number of chart requests since startup and the server uptime in seconds."),
	), s.handleGetPerformanceStats)
}

// intervalAliases maps common human timeframe names onto TradingView interval
// codes. Unknown values pass through verbatim; the upstream site is the
// authority on what is legal.
var intervalAliases = map[string]string{
	"daily":     "D",
	"weekly":    "W",
	"monthly":   "M",
	"1 minute":  "1",
	"5 minute":  "5",
	"15 minute": "15",
	"1 hour":    "60",
	"4 hour":    "240",
}

func normalizeInterval(interval string) string {
	if code, ok := intervalAliases[strings.ToLower(interval)]; ok {
		return code
	}
	return interval
}

func (s *Server) handleGetChartImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.stats.RecordRequest()

	ticker, err := req.RequireString("ticker")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	interval, err := req.RequireString("interval")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(ticker) == "" || strings.TrimSpace(interval) == "" {
		return mcp.NewToolResultError("ticker and interval must be non-empty"), nil
	}

	img, err := s.engine.Capture(ctx, ticker, normalizeInterval(interval))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chart capture failed: %v", err)), nil
	}

	return mcp.NewToolResultImage(
		fmt.Sprintf("Chart snapshot for %s (%s)", ticker, interval),
		base64.StdEncoding.EncodeToString(img),
		"image/png",
	), nil
}

func (s *Server) handleGetPerformanceStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := s.stats.Snapshot()
	return mcp.NewToolResultText(fmt.Sprintf(
		"Requests since startup: %d\nUptime: %.0f seconds",
		snap.Requests, snap.UptimeSeconds,
	)), nil
}
