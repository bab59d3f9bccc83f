package api

import (
	"net/http"

	"api_pos/internal/drawer"
	"api_pos/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InitRoutes wires the sales and drawer endpoints on the given Gin
// engine. Storage backends and the stock collaborator come in as
// explicit dependencies; nothing here is process-global.
func InitRoutes(e *gin.Engine, logger *zap.Logger, salesStore sales.Storage, drawerStore drawer.Storage, stock sales.StockPort) {
	salesService := sales.NewService(salesStore, stock, logger)
	drawers := drawer.NewManager(drawerStore, logger)
	handler := NewPOSHandler(salesService, drawers, logger)

	e.POST("/sales", handler.handleCreateSale)
	e.POST("/sales/:id/finalize", handler.handleFinalizeSale)
	e.POST("/sales/:id/cancel", handler.handleCancelSale)
	e.GET("/sales", handler.handleSearchSales)

	e.POST("/drawer/open", handler.handleOpenDrawer)
	e.POST("/drawer/withdrawals", handler.handleWithdrawal)
	e.POST("/drawer/close", handler.handleCloseDrawer)
	e.GET("/drawer/report", handler.handleDrawerReport)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
