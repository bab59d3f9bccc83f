package sales

import "go.uber.org/zap"

// StockRestockRequest asks the stock collaborator to put quantity units
// of a product back on the shelf after a cancellation.
type StockRestockRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// StockPort is the boundary to the inventory system. The engine only
// pushes restock requests through it; stock levels live elsewhere.
type StockPort interface {
	Restock(req StockRestockRequest) error
}

// LogStock is a StockPort that records restock requests in the log.
// Used when no inventory backend is wired in.
type LogStock struct {
	logger *zap.Logger
}

// NewLogStock creates a LogStock.
func NewLogStock(logger *zap.Logger) *LogStock {
	return &LogStock{logger: logger}
}

func (s *LogStock) Restock(req StockRestockRequest) error {
	s.logger.Info("stock restock requested",
		zap.String("product_id", req.ProductID),
		zap.Int("quantity", req.Quantity),
	)
	return nil
}
