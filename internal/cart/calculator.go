package cart

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/fjod/shopdesk/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductCatalog is the part of the catalog store checkout needs
type ProductCatalog interface {
	DecrementStock(ctx context.Context, quantities map[string]float64) ([]string, error)
}

// Calculator is the in-progress bill. It owns its lines exclusively and is never persisted.
type Calculator struct {
	mu      sync.Mutex
	catalog ProductCatalog
	logger  *slog.Logger
	lines   []domain.CartLine
	now     func() time.Time
}

func NewCalculator(catalog ProductCatalog, logger *slog.Logger) *Calculator {
	return &Calculator{
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

// AddLine puts one more unit of p in the cart, creating the line on first add
func (c *Calculator) AddLine(p domain.Product) domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(p.ID); i >= 0 {
		line := &c.lines[i]
		line.Quantity++
		line.Amount = line.Quantity * line.Price
		return *line
	}

	line := domain.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Unit:      p.Unit,
		Price:     p.Price,
		Quantity:  1,
		Amount:    p.Price,
	}
	c.lines = append(c.lines, line)
	return line
}

// SetQuantity overrides the quantity and recomputes the amount from it
func (c *Calculator) SetQuantity(productID string, qty float64) (domain.CartLine, error) {
	if !nonNegative(qty) {
		return domain.CartLine{}, ErrInvalidValue
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return domain.CartLine{}, ErrLineNotFound
	}
	line := &c.lines[i]
	line.Quantity = qty
	line.Amount = qty * line.Price
	return *line, nil
}

// SetAmount overrides the amount and recomputes the quantity from it.
// A line with a non-positive price gets quantity 0.
func (c *Calculator) SetAmount(productID string, amount float64) (domain.CartLine, error) {
	if !nonNegative(amount) {
		return domain.CartLine{}, ErrInvalidValue
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return domain.CartLine{}, ErrLineNotFound
	}
	line := &c.lines[i]
	line.Amount = amount
	if line.Price > 0 {
		line.Quantity = amount / line.Price
	} else {
		line.Quantity = 0
	}
	return *line, nil
}

func (c *Calculator) RemoveLine(productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

func (c *Calculator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Lines returns a copy of the cart lines in the order they were added
func (c *Calculator) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total is the sum of all line amounts
func (c *Calculator) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return total(c.lines)
}

// Snapshot returns a copy of the lines and their total, taken under one lock
func (c *Calculator) Snapshot() ([]domain.CartLine, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]domain.CartLine, len(c.lines))
	copy(lines, c.lines)
	return lines, total(lines)
}

// Checkout decrements catalog stock by every line's quantity, clamped at 0, in a single
// catalog write and returns the bill.
// The cart keeps its lines so the bill stays printable until Clear is called.
func (c *Calculator) Checkout(ctx context.Context) (domain.Bill, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.lines) == 0 {
		return domain.Bill{}, ErrEmptyCart
	}

	quantities := make(map[string]float64, len(c.lines))
	for _, line := range c.lines {
		quantities[line.ProductID] += line.Quantity
	}

	missing, err := c.catalog.DecrementStock(ctx, quantities)
	if err != nil {
		return domain.Bill{}, fmt.Errorf("failed to decrement stock: %w", err)
	}
	for _, id := range missing {
		c.logger.Warn("checkout skipped product removed from catalog", "product_id", id)
	}

	lines := make([]domain.CartLine, len(c.lines))
	copy(lines, c.lines)
	bill := domain.Bill{
		ID:        uuid.New().String(),
		Lines:     lines,
		Total:     total(lines),
		CreatedAt: c.now(),
	}
	c.logger.Info("checkout completed", "bill_id", bill.ID, "lines", len(lines), "total", bill.Total)
	return bill, nil
}

func (c *Calculator) indexOf(productID string) int {
	for i, line := range c.lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

func total(lines []domain.CartLine) float64 {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(decimal.NewFromFloat(line.Amount))
	}
	return sum.InexactFloat64()
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}
