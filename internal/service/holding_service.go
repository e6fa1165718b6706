package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/finpilot-backend/internal/api/request"
	"github.com/ndewijer/finpilot-backend/internal/apperrors"
	"github.com/ndewijer/finpilot-backend/internal/model"
	"github.com/ndewijer/finpilot-backend/internal/repository"
	"github.com/ndewijer/finpilot-backend/internal/session"
)

var hundred = decimal.NewFromInt(100)

// HoldingService handles holdings and their live valuation.
type HoldingService struct {
	holdingRepo *repository.HoldingRepository
	stockRepo   *repository.StockRepository
	quotes      QuoteProvider
	log         zerolog.Logger
}

// NewHoldingService creates a new HoldingService with the provided dependencies.
func NewHoldingService(
	holdingRepo *repository.HoldingRepository,
	stockRepo *repository.StockRepository,
	quotes QuoteProvider,
	log zerolog.Logger,
) *HoldingService {
	return &HoldingService{
		holdingRepo: holdingRepo,
		stockRepo:   stockRepo,
		quotes:      quotes,
		log:         log.With().Str("component", "holdings").Logger(),
	}
}

// GetHoldings returns the user's stored holdings without market data.
func (s *HoldingService) GetHoldings(ctx context.Context, sess session.Session) ([]model.Holding, error) {
	holdings, err := s.holdingRepo.GetHoldings(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveHoldings, err)
	}
	return holdings, nil
}

// GetHoldingsWithPrices loads the user's holdings and prices each one with a live quote.
//
// One quote request is issued per holding, all in parallel, and the call returns
// once every request has settled. A failed lookup leaves that holding unpriced and
// never affects the others. Order is preserved (newest first).
//
// Parameters:
//   - ctx: request context, propagated into every quote lookup
//   - sess: the signed-in user
//
// Returns:
//   - []model.Holding: all holdings, priced where a quote was available
//   - error: only if the holdings could not be loaded
func (s *HoldingService) GetHoldingsWithPrices(ctx context.Context, sess session.Session) ([]model.Holding, error) {
	holdings, err := s.GetHoldings(ctx, sess)
	if err != nil {
		return nil, err
	}

	priced := make([]model.Holding, len(holdings))

	var g errgroup.Group
	for i, h := range holdings {
		g.Go(func() error {
			priced[i] = PriceHolding(h, s.quotes.GetQuote(ctx, h.Symbol))
			return nil
		})
	}
	_ = g.Wait()

	unpriced := 0
	for _, h := range priced {
		if !h.IsPriced() {
			unpriced++
		}
	}
	if unpriced > 0 {
		s.log.Warn().
			Str("user_id", sess.UserID).
			Int("holdings", len(priced)).
			Int("unpriced", unpriced).
			Msg("Some holdings could not be priced")
	}

	return priced, nil
}

// PriceHolding derives market value, profit/loss and change percent from a quote.
// Without a usable quote the holding is returned unchanged.
func PriceHolding(h model.Holding, result model.QuoteResult) model.Holding {
	if !result.Ok() {
		return h
	}

	price := result.Quote.Price
	changePercent := result.Quote.ChangePercent
	marketValue := price.Mul(h.Shares)
	profitLoss := marketValue.Sub(h.CostBasis())

	h.CurrentPrice = &price
	h.ChangePercent = &changePercent
	h.MarketValue = &marketValue
	h.ProfitLoss = &profitLoss
	return h
}

// Summarize aggregates priced holdings into portfolio totals and an allocation by asset type.
// Unpriced holdings are counted but contribute nothing to the totals.
func Summarize(holdings []model.Holding) model.PortfolioSummary {
	summary := model.PortfolioSummary{
		TotalValue:      decimal.Zero,
		TotalCost:       decimal.Zero,
		TotalProfitLoss: decimal.Zero,
		ReturnPercent:   decimal.Zero,
		Allocation:      []model.AllocationSlice{},
	}

	byType := make(map[model.AssetType]decimal.Decimal)
	for _, h := range holdings {
		if !h.IsPriced() {
			summary.UnpricedHoldings++
			continue
		}
		summary.PricedHoldings++
		summary.TotalValue = summary.TotalValue.Add(*h.MarketValue)
		summary.TotalCost = summary.TotalCost.Add(h.CostBasis())
		summary.TotalProfitLoss = summary.TotalProfitLoss.Add(*h.ProfitLoss)
		byType[h.AssetType] = byType[h.AssetType].Add(*h.MarketValue)
	}

	if summary.TotalCost.IsPositive() {
		summary.ReturnPercent = summary.TotalProfitLoss.Div(summary.TotalCost).Mul(hundred)
	}

	for assetType, value := range byType {
		slice := model.AllocationSlice{AssetType: assetType, Value: value, Percent: decimal.Zero}
		if summary.TotalValue.IsPositive() {
			slice.Percent = value.Div(summary.TotalValue).Mul(hundred)
		}
		summary.Allocation = append(summary.Allocation, slice)
	}
	sort.Slice(summary.Allocation, func(i, j int) bool {
		return summary.Allocation[i].Value.GreaterThan(summary.Allocation[j].Value)
	})

	return summary
}

// GetPortfolioSummary prices the user's holdings and summarizes them.
func (s *HoldingService) GetPortfolioSummary(ctx context.Context, sess session.Session) (model.PortfolioSummary, error) {
	holdings, err := s.GetHoldingsWithPrices(ctx, sess)
	if err != nil {
		return model.PortfolioSummary{}, err
	}
	return Summarize(holdings), nil
}

// GetCurrentPrice looks up a single quote, e.g. to prefill the average cost of a new holding.
func (s *HoldingService) GetCurrentPrice(ctx context.Context, symbol string) model.QuoteResult {
	return s.quotes.GetQuote(ctx, normalizeSymbol(symbol))
}

// AddHolding stores a new holding for the user.
// The name falls back to the stock catalog entry, then to the symbol itself.
//
// Returns:
//   - model.Holding: the stored holding
//   - error: apperrors.ErrDuplicateHolding if the user already holds the symbol
func (s *HoldingService) AddHolding(ctx context.Context, sess session.Session, req request.CreateHoldingRequest) (model.Holding, error) {
	symbol := normalizeSymbol(req.Symbol)
	if symbol == "" {
		return model.Holding{}, apperrors.ErrInvalidSymbol
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = symbol
		stock, err := s.stockRepo.GetStock(ctx, symbol)
		switch {
		case err == nil:
			name = stock.Name
		case !errors.Is(err, apperrors.ErrStockNotFound):
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Stock catalog lookup failed")
		}
	}

	assetType := model.AssetType(req.AssetType)
	if assetType == "" {
		assetType = model.AssetTypeStock
	}

	now := time.Now().UTC()
	holding := model.Holding{
		ID:        uuid.New().String(),
		UserID:    sess.UserID,
		Symbol:    symbol,
		Name:      name,
		Shares:    req.Shares,
		AvgCost:   req.AvgCost,
		AssetType: assetType,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.holdingRepo.InsertHolding(ctx, holding); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateHolding) {
			return model.Holding{}, err
		}
		return model.Holding{}, fmt.Errorf("failed to create holding: %w", err)
	}

	s.log.Info().Str("user_id", sess.UserID).Str("symbol", symbol).Msg("Holding added")
	return holding, nil
}

// UpdateHolding replaces shares and average cost of one of the user's holdings.
func (s *HoldingService) UpdateHolding(ctx context.Context, sess session.Session, holdingID string, req request.UpdateHoldingRequest) (model.Holding, error) {
	holding, err := s.holdingRepo.GetHolding(ctx, sess.UserID, holdingID)
	if err != nil {
		return model.Holding{}, err
	}

	holding.Shares = req.Shares
	holding.AvgCost = req.AvgCost
	holding.UpdatedAt = time.Now().UTC()

	if err := s.holdingRepo.UpdateHolding(ctx, holding); err != nil {
		return model.Holding{}, err
	}

	return holding, nil
}

// DeleteHolding removes one of the user's holdings.
func (s *HoldingService) DeleteHolding(ctx context.Context, sess session.Session, holdingID string) error {
	return s.holdingRepo.DeleteHolding(ctx, sess.UserID, holdingID)
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
