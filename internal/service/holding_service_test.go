package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/finpilot-backend/internal/api/request"
	"github.com/ndewijer/finpilot-backend/internal/apperrors"
	"github.com/ndewijer/finpilot-backend/internal/model"
	"github.com/ndewijer/finpilot-backend/internal/service"
	"github.com/ndewijer/finpilot-backend/internal/testutil"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// TestHoldingService_GetHoldingsWithPrices tests live valuation of holdings.
//
// WHY: Every dashboard figure derives from these values. Market value and
// profit/loss must follow the quote exactly, and one failed lookup must not
// hide the rest of the portfolio.
func TestHoldingService_GetHoldingsWithPrices(t *testing.T) {
	ctx := context.Background()

	t.Run("prices a holding from its quote", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		quotes := testutil.NewFakeQuoteProvider().WithPrice("AAPL", "200", "2.56")
		svcs := testutil.NewTestServicesWith(t, db, quotes, testutil.NewFakeNewsProvider(nil), testutil.NewFakeAdvisor())
		user := testutil.NewUser().Build(t, db)
		testutil.NewHolding(user.ID).WithSymbol("AAPL").WithShares("10").WithAvgCost("150").Build(t, db)

		// Execute
		holdings, err := svcs.Holdings.GetHoldingsWithPrices(ctx, testutil.SessionFor(user))

		// Assert
		require.NoError(t, err)
		require.Len(t, holdings, 1)
		h := holdings[0]
		require.True(t, h.IsPriced())
		assert.True(t, h.CurrentPrice.Equal(dec("200")))
		assert.True(t, h.MarketValue.Equal(dec("2000")), "market value %s", h.MarketValue)
		assert.True(t, h.ProfitLoss.Equal(dec("500")), "profit/loss %s", h.ProfitLoss)
		assert.True(t, h.ChangePercent.Equal(dec("2.56")))
	})

	t.Run("failed lookup leaves only that holding unpriced", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		quotes := testutil.NewFakeQuoteProvider().
			WithPrice("AAPL", "200", "1").
			WithStatus("BROKE", model.QuoteStatusUnavailable)
		svcs := testutil.NewTestServicesWith(t, db, quotes, testutil.NewFakeNewsProvider(nil), testutil.NewFakeAdvisor())
		user := testutil.NewUser().Build(t, db)
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		testutil.NewHolding(user.ID).WithSymbol("AAPL").WithCreatedAt(base).Build(t, db)
		testutil.NewHolding(user.ID).WithSymbol("BROKE").WithCreatedAt(base.Add(time.Hour)).Build(t, db)

		// Execute
		holdings, err := svcs.Holdings.GetHoldingsWithPrices(ctx, testutil.SessionFor(user))

		// Assert
		require.NoError(t, err)
		require.Len(t, holdings, 2)
		assert.Equal(t, "BROKE", holdings[0].Symbol, "newest first")
		assert.False(t, holdings[0].IsPriced())
		assert.Nil(t, holdings[0].MarketValue)
		assert.Equal(t, "AAPL", holdings[1].Symbol)
		assert.True(t, holdings[1].IsPriced())
		assert.Equal(t, 2, quotes.Calls())
	})

	t.Run("only returns the session user's holdings", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		owner := testutil.NewUser().Build(t, db)
		other := testutil.NewUser().Build(t, db)
		testutil.NewHolding(owner.ID).Build(t, db)

		// Execute
		holdings, err := svcs.Holdings.GetHoldingsWithPrices(ctx, testutil.SessionFor(other))

		// Assert
		require.NoError(t, err)
		assert.Empty(t, holdings)
		assert.Equal(t, 0, svcs.Quotes.Calls())
	})
}

func TestPriceHolding(t *testing.T) {
	h := model.Holding{Symbol: "MSFT", Shares: dec("3"), AvgCost: dec("300")}

	t.Run("not found quote leaves holding untouched", func(t *testing.T) {
		got := service.PriceHolding(h, model.QuoteResult{Status: model.QuoteStatusNotFound})
		assert.False(t, got.IsPriced())
	})

	t.Run("loss is negative", func(t *testing.T) {
		got := service.PriceHolding(h, model.QuoteResult{
			Status: model.QuoteStatusOK,
			Quote:  &model.Quote{Symbol: "MSFT", Price: dec("250"), ChangePercent: dec("-1.5")},
		})
		require.True(t, got.IsPriced())
		assert.True(t, got.MarketValue.Equal(dec("750")))
		assert.True(t, got.ProfitLoss.Equal(dec("-150")))
	})
}

// TestSummarize tests aggregation of priced holdings.
//
// WHY: The summary feeds the headline numbers and the goal analysis. Unpriced
// holdings must be counted but must not drag totals down to a wrong value.
func TestSummarize(t *testing.T) {
	priced := func(symbol string, assetType model.AssetType, shares, cost, price string) model.Holding {
		h := model.Holding{Symbol: symbol, Shares: dec(shares), AvgCost: dec(cost), AssetType: assetType}
		return service.PriceHolding(h, model.QuoteResult{
			Status: model.QuoteStatusOK,
			Quote:  &model.Quote{Symbol: symbol, Price: dec(price)},
		})
	}

	t.Run("empty portfolio", func(t *testing.T) {
		summary := service.Summarize(nil)

		assert.True(t, summary.TotalValue.IsZero())
		assert.True(t, summary.ReturnPercent.IsZero())
		assert.Empty(t, summary.Allocation)
	})

	t.Run("totals and allocation", func(t *testing.T) {
		holdings := []model.Holding{
			priced("AAPL", model.AssetTypeStock, "10", "150", "200"),
			priced("GLD", model.AssetTypeOther, "5", "200", "200"),
			priced("MSFT", model.AssetTypeStock, "2", "250", "500"),
			{Symbol: "NOPE", Shares: dec("1"), AvgCost: dec("1000"), AssetType: model.AssetTypeStock},
		}

		summary := service.Summarize(holdings)

		assert.True(t, summary.TotalValue.Equal(dec("4000")), "total value %s", summary.TotalValue)
		assert.True(t, summary.TotalCost.Equal(dec("3000")), "total cost %s", summary.TotalCost)
		assert.True(t, summary.TotalProfitLoss.Equal(dec("1000")))
		assert.Equal(t, "33.33", summary.ReturnPercent.StringFixed(2))
		assert.Equal(t, 3, summary.PricedHoldings)
		assert.Equal(t, 1, summary.UnpricedHoldings)

		require.Len(t, summary.Allocation, 2)
		assert.Equal(t, model.AssetTypeStock, summary.Allocation[0].AssetType)
		assert.True(t, summary.Allocation[0].Value.Equal(dec("3000")))
		assert.Equal(t, "75.00", summary.Allocation[0].Percent.StringFixed(2))
		assert.Equal(t, model.AssetTypeOther, summary.Allocation[1].AssetType)
		assert.Equal(t, "25.00", summary.Allocation[1].Percent.StringFixed(2))
	})
}

func TestHoldingService_AddHolding(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes symbol and takes name from catalog", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		user := testutil.NewUser().Build(t, db)

		// Execute
		h, err := svcs.Holdings.AddHolding(ctx, testutil.SessionFor(user), request.CreateHoldingRequest{
			Symbol:  " aapl ",
			Shares:  dec("10"),
			AvgCost: dec("150"),
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "AAPL", h.Symbol)
		assert.Equal(t, "Apple Inc.", h.Name)
		assert.Equal(t, model.AssetTypeStock, h.AssetType)
		testutil.AssertRowCount(t, db, "holdings", 1)
	})

	t.Run("unknown symbol uses the symbol as name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		user := testutil.NewUser().Build(t, db)

		h, err := svcs.Holdings.AddHolding(ctx, testutil.SessionFor(user), request.CreateHoldingRequest{
			Symbol:    "ZZZZ",
			Shares:    dec("1"),
			AvgCost:   dec("1"),
			AssetType: string(model.AssetTypeOther),
		})

		require.NoError(t, err)
		assert.Equal(t, "ZZZZ", h.Name)
		assert.Equal(t, model.AssetTypeOther, h.AssetType)
	})

	t.Run("duplicate symbol is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		user := testutil.NewUser().Build(t, db)
		testutil.NewHolding(user.ID).WithSymbol("AAPL").Build(t, db)

		_, err := svcs.Holdings.AddHolding(ctx, testutil.SessionFor(user), request.CreateHoldingRequest{
			Symbol:  "AAPL",
			Shares:  dec("1"),
			AvgCost: dec("1"),
		})

		assert.ErrorIs(t, err, apperrors.ErrDuplicateHolding)
		testutil.AssertRowCount(t, db, "holdings", 1)
	})
}

func TestHoldingService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db)
	owner := testutil.NewUser().Build(t, db)
	other := testutil.NewUser().Build(t, db)
	h := testutil.NewHolding(owner.ID).Build(t, db)

	t.Run("other user cannot update", func(t *testing.T) {
		_, err := svcs.Holdings.UpdateHolding(ctx, testutil.SessionFor(other), h.ID,
			request.UpdateHoldingRequest{Shares: dec("1"), AvgCost: dec("1")})
		assert.ErrorIs(t, err, apperrors.ErrHoldingNotFound)
	})

	t.Run("owner updates shares and cost", func(t *testing.T) {
		updated, err := svcs.Holdings.UpdateHolding(ctx, testutil.SessionFor(owner), h.ID,
			request.UpdateHoldingRequest{Shares: dec("12.5"), AvgCost: dec("99.99")})
		require.NoError(t, err)
		assert.True(t, updated.Shares.Equal(dec("12.5")))

		stored, err := svcs.Holdings.GetHoldings(ctx, testutil.SessionFor(owner))
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.True(t, stored[0].AvgCost.Equal(dec("99.99")))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svcs.Holdings.DeleteHolding(ctx, testutil.SessionFor(owner), h.ID))
		err := svcs.Holdings.DeleteHolding(ctx, testutil.SessionFor(owner), h.ID)
		assert.ErrorIs(t, err, apperrors.ErrHoldingNotFound)
	})
}
