package service

import (
	"math"
	"testing"

	"embassy-inventory/internal/apperr"
	"embassy-inventory/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type InventorySuite struct {
	storeSuite
}

func TestInventorySuite(t *testing.T) {
	suite.Run(t, new(InventorySuite))
}

func (s *InventorySuite) TestCreateRoundsPriceAndFinds() {
	svc := s.inventory()
	created, err := svc.CreateProduct(s.ctx, widgetRequest())
	s.Require().NoError(err)
	s.Equal("10.00", created.Price.StringFixed(2))

	got, err := svc.FindProduct(s.ctx, " A1 ")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.True(got.Price.Equal(decimal.RequireFromString("10.00")))
	s.True(got.TotalPrice().Equal(decimal.RequireFromString("100.00")))
	s.Equal(model.NewTimestamp(fixedNow).ISO(), got.AddedOn.ISO())
}

func (s *InventorySuite) TestCreateTrimsAndRejects() {
	svc := s.inventory()

	req := widgetRequest()
	req.SKU = "  B2 "
	req.Name = " Bolt "
	p, err := svc.CreateProduct(s.ctx, req)
	s.Require().NoError(err)
	s.Equal("B2", p.SKU)
	s.Equal("Bolt", p.Name)

	_, err = svc.CreateProduct(s.ctx, req)
	s.ErrorIs(err, apperr.ErrValidation)
	s.Contains(err.Error(), "already exists")

	bad := []func(*CreateProductRequest){
		func(r *CreateProductRequest) { r.SKU = "  " },
		func(r *CreateProductRequest) { r.Name = "" },
		func(r *CreateProductRequest) { r.Price = nil },
		func(r *CreateProductRequest) { r.Price = dec("-0.01") },
		func(r *CreateProductRequest) { r.Qty = -1 },
		func(r *CreateProductRequest) { r.Unit = "" },
		func(r *CreateProductRequest) { r.Category = "GADGETS" },
	}
	for _, mutate := range bad {
		r := widgetRequest()
		r.SKU = "C3"
		mutate(&r)
		_, err := svc.CreateProduct(s.ctx, r)
		s.ErrorIs(err, apperr.ErrValidation)
	}

	missing, err := svc.FindProduct(s.ctx, "C3")
	s.Require().NoError(err)
	s.Nil(missing)
}

func (s *InventorySuite) TestUpdatePreservesQtyAndAddedOn() {
	svc := s.inventory()
	_, err := svc.CreateProduct(s.ctx, widgetRequest())
	s.Require().NoError(err)

	updated, err := svc.UpdateProduct(s.ctx, UpdateProductRequest{
		SKU: "A1", Name: "Widget Pro", Price: dec("12.345"), Unit: model.UnitBox, Category: model.CategoryStationery,
	})
	s.Require().NoError(err)
	s.Equal(10, updated.Qty)
	s.Equal("12.35", updated.Price.StringFixed(2))

	got, err := svc.FindProduct(s.ctx, "A1")
	s.Require().NoError(err)
	s.Equal("Widget Pro", got.Name)
	s.Equal(10, got.Qty)
	s.Equal(model.NewTimestamp(fixedNow).ISO(), got.AddedOn.ISO())

	_, err = svc.UpdateProduct(s.ctx, UpdateProductRequest{SKU: "ZZ", Name: "x", Price: dec("1"), Unit: model.UnitBox, Category: model.CategoryOther})
	s.ErrorIs(err, apperr.ErrNotFound)

	_, err = svc.UpdateProduct(s.ctx, UpdateProductRequest{SKU: "A1", Name: " ", Price: dec("1"), Unit: model.UnitBox, Category: model.CategoryOther})
	s.ErrorIs(err, apperr.ErrValidation)
}

func (s *InventorySuite) TestDeleteIsUnconditional() {
	svc := s.inventory()
	_, err := svc.CreateProduct(s.ctx, widgetRequest())
	s.Require().NoError(err)
	_, _, err = svc.IssueAndLog(s.ctx, "A1", 1, "finance")
	s.Require().NoError(err)

	removed, err := svc.DeleteProduct(s.ctx, "A1")
	s.Require().NoError(err)
	s.True(removed)

	entries, err := s.outflow.List(s.ctx, model.DefaultOutflowSort)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *InventorySuite) TestListSortsWithFallback() {
	svc := s.inventory()
	for _, r := range []CreateProductRequest{
		{SKU: "b2", Name: "Bolt", Price: dec("1.00"), Qty: 50, Unit: model.UnitBox, Category: model.CategoryMaintenance},
		{SKU: "A1", Name: "Widget", Price: dec("10.00"), Qty: 10, Unit: model.UnitEach, Category: model.CategoryOther},
		{SKU: "C3", Name: "Cable", Price: dec("5.00"), Qty: 1, Unit: model.UnitEach, Category: model.CategoryElectronics},
	} {
		_, err := svc.CreateProduct(s.ctx, r)
		s.Require().NoError(err)
	}

	skus := func(ps []model.Product) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.SKU
		}
		return out
	}

	list, err := svc.ListProducts(s.ctx, "TOTAL_PRICE_DESC")
	s.Require().NoError(err)
	s.Equal([]string{"A1", "b2", "C3"}, skus(list))

	list, err = svc.ListProducts(s.ctx, "nonsense")
	s.Require().NoError(err)
	s.Equal([]string{"A1", "b2", "C3"}, skus(list))

	list, err = svc.ListProducts(s.ctx, "QTY_ASC")
	s.Require().NoError(err)
	s.Equal([]string{"C3", "A1", "b2"}, skus(list))
}

func (s *InventorySuite) TestIssueAndLogSnapshotsPrice() {
	svc := s.inventory()
	_, err := svc.CreateProduct(s.ctx, widgetRequest())
	s.Require().NoError(err)

	product, entry, err := svc.IssueAndLog(s.ctx, "A1", 3, "finance")
	s.Require().NoError(err)
	s.Equal(7, product.Qty)
	s.Equal(3, entry.Qty)
	s.Equal("10.00", entry.Price.Decimal.StringFixed(2))
	s.Equal("30.00", entry.TotalPrice.Decimal.StringFixed(2))

	entries, err := s.outflow.List(s.ctx, model.DefaultOutflowSort)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	got := entries[0]
	s.Equal("finance", got.User)
	s.Equal("Widget", got.ProductName)
	s.Equal("EACH", got.Unit)
	s.Equal("OTHER", got.Category)
	s.True(got.ResolvedPrice().Equal(decimal.RequireFromString("10")))
	s.True(got.ResolvedTotal().Equal(decimal.RequireFromString("30")))
	s.Equal("2024-03-01 09:30", got.DateTime.Display())

	stored, err := svc.FindProduct(s.ctx, "A1")
	s.Require().NoError(err)
	s.Equal(7, stored.Qty)

	s.InDelta(3, testutil.ToFloat64(s.metrics.UnitsIssued), 0)
	s.InDelta(1, testutil.ToFloat64(s.metrics.LedgerAppends), 0)
}

func (s *InventorySuite) TestIssueInsufficientLeavesQty() {
	svc := s.inventory()
	_, err := svc.CreateProduct(s.ctx, widgetRequest())
	s.Require().NoError(err)

	_, err = svc.Issue(s.ctx, "A1", 11)
	s.ErrorIs(err, apperr.ErrInsufficientStock)

	_, _, err = svc.IssueAndLog(s.ctx, "A1", 11, "finance")
	s.ErrorIs(err, apperr.ErrInsufficientStock)

	got, err := svc.FindProduct(s.ctx, "A1")
	s.Require().NoError(err)
	s.Equal(10, got.Qty)

	entries, err := s.outflow.List(s.ctx, model.DefaultOutflowSort)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *InventorySuite) TestIssueAndReceiveValidation() {
	svc := s.inventory()
	_, err := svc.CreateProduct(s.ctx, widgetRequest())
	s.Require().NoError(err)

	_, err = svc.Issue(s.ctx, "ZZ", 1)
	s.ErrorIs(err, apperr.ErrNotFound)
	_, err = svc.Issue(s.ctx, "A1", 0)
	s.ErrorIs(err, apperr.ErrValidation)
	_, err = svc.Receive(s.ctx, "ZZ", 1)
	s.ErrorIs(err, apperr.ErrNotFound)
	_, err = svc.Receive(s.ctx, "A1", -2)
	s.ErrorIs(err, apperr.ErrValidation)
}

func (s *InventorySuite) TestPriceMustFitTheStore() {
	svc := s.inventory()

	for _, price := range []string{"1e400", "1e13", "1000000000000.01"} {
		r := widgetRequest()
		r.Price = dec(price)
		_, err := svc.CreateProduct(s.ctx, r)
		s.ErrorIs(err, apperr.ErrValidation, price)
		s.Contains(err.Error(), "Price is not a storable amount")
	}

	r := widgetRequest()
	r.Price = dec("1000000000000")
	_, err := svc.CreateProduct(s.ctx, r)
	s.Require().NoError(err)

	_, err = svc.UpdateProduct(s.ctx, UpdateProductRequest{
		SKU: "A1", Name: "Widget", Price: dec("1e400"), Unit: model.UnitEach, Category: model.CategoryOther,
	})
	s.ErrorIs(err, apperr.ErrValidation)

	products, err := svc.ListProducts(s.ctx, "")
	s.Require().NoError(err)
	s.Require().Len(products, 1)
	s.Equal("1000000000000.00", products[0].Price.StringFixed(2))
}

func (s *InventorySuite) TestReceiveRefusesOverflow() {
	svc := s.inventory()
	_, err := svc.CreateProduct(s.ctx, widgetRequest())
	s.Require().NoError(err)

	_, err = svc.Receive(s.ctx, "A1", math.MaxInt)
	s.ErrorIs(err, apperr.ErrValidation)

	p, err := svc.Receive(s.ctx, "A1", math.MaxInt-10)
	s.Require().NoError(err)
	s.Equal(math.MaxInt, p.Qty)

	products, err := svc.ListProducts(s.ctx, "")
	s.Require().NoError(err)
	s.Require().Len(products, 1)
	s.Equal(math.MaxInt, products[0].Qty)
}

func (s *InventorySuite) TestReceiveThenIssueRoundTrip() {
	svc := s.inventory()
	_, err := svc.CreateProduct(s.ctx, widgetRequest())
	s.Require().NoError(err)

	p, err := svc.Receive(s.ctx, "A1", 25)
	s.Require().NoError(err)
	s.Equal(35, p.Qty)

	p, err = svc.Issue(s.ctx, "A1", 25)
	s.Require().NoError(err)
	s.Equal(10, p.Qty)

	entries, err := s.outflow.List(s.ctx, model.DefaultOutflowSort)
	s.Require().NoError(err)
	s.Empty(entries, "plain Issue does not write the ledger")
}

func (s *InventorySuite) TestIssueAndLogRollsBackOnLedgerFailure() {
	svc := NewInventoryService(s.db, s.products, failingOutflowRepo{}, zap.NewNop(), s.metrics)
	_, err := svc.CreateProduct(s.ctx, widgetRequest())
	s.Require().NoError(err)

	_, _, err = svc.IssueAndLog(s.ctx, "A1", 3, "finance")
	s.ErrorIs(err, apperr.ErrStorage)

	got, err := svc.FindProduct(s.ctx, "A1")
	s.Require().NoError(err)
	s.Equal(10, got.Qty)
}

func TestFilterProducts(t *testing.T) {
	products := []model.Product{
		{SKU: "A1", Name: "Widget"},
		{SKU: "B2", Name: "Blue pen"},
		{SKU: "PEN-9", Name: "Marker"},
	}
	require.Len(t, FilterProducts(products, ""), 3)
	require.Len(t, FilterProducts(products, "  "), 3)

	got := FilterProducts(products, "PEN")
	require.Len(t, got, 2)
	require.Equal(t, "B2", got[0].SKU)
	require.Equal(t, "PEN-9", got[1].SKU)

	require.Empty(t, FilterProducts(products, "zzz"))
}
