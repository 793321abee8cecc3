package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"bowtique/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: the persisted order total always equals the sum of
// priceAtTime * quantity over its items, to the cent, regardless of what
// the client claimed per unit.
func TestProperty_OrderTotalMatchesItems(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("total equals sum of priceAtTime times quantity", prop.ForAll(
		func(price1 float64, price2 float64, qty1 int, qty2 int, claimed float64) bool {
			store := newFakeStore()
			store.addProduct("RIB-1", "Scarlet Ribbon", price1, qty1+qty2)
			store.addProduct("WRE-1", "Autumn Wreath", price2, qty1+qty2)
			svc := newTestOrderService(store)

			req := validRequest(
				OrderLine{SKU: "RIB-1", Quantity: qty1, ClaimedUnitPrice: claimed},
				OrderLine{SKU: "WRE-1", Quantity: qty2, ClaimedUnitPrice: claimed},
			)

			order, err := svc.PlaceOrder(context.Background(), req)
			if err != nil {
				t.Logf("FAIL: PlaceOrder failed: %v", err)
				return false
			}

			var cents int64
			for _, item := range order.Items {
				cents += domain.Cents(item.PriceAtTime) * int64(item.Quantity)
			}
			if math.Abs(order.TotalAmount-domain.FromCents(cents)) > domain.TotalTolerance {
				t.Logf("FAIL: total %.2f does not match item sum %.2f", order.TotalAmount, domain.FromCents(cents))
				return false
			}

			// Stored unit prices come from the catalog, never the claim.
			for _, item := range order.Items {
				want := price1
				if item.ProductSKU == "WRE-1" {
					want = price2
				}
				if item.PriceAtTime != want {
					t.Logf("FAIL: priceAtTime %.2f differs from catalog price %.2f", item.PriceAtTime, want)
					return false
				}
			}

			return true
		},
		gen.Float64Range(0.01, 999.99), // price1
		gen.Float64Range(0.01, 999.99), // price2
		gen.IntRange(1, 20),            // qty1
		gen.IntRange(1, 20),            // qty2
		gen.Float64Range(0.01, 999.99), // claimed
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: however many order attempts run against a SKU, stock never goes
// negative and every unit removed from the shelf is accounted for by a
// persisted order.
func TestProperty_StockIsConserved(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("decrements never exceed initial stock", prop.ForAll(
		func(initialStock int, quantities []int) bool {
			store := newFakeStore()
			store.addProduct("RIB-1", "Scarlet Ribbon", 4.50, initialStock)
			svc := newTestOrderService(store)
			ctx := context.Background()

			sold := 0
			for _, qty := range quantities {
				_, err := svc.PlaceOrder(ctx, validRequest(OrderLine{SKU: "RIB-1", Quantity: qty}))
				if err == nil {
					sold += qty
					continue
				}
				var stockErr *domain.InsufficientStockError
				if !errors.As(err, &stockErr) {
					t.Logf("FAIL: unexpected error: %v", err)
					return false
				}
			}

			remaining := store.products["RIB-1"].Quantity
			if remaining < 0 {
				t.Logf("FAIL: stock went negative: %d", remaining)
				return false
			}
			if remaining+sold != initialStock {
				t.Logf("FAIL: %d remaining + %d sold != %d initial", remaining, sold, initialStock)
				return false
			}

			var persisted int
			for _, order := range store.orders {
				for _, item := range order.Items {
					persisted += item.Quantity
				}
			}
			if persisted != sold {
				t.Logf("FAIL: persisted %d units but sold %d", persisted, sold)
				return false
			}

			return true
		},
		gen.IntRange(0, 50),                         // initialStock
		gen.SliceOf(gen.IntRange(1, 10)),            // quantities
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: a rejected attempt leaves the store exactly as it found it.
func TestProperty_FailedOrderLeavesNoTrace(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("total mismatch rejections never move stock", prop.ForAll(
		func(price float64, stock int, qty int, offBy float64) bool {
			store := newFakeStore()
			store.addProduct("RIB-1", "Scarlet Ribbon", price, stock)
			svc := newTestOrderService(store)

			computed := domain.FromCents(domain.Cents(price) * int64(qty))
			wrong := computed + offBy
			req := validRequest(OrderLine{SKU: "RIB-1", Quantity: qty})
			req.ExpectedTotal = &wrong

			_, err := svc.PlaceOrder(context.Background(), req)
			var mismatch *domain.TotalMismatchError
			if !errors.As(err, &mismatch) {
				t.Logf("FAIL: expected TotalMismatchError, got %v", err)
				return false
			}

			if got := store.products["RIB-1"].Quantity; got != stock {
				t.Logf("FAIL: stock moved from %d to %d on rejected order", stock, got)
				return false
			}
			if len(store.orders) != 0 {
				t.Logf("FAIL: %d orders persisted despite rejection", len(store.orders))
				return false
			}

			return true
		},
		gen.Float64Range(0.01, 999.99), // price
		gen.IntRange(10, 100),          // stock
		gen.IntRange(1, 10),            // qty
		gen.Float64Range(0.02, 5.00),   // offBy, beyond the cent tolerance
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
