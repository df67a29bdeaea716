package cart_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/vladislavdragonenkov/pos-terminal/internal/cart"
	"github.com/vladislavdragonenkov/pos-terminal/internal/domain"
)

type staticResolver map[int64]domain.Product

func (r staticResolver) ProductByID(id int64) (domain.Product, bool) {
	p, ok := r[id]
	return p, ok
}

func testResolver() staticResolver {
	return staticResolver{
		1: {ID: 1, Name: "Smartphone", PriceMinor: 10000},
		2: {ID: 2, Name: "Charger", PriceMinor: 5000},
		3: {ID: 3, Name: "Case", PriceMinor: 2500},
	}
}

type captureSubmitter struct {
	sub cart.Submission
	err error
}

func (c *captureSubmitter) SubmitTransaction(_ context.Context, sub cart.Submission) error {
	c.sub = sub
	return c.err
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestStore_AddItemMergesByProductID(t *testing.T) {
	store := cart.NewStore(testResolver(), nil)

	if err := store.AddItem(1, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.AddItem(1, 3); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	items := store.Items()
	if len(items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", items[0].Quantity)
	}
}

func TestStore_AddItemPreservesInsertionOrder(t *testing.T) {
	store := cart.NewStore(testResolver(), nil)

	for _, id := range []int64{2, 1, 3} {
		if err := store.AddItem(id, 1); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	items := store.Items()
	got := []int64{items[0].ProductID, items[1].ProductID, items[2].ProductID}
	want := []int64{2, 1, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestStore_AddItemInvalid(t *testing.T) {
	store := cart.NewStore(testResolver(), nil)

	if err := store.AddItem(1, 0); !errors.Is(err, domain.ErrQuantityInvalid) {
		t.Fatalf("expected ErrQuantityInvalid, got %v", err)
	}
	if err := store.AddItem(99, 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if len(store.Items()) != 0 {
		t.Fatal("invalid adds must not mutate the cart")
	}
}

func TestStore_UpdateQuantityZeroRemoves(t *testing.T) {
	store := cart.NewStore(testResolver(), nil)
	if err := store.AddItem(1, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	store.UpdateQuantity(1, 0)
	if len(store.Items()) != 0 {
		t.Fatal("expected item removed at quantity 0")
	}

	if err := store.AddItem(1, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	store.UpdateQuantity(1, -1)
	if len(store.Items()) != 0 {
		t.Fatal("expected item removed at negative quantity")
	}
}

func TestStore_UpdateQuantityInPlace(t *testing.T) {
	store := cart.NewStore(testResolver(), nil)
	for _, id := range []int64{1, 2, 3} {
		if err := store.AddItem(id, 1); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	store.UpdateQuantity(2, 7)

	items := store.Items()
	if items[1].ProductID != 2 || items[1].Quantity != 7 {
		t.Fatalf("expected line 2 updated in place, got %+v", items[1])
	}
}

func TestStore_RemoveItemAbsentIsNoop(t *testing.T) {
	store := cart.NewStore(testResolver(), nil)
	if err := store.AddItem(1, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	store.RemoveItem(42)
	store.UpdateQuantity(42, 5)

	if len(store.Items()) != 1 {
		t.Fatal("operations on absent lines must not change the cart")
	}
}

// Subtotal must equal the sum over the resulting item list for any sequence
// of mutations.
func TestStore_SubtotalConservation(t *testing.T) {
	store := cart.NewStore(testResolver(), nil)

	if err := store.AddItem(1, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.AddItem(2, 4); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	store.UpdateQuantity(2, 1)
	if err := store.AddItem(3, 3); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	store.RemoveItem(3)
	if err := store.AddItem(1, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	var want int64
	for _, li := range store.Items() {
		want += li.PriceMinor * int64(li.Quantity)
	}
	if got := store.Totals().SubtotalMinor; got != want {
		t.Fatalf("expected subtotal %d, got %d", want, got)
	}
}

func TestComputeTotals_Scenario(t *testing.T) {
	items := []domain.LineItem{
		{ProductID: 1, PriceMinor: 10000, Quantity: 2},
		{ProductID: 2, PriceMinor: 5000, Quantity: 1},
	}

	totals := cart.ComputeTotals(items, 10, 10)

	if totals.SubtotalMinor != 25000 {
		t.Fatalf("expected subtotal 25000, got %d", totals.SubtotalMinor)
	}
	if !almostEqual(totals.DiscountAmount, 2500) {
		t.Fatalf("expected discount 2500, got %f", totals.DiscountAmount)
	}
	if !almostEqual(totals.TaxAmount, 2250) {
		t.Fatalf("expected tax 2250, got %f", totals.TaxAmount)
	}
	if !almostEqual(totals.Total, 24750) {
		t.Fatalf("expected total 24750, got %f", totals.Total)
	}
}

func TestComputeTotals_Identity(t *testing.T) {
	items := []domain.LineItem{
		{ProductID: 1, PriceMinor: 12345, Quantity: 3},
		{ProductID: 2, PriceMinor: 999, Quantity: 7},
	}

	totals := cart.ComputeTotals(items, 12.5, 7.25)

	if !almostEqual(totals.TaxAmount, (float64(totals.SubtotalMinor)-totals.DiscountAmount)*7.25/100) {
		t.Fatalf("tax identity violated: %+v", totals)
	}
	if !almostEqual(totals.Total, float64(totals.SubtotalMinor)-totals.DiscountAmount+totals.TaxAmount) {
		t.Fatalf("total identity violated: %+v", totals)
	}
}

func TestComputeTotals_Empty(t *testing.T) {
	totals := cart.ComputeTotals(nil, 10, 10)

	if totals.SubtotalMinor != 0 || totals.DiscountAmount != 0 || totals.TaxAmount != 0 || totals.Total != 0 {
		t.Fatalf("expected zero totals for empty cart, got %+v", totals)
	}
}

func TestStore_CheckoutEmptyCart(t *testing.T) {
	store := cart.NewStore(testResolver(), nil)

	_, err := store.Checkout(context.Background(), &captureSubmitter{})
	if !errors.Is(err, domain.ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestStore_CheckoutResetsState(t *testing.T) {
	store := cart.NewStore(testResolver(), nil)
	if err := store.AddItem(1, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	store.SetCustomer("Budi", "0812000")
	store.SetPaymentMethod("card")
	store.SetDiscountPercent(10)

	submitter := &captureSubmitter{}
	sub, err := store.Checkout(context.Background(), submitter)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if sub.IdempotencyKey == "" {
		t.Fatal("expected idempotency key")
	}
	if submitter.sub.CustomerName != "Budi" || submitter.sub.PaymentMethod != "card" {
		t.Fatalf("submission does not carry cart header: %+v", submitter.sub)
	}

	if len(store.Items()) != 0 {
		t.Fatal("expected items cleared after checkout")
	}
	if name, _ := store.Customer(); name != "" {
		t.Fatal("expected customer cleared after checkout")
	}
	if store.DiscountPercent() != 0 {
		t.Fatal("expected discount cleared after checkout")
	}
	if store.PaymentMethod() != cart.DefaultPaymentMethod {
		t.Fatalf("expected default payment method, got %s", store.PaymentMethod())
	}
}

func TestStore_CheckoutFailureKeepsCart(t *testing.T) {
	store := cart.NewStore(testResolver(), nil)
	if err := store.AddItem(1, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	submitter := &captureSubmitter{err: errors.New("backend down")}
	if _, err := store.Checkout(context.Background(), submitter); err == nil {
		t.Fatal("expected checkout error")
	}

	if len(store.Items()) != 1 {
		t.Fatal("failed checkout must keep the cart intact")
	}
}
