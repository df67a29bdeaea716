package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/pos-terminal/internal/api"
	"github.com/vladislavdragonenkov/pos-terminal/internal/cart"
	"github.com/vladislavdragonenkov/pos-terminal/internal/domain"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestListProducts_DecodesEnvelope(t *testing.T) {
	var gotQuery map[string][]string
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products", r.URL.Path)
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{
			"data": {
				"data": [
					{"id": 1, "name": "Laptop", "sku": "LPT-1", "price": 1500000,
					 "category": {"id": 2, "name": "Electronics"},
					 "stock": [{"quantity": 3}, {"quantity": 4}], "is_active": true},
					{"id": 2, "name": "Mouse", "price": 50000, "category_id": 2}
				],
				"current_page": 2,
				"last_page": 7
			}
		}`))
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, staticToken("tok-123"), "pos-terminal/test", nil)

	page, err := client.ListProducts(context.Background(), "laptop", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"laptop"}, gotQuery["search"])
	assert.Equal(t, []string{"2"}, gotQuery["page"])
	assert.Equal(t, "Bearer tok-123", gotAuth)

	require.Len(t, page.Products, 2)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 7, page.LastPage)

	laptop := page.Products[0]
	assert.Equal(t, int64(1), laptop.ID)
	assert.Equal(t, int64(1500000), laptop.PriceMinor)
	assert.Equal(t, int32(7), laptop.StockQuantity, "stock rows must be summed")
	assert.Equal(t, "Electronics", laptop.CategoryName)

	// Missing stock array decodes as zero quantity, not an error.
	assert.Equal(t, int32(0), page.Products[1].StockQuantity)
}

func TestListProducts_EmptySearchOmitted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("search"))
		_, _ = w.Write([]byte(`{"data": {"data": [], "current_page": 1, "last_page": 1}}`))
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, staticToken(""), "", nil)
	page, err := client.ListProducts(context.Background(), "", 1)
	require.NoError(t, err)
	assert.Empty(t, page.Products)
}

func TestAPIError_Decoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "token expired"}`))
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, staticToken("stale"), "", nil)
	_, err := client.ListProducts(context.Background(), "", 1)
	require.Error(t, err)

	apiErr, ok := api.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "token expired", apiErr.Message)
	assert.True(t, api.IsUnauthorized(err))
}

func TestNetworkError_NotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // порт закрыт — запрос упадёт на уровне сети

	client := api.NewClient(srv.URL, nil, "", nil)
	_, err := client.ListProducts(context.Background(), "", 1)
	require.Error(t, err)

	_, ok := api.IsAPIError(err)
	assert.False(t, ok)
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "admin@pos.local", body["email"])

		_, _ = w.Write([]byte(`{
			"data": {
				"user": {"id": 1, "name": "Admin", "email": "admin@pos.local", "branch": "jakarta-1"},
				"access_token": "tok-xyz"
			}
		}`))
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, staticToken(""), "", nil)
	user, token, err := client.Login(context.Background(), "admin@pos.local", "secret")
	require.NoError(t, err)

	assert.Equal(t, "tok-xyz", token)
	assert.Equal(t, "Admin", user.Name)
	assert.Equal(t, "jakarta-1", user.Branch)
}

func TestCreateProduct_ValidatesBeforeNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, staticToken("tok"), "", nil)
	_, err := client.CreateProduct(context.Background(), domain.ProductInput{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNameRequired)
	assert.ErrorIs(t, err, domain.ErrPriceInvalid)
	assert.ErrorIs(t, err, domain.ErrCategoryRequired)
	assert.False(t, called, "invalid input must not reach the backend")
}

func TestSubmitTransaction(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transactions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, staticToken("tok"), "", nil)
	err := client.SubmitTransaction(context.Background(), cart.Submission{
		IdempotencyKey: "key-1",
		CustomerName:   "Budi",
		PaymentMethod:  "cash",
		TaxPercent:     10,
		Items: []domain.LineItem{
			{ProductID: 1, PriceMinor: 10000, Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "key-1", got["idempotency_key"])
	assert.Equal(t, "Budi", got["customer_name"])
	items, ok := got["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
}

func TestListTransactions_SkipsUnparsableDates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"data": [
				{"date": "2024-01-15", "category": "Electronics", "product": "Smartphone",
				 "quantity": 25, "price": 8000000, "customer": "PT ABC", "region": "Jakarta"},
				{"date": "not-a-date", "category": "Fashion", "product": "Jacket",
				 "quantity": 15, "price": 500000, "customer": "CV XYZ", "region": "Bandung"}
			]
		}`))
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, staticToken("tok"), "", nil)
	records, err := client.ListTransactions(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "Smartphone", records[0].Product)
	assert.Equal(t, int64(200000000), records[0].TotalMinor())
}

func TestDailySalesAndTopProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/reports/daily-sales":
			require.Equal(t, http.MethodPost, r.Method)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "jakarta-1", body["branch_id"])
			_, _ = w.Write([]byte(`{"data": {"date": "2024-03-01", "total": 123000, "transactions": 4}}`))
		case "/reports/top-product":
			_, _ = w.Write([]byte(`{"data": [{"product": "Smartphone", "total": 200000000, "quantity": 25}]}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, staticToken("tok"), "", nil)

	daily, err := client.DailySales(context.Background(), "jakarta-1")
	require.NoError(t, err)
	assert.Equal(t, int64(123000), daily.TotalMinor)
	assert.Equal(t, 4, daily.Transactions)

	top, err := client.TopProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Smartphone", top[0].Product)
}
