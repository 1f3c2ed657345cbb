package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"retailscan/m/internal/database"
	"retailscan/m/internal/migrations"
)

func testServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	db := database.Connect(":memory:")
	t.Cleanup(func() { _ = db.Close() })
	migrations.Run(db)

	db.MustExec(`INSERT INTO promoters (state, point_of_sale, promoter) VALUES
        ('Maharashtra', 'Food Square - Bandra West', 'Food Square Barcode'),
        ('Gujarat', 'Magson - Ahmedabad', 'Magson Barcode')`)
	db.MustExec(`INSERT INTO article_codes (product, article_code, promoter) VALUES
        ('Almonds Non Pareil Running (25-29) Loose FG', 9029792, 'Food Square Barcode'),
        ('Cashew W320 Loose FG', 30028, 'Magson Barcode')`)
	db.MustExec(`INSERT INTO prices (pricelist, product, price, gst) VALUES
        ('Food Square', 'Almonds Non Pareil Running (25-29) Loose FG', 100.00, 0.05),
        ('Magson', 'Cashew W320 Loose FG', 80.00, NULL)`)

	handler := New(db, "test_secret")
	srv := httptest.NewServer(handler.Router())
	t.Cleanup(srv.Close)

	// Register an admin to obtain a token for the protected routes.
	var created struct {
		Token string `json:"token"`
	}
	resp := postJSON(t, srv, "/admin", "", map[string]string{
		"name":     "Ops",
		"email":    "ops@example.com",
		"password": "secret123",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create admin: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode admin response: %v", err)
	}
	if created.Token == "" {
		t.Fatal("expected a token")
	}
	return srv, created.Token
}

func postJSON(t *testing.T, srv *httptest.Server, path, token string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, srv.URL+path, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

type scanResponse struct {
	Product       string   `json:"product"`
	ArticleCode   int64    `json:"article_code"`
	StoreName     string   `json:"store_name"`
	StoreType     string   `json:"store_type"`
	Promoter      string   `json:"promoter"`
	Pricelist     string   `json:"pricelist"`
	Price         *float64 `json:"price"`
	GST           *float64 `json:"gst"`
	PriceWithGST  *float64 `json:"price_with_gst"`
	Weight        *float64 `json:"weight"`
	WeightCode    string   `json:"weight_code"`
	BarcodeFormat string   `json:"barcode_format"`
}

func TestBarcodeScanEndpoint(t *testing.T) {
	srv, token := testServer(t)

	resp := postJSON(t, srv, "/article-codes/barcode-scan", token, map[string]string{
		"barcode":    "W902979200110",
		"store_name": "Food Square - Bandra",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var result scanResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Product != "Almonds Non Pareil Running (25-29) Loose FG" {
		t.Errorf("product = %q", result.Product)
	}
	if result.ArticleCode != 9029792 {
		t.Errorf("article_code = %d", result.ArticleCode)
	}
	if result.StoreType != "food_square" {
		t.Errorf("store_type = %q", result.StoreType)
	}
	if result.BarcodeFormat != "Food Square" {
		t.Errorf("barcode_format = %q", result.BarcodeFormat)
	}
	if result.Pricelist != "Food Square" {
		t.Errorf("pricelist = %q", result.Pricelist)
	}
	if result.Price == nil || *result.Price != 100.00 {
		t.Errorf("price = %v", result.Price)
	}
	if result.PriceWithGST == nil || *result.PriceWithGST != 105.00 {
		t.Errorf("price_with_gst = %v", result.PriceWithGST)
	}
	if result.WeightCode != "00110" {
		t.Errorf("weight_code = %q", result.WeightCode)
	}
	if result.Weight == nil || *result.Weight != 0.110 {
		t.Errorf("weight = %v", result.Weight)
	}
}

func TestBarcodeScanFailures(t *testing.T) {
	srv, token := testServer(t)

	cases := []struct {
		name       string
		barcode    string
		storeName  string
		wantStatus int
	}{
		{"undecodable", "garbage-barcode", "Food Square - Bandra", http.StatusBadRequest},
		{"promoter unresolved", "12345678", "No Such Store", http.StatusNotFound},
		{"article missing", "W000000100110", "Food Square - Bandra", http.StatusNotFound},
		{"empty barcode", "", "Food Square - Bandra", http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv, "/article-codes/barcode-scan", token, map[string]string{
				"barcode":    tc.barcode,
				"store_name": tc.storeName,
			})
			defer resp.Body.Close()
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			var body struct {
				Error string `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Error == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestBarcodeScanRequiresAuth(t *testing.T) {
	srv, _ := testServer(t)

	resp := postJSON(t, srv, "/article-codes/barcode-scan", "", map[string]string{
		"barcode": "W902979200110",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestArticleLookupEndpoint(t *testing.T) {
	srv, token := testServer(t)

	resp := postJSON(t, srv, "/article-codes/article-lookup", token, map[string]string{
		"article_name": "cashew",
		"store_name":   "Magson - Ahmedabad",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var result scanResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Product != "Cashew W320 Loose FG" {
		t.Errorf("product = %q", result.Product)
	}
	if result.StoreType != "manual_lookup" {
		t.Errorf("store_type = %q", result.StoreType)
	}
	if result.BarcodeFormat != "Manual Lookup" {
		t.Errorf("barcode_format = %q", result.BarcodeFormat)
	}
	if result.Price == nil || *result.Price != 80.00 {
		t.Errorf("price = %v", result.Price)
	}
	// No GST on the Magson row, so there is no tax-inclusive price either.
	if result.GST != nil || result.PriceWithGST != nil {
		t.Errorf("gst = %v, price_with_gst = %v", result.GST, result.PriceWithGST)
	}
	if result.WeightCode != "00000" {
		t.Errorf("weight_code = %q", result.WeightCode)
	}
}

func TestUploadArticleCSV(t *testing.T) {
	srv, token := testServer(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "articles.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fmt.Fprintln(part, "Product,Article Code,Promoter")
	fmt.Fprintln(part, "Walnut Kernels Loose FG,5550123,Rapsap")
	fmt.Fprintln(part, "Bad Row,not-a-code,Rapsap")
	fmt.Fprintln(part, "Cashew W320 Loose FG,30028,Magson Barcode")
	writer.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/article-codes/upload-csv", &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var result struct {
		Created int `json:"created"`
		Errors  []struct {
			Row     int    `json:"row"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// One clean insert; the bad code and the duplicate both report row errors.
	if result.Created != 1 {
		t.Errorf("created = %d, want 1", result.Created)
	}
	if len(result.Errors) != 2 {
		t.Errorf("errors = %+v, want 2 entries", result.Errors)
	}
	for _, rowErr := range result.Errors {
		if rowErr.Message == "" || rowErr.Row == 0 {
			t.Errorf("incomplete row error: %+v", rowErr)
		}
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
	}
}
