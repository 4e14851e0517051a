package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/notifications"
	product "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/products"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/config"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/pagination"
)

type stubProductService struct {
	err error

	lastFilters product.ListFilters
	lastCreate  product.CreateProductInput
	lastStock   product.SetStockInput
}

func (s *stubProductService) ListProducts(_ context.Context, filters product.ListFilters, _ pagination.Params) (pagination.Page[product.ProductSummaryDTO], error) {
	s.lastFilters = filters
	return pagination.Page[product.ProductSummaryDTO]{Items: []product.ProductSummaryDTO{}}, s.err
}

func (s *stubProductService) GetBySlug(_ context.Context, slug string) (*product.ProductDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &product.ProductDTO{ProductSummaryDTO: product.ProductSummaryDTO{Slug: slug}}, nil
}

func (s *stubProductService) ListCategories(context.Context) ([]product.CategoryDTO, error) {
	return []product.CategoryDTO{{Name: "Ceramics", Slug: "ceramics"}}, s.err
}

func (s *stubProductService) ListRegions(context.Context) ([]product.RegionDTO, error) {
	return []product.RegionDTO{{Name: "Hue", Slug: "hue"}}, s.err
}

func (s *stubProductService) CreateProduct(_ context.Context, input product.CreateProductInput) (*product.ProductDTO, error) {
	s.lastCreate = input
	if s.err != nil {
		return nil, s.err
	}
	return &product.ProductDTO{ProductSummaryDTO: product.ProductSummaryDTO{Name: input.Name, Price: input.Price}}, nil
}

func (s *stubProductService) CreateVariant(_ context.Context, _ uuid.UUID, input product.CreateVariantInput) (*product.VariantDTO, error) {
	return &product.VariantDTO{Name: input.Name, SKU: input.SKU}, s.err
}

func (s *stubProductService) SetStock(_ context.Context, _ uuid.UUID, input product.SetStockInput) error {
	s.lastStock = input
	return s.err
}

func TestListProductsFilters(t *testing.T) {
	svc := &stubProductService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category=ceramics&region=hue&q=vase", nil)
	resp := httptest.NewRecorder()
	ListProducts(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	f := svc.lastFilters
	if f.CategorySlug != "ceramics" || f.RegionSlug != "hue" || f.Query != "vase" {
		t.Fatalf("unexpected filters %+v", f)
	}
}

func TestGetProductMissingIsNotFound(t *testing.T) {
	svc := &stubProductService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	req := withParams(httptest.NewRequest(http.MethodGet, "/api/v1/products/none", nil), map[string]string{"slug": "none"})
	resp := httptest.NewRecorder()
	GetProduct(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestAdminCreateProductDefaultsActive(t *testing.T) {
	svc := &stubProductService{}
	body := `{"categoryId":"` + uuid.NewString() + `","name":"Bat Trang vase","slug":"bat-trang-vase","price":"300000","stock":4}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(body))
	resp := httptest.NewRecorder()
	AdminCreateProduct(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !svc.lastCreate.IsActive {
		t.Fatalf("expected new products to default to active")
	}
	if !svc.lastCreate.Price.Equal(decimal.NewFromInt(300000)) {
		t.Fatalf("unexpected price %s", svc.lastCreate.Price)
	}
}

func TestAdminCreateProductSlugConflict(t *testing.T) {
	svc := &stubProductService{err: pkgerrors.New(pkgerrors.CodeConflict, "product slug exists")}
	body := `{"categoryId":"` + uuid.NewString() + `","name":"Vase","slug":"vase","price":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(body))
	resp := httptest.NewRecorder()
	AdminCreateProduct(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestAdminSetStockTargetsVariant(t *testing.T) {
	productID := uuid.NewString()
	variantID := uuid.New()
	svc := &stubProductService{}
	body := `{"variantId":"` + variantID.String() + `","stock":12}`
	req := withParams(httptest.NewRequest(http.MethodPatch, "/api/v1/admin/products/"+productID+"/stock", strings.NewReader(body)), map[string]string{"productId": productID})
	resp := httptest.NewRecorder()
	AdminSetStock(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastStock.Stock != 12 || svc.lastStock.VariantID == nil || *svc.lastStock.VariantID != variantID {
		t.Fatalf("unexpected stock input %+v", svc.lastStock)
	}
}

type stubNotificationsService struct {
	lastParams notifications.ListParams
	lastID     uuid.UUID
	err        error
}

func (s *stubNotificationsService) List(_ context.Context, params notifications.ListParams) (pagination.Page[notifications.NotificationDTO], error) {
	s.lastParams = params
	return pagination.Page[notifications.NotificationDTO]{Items: []notifications.NotificationDTO{}}, s.err
}

func (s *stubNotificationsService) MarkRead(_ context.Context, _, id uuid.UUID) error {
	s.lastID = id
	return s.err
}

func (s *stubNotificationsService) MarkAllRead(context.Context, uuid.UUID) (int64, error) {
	return 3, s.err
}

func TestListNotificationsUnreadOnly(t *testing.T) {
	svc := &stubNotificationsService{}
	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?unreadOnly=true&limit=10", nil)
	req = asUser(req, userID.String(), enums.UserRoleCustomer)
	resp := httptest.NewRecorder()
	ListNotifications(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	p := svc.lastParams
	if p.UserID != userID || !p.UnreadOnly || p.Limit != 10 {
		t.Fatalf("unexpected params %+v", p)
	}
}

func TestMarkNotificationReadNotFound(t *testing.T) {
	id := uuid.New()
	svc := &stubNotificationsService{err: pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+id.String()+"/read", nil)
	req = asUser(withParams(req, map[string]string{"notificationId": id.String()}), uuid.NewString(), enums.UserRoleCustomer)
	resp := httptest.NewRecorder()
	MarkNotificationRead(svc, testLogger()).ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound || svc.lastID != id {
		t.Fatalf("expected 404 for %s, got %d", id, resp.Code)
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/notifications/read-all", nil), uuid.NewString(), enums.UserRoleCustomer)
	resp := httptest.NewRecorder()
	MarkAllNotificationsRead(&stubNotificationsService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var out map[string]int64
	decodeData(t, resp, &out)
	if out["updated"] != 3 {
		t.Fatalf("unexpected updated count %v", out)
	}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	resp := httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{}}).
		ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{err: errors.New("dial tcp: refused")}}).
		ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK || resp.Header().Get("X-Mosaic-Env") != "test" {
		t.Fatalf("unexpected live response %d", resp.Code)
	}
}
