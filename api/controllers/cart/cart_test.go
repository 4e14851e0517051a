package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/middleware"
	cartsvc "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/cart"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
)

type stubCartService struct {
	cart *cartsvc.CartDTO
	err  error

	lastOwner   cartsvc.Owner
	lastInput   cartsvc.AddItemInput
	lastItemID  uuid.UUID
	lastQty     int
	lastGuestID string
	lastUserID  uuid.UUID
}

func (s *stubCartService) GetOrCreate(_ context.Context, owner cartsvc.Owner) (*cartsvc.CartDTO, error) {
	s.lastOwner = owner
	return s.cart, s.err
}

func (s *stubCartService) AddItem(_ context.Context, owner cartsvc.Owner, input cartsvc.AddItemInput) (*cartsvc.CartDTO, error) {
	s.lastOwner = owner
	s.lastInput = input
	return s.cart, s.err
}

func (s *stubCartService) UpdateItem(_ context.Context, owner cartsvc.Owner, itemID uuid.UUID, qty int) (*cartsvc.CartDTO, error) {
	s.lastOwner = owner
	s.lastItemID = itemID
	s.lastQty = qty
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, owner cartsvc.Owner, itemID uuid.UUID) (*cartsvc.CartDTO, error) {
	s.lastOwner = owner
	s.lastItemID = itemID
	return s.cart, s.err
}

func (s *stubCartService) Clear(_ context.Context, owner cartsvc.Owner) (*cartsvc.CartDTO, error) {
	s.lastOwner = owner
	return s.cart, s.err
}

func (s *stubCartService) Merge(_ context.Context, userID uuid.UUID, guestID string) (*cartsvc.CartDTO, error) {
	s.lastUserID = userID
	s.lastGuestID = guestID
	return s.cart, s.err
}

func withItemParam(req *http.Request, itemID uuid.UUID) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("itemId", itemID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestCartFetchAsGuest(t *testing.T) {
	cartID := uuid.New()
	svc := &stubCartService{cart: &cartsvc.CartDTO{ID: cartID, Items: []cartsvc.ItemDTO{}}}
	handler := CartFetch(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req = req.WithContext(middleware.WithGuestID(req.Context(), "guest-abcdef12"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastOwner.GuestID == nil || *svc.lastOwner.GuestID != "guest-abcdef12" || svc.lastOwner.UserID != nil {
		t.Fatalf("expected guest owner, got %+v", svc.lastOwner)
	}

	var envelope struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != cartID {
		t.Fatalf("unexpected cart id %s", envelope.Data.ID)
	}
}

func TestCartOwnerPrefersUser(t *testing.T) {
	userID := uuid.New()
	svc := &stubCartService{cart: &cartsvc.CartDTO{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithGuestID(ctx, "guest-abcdef12")
	resp := httptest.NewRecorder()
	CartFetch(svc, nil).ServeHTTP(resp, req.WithContext(ctx))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastOwner.UserID == nil || *svc.lastOwner.UserID != userID || svc.lastOwner.GuestID != nil {
		t.Fatalf("expected user owner, got %+v", svc.lastOwner)
	}
}

func TestCartRequiresSomeOwner(t *testing.T) {
	resp := httptest.NewRecorder()
	CartFetch(&stubCartService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddItemParsesPayload(t *testing.T) {
	productID := uuid.New()
	variantID := uuid.New()
	svc := &stubCartService{cart: &cartsvc.CartDTO{}}

	body := `{"productId":"` + productID.String() + `","variantId":"` + variantID.String() + `","quantity":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	req = req.WithContext(middleware.WithGuestID(req.Context(), "guest-abcdef12"))
	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastInput.ProductID != productID || svc.lastInput.Quantity != 2 {
		t.Fatalf("unexpected input %+v", svc.lastInput)
	}
	if svc.lastInput.VariantID == nil || *svc.lastInput.VariantID != variantID {
		t.Fatalf("expected variant %s", variantID)
	}
}

func TestCartAddItemRejectsBadQuantity(t *testing.T) {
	body := `{"productId":"` + uuid.NewString() + `","quantity":0}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	req = req.WithContext(middleware.WithGuestID(req.Context(), "guest-abcdef12"))
	resp := httptest.NewRecorder()
	CartAddItem(&stubCartService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddItemSurfacesInsufficientStock(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeInvalidOperation, "only 1 left in stock")}
	body := `{"productId":"` + uuid.NewString() + `","quantity":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	req = req.WithContext(middleware.WithGuestID(req.Context(), "guest-abcdef12"))
	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeInvalidOperation) || envelope.Error.Message != "only 1 left in stock" {
		t.Fatalf("unexpected error %+v", envelope.Error)
	}
}

func TestCartUpdateItemRequiresQuantity(t *testing.T) {
	itemID := uuid.New()
	svc := &stubCartService{cart: &cartsvc.CartDTO{}}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/"+itemID.String(), strings.NewReader(`{}`))
	req = withItemParam(req, itemID)
	req = req.WithContext(middleware.WithGuestID(req.Context(), "guest-abcdef12"))
	resp := httptest.NewRecorder()
	CartUpdateItem(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/"+itemID.String(), strings.NewReader(`{"quantity":0}`))
	req = withItemParam(req, itemID)
	req = req.WithContext(middleware.WithGuestID(req.Context(), "guest-abcdef12"))
	resp = httptest.NewRecorder()
	CartUpdateItem(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastItemID != itemID || svc.lastQty != 0 {
		t.Fatalf("unexpected update target %s qty %d", svc.lastItemID, svc.lastQty)
	}
}

func TestCartMergeUsesHeaderFallback(t *testing.T) {
	userID := uuid.New()
	svc := &stubCartService{cart: &cartsvc.CartDTO{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/merge", nil)
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithGuestID(ctx, "guest-abcdef12")
	resp := httptest.NewRecorder()
	CartMerge(svc, nil).ServeHTTP(resp, req.WithContext(ctx))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastUserID != userID || svc.lastGuestID != "guest-abcdef12" {
		t.Fatalf("unexpected merge args %s %q", svc.lastUserID, svc.lastGuestID)
	}
}

func TestCartMergeRequiresUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/merge", strings.NewReader(`{"guestId":"guest-abcdef12"}`))
	resp := httptest.NewRecorder()
	CartMerge(&stubCartService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
