package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/api/middleware"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/checkout"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/orders"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
)

type stubCheckoutService struct {
	result    *checkout.Result
	err       error
	lastUser  uuid.UUID
	lastInput checkout.CheckoutInput
}

func (s *stubCheckoutService) Execute(_ context.Context, userID uuid.UUID, input checkout.CheckoutInput) (*checkout.Result, error) {
	s.lastUser = userID
	s.lastInput = input
	return s.result, s.err
}

func TestCheckoutCreatesOrder(t *testing.T) {
	userID := uuid.New()
	addressID := uuid.New()
	svc := &stubCheckoutService{result: &checkout.Result{
		Order:               &orders.OrderDTO{OrderNumber: "MS20260101ABCD0001", Status: enums.OrderStatusPendingPayment},
		PaymentInstructions: "Use MS20260101ABCD0001 as the transfer content.",
	}}

	body := `{"addressId":"` + addressID.String() + `","paymentMethod":"BANK_TRANSFER","note":"ring twice"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req = asUser(req, userID.String(), enums.UserRoleCustomer)
	req = req.WithContext(middleware.WithGuestID(req.Context(), "guest-abcdef12"))
	resp := httptest.NewRecorder()
	Checkout(svc, testLogger()).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.lastUser != userID || svc.lastInput.AddressID != addressID || svc.lastInput.PaymentMethod != "BANK_TRANSFER" {
		t.Fatalf("unexpected checkout call %s %+v", svc.lastUser, svc.lastInput)
	}
	if svc.lastInput.GuestID == nil || *svc.lastInput.GuestID != "guest-abcdef12" {
		t.Fatalf("expected guest id from header to be forwarded")
	}

	var result checkout.Result
	decodeData(t, resp, &result)
	if result.Order == nil || result.Order.OrderNumber != "MS20260101ABCD0001" {
		t.Fatalf("unexpected order in response %+v", result.Order)
	}
	if !strings.Contains(result.PaymentInstructions, "MS20260101ABCD0001") {
		t.Fatalf("instructions should quote the order number")
	}
}

func TestCheckoutRequiresUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	Checkout(&stubCheckoutService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCheckoutValidatesBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"paymentMethod":"COD"}`))
	req = asUser(req, uuid.NewString(), enums.UserRoleCustomer)
	resp := httptest.NewRecorder()
	Checkout(&stubCheckoutService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutMapsEmptyCart(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeInvalidOperation, "cart is empty")}
	body := `{"addressId":"` + uuid.NewString() + `","paymentMethod":"COD"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req = asUser(req, uuid.NewString(), enums.UserRoleCustomer)
	resp := httptest.NewRecorder()
	Checkout(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != string(pkgerrors.CodeInvalidOperation) {
		t.Fatalf("unexpected code %s", code)
	}
}
