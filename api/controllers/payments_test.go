package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/orders"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/payments"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
)

type stubPaymentsService struct {
	payment *orders.PaymentDTO
	err     error

	lastViewer   payments.Viewer
	lastConfirm  payments.ConfirmInput
	lastValidate payments.ValidateInput
	lastReason   string
	lastAdmin    uuid.UUID
}

func (s *stubPaymentsService) Confirm(_ context.Context, _, _ uuid.UUID, input payments.ConfirmInput) (*orders.PaymentDTO, error) {
	s.lastConfirm = input
	return s.payment, s.err
}

func (s *stubPaymentsService) Validate(_ context.Context, input payments.ValidateInput) (*orders.PaymentDTO, error) {
	s.lastValidate = input
	return s.payment, s.err
}

func (s *stubPaymentsService) Refund(_ context.Context, adminID, _ uuid.UUID, reason string) (*orders.PaymentDTO, error) {
	s.lastAdmin = adminID
	s.lastReason = reason
	return s.payment, s.err
}

func (s *stubPaymentsService) GetForOrder(_ context.Context, viewer payments.Viewer, _ uuid.UUID) (*orders.PaymentDTO, error) {
	s.lastViewer = viewer
	return s.payment, s.err
}

func TestConfirmOrderPayment(t *testing.T) {
	orderID := uuid.NewString()
	svc := &stubPaymentsService{payment: &orders.PaymentDTO{Status: enums.PaymentStatusPending}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID+"/payment/confirm", strings.NewReader(`{"transactionReference":" FT2601 "}`))
	req = asUser(withParams(req, map[string]string{"orderId": orderID}), uuid.NewString(), enums.UserRoleCustomer)
	resp := httptest.NewRecorder()
	ConfirmOrderPayment(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastConfirm.TransactionReference != "FT2601" {
		t.Fatalf("unexpected reference %q", svc.lastConfirm.TransactionReference)
	}
	var payment orders.PaymentDTO
	decodeData(t, resp, &payment)
	if payment.Status != enums.PaymentStatusPending {
		t.Fatalf("confirmation must leave payment pending, got %s", payment.Status)
	}
}

func TestConfirmOrderPaymentRequiresReference(t *testing.T) {
	orderID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID+"/payment/confirm", strings.NewReader(`{}`))
	req = asUser(withParams(req, map[string]string{"orderId": orderID}), uuid.NewString(), enums.UserRoleCustomer)
	resp := httptest.NewRecorder()
	ConfirmOrderPayment(&stubPaymentsService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetOrderPaymentMarksAdminViewer(t *testing.T) {
	orderID := uuid.NewString()
	svc := &stubPaymentsService{payment: &orders.PaymentDTO{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID+"/payment", nil)
	req = asUser(withParams(req, map[string]string{"orderId": orderID}), uuid.NewString(), enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	GetOrderPayment(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || !svc.lastViewer.IsAdmin {
		t.Fatalf("expected admin viewer, status %d viewer %+v", resp.Code, svc.lastViewer)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID+"/payment", nil)
	req = asUser(withParams(req, map[string]string{"orderId": orderID}), uuid.NewString(), enums.UserRoleCustomer)
	resp = httptest.NewRecorder()
	GetOrderPayment(svc, nil).ServeHTTP(resp, req)
	if svc.lastViewer.IsAdmin {
		t.Fatalf("customer must not be treated as admin")
	}
}

func TestAdminValidatePaymentRequiresDecision(t *testing.T) {
	paymentID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/payments/"+paymentID+"/validate", strings.NewReader(`{}`))
	req = asUser(withParams(req, map[string]string{"paymentId": paymentID}), uuid.NewString(), enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	AdminValidatePayment(&stubPaymentsService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminValidatePaymentReject(t *testing.T) {
	paymentID := uuid.New()
	adminID := uuid.New()
	svc := &stubPaymentsService{payment: &orders.PaymentDTO{Status: enums.PaymentStatusFailed}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/payments/"+paymentID.String()+"/validate", strings.NewReader(`{"approve":false,"note":"amount mismatch"}`))
	req = asUser(withParams(req, map[string]string{"paymentId": paymentID.String()}), adminID.String(), enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	AdminValidatePayment(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	in := svc.lastValidate
	if in.Approve || in.AdminID != adminID || in.PaymentID != paymentID {
		t.Fatalf("unexpected validate input %+v", in)
	}
}

func TestAdminRefundPaymentRequiresAdminRole(t *testing.T) {
	paymentID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/payments/"+paymentID+"/refund", strings.NewReader(`{"reason":"damaged"}`))
	req = asUser(withParams(req, map[string]string{"paymentId": paymentID}), uuid.NewString(), enums.UserRoleCustomer)
	resp := httptest.NewRecorder()
	AdminRefundPayment(&stubPaymentsService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestAdminRefundPaymentNotCompleted(t *testing.T) {
	paymentID := uuid.NewString()
	svc := &stubPaymentsService{err: pkgerrors.New(pkgerrors.CodeInvalidOperation, "only completed payments can be refunded")}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/payments/"+paymentID+"/refund", strings.NewReader(`{"reason":"damaged"}`))
	req = asUser(withParams(req, map[string]string{"paymentId": paymentID}), uuid.NewString(), enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	AdminRefundPayment(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.lastReason != "damaged" {
		t.Fatalf("unexpected reason %q", svc.lastReason)
	}
}
