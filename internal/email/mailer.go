package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/money"
)

// Recipient is who an email goes to.
type Recipient struct {
	Email string
	Name  string
}

func (r Recipient) address() string {
	if r.Name == "" {
		return r.Email
	}
	return fmt.Sprintf("%q <%s>", r.Name, r.Email)
}

var statusTemplates = map[enums.OrderStatus]Template{
	enums.OrderStatusProcessing: TemplateOrderProcessing,
	enums.OrderStatusShipping:   TemplateOrderShipping,
	enums.OrderStatusDelivered:  TemplateOrderDelivered,
	enums.OrderStatusCancelled:  TemplateOrderCancelled,
}

// OrderMailer renders order and cart emails and hands them to a Sender.
type OrderMailer struct {
	renderer  *Renderer
	sender    Sender
	publicURL string
}

func NewOrderMailer(renderer *Renderer, sender Sender, publicURL string) (*OrderMailer, error) {
	if renderer == nil {
		return nil, fmt.Errorf("email renderer required")
	}
	if sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	return &OrderMailer{renderer: renderer, sender: sender, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// SendOrderPlaced sends the confirmation with payment instructions.
func (m *OrderMailer) SendOrderPlaced(ctx context.Context, to Recipient, order *models.Order, instructions string) error {
	data := m.orderData(to, order)
	data.Instructions = instructions
	return m.send(ctx, to, TemplateOrderConfirmation, data)
}

// SendStatusChanged sends the email for the order's current status. Statuses
// without a template are skipped.
func (m *OrderMailer) SendStatusChanged(ctx context.Context, to Recipient, order *models.Order) (bool, error) {
	name, ok := statusTemplates[order.Status]
	if !ok {
		return false, nil
	}
	data := m.orderData(to, order)
	if order.AdminNote != nil {
		data.Note = *order.AdminNote
	}
	if order.CancellationReason != nil {
		data.Reason = *order.CancellationReason
	}
	return true, m.send(ctx, to, name, data)
}

// SendAbandonedCart reminds the owner of a cart with items.
func (m *OrderMailer) SendAbandonedCart(ctx context.Context, to Recipient, cart *models.Cart) error {
	data := Data{CustomerName: to.Name, Link: m.publicURL + "/cart"}
	total := cartSubtotal(cart)
	for _, item := range cart.Items {
		line := Line{Quantity: item.Quantity, Subtotal: money.VND(item.Subtotal())}
		if item.Product != nil {
			line.Name = item.Product.Name
		}
		if item.Variant != nil {
			line.Variant = item.Variant.Name
		}
		data.Items = append(data.Items, line)
	}
	data.ProductAmount = money.VND(total)
	return m.send(ctx, to, TemplateAbandonedCart, data)
}

func (m *OrderMailer) orderData(to Recipient, order *models.Order) Data {
	data := Data{
		CustomerName:    to.Name,
		OrderNumber:     order.OrderNumber,
		ProductAmount:   money.VND(order.TotalProductAmount),
		ShippingFee:     money.VND(order.ShippingFee),
		TotalAmount:     money.VND(order.TotalAmount),
		RecipientName:   order.RecipientName,
		ShippingAddress: order.ShippingAddress,
		Link:            m.publicURL + "/orders/" + order.OrderNumber,
	}
	for _, item := range order.Items {
		line := Line{Name: item.ProductName, Quantity: item.Quantity, Subtotal: money.VND(item.Subtotal)}
		if item.VariantDescription != nil {
			line.Variant = *item.VariantDescription
		}
		data.Items = append(data.Items, line)
	}
	return data
}

func (m *OrderMailer) send(ctx context.Context, to Recipient, name Template, data Data) error {
	if strings.TrimSpace(to.Email) == "" {
		return fmt.Errorf("recipient email required")
	}
	subject, body, err := m.renderer.Render(name, data)
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, Message{To: to.address(), Subject: subject, HTML: body})
}

func cartSubtotal(cart *models.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, item := range cart.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}
