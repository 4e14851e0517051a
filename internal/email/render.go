// Package email renders and sends transactional order emails.
package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names one embedded email body.
type Template string

const (
	TemplateOrderConfirmation Template = "order_confirmation"
	TemplateOrderProcessing   Template = "order_processing"
	TemplateOrderShipping     Template = "order_shipping"
	TemplateOrderDelivered    Template = "order_delivered"
	TemplateOrderCancelled    Template = "order_cancelled"
	TemplateAbandonedCart     Template = "abandoned_cart"
)

var subjects = map[Template]string{
	TemplateOrderConfirmation: "Order %s received",
	TemplateOrderProcessing:   "Order %s is being prepared",
	TemplateOrderShipping:     "Order %s has shipped",
	TemplateOrderDelivered:    "Order %s was delivered",
	TemplateOrderCancelled:    "Order %s was cancelled",
	TemplateAbandonedCart:     "You left items in your cart%s",
}

// Line is one product row in an email.
type Line struct {
	Name     string
	Variant  string
	Quantity int
	Subtotal string
}

// Data feeds every template. Fields a template does not use stay empty.
type Data struct {
	CustomerName    string
	OrderNumber     string
	Items           []Line
	ProductAmount   string
	ShippingFee     string
	TotalAmount     string
	RecipientName   string
	ShippingAddress string
	Instructions    string
	Note            string
	Reason          string
	Link            string
}

// Renderer holds the parsed template set.
type Renderer struct {
	pages map[Template]*template.Template
}

// NewRenderer parses every embedded template up front so a broken template
// fails at startup.
func NewRenderer() (*Renderer, error) {
	pages := make(map[Template]*template.Template, len(subjects))
	for name := range subjects {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+string(name)+".html")
		if err != nil {
			return nil, fmt.Errorf("parse email template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages}, nil
}

// Render returns the subject and HTML body for name.
func (r *Renderer) Render(name Template, data Data) (string, string, error) {
	tmpl, ok := r.pages[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, string(name)+".html", data); err != nil {
		return "", "", fmt.Errorf("render email template %s: %w", name, err)
	}

	subject := fmt.Sprintf(subjects[name], data.OrderNumber)
	if name == TemplateAbandonedCart {
		subject = fmt.Sprintf(subjects[name], "")
	}
	return subject, body.String(), nil
}
