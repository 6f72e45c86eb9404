package mailer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"freshbulk-service/internal/model"
	"freshbulk-service/pkg/config"
	"freshbulk-service/pkg/logger"
	"freshbulk-service/prometheus"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	client   *sendgrid.Client
	mailCfg  config.MailConfig
	enabled  bool
	printer  = message.NewPrinter(language.English)
	timeZone = time.Local
)

// Init configures the SendGrid client. Without an API key the mailer
// degrades to a logged no-op so order flow keeps working.
func Init(cfg *config.MailConfig) {
	mailCfg = *cfg
	if cfg.SendGridAPIKey == "" {
		logger.GetLogger().Warn("SENDGRID_API_KEY is not set, email notifications disabled")
		enabled = false
		return
	}
	client = sendgrid.NewSendClient(cfg.SendGridAPIKey)
	enabled = true
}

// SendOrderConfirmation emails the customer after an order is placed.
// Intended to run in its own goroutine; failures are logged, never returned.
func SendOrderConfirmation(order *model.Order) {
	subject, text, html := buildOrderConfirmation(order)
	send(order.CustomerEmail, order.OrderNumber, subject, text, html)
}

// SendOrderStatusUpdate emails the customer after a status change.
// Intended to run in its own goroutine; failures are logged, never returned.
func SendOrderStatusUpdate(order *model.Order, newStatus string) {
	subject, text, html := buildOrderStatusUpdate(order, newStatus)
	send(order.CustomerEmail, order.OrderNumber, subject, text, html)
}

func send(to, orderNumber, subject, text, html string) {
	log := logger.GetLogger()

	if !enabled {
		log.Warn("Email notification skipped, mailer disabled",
			zap.String("to", to), zap.String("order_number", orderNumber))
		return
	}

	from := sgmail.NewEmail(mailCfg.FromName, mailCfg.FromEmail)
	recipient := sgmail.NewEmail("", to)
	msg := sgmail.NewSingleEmail(from, subject, recipient, text, html)

	resp, err := client.Send(msg)
	if err != nil {
		prometheus.RecordEmailFailure()
		log.Error("Failed to send email",
			zap.String("to", to),
			zap.String("order_number", orderNumber),
			zap.Error(err))
		return
	}
	if resp.StatusCode >= 400 {
		prometheus.RecordEmailFailure()
		log.Error("Email rejected by provider",
			zap.String("to", to),
			zap.String("order_number", orderNumber),
			zap.Int("status", resp.StatusCode))
		return
	}

	prometheus.RecordEmailSent()
	log.Info("Email sent",
		zap.String("to", to),
		zap.String("order_number", orderNumber),
		zap.String("subject", subject))
}

func buildOrderConfirmation(order *model.Order) (subject, text, html string) {
	subject = fmt.Sprintf("FreshBulk Order Confirmation - #%s", order.OrderNumber)
	orderDate := order.CreatedAt.In(timeZone).Format("January 2, 2006")
	total := formatPrice(order.TotalAmount)

	var itemLines strings.Builder
	var itemItems strings.Builder
	for _, item := range order.Items {
		line := fmt.Sprintf("%s: %d x %s = %s",
			item.ProductName, item.Quantity,
			formatPrice(item.Price),
			formatPrice(item.Total))
		fmt.Fprintf(&itemLines, "  - %s\n", line)
		fmt.Fprintf(&itemItems, "<li>%s</li>", line)
	}

	text = fmt.Sprintf(`Order Confirmation - #%s

Hello %s,

Thank you for your order with FreshBulk. Your order has been received and is being processed.

Order Details:
Order Number: %s
Order Date: %s
Status: %s
Total Amount: %s

Ordered Items:
%s
Delivery Address:
%s
%s, %s

You can track your order status on our website with your order number: %s

If you have any questions, please contact %s or call %s.

Thank you for choosing FreshBulk!
`, order.OrderNumber, order.CustomerName, order.OrderNumber, orderDate, order.Status,
		total, itemLines.String(), order.DeliveryAddress, order.DeliveryCity, order.DeliveryPincode,
		order.OrderNumber, mailCfg.SupportEmail, mailCfg.SupportPhone)

	html = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #4CAF50;">Order Confirmation - #%s</h2>
  <p>Hello %s,</p>
  <p>Thank you for your order with FreshBulk. Your order has been received and is being processed.</p>
  <div style="margin: 20px 0; padding: 15px; border: 1px solid #e1e1e1; border-radius: 5px;">
    <h3 style="margin-top: 0;">Order Details:</h3>
    <p><strong>Order Number:</strong> %s</p>
    <p><strong>Order Date:</strong> %s</p>
    <p><strong>Status:</strong> %s</p>
    <p><strong>Total Amount:</strong> %s</p>
    <h4 style="margin-bottom: 5px;">Ordered Items:</h4>
    <ul style="padding-left: 20px;">%s</ul>
    <h4 style="margin-bottom: 5px;">Delivery Address:</h4>
    <p style="margin: 0;">%s<br>%s, %s</p>
  </div>
  <p>You can track your order status on our website with your order number: <strong>%s</strong></p>
  <p>If you have any questions, please contact %s or call %s.</p>
  <p>Thank you for choosing FreshBulk!</p>
</div>`, order.OrderNumber, order.CustomerName, order.OrderNumber, orderDate, order.Status,
		total, itemItems.String(), order.DeliveryAddress, order.DeliveryCity, order.DeliveryPincode,
		order.OrderNumber, mailCfg.SupportEmail, mailCfg.SupportPhone)

	return subject, text, html
}

func buildOrderStatusUpdate(order *model.Order, newStatus string) (subject, text, html string) {
	subject = fmt.Sprintf("FreshBulk Order Status Update - #%s", order.OrderNumber)
	orderDate := order.CreatedAt.In(timeZone).Format("January 2, 2006")
	statusMessage := statusMessageFor(newStatus)

	text = fmt.Sprintf(`Order Status Update - #%s

Hello %s,

%s

Order Details:
Order Number: %s
Order Date: %s
New Status: %s

You can track your order status on our website with your order number: %s

If you have any questions, please contact %s or call %s.

Thank you for choosing FreshBulk!
`, order.OrderNumber, order.CustomerName, statusMessage, order.OrderNumber, orderDate,
		newStatus, order.OrderNumber, mailCfg.SupportEmail, mailCfg.SupportPhone)

	html = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #4CAF50;">Order Status Update - #%s</h2>
  <p>Hello %s,</p>
  <p>%s</p>
  <div style="margin: 20px 0; padding: 15px; border: 1px solid #e1e1e1; border-radius: 5px;">
    <h3 style="margin-top: 0;">Order Details:</h3>
    <p><strong>Order Number:</strong> %s</p>
    <p><strong>Order Date:</strong> %s</p>
    <p><strong>New Status:</strong> <span style="font-weight: bold; color: #4CAF50;">%s</span></p>
  </div>
  <p>You can track your order status on our website with your order number: <strong>%s</strong></p>
  <p>If you have any questions, please contact %s or call %s.</p>
  <p>Thank you for choosing FreshBulk!</p>
</div>`, order.OrderNumber, order.CustomerName, statusMessage, order.OrderNumber, orderDate,
		newStatus, order.OrderNumber, mailCfg.SupportEmail, mailCfg.SupportPhone)

	return subject, text, html
}

func statusMessageFor(status string) string {
	switch status {
	case model.StatusProcessing:
		return "Your order is now being processed. We'll update you when it's ready for shipping."
	case model.StatusShipped:
		return "Great news! Your order has been shipped and is on its way to you."
	case model.StatusDelivered:
		return "Your order has been delivered successfully. We hope you enjoy your fresh produce!"
	case model.StatusCancelled:
		return "Your order has been cancelled as requested. If you have any questions, please contact our support team."
	default:
		return fmt.Sprintf("Your order status has been updated to %s.", status)
	}
}

// formatPrice renders an amount in rupees with grouped thousands. The
// integer part goes through the printer for grouping; the paise stay on
// the exact decimal so large totals never pick up float drift.
func formatPrice(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	dot := strings.LastIndex(fixed, ".")
	units, err := strconv.ParseInt(fixed[:dot], 10, 64)
	if err != nil {
		return "₹" + fixed
	}
	return printer.Sprintf("₹%d%s", units, fixed[dot:])
}
