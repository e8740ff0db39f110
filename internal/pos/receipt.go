package pos

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Receipt documents are rendered for 80mm thermal printers: fixed-width
// monospace text, 42 columns.
const receiptWidth = 42

// GSTInclusive extracts the NZ GST component from a GST-inclusive total:
// tax = total * 15/115 = total * 3/23, rounded to 2 decimals.
func GSTInclusive(total decimal.Decimal) decimal.Decimal {
	return total.Mul(decimal.NewFromInt(3)).Div(decimal.NewFromInt(23)).Round(2)
}

func serviceBanner(serviceType string) string {
	switch serviceType {
	case ServiceDineIn:
		return "DINE IN"
	case ServicePickup:
		return "PICKUP"
	case ServiceDelivery:
		return "DELIVERY"
	}
	return strings.ToUpper(serviceType)
}

// Layout arithmetic counts runes, not bytes; macrons and CJK names must
// not push lines off the 42-column grid.
func centerLine(s string) string {
	width := utf8.RuneCountInString(s)
	if width >= receiptWidth {
		return s
	}
	pad := (receiptWidth - width) / 2
	return strings.Repeat(" ", pad) + s
}

func splitLine(left, right string) string {
	gap := receiptWidth - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func rule(ch string) string {
	return strings.Repeat(ch, receiptWidth)
}

func itemLines(items []OrderItem, withPrices bool) []string {
	var lines []string
	for _, item := range items {
		qty := fmt.Sprintf("%dx", item.Quantity)
		if withPrices {
			lines = append(lines, splitLine(
				fmt.Sprintf("%-3s %s", qty, item.Name),
				"$"+item.LineTotal().StringFixed(2)))
		} else {
			lines = append(lines, fmt.Sprintf("%-3s %s", qty, item.Name))
		}
		if item.SelectedVariant != "" {
			lines = append(lines, "    + "+item.SelectedVariant)
		}
		if len(item.SelectedAddons) > 0 {
			lines = append(lines, "    + "+strings.Join(item.SelectedAddons, ", "))
		}
		if item.Notes != "" {
			lines = append(lines, "    \""+item.Notes+"\"")
		}
	}
	return lines
}

// KitchenTicket renders the preparation ticket: short order id, service
// banner, identity, itemized list, special note. No monetary figures ever
// appear on a kitchen ticket. Reprinting is free of side effects.
func KitchenTicket(o *Order, now time.Time) string {
	var b strings.Builder

	b.WriteString(rule("=") + "\n")
	b.WriteString(centerLine("#"+o.ShortID()) + "\n")
	b.WriteString(rule("=") + "\n")
	b.WriteString(centerLine("*** "+serviceBanner(o.ServiceType)+" ***") + "\n")
	b.WriteString(rule("-") + "\n")

	if o.TableNo != "" {
		b.WriteString("TABLE: " + o.TableNo + "\n")
	}
	if o.CustomerName != "" {
		b.WriteString("Customer: " + o.CustomerName + "\n")
	}
	if o.ServiceType == ServiceDelivery && o.CustomerAddress != "" {
		b.WriteString("Address: " + o.CustomerAddress + "\n")
	}

	b.WriteString(rule("-") + "\n")
	for _, line := range itemLines(o.Items, false) {
		b.WriteString(line + "\n")
	}

	if o.SpecialInstructions != "" {
		b.WriteString(rule("-") + "\n")
		b.WriteString("NOTE: " + o.SpecialInstructions + "\n")
	}

	b.WriteString(rule("-") + "\n")
	b.WriteString(centerLine(now.Format("02/01/2006 15:04:05")) + "\n")

	return b.String()
}

// CustomerReceipt renders the tax receipt with business identity, fees and
// the GST-inclusive tax line. copy=true adds a COPY watermark for audit
// traceability on reprints; it never alters totals or item data.
func CustomerReceipt(o *Order, profile *RestaurantProfile, copy bool) string {
	subtotal := o.Subtotal
	if subtotal.IsZero() {
		for _, item := range o.Items {
			subtotal = subtotal.Add(item.LineTotal())
		}
	}
	total := o.TotalPrice
	if total.IsZero() {
		total = subtotal.Add(o.DeliveryFee).Add(o.SurchargeAmount)
	}
	gst := GSTInclusive(total)

	var b strings.Builder

	if copy {
		b.WriteString(centerLine("*** COPY ***") + "\n")
	}

	if profile != nil {
		b.WriteString(centerLine(profile.Name) + "\n")
		if profile.Address != "" {
			b.WriteString(centerLine(profile.Address) + "\n")
		}
		if profile.Phone != "" {
			b.WriteString(centerLine("Tel: "+profile.Phone) + "\n")
		}
		taxIDs := ""
		if profile.GSTNumber != "" {
			taxIDs = "GST No: " + profile.GSTNumber
		}
		if profile.IRDNumber != "" {
			if taxIDs != "" {
				taxIDs += " | "
			}
			taxIDs += "IRD No: " + profile.IRDNumber
		}
		if taxIDs != "" {
			b.WriteString(centerLine(taxIDs) + "\n")
		}
	}

	b.WriteString(centerLine("TAX INVOICE") + "\n")
	b.WriteString(centerLine(serviceBanner(o.ServiceType)) + "\n")
	b.WriteString(rule("-") + "\n")

	b.WriteString("Order #: " + o.ShortID() + "\n")
	b.WriteString("Date: " + o.CreatedAt.Format("02/01/2006 15:04") + "\n")
	if o.TableNo != "" {
		b.WriteString("Table: " + o.TableNo + "\n")
	}
	if o.CustomerName != "" {
		b.WriteString("Customer: " + o.CustomerName + "\n")
	}

	b.WriteString(rule("-") + "\n")
	for _, line := range itemLines(o.Items, true) {
		b.WriteString(line + "\n")
	}

	if o.SpecialInstructions != "" {
		b.WriteString(rule("-") + "\n")
		b.WriteString("SPECIAL NOTE:\n")
		b.WriteString(o.SpecialInstructions + "\n")
	}

	b.WriteString(rule("-") + "\n")
	b.WriteString(splitLine("Subtotal:", "$"+subtotal.StringFixed(2)) + "\n")
	if o.DeliveryFee.IsPositive() {
		b.WriteString(splitLine("Delivery Fee:", "$"+o.DeliveryFee.StringFixed(2)) + "\n")
	}
	if o.SurchargeAmount.IsPositive() {
		b.WriteString(splitLine("Service Fee:", "$"+o.SurchargeAmount.StringFixed(2)) + "\n")
	}
	b.WriteString(splitLine("TOTAL:", "$"+total.StringFixed(2)+" NZD") + "\n")
	b.WriteString(splitLine("Incl. GST (15%):", "$"+gst.StringFixed(2)) + "\n")

	b.WriteString(rule("-") + "\n")
	b.WriteString(centerLine("Thank you for your order!") + "\n")
	if copy {
		b.WriteString(centerLine("*** COPY ***") + "\n")
	}

	return b.String()
}
