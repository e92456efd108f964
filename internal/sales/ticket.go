package sales

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

const ticketWidth = 40

// RenderTicket writes a plain-text receipt suitable for a thermal printer.
func RenderTicket(w io.Writer, s Sale, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder
	b.WriteString(center("Point of Sale") + "\n")
	b.WriteString(center(fmt.Sprintf("Ticket #%d", s.ID)) + "\n")
	if !s.Timestamp.IsZero() {
		b.WriteString(center(s.Timestamp.In(loc).Format("2006-01-02 15:04:05")) + "\n")
	}
	b.WriteString(strings.Repeat("-", ticketWidth) + "\n")

	tw := tabwriter.NewWriter(&b, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Product\tQty\tPrice\tSubtotal\t")
	for _, it := range s.Items {
		fmt.Fprintf(tw, "%s\tx%d\t$%s\t$%s\t\n", truncate(it.ProductName, 18), it.Quantity, it.UnitPrice.StringFixed(2), it.Subtotal.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	b.WriteString(strings.Repeat("-", ticketWidth) + "\n")
	total := "Total: $" + s.Total.StringFixed(2)
	b.WriteString(strings.Repeat(" ", max(0, ticketWidth-len(total))) + total + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func center(s string) string {
	pad := (ticketWidth - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
