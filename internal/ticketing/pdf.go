package ticketing

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// TicketPDF renders a one-page A4 ticket with the QR code on top followed by
// event, venue, area and seat details.  The QR image is generated from the
// ticket code.
func TicketPDF(t *model.TicketDetail) ([]byte, error) {
	qr, err := QRPNG(t.Code, QRSizeStandard)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; translate so names like "Área" print correctly.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(t.EventName), false)
	pdf.AddPage()

	imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	imgName := "qr_" + t.Code
	pdf.RegisterImageOptionsReader(imgName, imgOpts, bytes.NewReader(qr))
	pdf.ImageOptions(imgName, (210.0-80.0)/2, 20, 80, 80, false, imgOpts, 0, "")
	pdf.SetY(105)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.5)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 20)
	pdf.MultiCell(0, 9, tr(t.EventName), "", "C", false)
	pdf.Ln(4)

	seat := t.SeatCode
	if seat == "" {
		seat = "General admission"
	}
	rows := [][2]string{
		{"Date", t.StartsAt.Format("Monday, January 2, 2006 15:04")},
		{"Venue", t.VenueName},
		{"Address", t.VenueAddr},
		{"Area", t.AreaName},
		{"Seat", seat},
		{"Price", strconv.FormatFloat(t.Price, 'f', 2, 64)},
		{"Holder", t.OwnerEmail},
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		pdf.SetX(30)
		pdf.SetFont("Arial", "", 13)
		pdf.CellFormat(35, 9, r[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(115, 9, tr(r[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "I", 12)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 8, fmt.Sprintf("Ticket code: %s", t.Code), "", 1, "C", false, 0, "")
	pdf.MultiCell(0, 6, "Present this ticket at the entrance. The QR code is scanned at check-in.", "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
