package infra

// pdf.go: service receipt for finished appointments, rendered with go-pdf/fpdf.
// Layout: business header, appointment data (client, vehicle, date),
// one line per service snapshot and the locked total.
// The file is written to storagePath/recibo_cita_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"autolavado/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerarReciboPDF renders the receipt for cita and returns the file path.
// Prices come from the appointment's own snapshots, never the catalog.
func GenerarReciboPDF(cita *model.Cita, storagePath, negocio string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("recibo_cita_%d.pdf", cita.ID))

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 8, tr(negocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr("Recibo de servicio"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Appointment data ─────────────────────────────────────────────────────
	fila := func(label, valor string) {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(30, 5, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW-30, 5, tr(valor), "", 1, "L", false, 0, "")
	}
	fila("Cita N°", fmt.Sprintf("%d", cita.ID))
	fila("Fecha", cita.FechaHora.Format("02/01/2006 15:04"))
	if cita.Usuario != nil {
		fila("Cliente", cita.Usuario.Nombre)
	}
	if cita.Vehiculo != nil {
		fila("Vehículo", fmt.Sprintf("%s %s (%s)", cita.Vehiculo.Marca, cita.Vehiculo.Modelo, cita.Vehiculo.Placa))
	}
	if cita.Empleado != nil {
		fila("Atendido por", cita.Empleado.Nombre)
	}
	pdf.Ln(3)

	// ── Services ─────────────────────────────────────────────────────────────
	colNombre := contentW * 0.7
	colPrecio := contentW * 0.3

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colNombre, 6, tr("Servicio"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(colPrecio, 6, "Precio", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, s := range cita.Servicios {
		pdf.CellFormat(colNombre, 6, tr(s.Nombre), "", 0, "L", false, 0, "")
		pdf.CellFormat(colPrecio, 6, "$"+s.Precio.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(1)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(colNombre, 7, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(colPrecio, 7, "$"+cita.Total.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Footer ────────────────────────────────────────────────────────────────
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por confiar en nosotros!"), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
