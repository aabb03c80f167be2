package model

// TrayColumn indexes the evidence status cells of a case list row
type TrayColumn int

const (
	ColWitness TrayColumn = iota
	ColDNA
	ColFingerprint
	ColFire
	ColAutopsy
	trayColumns
)

// TrayRow is one selectable case in the in-tray or reported-cases list
type TrayRow struct {
	CaseID int
	Text   string
	Whack  bool
	Shades [trayColumns]string // Normalized background colors of the status cells
}

// Shade returns the background of one status cell
func (r TrayRow) Shade(col TrayColumn) string {
	if col < 0 || col >= trayColumns {
		return ""
	}
	return r.Shades[col]
}
