package types

import "time"

// BackendName selects the office application used for conversion.
type BackendName string

const (
	// BackendAuto picks the platform default: Excel then LibreOffice on
	// Windows, LibreOffice everywhere else.
	BackendAuto        BackendName = "auto"
	BackendLibreOffice BackendName = "libreoffice"
	BackendExcel       BackendName = "excel"
)

// SheetScope controls which worksheets end up in the PDF.
type SheetScope string

const (
	SheetsAll   SheetScope = "all"
	SheetsFirst SheetScope = "first"
)

// DefaultTimeout bounds a single conversion when nothing else is configured.
const DefaultTimeout = 120 * time.Second

// ConversionConfig holds settings for the conversion stage.
type ConversionConfig struct {
	// Backend selects the office application: auto, libreoffice, or excel.
	Backend BackendName `json:"backend" yaml:"backend" validate:"oneof=auto libreoffice excel"`

	// Timeout bounds the wait on the external process (default 120s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" validate:"gt=0"`

	// Sheets selects whether all worksheets or only the first are exported.
	Sheets SheetScope `json:"sheets" yaml:"sheets" validate:"oneof=all first"`

	// SofficePath overrides LibreOffice binary discovery when set.
	SofficePath string `json:"soffice_path,omitempty" yaml:"soffice_path,omitempty"`

	// VerifyPDF parses the produced file and rejects it unless it is a PDF
	// with at least one page.
	VerifyPDF bool `json:"verify_pdf" yaml:"verify_pdf"`
}

// HistoryConfig holds settings for the conversion history log.
type HistoryConfig struct {
	// Enabled records every CLI conversion in the history database.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" validate:"required_if=Enabled true"`
}

// Config groups all settings loaded from flags, environment, and the
// config file.
type Config struct {
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	History    HistoryConfig    `json:"history" yaml:"history"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
}
