// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionRequest describes one spreadsheet-to-PDF conversion. It is
// created per invocation and consumed once.
type ConversionRequest struct {
	// InputPath is the spreadsheet to convert. It must exist.
	InputPath string `json:"input" yaml:"input"`

	// OutputPath is where the PDF is written. Missing parent directories
	// are created.
	OutputPath string `json:"output" yaml:"output"`

	// Timeout bounds the wait on the backend. Zero means the converter
	// default.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// ConversionResult reports the outcome of a conversion. It is printed as
// JSON with --json and stored by the history log.
type ConversionResult struct {
	// ID is a UUID assigned when the conversion starts.
	ID string `json:"id" yaml:"id"`

	Success bool `json:"success" yaml:"success"`

	// ErrorKind classifies the failure; empty on success.
	ErrorKind ErrorKind `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`

	// Error is the failure message; empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`

	// Backend names the backend that handled the request.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// Pages is the page count of the produced PDF when it was verified.
	Pages int `json:"pages,omitempty" yaml:"pages,omitempty"`

	DurationMS int64     `json:"duration_ms" yaml:"duration_ms"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
}
