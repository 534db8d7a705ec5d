// Package document abstracts the PDF manipulation capability behind the
// Engine interface so executors stay independent of the concrete library.
// The shipped implementation wraps pdfcpu.
package document
