// Package wordconv abstracts the Word-to-PDF conversion capability. The
// shipped implementation shells out to a headless LibreOffice, which keeps
// single-instance state: at most one conversion may run at a time, enforced
// by the dispatcher's serialized lane within the process and a file lock
// across processes.
package wordconv
