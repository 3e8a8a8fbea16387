// Package httpapi serves the extraction pipeline over HTTP with gin.
//
// Routes:
//
//	GET  /health               liveness probe
//	POST /extract              multipart field "image"; ?format=json|excel
//	GET  /download?file=NAME   fetch an artifact from the output directory
//	GET  /invoices             stored records, newest first (store only)
//	GET  /invoices/:id         one stored record (store only)
//
// Every extraction writes a JSON document, a workbook and an annotated
// image to the output directory. The uploaded image is removed once the
// request finishes.
package httpapi
