// Package invoice defines the data model shared by every stage of the
// extraction pipeline.
//
// A document flows through the pipeline as:
//
//	[]DetectedRegion -> crops -> RawRegionText -> Record
//
// # Regions
//
// A DetectedRegion is a labeled rectangle produced by the external detector.
// Coordinates are pixel offsets into the source image using the same
// convention as the imaging package: (X1,Y1) inclusive top-left, (X2,Y2)
// exclusive bottom-right. Detector output is not trusted to stay inside the
// image; clamping happens at crop time.
//
// # Records
//
// A Record maps labels to values. Every label except TableLabel maps to a
// normalized string, possibly empty. TableLabel maps to a Table, which is
// either a set of rows or the unparseable sentinel (Table.Err set to
// ErrUnparseableTable). Labels keep the order in which they were first seen;
// writing a label again replaces its value in place.
//
// # Error Handling
//
// Per-region problems never surface as Go errors. An empty recognition is an
// empty string, an unreadable table is a Table carrying ErrUnparseableTable.
// Only failures of the detector or recognizer themselves are returned, as a
// *CollaboratorError naming the image so the caller can retry or report it.
package invoice
