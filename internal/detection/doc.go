// Package detection locates labeled regions on an invoice image.
//
// Region detection itself is performed by a trained object-detection model
// outside this module. The Detector implementations here read that model's
// output in its JSON form:
//
//	[
//	    {"label": "TOTAL", "confidence": 0.91,
//	     "bounding_box": {"x1": 410.2, "y1": 880.0, "x2": 590.7, "y2": 912.4}}
//	]
//
// FileDetector reads the list from disk, RemoteDetector posts the image to a
// model-serving endpoint that answers with the list, and Static returns a
// fixed list. Detector order is preserved; it decides which value wins when a
// label is detected twice.
package detection
