// Package imaging loads invoice images and prepares regions of them for
// recognition.
//
// It covers decoding (with EXIF orientation), a shared image cache, region
// cropping with clamping to the image bounds, OCR preprocessing and the
// bounding-box overlay written next to extraction results.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner. A region
// (x1,y1,x2,y2) includes its top-left corner and excludes its bottom-right
// corner. Fractional detector coordinates are truncated toward zero.
//
// Regions are never rejected for lying partly or wholly outside the image:
// they are clamped, and a region with no overlap yields an empty Crop.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The remaining functions are
// stateless and never modify their input image.
package imaging
