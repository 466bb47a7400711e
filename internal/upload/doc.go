// Package upload posts image bytes to an HTTP endpoint as multipart form data
// and extracts the resulting URL from the JSON response.
//
// The request body is described by a JSON object template. Fields are written
// in template order; a field whose value is the sentinel "$FILE" carries the
// image bytes, every other field is sent as a plain form value:
//
//	{"key": "abc123", "image": "$FILE", "album": 7}
//
// The URL is read from the response with a field path such as "data.url".
package upload
