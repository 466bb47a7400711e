package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyNote       = "note"
	KeyLine       = "line"
	KeyRawPath    = "raw_path"
	KeyAssetPath  = "asset_path"
	KeyURL        = "url"
	KeyResult     = "result"
	KeyReason     = "reason"
	KeyDigest     = "digest"
	KeyBytes      = "bytes"
	KeyDurationMS = "duration_ms"
	KeyStatus     = "status"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Note(path string) slog.Attr      { return slog.String(KeyNote, path) }
func Line(n int) slog.Attr            { return slog.Int(KeyLine, n) }
func RawPath(p string) slog.Attr      { return slog.String(KeyRawPath, p) }
func AssetPath(p string) slog.Attr    { return slog.String(KeyAssetPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Result(r string) slog.Attr       { return slog.String(KeyResult, r) }
func Reason(r string) slog.Attr       { return slog.String(KeyReason, r) }
func Digest(d string) slog.Attr       { return slog.String(KeyDigest, d) }
func Bytes(n int) slog.Attr           { return slog.Int(KeyBytes, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
