// Package downloader reassembles a resource from a server that may deliver
// it across several responses.
//
// The first GET fixes the target size through its Content-Length. While
// fewer bytes than that have arrived, the downloader asks for the rest with
// a Range request and appends whatever comes back:
//
//	d := downloader.NewForEndpoint(domain.ParseEndpoint(url), wire.DefaultOptions(), log)
//	data, err := d.DownloadFully(ctx)
//
// Requests are strictly sequential and each uses a fresh connection. Any
// failure aborts the whole download and the bytes gathered so far are
// dropped.
//
// # Range bounds
//
// The Range end sent is the declared total itself (bytes=<have>-<total>),
// not total-1. Servers that clamp the end to the resource size behave as if
// the bound were exclusive, which is how this package reads it.
package downloader
