// Package playstore is a client for the store's FDFE protocol.
//
// A Client logs in lazily, dispatches protobuf requests with the device
// headers the backend expects and, when caching is enabled, memoizes
// responses and absorbs server-pushed prefetch entries. DownloadInfo
// and the CompleteDownloadInfo helpers resolve the delivery or purchase
// flow into a ready-to-issue download request.
package playstore
