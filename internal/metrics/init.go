package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, op := range []string{"add_tag", "remove_tag", "rename_tag", "delete_tag"} {
		for _, status := range []string{"success", "rejected", "noop"} {
			StoreOperationsTotal.WithLabelValues(op, status)
		}
	}
	StoreOperationsTotal.WithLabelValues("rename_tag", "merged")

	for _, branch := range []string{"and", "or"} {
		FilterEvaluationsTotal.WithLabelValues(branch)
		FilterEvaluationDuration.WithLabelValues(branch)
	}

	for _, sink := range []string{"sidecar", "catalog"} {
		SavesTotal.WithLabelValues(sink, "success")
		SavesTotal.WithLabelValues(sink, "error")
		SaveDuration.WithLabelValues(sink)
	}

	for _, status := range []string{"success", "error"} {
		LoadsTotal.WithLabelValues(status)
	}

	for _, op := range []string{"stat", "readdir", "read", "write"} {
		FilesystemOperationDuration.WithLabelValues(op)
		FilesystemOperationErrors.WithLabelValues(op)
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
	}

	for _, op := range []string{"sync_directory", "save_image_tags", "tag_counts", "images_with_tag", "image_tags"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
