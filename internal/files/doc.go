// Package files manages the per-request working directories that hold
// uploaded spreadsheets and generated documents.
//
// Every report request gets its own Workspace named by a random UUID under a
// common root, so concurrent requests never share files. Uploaded files keep
// their original base name because the report week is read from it.
//
// Example usage:
//
//	manager := files.NewManager(cfg.Paths.WorkDir, cfg.Paths.KeepArtifacts, logger)
//	ws, err := manager.NewWorkspace(ctx)
//	if err != nil {
//	    return err
//	}
//	defer ws.Cleanup()
//	path, err := ws.Save("Top_100_progress_OHL_w12.xlsx", upload)
package files
