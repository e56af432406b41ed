package request

// ReloadRulesRequest optionally points the reload at a different rule file.
// An empty path reloads the active source.
type ReloadRulesRequest struct {
	Path string `json:"path,omitempty"`
}
