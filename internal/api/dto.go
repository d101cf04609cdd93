package api

// InspectRequest asks for the header and entry listing of one container.
type InspectRequest struct {
	// Path to the OAT file on the server's filesystem.
	Path string `json:"path"`
	// Samsung enables the vendor record variant while walking.
	Samsung bool `json:"samsung,omitempty"`
}

// InspectResponse is the decoded container metadata.
type InspectResponse struct {
	Path       string      `json:"path"`
	Magic      string      `json:"magic"`
	Version    uint32      `json:"version"`
	EntryCount uint32      `json:"entry_count"`
	Anchor     uint64      `json:"anchor_offset"`
	Entries    []EntryInfo `json:"entries"`
}

// EntryInfo describes one embedded dex file.
type EntryInfo struct {
	Index         uint32 `json:"index"`
	Location      string `json:"location"`
	Checksum      string `json:"checksum"`
	PayloadOffset uint64 `json:"payload_offset"`
	PayloadSize   uint32 `json:"payload_size"`
	ClassDefs     uint32 `json:"class_defs"`
}

// ResponseError is the error envelope body.
type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
