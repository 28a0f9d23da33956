package dto

// ConnectionStatusResponse reports whether the extraction endpoint is usable.
// Balance is nil when the billing endpoint cannot serve this deployment; the
// reason code says why (session_key_required, forbidden, unsupported).
type ConnectionStatusResponse struct {
	OK                 bool     `json:"ok"`
	Models             []string `json:"models,omitempty"`
	BalanceAvailable   float64  `json:"balance_available,omitempty"`
	BalanceUnavailable string   `json:"balance_unavailable,omitempty"`
	Error              string   `json:"error,omitempty"`
}

type ActivityEntryResponse struct {
	Level     string `json:"level"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

type SettingRequest struct {
	Value string `json:"value"`
}

type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
