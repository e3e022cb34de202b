package webui

type jsonServerConfig struct {
	Version        string            `json:"version"`
	BuildDate      string            `json:"build-date"`
	WebListener    string            `json:"web-listener"`
	Lang           string            `json:"lang"`
	MonitorVisible bool              `json:"monitor-visible"`
	RecordCount    int               `json:"record-count"`
	RulesConfig    jsonRulesConfig   `json:"rules-config"`
	CheckConfig    jsonCheckConfig   `json:"check-config"`
	StorageConfig  jsonStorageConfig `json:"storage-config"`
}

type jsonRulesConfig struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	Encoding string `json:"encoding"`
}

type jsonCheckConfig struct {
	OversizeBytes         int64  `json:"oversize-bytes"`
	OversizeSize          string `json:"oversize-size"`
	SkipConfirmSameDomain bool   `json:"skip-confirm-same-domain"`
	SkipConfirmAllWhite   bool   `json:"skip-confirm-all-white"`
	AutoCheckSameDomain   bool   `json:"auto-check-same-domain"`
}

type jsonStorageConfig struct {
	MaxRecords      int    `json:"max-records"`
	StoreType       string `json:"store-type"`
	RetentionPeriod string `json:"retention-period"`
}
