package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.WorkDir == "" {
		cfg.Storage.WorkDir = "/usr/local/var/henkan/sessions"
	}
	if cfg.Storage.SessionTTLMinutes == 0 {
		cfg.Storage.SessionTTLMinutes = 60
	}
	if cfg.Storage.MaxUploadMB == 0 {
		cfg.Storage.MaxUploadMB = 50
	}
	if cfg.Convert.PreviewRows == 0 {
		cfg.Convert.PreviewRows = 5
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".pdf", ".xlsx", ".xls"}
	}
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
