package apimodel

// RotationEntry mirrors the config rotation list on the wire.
type RotationEntry struct {
	Module          string `json:"module"`
	DurationMinutes int    `json:"duration_minutes"`
}

type ModuleInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

type ConfigReply struct {
	ActiveModule   string          `json:"active_module"`
	RefreshMinutes int             `json:"refresh_minutes"`
	Rotation       []RotationEntry `json:"rotation"`
	Modules        []ModuleInfo    `json:"modules"`
}

type ScheduleUpdate struct {
	RefreshMinutes int             `json:"refresh_minutes"`
	Rotation       []RotationEntry `json:"rotation"`
}

type StatusReply struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type PhotoListReply struct {
	Photos []string `json:"photos"`
}

type UploadReply struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
}
