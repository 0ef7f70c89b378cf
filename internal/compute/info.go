package compute

// DeviceInfo captures metadata about a discovered device.
type DeviceInfo struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Vendor  string `json:"vendor"`
	Version string `json:"version"`
	Driver  string `json:"driver"`
	Type    string `json:"type"`
}

// PlatformInfo captures metadata about a platform and its devices.
type PlatformInfo struct {
	Index   int          `json:"index"`
	Name    string       `json:"name"`
	Vendor  string       `json:"vendor"`
	Version string       `json:"version"`
	Profile string       `json:"profile"`
	Devices []DeviceInfo `json:"devices"`
}
