package compute

import (
	"github.com/cwbudde/sodecl/internal/cl"
)

// Device is one compute device. Its properties are read from the runtime once
// at construction and never change afterwards.
type Device struct {
	id      cl.DeviceID
	name    string
	vendor  string
	version string
	driver  string
	kind    DeviceType
	rawType cl.DeviceType

	released bool
}

// newDevice queries name, vendor, version, driver version and type of id. It does not take
// ownership of id on failure.
func newDevice(rt cl.Runtime, id cl.DeviceID) (*Device, error) {
	name, st := rt.DeviceInfo(id, cl.DeviceName)
	if st != cl.Success {
		return nil, &deviceQueryError{property: "name", status: st}
	}
	vendor, st := rt.DeviceInfo(id, cl.DeviceVendor)
	if st != cl.Success {
		return nil, &deviceQueryError{property: "vendor", status: st}
	}
	version, st := rt.DeviceInfo(id, cl.DeviceVersion)
	if st != cl.Success {
		return nil, &deviceQueryError{property: "version", status: st}
	}
	driver, st := rt.DeviceInfo(id, cl.DriverVersion)
	if st != cl.Success {
		return nil, &deviceQueryError{property: "driver version", status: st}
	}
	raw, st := rt.DeviceType(id)
	if st != cl.Success {
		return nil, &deviceQueryError{property: "type", status: st}
	}

	return &Device{
		id:      id,
		name:    name,
		vendor:  vendor,
		version: version,
		driver:  driver,
		kind:    deviceTypeFromMask(raw),
		rawType: raw,
	}, nil
}

// ID returns the runtime handle.
func (d *Device) ID() cl.DeviceID { return d.id }

// Name returns CL_DEVICE_NAME.
func (d *Device) Name() string { return d.name }

// Vendor returns CL_DEVICE_VENDOR.
func (d *Device) Vendor() string { return d.vendor }

// Version returns CL_DEVICE_VERSION, the OpenCL capability version of the device.
func (d *Device) Version() string { return d.version }

// DriverVersion returns CL_DRIVER_VERSION.
func (d *Device) DriverVersion() string { return d.driver }

// Type returns the device kind.
func (d *Device) Type() DeviceType { return d.kind }

// Matches reports whether d satisfies the selection filter t.
func (d *Device) Matches(t DeviceType) bool {
	return t == DeviceAll || (t != DeviceUnknown && d.kind == t)
}

// Info returns a serializable snapshot of d.
func (d *Device) Info() DeviceInfo {
	return DeviceInfo{
		Name:    d.name,
		Vendor:  d.vendor,
		Version: d.version,
		Driver:  d.driver,
		Type:    d.kind.String(),
	}
}

func (d *Device) release(rt cl.Runtime) error {
	if d.released {
		return nil
	}
	d.released = true
	if st := rt.ReleaseDevice(d.id); st != cl.Success {
		return newRuntimeError(cl.OpReleaseDevice, st)
	}
	return nil
}
